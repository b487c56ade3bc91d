package emulator

// DebugCommand is posted by the host debugger and drained at most once per
// Step call, matching a single-producer/single-consumer FIFO.
type DebugCommand int

const (
	CmdHalt DebugCommand = iota
	CmdRun
	CmdStep
)

func (c DebugCommand) String() string {
	switch c {
	case CmdHalt:
		return "Halt"
	case CmdRun:
		return "Run"
	case CmdStep:
		return "Step"
	default:
		return "Unknown"
	}
}

// debugState is the debugger's own closed sum type, independent of the
// four-state frame pacing machine.
type debugState int

const (
	dbgRunning debugState = iota
	dbgHalted
)

const debugQueueCapacity = 16

// PostDebugCommand enqueues a command for the next Step call to observe.
// Commands are ignored entirely unless the emulator was constructed with
// debug mode on. A full queue drops the oldest pending command.
func (e *Emulator) PostDebugCommand(cmd DebugCommand) {
	if !e.debugOn {
		return
	}
	select {
	case e.debugQueue <- cmd:
	default:
		<-e.debugQueue
		e.debugQueue <- cmd
	}
}

// SetBreakpoint enables or disables a breakpoint at addr.
func (e *Emulator) SetBreakpoint(addr uint16, enabled bool) {
	if enabled {
		e.breakpoints[addr] = true
	} else {
		delete(e.breakpoints, addr)
	}
}

// drainDebugCommand consumes at most one queued command, if any.
func (e *Emulator) drainDebugCommand() {
	select {
	case cmd := <-e.debugQueue:
		switch cmd {
		case CmdHalt:
			e.dbgState = dbgHalted
		case CmdRun:
			e.dbgState = dbgRunning
		case CmdStep:
			e.dbgState = dbgHalted
			e.singleStepPending = true
		}
	default:
	}
}
