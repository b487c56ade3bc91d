package emulator

import "fmt"

// ConfigurationError reports a fatal problem with constructor inputs: a
// wrong-sized boot ROM or an undersized cartridge image.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("emulator configuration error: %s", e.Reason)
}

const (
	minROMSize = 32 * 1024
)

func validateInputs(rom, bootROM []byte) error {
	if len(rom) < minROMSize {
		return &ConfigurationError{Reason: fmt.Sprintf("cartridge ROM must be at least %d bytes, got %d", minROMSize, len(rom))}
	}
	if bootROM != nil && len(bootROM) != 256 {
		return &ConfigurationError{Reason: fmt.Sprintf("boot ROM must be exactly 256 bytes, got %d", len(bootROM))}
	}
	return nil
}
