package doomdev

import (
	"github.com/BurntSushi/toml"

	"github.com/clktmr/doomdev/drivers/fifo"
)

// Config configures a device.
type Config struct {
	// Name identifies the device in log messages.
	Name string `toml:"name"`
	// UIO is the device node the accelerator is bound to, used by Open.
	UIO string `toml:"uio"`
	// DMAMap is the index of the UIO map providing DMA memory, used by
	// Open. Map 0 is always the register window.
	DMAMap int `toml:"dma_map"`
	// Heartbeat is the number of command words between two PING_ASYNC.
	Heartbeat int `toml:"heartbeat"`
	// LogLevel is applied to the driver's logger by Open, e.g. "debug".
	LogLevel string `toml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Name:      "doom0",
		UIO:       "/dev/uio0",
		DMAMap:    1,
		Heartbeat: fifo.DefaultHeartbeat,
		LogLevel:  "info",
	}
}

// LoadConfig reads a TOML config file. Keys missing in the file keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) name() string {
	if c.Name == "" {
		return "doom"
	}
	return c.Name
}
