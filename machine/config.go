package machine

import (
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

const (
	DEFAULT_MEMORY_SIZE = 1024 * 1024 // 1 MiB
	DEFAULT_NUM_CPUS    = 1
)

// Config describes the machine to build.
type Config struct {
	MemorySize int  `toml:"memory_size"` // Size of the memory region, in bytes.
	NumCpus    int  `toml:"num_cpus"`    // Number of execution units.
	Verbose    bool `toml:"verbose"`     // Enables debug logging.
}

// DefaultConfig returns a 1 MiB, single unit configuration.
func DefaultConfig() Config {
	return Config{
		MemorySize: DEFAULT_MEMORY_SIZE,
		NumCpus:    DEFAULT_NUM_CPUS,
	}
}

// Validate checks that the memory size and unit count are positive.
func (config Config) Validate() (err error) {
	if config.MemorySize <= 0 {
		err = errors.Join(err, fmt.Errorf("%w: %v", ErrConfigInvalid, f("memory_size %d is not positive", config.MemorySize)))
	}
	if config.NumCpus <= 0 {
		err = errors.Join(err, fmt.Errorf("%w: %v", ErrConfigInvalid, f("num_cpus %d is not positive", config.NumCpus)))
	}
	return
}

// LoadConfig reads a TOML configuration on top of DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(r io.Reader) (config Config, err error) {
	config = DefaultConfig()

	md, err := toml.NewDecoder(r).Decode(&config)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConfigInvalid, err)
		return
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		err = fmt.Errorf("%w: %v", ErrConfigInvalid, f("unknown key %v", undecoded[0]))
		return
	}

	err = config.Validate()
	return
}
