package report

import "codeberg.org/mutker/mmcqueues/internal/errors"

// Format names an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// IsValid returns whether the format is supported
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

type Config struct {
	Format   Format
	Detailed bool // include every metric, not only c and Wq
}

func DefaultConfig() Config {
	return Config{
		Format: FormatText,
	}
}

func (c Config) Validate() error {
	if !c.Format.IsValid() {
		return errors.New().WithData(ErrInvalidFormat, c.Format)
	}
	return nil
}
