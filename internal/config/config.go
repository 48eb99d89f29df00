package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/mmcqueues/internal/errors"
	"codeberg.org/mutker/mmcqueues/internal/queue"
	"codeberg.org/mutker/mmcqueues/internal/report"
	"codeberg.org/mutker/mmcqueues/internal/search"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = LogLevelWarning
	DefaultWorkers   = 1
	DefaultEnvPrefix = "MMCQUEUES"

	maxPrecision = 1000
	configName   = "mmcqueues"
)

var defaultConfigPaths = []string{"/etc", "."}

type Config struct {
	ArrivalRates []float64 `mapstructure:"arrival_rates"`
	ServiceRates []float64 `mapstructure:"service_rates"`
	MaxWait      float64   `mapstructure:"max_wait"`
	MaxServers   int       `mapstructure:"max_servers"`
	Precision    int       `mapstructure:"precision"`
	Workers      int       `mapstructure:"workers"`
	Output       string    `mapstructure:"output"`
	Detailed     bool      `mapstructure:"detailed"`
	LogLevel     string    `mapstructure:"log_level"`
}

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	"arrival-rates": "arrival_rates",
	"service-rates": "service_rates",
	"max-wait":      "max_wait",
	"max-servers":   "max_servers",
	"precision":     "precision",
	"workers":       "workers",
	"output":        "output",
	"detailed":      "detailed",
	"log-level":     "log_level",
}

// Load reads the configuration from, in increasing priority: built-in
// defaults, the TOML config file, MMCQUEUES_* environment variables and
// args. The result is validated.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{
		configPaths: defaultConfigPaths,
		envPrefix:   DefaultEnvPrefix,
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrParseFlags, err)
	}

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Config file: flag, then option, then environment
	path, _ := fs.GetString("config")
	if path == "" {
		path = o.configPath
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		for _, dir := range o.configPaths {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrDecodeConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("arrival_rates", search.DefaultArrivalRates)
	v.SetDefault("service_rates", search.DefaultServiceRates)
	v.SetDefault("max_wait", search.DefaultMaxWait)
	v.SetDefault("max_servers", search.DefaultMaxServers)
	v.SetDefault("precision", queue.DefaultPrecision)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("output", string(report.FormatText))
	v.SetDefault("detailed", false)
	v.SetDefault("log_level", string(DefaultLogLevel))
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)

	fs.String("config", "", "Path to a TOML configuration file")
	fs.StringSlice("arrival-rates", nil, "Arrival rates to sweep (comma separated)")
	fs.StringSlice("service-rates", nil, "Per-server service rates to sweep (comma separated)")
	fs.Float64("max-wait", search.DefaultMaxWait, "Wq must stay strictly below this value")
	fs.Int("max-servers", search.DefaultMaxServers, "Largest server count tried per pair")
	fs.Int("precision", queue.DefaultPrecision, "Significant digits kept by each calculation")
	fs.Int("workers", DefaultWorkers, "Pairs searched concurrently")
	fs.String("output", string(report.FormatText), "Output format: text, json or yaml")
	fs.Bool("detailed", false, "Include every metric of the chosen configuration")
	fs.String("log-level", string(DefaultLogLevel), "Log level: debug, info, warning or error")

	return fs
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	errFactory := errors.New()

	invalid := func(field string, value any) error {
		return errFactory.WithData(errors.ErrInvalidConfig, struct {
			Field string
			Value any
		}{
			Field: field,
			Value: value,
		})
	}

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Precision < 1 || c.Precision > maxPrecision {
		return invalid("precision", c.Precision)
	}
	if c.Workers < 1 {
		return invalid("workers", c.Workers)
	}
	if err := c.Report().Validate(); err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	if err := c.Grid().Validate(); err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	return nil
}

func (c *Config) Grid() search.Grid {
	return search.Grid{
		ArrivalRates: c.ArrivalRates,
		ServiceRates: c.ServiceRates,
		MaxWait:      c.MaxWait,
		MaxServers:   c.MaxServers,
	}
}

func (c *Config) Report() report.Config {
	return report.Config{
		Format:   report.Format(c.Output),
		Detailed: c.Detailed,
	}
}

func (c *Config) GetPrecision() int {
	return c.Precision
}

func (c *Config) GetWorkers() int {
	return c.Workers
}

func (c *Config) GetLogLevel() LogLevel {
	return LogLevel(c.LogLevel)
}
