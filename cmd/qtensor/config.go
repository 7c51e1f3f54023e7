package main

import (
	"context"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theapemachine/qtensor"
)

const (
	defaultLogLevel  = "info"
	defaultLogOutput = "stderr"
	defaultBackend   = backendGroup
	defaultChunk     = qtensor.DefaultMinChunk

	backendSerial = "serial"
	backendGroup  = "group"
	backendPool   = "pool"
)

var backends = []string{backendSerial, backendGroup, backendPool}

// Config holds the command configuration
type Config struct {
	Log  LogConfig  `mapstructure:"log"`
	Exec ExecConfig `mapstructure:"exec"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// ExecConfig selects the executor backend
type ExecConfig struct {
	Backend string `mapstructure:"backend"`
	Workers int    `mapstructure:"workers"`
	Chunk   int    `mapstructure:"chunk"`
}

func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")
	flags.StringP("exec.backend", "b", defaultBackend, "executor backend ("+strings.Join(backends, ", ")+")")
	flags.IntP("exec.workers", "w", 0, "parallel workers, 0 means GOMAXPROCS")
	flags.Int("exec.chunk", defaultChunk, "smallest span of elements handed to one worker")
}

// loadConfig merges defaults, QTENSOR_* environment variables and flags.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)
	v.SetDefault("exec.backend", defaultBackend)
	v.SetDefault("exec.workers", 0)
	v.SetDefault("exec.chunk", defaultChunk)

	v.SetEnvPrefix("QTENSOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "binding flags")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	return cfg, validateConfig(cfg)
}

func validateConfig(cfg *Config) error {
	valid := false
	for _, b := range backends {
		if cfg.Exec.Backend == b {
			valid = true
			break
		}
	}
	if !valid {
		return errors.Errorf("invalid executor backend %q, available: %v", cfg.Exec.Backend, backends)
	}
	if cfg.Exec.Workers < 0 {
		return errors.Errorf("invalid worker count %d", cfg.Exec.Workers)
	}
	if cfg.Exec.Chunk <= 0 {
		return errors.Errorf("invalid chunk size %d", cfg.Exec.Chunk)
	}
	return nil
}

/*
newExecutor builds the configured backend. The returned release function
shuts down whatever the backend started and must always be called.
*/
func newExecutor(ctx context.Context, cfg ExecConfig) (qtensor.Executor, func(), error) {
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	switch cfg.Backend {
	case backendSerial:
		return qtensor.SerialExecutor{}, func() {}, nil
	case backendGroup:
		return qtensor.NewGroupExecutor(workers, cfg.Chunk), func() {}, nil
	case backendPool:
		q := qtensor.NewQ(ctx, workers, workers*2, qtensor.NewConfig())
		return qtensor.NewPoolExecutor(q, workers, cfg.Chunk), q.Close, nil
	default:
		return nil, nil, errors.Errorf("invalid executor backend %q", cfg.Backend)
	}
}
