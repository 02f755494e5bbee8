package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/devflow/internal/config"
	"github.com/felixgeelhaar/devflow/internal/log"
	"github.com/felixgeelhaar/devflow/internal/prompt"
	"github.com/felixgeelhaar/devflow/internal/telemetry"
	"github.com/felixgeelhaar/devflow/internal/ux"
)

// CommandContext holds the persistent flags of one invocation
type CommandContext struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Format     string
	NoColor    bool
}

// NewCommandContext extracts the persistent flags from cmd
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	logFormat, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		Format:     format,
		NoColor:    noColor,
	}, nil
}

// runtime is what every command needs: flags, the loaded config, a logger
// and the output streams
type runtime struct {
	flags      *CommandContext
	configPath string
	config     *config.Config
	paths      *ux.PathDefaults
	logger     *log.Logger
	out        io.Writer
	in         io.Reader
}

func loadRuntime(cmd *cobra.Command) (*runtime, error) {
	flags, err := NewCommandContext(cmd)
	if err != nil {
		return nil, err
	}

	path := flags.ConfigPath
	if path == "" {
		path = config.DefaultPath
		if found, err := ux.DiscoverConfigFile("config.yaml"); err == nil {
			path = found
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	// the default templates dir follows the .devflow directory in use
	paths := &ux.PathDefaults{Dir: filepath.Dir(path)}
	if cfg.Templates.Dir == config.Default().Templates.Dir {
		cfg.Templates.Dir = paths.TemplatesDir()
	}

	lc := cfg.Logger(flags.LogLevel, flags.LogFormat)
	lc.Output = cmd.ErrOrStderr()
	logger := log.New(lc)
	log.SetDefaultLogger(logger)

	if flags.NoColor {
		color.NoColor = true
	}

	logger.Debug("configuration loaded", "path", path, "command", cmd.CommandPath())

	return &runtime{
		flags:      flags,
		configPath: path,
		config:     cfg,
		paths:      paths,
		logger:     logger,
		out:        cmd.OutOrStdout(),
		in:         cmd.InOrStdin(),
	}, nil
}

// print writes data in the --format the operator asked for
func (r *runtime) print(data any) error {
	f, err := ux.NewFormatter(r.flags.Format, &ux.FormatterOptions{Writer: r.out, NoColor: r.flags.NoColor})
	if err != nil {
		return err
	}
	return f.Format(data)
}

// lineReader uses the terminal line editor when stdin is a TTY and editing
// is allowed. Otherwise lines are scanned from stdin.
func (r *runtime) lineReader(editor bool) (prompt.LineReader, func() error, error) {
	if f, ok := r.in.(*os.File); ok && editor {
		return prompt.NewReader(f, r.out)
	}
	return prompt.NewScannerReader(r.in, r.out), func() error { return nil }, nil
}

// startTelemetry installs the trace and metric providers. Failures only
// disable telemetry. The returned function flushes and shuts both down.
func (r *runtime) startTelemetry(ctx context.Context) func() {
	tc := r.config.TelemetryProvider()

	var shutdowns []func(context.Context) error

	if shutdown, err := telemetry.InitProvider(ctx, tc); err != nil {
		r.logger.WithError(err).Warn("tracing disabled")
	} else {
		shutdowns = append(shutdowns, shutdown)
	}

	if shutdown, err := telemetry.InitMetricsProvider(ctx, tc); err != nil {
		r.logger.WithError(err).Warn("metrics disabled")
	} else {
		shutdowns = append(shutdowns, shutdown)
	}

	return func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		for _, shutdown := range shutdowns {
			if err := shutdown(sctx); err != nil {
				r.logger.WithError(err).Warn("telemetry shutdown failed")
			}
		}
	}
}
