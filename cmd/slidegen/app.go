package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidegen/internal/adapters/secondary/config"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/export"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/generator"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/store"
	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
	"github.com/fredcamaral/slidegen/internal/domain/services"
)

// stringFlags are forwarded to the config merger when set on the command line
var stringFlags = []string{"config", "host", "prompts", "provider", "model", "output-dir", "log-level"}

// app carries the resolved configuration and logger for one command run
type app struct {
	cfg     *entities.Config
	logger  *slog.Logger
	logFile *os.File
}

// loadApp resolves configuration for dir: defaults, global file, dir/slidegen.toml, --config, env, flags
func loadApp(cmd *cobra.Command, dir string) (*app, error) {
	flags, err := collectFlags(cmd)
	if err != nil {
		return nil, err
	}

	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	configService := services.NewConfigService(config.NewTOMLLoader(), config.NewConfigMerger())
	cfg, err := configService.LoadConfig(cmd.Context(), dir, flags)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	a := &app{cfg: cfg}
	if err := a.setupLogger(cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	return a, nil
}

// configDir picks the directory whose slidegen.toml applies to path
func configDir(path string) string {
	if path == "" || path == "-" {
		return "."
	}
	return filepath.Dir(path)
}

// collectFlags gathers the flags the user actually set
func collectFlags(cmd *cobra.Command) (map[string]interface{}, error) {
	flags := make(map[string]interface{})
	fs := cmd.Flags()

	for _, name := range stringFlags {
		if f := fs.Lookup(name); f != nil && f.Changed {
			flags[name] = f.Value.String()
		}
	}

	if f := fs.Lookup("format"); f != nil && f.Changed {
		format, err := export.ParseFormat(f.Value.String())
		if err != nil {
			return nil, err
		}
		flags["format"] = string(format)
	}

	if f := fs.Lookup("port"); f != nil && f.Changed {
		port, err := fs.GetInt("port")
		if err != nil {
			return nil, err
		}
		flags["port"] = port
	}

	if f := fs.Lookup("verbose"); f != nil && f.Changed {
		verbose, err := fs.GetBool("verbose")
		if err != nil {
			return nil, err
		}
		flags["verbose"] = verbose
	}

	return flags, nil
}

// setupLogger builds the slog logger described by the logging section
func (a *app) setupLogger(stderr io.Writer) error {
	out := stderr
	if a.cfg.Logging.File != "" {
		f, err := os.OpenFile(a.cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 - path comes from configuration
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.logFile = f
		out = f
	}

	opts := &slog.HandlerOptions{Level: slogLevel(a.cfg.Logging.GetLevel())}

	var handler slog.Handler
	if a.cfg.Logging.JSONFormat {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	a.logger = slog.New(handler)
	return nil
}

// close releases the log file, if any
func (a *app) close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func slogLevel(level entities.LogLevel) slog.Level {
	switch level {
	case entities.LogLevelDebug:
		return slog.LevelDebug
	case entities.LogLevelWarn:
		return slog.LevelWarn
	case entities.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newParser returns the slide parser with the default palette
func (a *app) newParser() *parser.Parser {
	return parser.New(entities.DefaultPalette())
}

// newGenerator builds the configured text generator
func (a *app) newGenerator() (ports.TextGenerator, error) {
	gen, err := generator.New(a.cfg.Generator, a.logger)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	return gen, nil
}

// newDeckService wires the deck service. gen may be nil when only parsing is needed.
func (a *app) newDeckService(gen ports.TextGenerator) *services.DeckService {
	return services.NewDeckService(gen, a.newParser(), store.NewMemoryStore(), nil, a.logger)
}

// newExporter returns the export service stamped with the configured author and company
func (a *app) newExporter() *export.Service {
	return export.NewService(export.Options{
		Author:  a.cfg.Export.Author,
		Company: a.cfg.Export.Company,
	})
}

// newPromptCatalog returns the catalog from the configured prompts file
func (a *app) newPromptCatalog() *config.YAMLPromptCatalog {
	return config.NewYAMLPromptCatalog(a.cfg.Server.PromptsFile)
}

// exportFormat resolves the --format flag, falling back to the configured default
func (a *app) exportFormat() (export.ExportFormat, error) {
	return export.ParseFormat(a.cfg.Export.GetDefaultFormat())
}
