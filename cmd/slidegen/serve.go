package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	httpadapter "github.com/fredcamaral/slidegen/internal/adapters/primary/http"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/browser"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/export"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/extract"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
	"github.com/fredcamaral/slidegen/internal/domain/services"
)

// serveOptions holds serve flags that are not part of the configuration
type serveOptions struct {
	watchFile string
	open      bool
}

// serveStack is everything serve starts, in stop order
type serveStack struct {
	server  *httpadapter.Server
	reload  *services.DeckReloadService
	config  *entities.Config
	logger  *slog.Logger
	browser ports.BrowserLauncher
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the deck API, live viewer and websocket server",
		Long: `Start the HTTP server exposing the chat, generate, parse, export and extract
endpoints, the live deck viewer at / and deck updates over /ws.

With --watch the given raw-text file is parsed into the current deck and
re-parsed whenever it changes; connected viewers reload automatically.

Example:
  slidegen serve
  slidegen serve --port 8080 --open
  slidegen serve --watch deck.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, configDir(opts.watchFile))
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			stack, err := startServing(ctx, a, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("Serving decks at"), stack.url())
			if opts.watchFile != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes\n", opts.watchFile)
			}

			<-ctx.Done()
			a.logger.Info("shutting down")

			return stack.stop()
		},
	}

	cmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	cmd.Flags().String("host", "", "Host to bind to (overrides config)")
	cmd.Flags().String("prompts", "", "Prompt catalog YAML file (overrides config)")
	cmd.Flags().String("provider", "", "Generator provider: anthropic, openai, mock (overrides config)")
	cmd.Flags().String("model", "", "Model name (overrides config)")
	cmd.Flags().StringVarP(&opts.watchFile, "watch", "w", "", "Raw-text deck file to load and reload on change")
	cmd.Flags().BoolVar(&opts.open, "open", false, "Open the viewer in a browser once the server is up")

	return cmd
}

// startServing wires the deck service, HTTP server and optional file reload, then starts them
func startServing(ctx context.Context, a *app, opts serveOptions) (*serveStack, error) {
	gen, err := a.newGenerator()
	if err != nil {
		// parsing, export and extraction still work without a generator
		a.logger.Warn("text generation disabled", slog.String("error", err.Error()))
	}

	decks := a.newDeckService(gen)

	// the server exports the same deck repeatedly, so renders are cached per deck ID
	exporter := export.NewCachingExporter(a.newExporter(), export.NewRenderCache(0, 0))

	server := httpadapter.NewServerWithLogging(decks, exporter, &a.cfg.Server, &a.cfg.Logging)
	server.SetExtractor(extract.NewPPTXExtractor())
	server.SetPromptCatalog(a.newPromptCatalog())
	decks.SetNotifier(server)

	if err := server.Start(ctx, a.cfg.Server.Port, a.cfg.Server.Host); err != nil {
		return nil, fmt.Errorf("starting server: %w", err)
	}

	stack := &serveStack{
		server:  server,
		config:  a.cfg,
		logger:  a.logger,
		browser: browser.NewLauncher(),
	}

	if opts.watchFile != "" {
		stack.reload = services.NewDeckReloadService(
			watcher.NewFromConfig(a.cfg.Watcher, a.logger),
			decks,
			server,
			a.logger,
		)
		if err := stack.reload.Start(ctx, opts.watchFile); err != nil {
			_ = stack.stop()
			return nil, fmt.Errorf("watching %s: %w", opts.watchFile, err)
		}
	}

	if opts.open {
		if err := stack.browser.Open(ctx, stack.url()); err != nil {
			a.logger.Warn("could not open browser", slog.String("error", err.Error()))
		}
	}

	return stack, nil
}

// url is the viewer address
func (s *serveStack) url() string {
	return "http://" + s.server.Addr()
}

// stop halts the reload loop before the server so no event targets a closed hub
func (s *serveStack) stop() error {
	if s.reload != nil {
		if err := s.reload.Stop(); err != nil {
			s.logger.Warn("stopping file watcher", slog.String("error", err.Error()))
		}
	}

	if !s.server.IsRunning() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.GetShutdownTimeout())
	defer cancel()
	return s.server.Stop(ctx)
}
