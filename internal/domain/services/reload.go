package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

// DeckReloadService re-parses a raw-text file into the current deck whenever it changes
type DeckReloadService struct {
	watcher  ports.FileWatcher
	decks    ports.DeckService
	notifier ports.DeckNotifier
	logger   *slog.Logger
	readFile func(string) ([]byte, error)

	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	path        string
	done        chan struct{}
}

// NewDeckReloadService creates a new reload service. notifier may be nil.
func NewDeckReloadService(
	watcher ports.FileWatcher,
	decks ports.DeckService,
	notifier ports.DeckNotifier,
	logger *slog.Logger,
) *DeckReloadService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckReloadService{
		watcher:  watcher,
		decks:    decks,
		notifier: notifier,
		logger:   logger.With("service", "deck_reload"),
		readFile: os.ReadFile,
	}
}

// Start loads the file once and then follows its changes until ctx ends or Stop is called
func (s *DeckReloadService) Start(ctx context.Context, filePath string) error {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return errors.New("already watching")
	}
	s.watching = true
	s.path = filePath
	s.mu.Unlock()

	if err := s.reload(ctx); err != nil {
		s.logger.Warn("Initial deck load failed",
			slog.String("path", filePath),
			slog.String("error", err.Error()),
		)
	}

	watchCtx, cancel := context.WithCancel(ctx)

	events, err := s.watcher.Watch(watchCtx, filePath)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.watching = false
		s.mu.Unlock()
		return fmt.Errorf("starting watcher: %w", err)
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.watchCancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.handleEvents(watchCtx, events)
	}()

	return nil
}

// Stop stops following the file and waits for the event loop to exit
func (s *DeckReloadService) Stop() error {
	s.mu.Lock()
	if !s.watching {
		s.mu.Unlock()
		return nil
	}

	cancel, done := s.watchCancel, s.done
	s.watching = false
	s.watchCancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return s.watcher.Stop()
}

// IsWatching returns whether the service is currently watching
func (s *DeckReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

// handleEvents handles file change events
func (s *DeckReloadService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Info("File change detected",
				slog.String("path", event.Path),
				slog.String("type", event.Type.String()),
				slog.Time("timestamp", event.Timestamp),
			)

			if event.Type == ports.Deleted {
				continue
			}

			if err := s.reload(ctx); err != nil {
				s.logger.Error("Failed to reload deck",
					slog.String("error", err.Error()),
					slog.String("path", event.Path),
					slog.String("change_type", event.Type.String()),
				)
				s.notifyError(event, err)
			}
		}
	}
}

// reload reads the watched file and parses it into the deck store
func (s *DeckReloadService) reload(ctx context.Context) error {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return errors.New("no file path set")
	}

	data, err := s.readFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	deck, err := s.decks.ParseText(ctx, string(data), entities.SourceFile)
	if err != nil {
		return err
	}

	s.logger.Info("Deck reloaded",
		slog.String("path", path),
		slog.Int("slides", deck.SlideCount()),
	)
	return nil
}

func (s *DeckReloadService) notifyError(event ports.FileChangeEvent, cause error) {
	if s.notifier == nil {
		return
	}

	update := ports.UpdateEvent{
		Type:      ports.EventTypeError,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"file":    event.Path,
			"message": cause.Error(),
		},
	}

	if err := s.notifier.NotifyClients(update); err != nil {
		s.logger.Warn("Failed to notify WebSocket clients",
			slog.String("error", err.Error()),
			slog.String("event_type", update.Type),
		)
	}
}
