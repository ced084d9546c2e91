package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

// DeckService turns conversations and raw text into the current deck
type DeckService struct {
	generator ports.TextGenerator
	parser    ports.SlideParser
	store     ports.DeckStore
	notifier  ports.DeckNotifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewDeckService creates a new deck service. notifier may be nil.
func NewDeckService(
	generator ports.TextGenerator,
	parser ports.SlideParser,
	store ports.DeckStore,
	notifier ports.DeckNotifier,
	logger *slog.Logger,
) *DeckService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckService{
		generator: generator,
		parser:    parser,
		store:     store,
		notifier:  notifier,
		logger:    logger.With("service", "deck"),
		now:       time.Now,
	}
}

// SetNotifier attaches the client notifier once the server exists
func (s *DeckService) SetNotifier(notifier ports.DeckNotifier) {
	s.notifier = notifier
}

// Chat forwards the conversation upstream and returns the raw text
func (s *DeckService) Chat(ctx context.Context, messages entities.Conversation) (string, error) {
	if err := messages.Validate(); err != nil {
		return "", fmt.Errorf("%w: %s", entities.ErrInvalidRequest, err.Error())
	}

	if s.generator == nil {
		return "", &entities.GenerationError{Kind: entities.GenerationUnavailable, Message: "no text generator configured"}
	}

	text, err := s.generator.Generate(ctx, SystemInstruction, messages.Normalize())
	if err != nil {
		s.logger.Error("Text generation failed",
			slog.String("provider", s.generator.Name()),
			slog.String("error", err.Error()),
		)
		return "", err
	}

	return text, nil
}

// Generate sanitizes the latest prompt, generates slide text and stores the parsed deck
func (s *DeckService) Generate(ctx context.Context, messages entities.Conversation) (*entities.Deck, error) {
	if err := messages.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrInvalidRequest, err.Error())
	}

	msgs := messages.Normalize()
	last := len(msgs) - 1
	prompt := msgs[last].Content

	sanitized := SanitizePrompt(prompt)
	if sanitized == "" {
		return nil, fmt.Errorf("%w: prompt is empty after removing slide markers", entities.ErrInvalidRequest)
	}
	msgs[last].Content = sanitized

	start := s.now()
	text, err := s.Chat(ctx, msgs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Slide text generated",
		slog.String("provider", s.generator.Name()),
		slog.Int("text_length", len(text)),
		slog.Duration("duration", s.now().Sub(start)),
	)

	deck, err := s.build(text, entities.SourceGenerated)
	if err != nil {
		return nil, err
	}
	deck.Prompt = strings.TrimSpace(prompt)

	if err := s.publish(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

// ParseText parses already generated text into the current deck
func (s *DeckService) ParseText(ctx context.Context, text string, source entities.DeckSource) (*entities.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if source == "" {
		source = entities.SourceText
	}

	deck, err := s.build(text, source)
	if err != nil {
		return nil, err
	}

	if err := s.publish(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

// Current returns the current deck
func (s *DeckService) Current(ctx context.Context) (*entities.Deck, error) {
	return s.store.Current(ctx)
}

// build parses text into a new deck without storing it
func (s *DeckService) build(text string, source entities.DeckSource) (*entities.Deck, error) {
	slides, err := s.parser.Parse(text)
	if err != nil {
		s.logger.Warn("Slide text could not be parsed",
			slog.String("source", string(source)),
			slog.Int("input_length", len(text)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("parsing slide text: %w", err)
	}

	deck := &entities.Deck{
		ID:          uuid.NewString(),
		Source:      source,
		RawText:     text,
		GeneratedAt: s.now(),
		Slides:      slides,
	}

	if err := deck.Validate(); err != nil {
		return nil, fmt.Errorf("building deck: %w", err)
	}
	return deck, nil
}

// publish replaces the stored deck and tells connected clients
func (s *DeckService) publish(ctx context.Context, deck *entities.Deck) error {
	if err := s.store.Replace(ctx, deck); err != nil {
		return fmt.Errorf("storing deck: %w", err)
	}

	s.logger.Info("Deck replaced",
		slog.String("deck_id", deck.ID),
		slog.String("source", string(deck.Source)),
		slog.Int("slides", deck.SlideCount()),
	)

	if s.notifier == nil {
		return nil
	}

	event := ports.UpdateEvent{
		Type:      ports.EventTypeDeckReplaced,
		Timestamp: deck.GeneratedAt,
		Data: map[string]interface{}{
			"id":         deck.ID,
			"title":      deck.Title(),
			"slideCount": deck.SlideCount(),
			"source":     string(deck.Source),
		},
	}

	if err := s.notifier.NotifyClients(event); err != nil {
		s.logger.Warn("Failed to notify WebSocket clients",
			slog.String("error", err.Error()),
			slog.String("event_type", event.Type),
		)
	}
	return nil
}

// Ensure DeckService implements ports.DeckService
var _ ports.DeckService = (*DeckService)(nil)
