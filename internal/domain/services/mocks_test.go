package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, system string, messages []entities.Message) (string, error) {
	args := m.Called(ctx, system, messages)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) Name() string {
	return "mock"
}

type MockSlideParser struct {
	mock.Mock
}

func (m *MockSlideParser) Parse(raw string) ([]entities.Slide, error) {
	args := m.Called(raw)
	if s := args.Get(0); s != nil {
		return s.([]entities.Slide), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDeckStore struct {
	mock.Mock
}

func (m *MockDeckStore) Current(ctx context.Context) (*entities.Deck, error) {
	args := m.Called(ctx)
	if d := args.Get(0); d != nil {
		return d.(*entities.Deck), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeckStore) Replace(ctx context.Context, deck *entities.Deck) error {
	args := m.Called(ctx, deck)
	return args.Error(0)
}

type MockDeckNotifier struct {
	mock.Mock
}

func (m *MockDeckNotifier) NotifyClients(event ports.UpdateEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

type MockFileWatcher struct {
	mock.Mock
}

func (m *MockFileWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	args := m.Called(ctx, path)
	if ch := args.Get(0); ch != nil {
		return ch.(<-chan ports.FileChangeEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFileWatcher) Stop() error {
	args := m.Called()
	return args.Error(0)
}

type MockDeckService struct {
	mock.Mock
}

func (m *MockDeckService) Chat(ctx context.Context, messages entities.Conversation) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func (m *MockDeckService) Generate(ctx context.Context, messages entities.Conversation) (*entities.Deck, error) {
	args := m.Called(ctx, messages)
	if d := args.Get(0); d != nil {
		return d.(*entities.Deck), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeckService) ParseText(ctx context.Context, text string, source entities.DeckSource) (*entities.Deck, error) {
	args := m.Called(ctx, text, source)
	if d := args.Get(0); d != nil {
		return d.(*entities.Deck), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeckService) Current(ctx context.Context) (*entities.Deck, error) {
	args := m.Called(ctx)
	if d := args.Get(0); d != nil {
		return d.(*entities.Deck), args.Error(1)
	}
	return nil, args.Error(1)
}
