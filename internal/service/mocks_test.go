package service

import (
	"context"

	"github.com/Rrens/routine-advisor/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockProvider mocks the llm.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return m.Called().String(0)
}

func (m *MockProvider) AvailableModels() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockProvider) DefaultModel() string {
	return m.Called().String(0)
}

func (m *MockProvider) IsConfigured() bool {
	return m.Called().Bool(0)
}

func (m *MockProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

// MockReplyCache mocks the ReplyCache interface
type MockReplyCache struct {
	mock.Mock
}

func (m *MockReplyCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockReplyCache) Set(ctx context.Context, key, reply string) error {
	args := m.Called(ctx, key, reply)
	return args.Error(0)
}
