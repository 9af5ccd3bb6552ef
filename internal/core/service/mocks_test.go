package service

import (
	"context"
	"sync"

	"tehbot/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockActionClient struct {
	mock.Mock
}

func (m *MockActionClient) SwitchToTechMode(ctx context.Context, uuid string) domain.ActionResult {
	args := m.Called(ctx, uuid)
	return args.Get(0).(domain.ActionResult)
}

type mockTextSender struct {
	mu        sync.Mutex
	callCount int
	sent      []domain.OutboundMessage
	sendError error
}

func (m *mockTextSender) SendText(_ context.Context, message domain.OutboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.sent = append(m.sent, message)
	return m.sendError
}

func (m *mockTextSender) messages() []domain.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]domain.OutboundMessage(nil), m.sent...)
}

type staticResolver map[int]string

func (r staticResolver) Resolve(n int) (string, error) {
	id, ok := r[n]
	if !ok {
		return "", domain.ErrWorkstationNotFound
	}
	return id, nil
}
