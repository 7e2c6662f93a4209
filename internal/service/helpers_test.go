package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu     sync.Mutex
	topics []string
}

func (n *recordingNotifier) Notify(_ context.Context, topics ...string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.topics = append(n.topics, topics...)
	return nil
}

func (n *recordingNotifier) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.topics...)
}

type recordingPublisher struct {
	events []domain.ReadingEvent
	err    error
}

func (p *recordingPublisher) PublishReading(_ context.Context, e domain.ReadingEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func getTestLogger() *zap.Logger {
	return zap.NewNop()
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func floatPtr(f float64) *float64 { return &f }

// createTestUser stores a user directly and returns it as an Actor.
func createTestUser(t *testing.T, repo repository.UsersRepository, name, email string, role domain.Role) Actor {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), &domain.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: []byte("x"),
	})
	require.NoError(t, err)
	return Actor{UserID: id, Role: role, Name: name}
}
