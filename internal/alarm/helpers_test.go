package alarm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"
)

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeMQTT struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakeMQTT) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{topic: topic, qos: qos, retained: retained, payload: payload})
	return nil
}

func (f *fakeMQTT) QoS() byte { return 1 }

func (f *fakeMQTT) sent() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []*domain.AlertEvent
	fail   bool
}

func (n *fakeNotifier) NotifyAlert(_ context.Context, e *domain.AlertEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("webhook down")
	}
	n.events = append(n.events, e)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func floatPtr(f float64) *float64 { return &f }

func readingEvent(id, bp string, hr int, temp *float64) domain.ReadingEvent {
	return domain.ReadingEvent{
		ReadingID:     id,
		UserID:        "patient-1",
		BloodPressure: bp,
		HeartRate:     hr,
		Temperature:   temp,
		TakenAt:       time.Date(2026, 3, 4, 7, 30, 0, 0, time.UTC),
	}
}
