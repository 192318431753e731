package events

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kindralabs/khub/internal/models"
)

func TestFilter_Matches(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		event  *models.Event
		want   bool
	}{
		{
			name:   "empty filter matches any event",
			filter: Filter{},
			event:  &models.Event{Type: models.EventTypeHubOpenRequested, Tab: models.TabCommunity},
			want:   true,
		},
		{
			name:   "nil event returns false",
			filter: Filter{},
			event:  nil,
			want:   false,
		},
		{
			name: "event type filter matches",
			filter: Filter{
				EventTypes: []models.EventType{models.EventTypeHubOpenRequested},
			},
			event: &models.Event{Type: models.EventTypeHubOpenRequested},
			want:  true,
		},
		{
			name: "event type filter rejects non-matching",
			filter: Filter{
				EventTypes: []models.EventType{models.EventTypeHubOpenRequested},
			},
			event: &models.Event{Type: models.EventTypeUnreadChanged},
			want:  false,
		},
		{
			name: "multiple event types - matches any",
			filter: Filter{
				EventTypes: []models.EventType{
					models.EventTypeHubOpenRequested,
					models.EventTypeHubStateChanged,
				},
			},
			event: &models.Event{Type: models.EventTypeHubStateChanged},
			want:  true,
		},
		{
			name:   "tab filter matches",
			filter: Filter{Tab: models.TabCommunity},
			event:  &models.Event{Type: models.EventTypeUnreadChanged, Tab: models.TabCommunity},
			want:   true,
		},
		{
			name:   "tab filter rejects other surface",
			filter: Filter{Tab: models.TabCommunity},
			event:  &models.Event{Type: models.EventTypeUnreadChanged, Tab: models.TabActivity},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.event); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPublishDeliversToMatchingSubscribers(t *testing.T) {
	pub := NewInMemoryPublisher()

	var openCount, anyCount atomic.Int64
	err := pub.Subscribe("open-only", Filter{
		EventTypes: []models.EventType{models.EventTypeHubOpenRequested},
	}, func(*models.Event) { openCount.Add(1) })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := pub.Subscribe("all", Filter{}, func(*models.Event) { anyCount.Add(1) }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pub.Publish(&models.Event{Type: models.EventTypeHubOpenRequested, Tab: models.TabCommunity})
	pub.Publish(&models.Event{Type: models.EventTypeUnreadChanged})

	if openCount.Load() != 1 {
		t.Errorf("open-only handler called %d times, want 1", openCount.Load())
	}
	if anyCount.Load() != 2 {
		t.Errorf("all handler called %d times, want 2", anyCount.Load())
	}
}

func TestSubscribeValidation(t *testing.T) {
	pub := NewInMemoryPublisher()

	if err := pub.Subscribe("", Filter{}, func(*models.Event) {}); err != ErrInvalidSubscriptionID {
		t.Errorf("empty id: got %v, want ErrInvalidSubscriptionID", err)
	}
	if err := pub.Subscribe("x", Filter{}, nil); err != ErrNilHandler {
		t.Errorf("nil handler: got %v, want ErrNilHandler", err)
	}
	if err := pub.Subscribe("x", Filter{}, func(*models.Event) {}); err != nil {
		t.Errorf("first subscribe: %v", err)
	}
	if err := pub.Subscribe("x", Filter{}, func(*models.Event) {}); err != ErrSubscriptionExists {
		t.Errorf("duplicate id: got %v, want ErrSubscriptionExists", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	pub := NewInMemoryPublisher()

	if err := pub.Unsubscribe("missing"); err != ErrSubscriptionNotFound {
		t.Errorf("missing: got %v, want ErrSubscriptionNotFound", err)
	}

	called := false
	_ = pub.Subscribe("x", Filter{}, func(*models.Event) { called = true })
	if err := pub.Unsubscribe("x"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	pub.Publish(&models.Event{Type: models.EventTypeHubStateChanged})
	if called {
		t.Error("handler called after unsubscribe")
	}
	if pub.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", pub.SubscriberCount())
	}
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	pub := NewInMemoryPublisher()
	var delivered atomic.Int64
	_ = pub.Subscribe("counter", Filter{}, func(*models.Event) { delivered.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				pub.Publish(&models.Event{Type: models.EventTypeCycleCompleted})
			}
		}()
	}
	wg.Wait()

	if delivered.Load() != 800 {
		t.Errorf("delivered %d events, want 800", delivered.Load())
	}
}
