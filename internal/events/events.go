// Package events carries notifications from the trackers to whoever renders
// them: toasts, sounds, metrics or logs.
package events

import (
	"log/slog"
	"sync"
	"time"
)

// Type identifies an event.
type Type string

const (
	AchievementUnlocked Type = "achievement_unlocked"
	StreakExtended      Type = "streak_extended"
	StreakBroken        Type = "streak_broken"
)

// Event is one notification. Only the fields relevant to Type are set.
type Event struct {
	Type          Type      `json:"type"`
	AchievementID string    `json:"achievement_id,omitempty"`
	Name          string    `json:"name,omitempty"`
	Streak        int       `json:"streak"`
	At            time.Time `json:"at"`
}

// Emitter receives events. Implementations must not block.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event)

func (f EmitterFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Emitter = EmitterFunc(func(Event) {})

// Bus fans an event out to every subscriber in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers []func(Event)
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every subsequent event.
func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Emit delivers e synchronously to all subscribers.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// LogEvent writes e to the default logger.
func LogEvent(e Event) {
	switch e.Type {
	case AchievementUnlocked:
		slog.Info("achievement unlocked", "id", e.AchievementID, "name", e.Name)
	case StreakBroken:
		slog.Info("streak broken", "previous_streak", e.Streak)
	case StreakExtended:
		slog.Debug("streak extended", "streak", e.Streak)
	}
}
