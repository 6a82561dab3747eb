package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rocketshoes-cart/internal/logger"

	"github.com/google/uuid"
)

type Level string

const (
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Notifier delivers user-facing messages. Calls are fire-and-forget.
type Notifier interface {
	Warn(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct{}

func (LogNotifier) Warn(ctx context.Context, msg string) {
	logger.Warn(ctx, "Notification", slog.String("level", string(LevelWarning)), slog.String("message", msg))
}

func (LogNotifier) Error(ctx context.Context, msg string) {
	logger.Error(ctx, "Notification", slog.String("level", string(LevelError)), slog.String("message", msg))
}

// Feed keeps the most recent notifications in a bounded ring.
type Feed struct {
	mu    sync.Mutex
	items []Notification
	size  int
	now   func() time.Time
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 1
	}
	return &Feed{size: size, now: time.Now}
}

func (f *Feed) Warn(ctx context.Context, msg string)  { f.push(LevelWarning, msg) }
func (f *Feed) Error(ctx context.Context, msg string) { f.push(LevelError, msg) }

func (f *Feed) push(level Level, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, Notification{ID: uuid.NewString(), Level: level, Message: msg, Time: f.now()})
	if over := len(f.items) - f.size; over > 0 {
		f.items = append(f.items[:0:0], f.items[over:]...)
	}
}

// Recent returns notifications oldest first.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Multi fans a notification out to every notifier.
type Multi []Notifier

func (m Multi) Warn(ctx context.Context, msg string) {
	for _, n := range m {
		n.Warn(ctx, msg)
	}
}

func (m Multi) Error(ctx context.Context, msg string) {
	for _, n := range m {
		n.Error(ctx, msg)
	}
}
