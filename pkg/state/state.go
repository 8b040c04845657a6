// Package state holds the UI-facing application state: user notifications
// and per-operation loading and error flags. One State is created at
// startup and passed to the components that need it.
package state

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mchmarny/blogadmin/pkg/api"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a message shown to the user until dismissed.
type Notification struct {
	ID      string
	Level   Level
	Title   string
	Message string
	Created time.Time
}

// State is safe for concurrent use.
type State struct {
	mu            sync.RWMutex
	notifications map[string]Notification
	loading       map[string]int
	errs          map[string]error
	now           func() time.Time
}

// New returns an empty state.
func New() *State {
	s := &State{now: time.Now}
	s.Reset()
	return s
}

// Reset clears everything.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make(map[string]Notification)
	s.loading = make(map[string]int)
	s.errs = make(map[string]error)
}

// Notify records a notification and returns its id.
func (s *State) Notify(level Level, title, msg string) string {
	n := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Title:   title,
		Message: msg,
		Created: s.now(),
	}

	s.mu.Lock()
	s.notifications[n.ID] = n
	s.mu.Unlock()

	slog.Debug("notification", "level", level, "title", title, "message", msg)

	return n.ID
}

// Dismiss removes notification id. Unknown ids are ignored.
func (s *State) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notifications, id)
}

// Notifications returns the pending notifications, oldest first.
func (s *State) Notifications() []Notification {
	s.mu.RLock()
	out := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, n)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// ClearNotifications dismisses all notifications.
func (s *State) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make(map[string]Notification)
}

// Track runs fn with key marked as loading. The error fn returns is
// recorded under key (a nil error clears the previous one) and returned.
// Overlapping calls for the same key keep it loading until the last ends.
func (s *State) Track(key string, fn func() error) error {
	s.mu.Lock()
	s.loading[key]++
	s.mu.Unlock()

	err := fn()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading[key]--
	if s.loading[key] <= 0 {
		delete(s.loading, key)
	}
	if err != nil {
		s.errs[key] = err
	} else {
		delete(s.errs, key)
	}

	return err
}

// Loading reports whether an operation for key is running.
func (s *State) Loading(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[key] > 0
}

// Err returns the error of the last operation for key.
func (s *State) Err(key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs[key]
}

// NotifyError records err as an error notification with a display message.
func (s *State) NotifyError(title string, err error) string {
	return s.Notify(LevelError, title, api.Message(err))
}
