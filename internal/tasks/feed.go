package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"clipforge/internal/logging"
)

// Event names pushed over the task channel.
const (
	EventTaskAdded   = "task_added"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"
)

// Event is one frame from the push channel.
type Event struct {
	Name    string `json:"event"`
	SpaceID string `json:"space_id,omitempty"`
	Task    *Task  `json:"task,omitempty"`
	TaskID  string `json:"task_id,omitempty"`
}

// FeedOption customises Feed construction.
type FeedOption func(*Feed)

// WithDialer overrides the websocket dialer.
func WithDialer(dialer *websocket.Dialer) FeedOption {
	return func(f *Feed) { f.dialer = dialer }
}

// WithReconnectDelay overrides the pause between reconnect attempts.
func WithReconnectDelay(delay time.Duration) FeedOption {
	return func(f *Feed) {
		if delay > 0 {
			f.reconnectDelay = delay
		}
	}
}

// WithDisconnectHandler registers the one-shot notification fired on each
// disconnect. Last known state is kept visible; nothing is invalidated.
func WithDisconnectHandler(fn func(error)) FeedOption {
	return func(f *Feed) { f.onDisconnect = fn }
}

// WithChangeHandler registers a callback fired after every state change.
func WithChangeHandler(fn func([]Task)) FeedOption {
	return func(f *Feed) { f.onChange = fn }
}

// WithFeedLogger attaches a logger.
func WithFeedLogger(logger *slog.Logger) FeedOption {
	return func(f *Feed) { f.logger = logging.WithComponent(logger, "tasks.feed") }
}

// Feed mirrors the backend task list for one workspace over a persistent
// push channel. On every (re)connect one authoritative list fetch seeds the
// state; incremental events are applied on top. Events for other workspaces
// are ignored.
type Feed struct {
	svc            *Service
	socketURL      string
	spaceID        string
	dialer         *websocket.Dialer
	logger         *slog.Logger
	onDisconnect   func(error)
	onChange       func([]Task)
	reconnectDelay time.Duration

	mu    sync.Mutex
	tasks []Task
}

// NewFeed constructs a Feed scoped to one workspace.
func NewFeed(svc *Service, socketURL, spaceID string, opts ...FeedOption) *Feed {
	f := &Feed{
		svc:            svc,
		socketURL:      socketURL,
		spaceID:        spaceID,
		dialer:         websocket.DefaultDialer,
		logger:         logging.Nop(),
		reconnectDelay: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Tasks returns a snapshot of the mirrored task list.
func (f *Feed) Tasks() []Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Task(nil), f.tasks...)
}

// Run connects, seeds, and applies events until the context is cancelled.
// Each disconnect fires the disconnect handler once and is followed by a
// reconnect attempt, which re-runs the authoritative seed fetch.
func (f *Feed) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		conn, _, err := f.dialer.DialContext(ctx, f.socketURL, nil)
		if err != nil {
			f.logger.Warn("push channel dial failed", "error", err)
			if !f.sleep(ctx) {
				return nil
			}
			continue
		}

		if err := f.seed(ctx); err != nil {
			f.logger.Warn("task seed fetch failed", "error", err)
		}

		err = f.readLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		if f.onDisconnect != nil {
			f.onDisconnect(err)
		}
		if !f.sleep(ctx) {
			return nil
		}
	}
}

func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// The watcher must not outlive this connection or it piles up across
	// reconnects.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	for {
		var event Event
		if err := conn.ReadJSON(&event); err != nil {
			return err
		}
		f.Apply(event)
	}
}

func (f *Feed) seed(ctx context.Context) error {
	list, err := f.svc.List(ctx, f.spaceID)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.tasks = list
	f.mu.Unlock()
	f.notify()
	return nil
}

// Apply reconciles one push event into the mirrored list.
func (f *Feed) Apply(event Event) {
	f.mu.Lock()
	changed := false
	switch event.Name {
	case EventTaskAdded:
		if event.Task != nil && event.SpaceID == f.spaceID {
			f.tasks = append(f.tasks, *event.Task)
			changed = true
		}
	case EventTaskUpdated:
		if event.Task != nil {
			for i := range f.tasks {
				if f.tasks[i].ID == event.Task.ID {
					f.tasks[i] = *event.Task
					changed = true
					break
				}
			}
		}
	case EventTaskDeleted:
		kept := f.tasks[:0]
		for _, task := range f.tasks {
			if task.ID != event.TaskID {
				kept = append(kept, task)
			}
		}
		changed = len(kept) != len(f.tasks)
		f.tasks = kept
	default:
		f.logger.Debug("unknown push event ignored", "event", event.Name)
	}
	f.mu.Unlock()
	if changed {
		f.notify()
	}
}

func (f *Feed) notify() {
	if f.onChange != nil {
		f.onChange(f.Tasks())
	}
}

func (f *Feed) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(f.reconnectDelay):
		return true
	}
}
