package tasks

import (
	"context"
	"log/slog"
	"net/url"

	"clipforge/internal/api"
	"clipforge/internal/logging"
)

// Flag is the state of one processing stage.
type Flag int

const (
	FlagHalted  Flag = -1
	FlagRunning Flag = 0
	FlagDone    Flag = 1
)

// Flags tracks every backend processing stage of one task.
type Flags struct {
	Uploaded    Flag `json:"uploaded"`
	Transcribed Flag `json:"transcribed"`
	Stage1      Flag `json:"stage1"`
	Stage2      Flag `json:"stage2"`
	Stage3      Flag `json:"stage3"`
}

// StageNames lists the stages in pipeline order.
var StageNames = []string{"uploaded", "transcribed", "stage1", "stage2", "stage3"}

func (f Flags) list() [5]Flag {
	return [5]Flag{f.Uploaded, f.Transcribed, f.Stage1, f.Stage2, f.Stage3}
}

// Get returns the flag for a stage name, defaulting to running for unknown
// names.
func (f Flags) Get(stage string) Flag {
	switch stage {
	case "uploaded":
		return f.Uploaded
	case "transcribed":
		return f.Transcribed
	case "stage1":
		return f.Stage1
	case "stage2":
		return f.Stage2
	case "stage3":
		return f.Stage3
	default:
		return FlagRunning
	}
}

// Completed reports whether every stage finished.
func (f Flags) Completed() bool {
	for _, flag := range f.list() {
		if flag != FlagDone {
			return false
		}
	}
	return true
}

// Halted reports whether any stage stopped with an error.
func (f Flags) Halted() bool {
	for _, flag := range f.list() {
		if flag == FlagHalted {
			return true
		}
	}
	return false
}

// Quarters is the display width of the task progress bar in quarters.
type Quarters int

// Progress maps the flags to a progress-bar width keyed to the furthest
// completed stage, not a count: stage2 done fills the bar regardless of the
// other flags.
func (f Flags) Progress() Quarters {
	switch {
	case f.Stage2 == FlagDone:
		return 4
	case f.Stage1 == FlagDone:
		return 3
	case f.Transcribed == FlagDone:
		return 2
	default:
		return 1
	}
}

// Task is one asynchronous processing pipeline run, driven entirely by
// backend push events; the client never infers completion on its own.
type Task struct {
	ID    string `json:"task_id"`
	Title string `json:"title"`
	Flags Flags  `json:"flags"`
}

// Service exposes the REST surface for tasks.
type Service struct {
	client *api.Client
	logger *slog.Logger
}

// NewService constructs a task service over the shared API client.
func NewService(client *api.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logging.WithComponent(logger, "tasks")}
}

// List returns the authoritative task list for a workspace.
func (s *Service) List(ctx context.Context, spaceID string) ([]Task, error) {
	var payload struct {
		Tasks []Task `json:"tasks"`
	}
	if err := s.client.GetJSON(ctx, "/fetch_tasks", url.Values{"space_id": {spaceID}}, &payload); err != nil {
		return nil, err
	}
	return payload.Tasks, nil
}

// Restart re-drives the halted stage of a task.
func (s *Service) Restart(ctx context.Context, taskID string) error {
	return s.client.PostJSON(ctx, "/task_restart", map[string]string{"task_id": taskID}, nil)
}

// Abort terminally removes a task. Valid for halted and completed tasks.
func (s *Service) Abort(ctx context.Context, taskID string) error {
	return s.client.Delete(ctx, "/task_abort", url.Values{"task_id": {taskID}})
}
