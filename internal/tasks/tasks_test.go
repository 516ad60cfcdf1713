package tasks_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipforge/internal/api"
	"clipforge/internal/logging"
	"clipforge/internal/tasks"
)

type memoryTokens struct{ token string }

func (m *memoryTokens) Token() string               { return m.token }
func (m *memoryTokens) SetToken(token string) error { m.token = token; return nil }
func (m *memoryTokens) Clear() error                { m.token = ""; return nil }

func TestFlagsDerivedStates(t *testing.T) {
	cases := []struct {
		name      string
		flags     tasks.Flags
		completed bool
		halted    bool
		progress  tasks.Quarters
	}{
		{
			name:     "fresh task",
			flags:    tasks.Flags{},
			progress: 1,
		},
		{
			name:      "all done",
			flags:     tasks.Flags{Uploaded: 1, Transcribed: 1, Stage1: 1, Stage2: 1, Stage3: 1},
			completed: true,
			progress:  4,
		},
		{
			name:     "halted late with earlier stages done",
			flags:    tasks.Flags{Uploaded: 1, Transcribed: 1, Stage1: 1, Stage2: 0, Stage3: -1},
			halted:   true,
			progress: 3,
		},
		{
			name:     "halted early",
			flags:    tasks.Flags{Uploaded: -1},
			halted:   true,
			progress: 1,
		},
		{
			name:     "stage2 done fills the bar regardless of stage3",
			flags:    tasks.Flags{Uploaded: 1, Transcribed: 1, Stage1: 1, Stage2: 1, Stage3: 0},
			progress: 4,
		},
		{
			name:     "transcribed only",
			flags:    tasks.Flags{Uploaded: 1, Transcribed: 1},
			progress: 2,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.flags.Completed(); got != tc.completed {
				t.Errorf("Completed = %v, want %v", got, tc.completed)
			}
			if got := tc.flags.Halted(); got != tc.halted {
				t.Errorf("Halted = %v, want %v", got, tc.halted)
			}
			if got := tc.flags.Progress(); got != tc.progress {
				t.Errorf("Progress = %d, want %d", got, tc.progress)
			}
		})
	}
}

func TestTaskDecoding(t *testing.T) {
	payload := `{"task_id":"t1","title":"clip.mp4","flags":{"uploaded":1,"transcribed":1,"stage1":1,"stage2":0,"stage3":-1}}`
	var task tasks.Task
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.ID != "t1" || task.Flags.Stage3 != tasks.FlagHalted {
		t.Fatalf("task = %+v", task)
	}
	if !task.Flags.Halted() || task.Flags.Completed() {
		t.Error("derived states wrong for mixed flags")
	}
}

func TestServiceEndpoints(t *testing.T) {
	var gotPaths []string
	var abortQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/fetch_tasks":
			if r.URL.Query().Get("space_id") != "space-a" {
				t.Errorf("space_id = %q", r.URL.Query().Get("space_id"))
			}
			io.WriteString(w, `{"tasks":[{"task_id":"t1","title":"clip"}]}`)
		case "/task_abort":
			abortQuery = r.URL.Query().Get("task_id")
			io.WriteString(w, `{}`)
		default:
			io.WriteString(w, `{}`)
		}
	}))
	defer server.Close()

	client := api.New(server.URL, &memoryTokens{token: "tok"}, api.WithLogger(logging.Nop()))
	svc := tasks.NewService(client, logging.Nop())

	list, err := svc.List(context.Background(), "space-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != "t1" {
		t.Fatalf("list = %+v", list)
	}

	if err := svc.Restart(context.Background(), "t1"); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if err := svc.Abort(context.Background(), "t1"); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if abortQuery != "t1" {
		t.Errorf("abort task_id = %q", abortQuery)
	}

	want := []string{"GET /fetch_tasks", "POST /task_restart", "DELETE /task_abort"}
	if len(gotPaths) != len(want) {
		t.Fatalf("paths = %v", gotPaths)
	}
	for i := range want {
		if gotPaths[i] != want[i] {
			t.Errorf("path[%d] = %q, want %q", i, gotPaths[i], want[i])
		}
	}
}
