package spaces_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipforge/internal/api"
	"clipforge/internal/logging"
	"clipforge/internal/spaces"
)

type memoryTokens struct{ token string }

func (m *memoryTokens) Token() string               { return m.token }
func (m *memoryTokens) SetToken(token string) error { m.token = token; return nil }
func (m *memoryTokens) Clear() error                { m.token = ""; return nil }

func TestListQueriesByUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get_spaces" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("user_id") != "u1" {
			t.Errorf("user_id = %q", r.URL.Query().Get("user_id"))
		}
		io.WriteString(w, `{"spaces":[{"space_id":"s1","name":"Personal","color":"#a1b2c3"}]}`)
	}))
	defer server.Close()

	client := api.New(server.URL, &memoryTokens{token: "tok"}, api.WithLogger(logging.Nop()))
	svc := spaces.NewService(client, logging.Nop())

	list, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != "s1" || list[0].Color != "#a1b2c3" {
		t.Fatalf("list = %+v", list)
	}
}
