package presets_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipforge/internal/api"
	"clipforge/internal/logging"
	"clipforge/internal/presets"
)

type memoryTokens struct{ token string }

func (m *memoryTokens) Token() string               { return m.token }
func (m *memoryTokens) SetToken(token string) error { m.token = token; return nil }
func (m *memoryTokens) Clear() error                { m.token = ""; return nil }

func validOptions() presets.Options {
	return presets.Options{
		Font:            "Inter",
		FontSize:        24,
		FontPosition:    "bottom",
		AspectRatio:     "shortform",
		BackgroundColor: "#000000",
		FontColor:       "#ffffff",
		Scaling:         120,
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := validOptions().Validate(); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}

	missingFont := validOptions()
	missingFont.Font = " "
	if err := missingFont.Validate(); !errors.Is(err, api.ErrValidation) {
		t.Errorf("missing font err = %v", err)
	}

	for _, scaling := range []int{99, 201, 0} {
		opts := validOptions()
		opts.Scaling = scaling
		if err := opts.Validate(); !errors.Is(err, api.ErrValidation) {
			t.Errorf("scaling %d err = %v", scaling, err)
		}
	}
}

func TestCreateValidatesBeforeRequest(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := api.New(server.URL, &memoryTokens{token: "tok"}, api.WithLogger(logging.Nop()))
	svc := presets.NewService(client, logging.Nop())

	if _, err := svc.Create(context.Background(), "space-a", "", "#fff", validOptions(), presets.MediaIDs{}); !errors.Is(err, api.ErrValidation) {
		t.Errorf("empty name err = %v", err)
	}
	bad := validOptions()
	bad.AspectRatio = ""
	if _, err := svc.Create(context.Background(), "space-a", "Caption", "#fff", bad, presets.MediaIDs{}); !errors.Is(err, api.ErrValidation) {
		t.Errorf("bad options err = %v", err)
	}
	if requests != 0 {
		t.Errorf("rejected creates reached the server %d times", requests)
	}
}

func TestCreateReturnsOwnedPreset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["space_id"] != "space-a" || body["name"] != "Caption" {
			t.Errorf("body = %+v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"preset_id": "p1"})
	}))
	defer server.Close()

	client := api.New(server.URL, &memoryTokens{token: "tok"}, api.WithLogger(logging.Nop()))
	svc := presets.NewService(client, logging.Nop())

	preset, err := svc.Create(context.Background(), "space-a", "Caption", "#fff", validOptions(), presets.MediaIDs{YouTube: "yt-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if preset.ID != "p1" || !preset.IsOwner || preset.MediaIDs.YouTube != "yt-1" {
		t.Fatalf("preset = %+v", preset)
	}
}

func TestListDecodesPresets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get_presets" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"presets": []map[string]any{
				{"preset_id": "p1", "name": "Caption", "isOwner": true},
				{"preset_id": "p2", "name": "Shared", "isOwner": false},
			},
		})
	}))
	defer server.Close()

	client := api.New(server.URL, &memoryTokens{token: "tok"}, api.WithLogger(logging.Nop()))
	svc := presets.NewService(client, logging.Nop())

	list, err := svc.List(context.Background(), "space-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || !list[0].IsOwner || list[1].IsOwner {
		t.Fatalf("list = %+v", list)
	}
}

func TestStoreLifecycle(t *testing.T) {
	store := presets.NewStore()

	if _, loaded := store.Presets(); loaded {
		t.Fatal("fresh store reports loaded")
	}

	store.Set([]presets.Preset{{ID: "p1", Name: "One"}})
	store.Add(presets.Preset{ID: "p2", Name: "Two"})

	list, loaded := store.Presets()
	if !loaded || len(list) != 2 {
		t.Fatalf("list = %+v, loaded = %v", list, loaded)
	}

	store.Apply(presets.Preset{ID: "p1", Name: "Renamed"})
	store.Apply(presets.Preset{ID: "ghost", Name: "Ignored"})
	list, _ = store.Presets()
	if list[0].Name != "Renamed" || len(list) != 2 {
		t.Fatalf("after apply: %+v", list)
	}

	store.Remove("p2")
	store.Remove("p2")
	list, _ = store.Presets()
	if len(list) != 1 {
		t.Fatalf("after remove: %+v", list)
	}

	store.Reset()
	if _, loaded := store.Presets(); loaded {
		t.Fatal("reset store still reports loaded")
	}
}
