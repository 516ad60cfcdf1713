package clips_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipforge/internal/api"
	"clipforge/internal/clips"
	"clipforge/internal/logging"
)

type memoryTokens struct{ token string }

func (m *memoryTokens) Token() string               { return m.token }
func (m *memoryTokens) SetToken(token string) error { m.token = token; return nil }
func (m *memoryTokens) Clear() error                { m.token = ""; return nil }

func newService(t *testing.T, handler http.HandlerFunc) *clips.Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := api.New(server.URL, &memoryTokens{token: "tok"}, api.WithLogger(logging.Nop()))
	return clips.NewService(client, logging.Nop())
}

func TestListBucketEndpoints(t *testing.T) {
	cases := []struct {
		bucket clips.Bucket
		path   string
		key    string
	}{
		{clips.BucketNoTranscript, "/get_clips_without_transcript", "data"},
		{clips.BucketNoSubclips, "/get_clips_with_transcript_without_subclips", "data"},
		{clips.BucketAll, "/get_all_clips", "clips_info"},
	}
	for _, tc := range cases {
		t.Run(string(tc.bucket), func(t *testing.T) {
			svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tc.path {
					t.Errorf("path = %q, want %q", r.URL.Path, tc.path)
				}
				if got := r.URL.Query().Get("space_id"); got != "space-a" {
					t.Errorf("space_id = %q", got)
				}
				json.NewEncoder(w).Encode(map[string]any{
					tc.key: []map[string]any{
						{"clip_id": "c1", "clip_name": "Intro", "aspect_ratio": "longform"},
						{"clip_id": "c2", "clip_name": "Hook", "aspect_ratio": "shortform"},
					},
				})
			})

			list, err := svc.List(context.Background(), "space-a", tc.bucket)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != 2 || list[0].ID != "c1" || list[1].AspectRatio != "shortform" {
				t.Fatalf("list = %+v", list)
			}
		})
	}
}

func TestListRejectsUnknownBucket(t *testing.T) {
	requests := 0
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	if _, err := svc.List(context.Background(), "space-a", clips.Bucket("bogus")); !errors.Is(err, api.ErrValidation) {
		t.Errorf("unknown bucket err = %v", err)
	}
	if requests != 0 {
		t.Errorf("rejected bucket reached the server %d times", requests)
	}
}

func TestCountTalliesAspectRatios(t *testing.T) {
	counts := clips.Count([]clips.Clip{
		{ID: "c1", AspectRatio: "longform"},
		{ID: "c2", AspectRatio: "shortform"},
		{ID: "c3", AspectRatio: "shortform"},
		{ID: "c4", AspectRatio: ""},
	})
	if counts.Longform != 1 || counts.Shortform != 2 {
		t.Fatalf("counts = %+v", counts)
	}
}

func TestStoreLifecycle(t *testing.T) {
	store := clips.NewStore()

	if _, loaded := store.Clips(clips.BucketAll); loaded {
		t.Fatal("fresh store reports loaded")
	}

	store.Set(clips.BucketNoTranscript, []clips.Clip{
		{ID: "c1", AspectRatio: "longform"},
		{ID: "c2", AspectRatio: "shortform"},
	})
	store.Set(clips.BucketAll, []clips.Clip{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}})

	list, loaded := store.Clips(clips.BucketNoTranscript)
	if !loaded || len(list) != 2 {
		t.Fatalf("list = %+v, loaded = %v", list, loaded)
	}
	if _, loaded := store.Clips(clips.BucketNoSubclips); loaded {
		t.Fatal("unfetched bucket reports loaded")
	}

	counts, ok := store.Counts(clips.BucketNoTranscript)
	if !ok || counts.Longform != 1 || counts.Shortform != 1 {
		t.Fatalf("counts = %+v, ok = %v", counts, ok)
	}

	// Mutating a returned copy must not touch the cache.
	list[0].Name = "mutated"
	fresh, _ := store.Clips(clips.BucketNoTranscript)
	if fresh[0].Name == "mutated" {
		t.Fatal("cached list shares backing storage with callers")
	}

	store.Reset()
	for _, bucket := range []clips.Bucket{clips.BucketNoTranscript, clips.BucketNoSubclips, clips.BucketAll} {
		if _, loaded := store.Clips(bucket); loaded {
			t.Fatalf("bucket %s survived reset", bucket)
		}
	}
}
