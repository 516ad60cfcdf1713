package upload_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"clipforge/internal/api"
	"clipforge/internal/library"
	"clipforge/internal/logging"
	"clipforge/internal/testsupport"
	"clipforge/internal/upload"
)

type memoryTokens struct{ token string }

func (m *memoryTokens) Token() string               { return m.token }
func (m *memoryTokens) SetToken(token string) error { m.token = token; return nil }
func (m *memoryTokens) Clear() error                { m.token = ""; return nil }

// uploadBackend records the multipart protocol exchange.
type uploadBackend struct {
	mu        sync.Mutex
	initiated int
	partOrder []int
	partSizes []int64
	completed map[string]any
	failPart  int
}

func (u *uploadBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/initiate_upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse initiate form: %v", err)
		}
		u.mu.Lock()
		u.initiated++
		u.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"uploadId": "up-1", "fileId": "file-1"})
	})
	mux.HandleFunc("/upload_chunks/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse chunk form: %v", err)
		}
		partNumber, _ := strconv.Atoi(r.FormValue("part_number"))
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("chunk file missing: %v", err)
			return
		}
		size, _ := io.Copy(io.Discard, file)
		file.Close()

		u.mu.Lock()
		u.partOrder = append(u.partOrder, partNumber)
		u.partSizes = append(u.partSizes, size)
		fail := u.failPart
		u.mu.Unlock()

		if fail != 0 && fail == partNumber {
			http.Error(w, `{"message":"part rejected"}`, http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"ETag": fmt.Sprintf("etag-%d", partNumber)})
	})
	mux.HandleFunc("/complete_upload/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode complete body: %v", err)
		}
		u.mu.Lock()
		u.completed = body
		u.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"clip_id": "clip-9", "location": "s3://bucket/clip-9"})
	})
	return mux
}

func newTestEngine(t *testing.T, backend *uploadBackend, opts ...upload.Option) *upload.Engine {
	t.Helper()

	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)
	client := api.New(server.URL, &memoryTokens{token: "tok"}, api.WithLogger(logging.Nop()))
	return upload.New(client, opts...)
}

func TestUploadSplitsIntoSequentialParts(t *testing.T) {
	const partSize = 5 << 20
	backend := &uploadBackend{}
	path := testsupport.WriteMedia(t, t.TempDir(), "clip.mp4", 12<<20)

	var percents []float64
	engine := newTestEngine(t, backend,
		upload.WithPartSize(partSize),
		upload.WithProgress(func(p float64) { percents = append(percents, p) }),
	)

	result, err := engine.Upload(context.Background(), upload.Request{
		Path:     path,
		Name:     "clip",
		Category: library.CategoryBroll,
		ParentID: library.RootID,
		SpaceID:  "space-a",
		UserID:   "u1",
		Tags:     []string{"travel"},
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.AssetID != "clip-9" || result.Parts != 3 {
		t.Fatalf("result = %+v", result)
	}

	if backend.initiated != 1 {
		t.Errorf("initiate calls = %d", backend.initiated)
	}
	wantOrder := []int{1, 2, 3}
	if len(backend.partOrder) != 3 {
		t.Fatalf("part order = %v", backend.partOrder)
	}
	for i, part := range wantOrder {
		if backend.partOrder[i] != part {
			t.Fatalf("part order = %v, want %v", backend.partOrder, wantOrder)
		}
	}
	if backend.partSizes[0] != partSize || backend.partSizes[1] != partSize || backend.partSizes[2] != 2<<20 {
		t.Errorf("part sizes = %v", backend.partSizes)
	}

	// Echoed parts carry ascending numbers and the server etags.
	parts, ok := backend.completed["parts"].([]any)
	if !ok || len(parts) != 3 {
		t.Fatalf("completed parts = %v", backend.completed["parts"])
	}
	first := parts[0].(map[string]any)
	if first["ETag"] != "etag-1" || first["PartNumber"] != float64(1) {
		t.Errorf("first part = %v", first)
	}
	if backend.completed["aspect_ratio"] != "longform" {
		t.Errorf("aspect_ratio = %v", backend.completed["aspect_ratio"])
	}
	if result.AspectRatio != library.AspectLongform {
		t.Errorf("result aspect ratio = %q, want the defaulted value echoed back", result.AspectRatio)
	}

	// Progress is monotone, below 100 while in flight, exactly 100 at the end.
	if len(percents) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("progress regressed at %d: %v", i, percents)
		}
	}
	for _, p := range percents[:len(percents)-1] {
		if p >= 100 {
			t.Fatalf("progress hit %v before completion", p)
		}
	}
	if final := percents[len(percents)-1]; final != 100 {
		t.Fatalf("final progress = %v, want exactly 100", final)
	}
}

func TestUploadExactMultipleHasNoEmptyTrailingPart(t *testing.T) {
	backend := &uploadBackend{}
	path := testsupport.WriteMedia(t, t.TempDir(), "clip.mp4", 10<<20)
	engine := newTestEngine(t, backend, upload.WithPartSize(5<<20))

	result, err := engine.Upload(context.Background(), upload.Request{
		Path:     path,
		Name:     "clip",
		Category: library.CategoryBroll,
		ParentID: library.RootID,
		SpaceID:  "space-a",
		UserID:   "u1",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.Parts != 2 || len(backend.partOrder) != 2 {
		t.Fatalf("parts = %d, order = %v", result.Parts, backend.partOrder)
	}
}

func TestUploadSmallFileIsSinglePart(t *testing.T) {
	backend := &uploadBackend{}
	path := testsupport.WriteMedia(t, t.TempDir(), "tune.mp3", 1<<20)
	engine := newTestEngine(t, backend)

	result, err := engine.Upload(context.Background(), upload.Request{
		Path:     path,
		Name:     "tune",
		Category: library.CategoryMusic,
		ParentID: library.RootID,
		SpaceID:  "space-a",
		UserID:   "u1",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.Parts != 1 {
		t.Fatalf("parts = %d", result.Parts)
	}
	if _, ok := backend.completed["aspect_ratio"]; ok {
		t.Error("music upload must not send an aspect ratio")
	}
	if result.AspectRatio != "" {
		t.Errorf("result aspect ratio = %q for music", result.AspectRatio)
	}
}

func TestUploadRejectsBeforeAnyRequest(t *testing.T) {
	backend := &uploadBackend{}
	dir := t.TempDir()
	engine := newTestEngine(t, backend)

	empty := testsupport.WriteMedia(t, dir, "empty.mp4", 0)
	wrongExt := testsupport.WriteMedia(t, dir, "clip.mov", 1<<20)
	ok := testsupport.WriteMedia(t, dir, "clip.mp4", 1<<20)

	cases := []struct {
		name string
		req  upload.Request
	}{
		{"empty name", upload.Request{Path: ok, Name: "  ", Category: library.CategoryBroll}},
		{"missing file", upload.Request{Path: dir + "/nope.mp4", Name: "clip", Category: library.CategoryBroll}},
		{"zero bytes", upload.Request{Path: empty, Name: "empty", Category: library.CategoryBroll}},
		{"wrong extension", upload.Request{Path: wrongExt, Name: "clip", Category: library.CategoryBroll}},
		{"bad aspect ratio", upload.Request{Path: ok, Name: "clip", Category: library.CategoryBroll, AspectRatio: "square"}},
		{"directory", upload.Request{Path: dir, Name: "clip", Category: library.CategoryBroll}},
	}
	for _, tc := range cases {
		if _, err := engine.Upload(context.Background(), tc.req); !errors.Is(err, api.ErrValidation) {
			t.Errorf("%s: err = %v, want validation marker", tc.name, err)
		}
	}
	if backend.initiated != 0 || len(backend.partOrder) != 0 {
		t.Errorf("rejected uploads reached the server: initiated=%d parts=%v", backend.initiated, backend.partOrder)
	}
}

func TestUploadWrongExtensionIsCaseInsensitive(t *testing.T) {
	backend := &uploadBackend{}
	path := testsupport.WriteMedia(t, t.TempDir(), "clip.MP4", 1<<20)
	engine := newTestEngine(t, backend)

	if _, err := engine.Upload(context.Background(), upload.Request{
		Path:     path,
		Name:     "clip",
		Category: library.CategoryBroll,
		ParentID: library.RootID,
	}); err != nil {
		t.Fatalf("uppercase extension rejected: %v", err)
	}
}

func TestUploadPartFailureAbortsWithoutCompletion(t *testing.T) {
	backend := &uploadBackend{failPart: 2}
	path := testsupport.WriteMedia(t, t.TempDir(), "clip.mp4", 12<<20)
	engine := newTestEngine(t, backend, upload.WithPartSize(5<<20))

	_, err := engine.Upload(context.Background(), upload.Request{
		Path:     path,
		Name:     "clip",
		Category: library.CategoryBroll,
		ParentID: library.RootID,
		SpaceID:  "space-a",
		UserID:   "u1",
	})
	if !errors.Is(err, api.ErrTransient) {
		t.Fatalf("err = %v, want transient marker", err)
	}
	if backend.completed != nil {
		t.Error("failed upload must not reach completion")
	}
	if len(backend.partOrder) != 2 {
		t.Errorf("parts attempted = %v, want stop at the failing part", backend.partOrder)
	}
}

func TestUploadCancelledBetweenParts(t *testing.T) {
	backend := &uploadBackend{}
	path := testsupport.WriteMedia(t, t.TempDir(), "clip.mp4", 12<<20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newTestEngine(t, backend, upload.WithPartSize(5<<20))
	if _, err := engine.Upload(ctx, upload.Request{
		Path:     path,
		Name:     "clip",
		Category: library.CategoryBroll,
		ParentID: library.RootID,
	}); err == nil {
		t.Fatal("expected cancellation error")
	}
	if backend.completed != nil {
		t.Error("cancelled upload must not complete")
	}
}
