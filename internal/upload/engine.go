package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"clipforge/internal/api"
	"clipforge/internal/library"
	"clipforge/internal/logging"
)

// DefaultPartSize is the fixed slice size for multipart uploads.
const DefaultPartSize = 5 << 20

// Part is one uploaded slice acknowledgement, echoed back on completion.
type Part struct {
	ETag       string `json:"ETag"`
	PartNumber int    `json:"PartNumber"`
}

// Request describes one upload.
type Request struct {
	Path        string
	Name        string
	Category    library.Category
	ParentID    string
	SpaceID     string
	UserID      string
	Tags        []string
	AspectRatio string
}

// Result is the stored asset produced by a completed upload. AspectRatio is
// the effective value sent to the backend, including the longform default
// applied to broll requests that left it empty.
type Result struct {
	AssetID     string
	Location    string
	Parts       int
	AspectRatio string
}

// ProgressFunc observes overall upload progress in percent. Reported values
// are non-decreasing and stay below 100 until completion is confirmed.
type ProgressFunc func(percent float64)

// Option customises Engine construction.
type Option func(*Engine)

// WithPartSize overrides the slice size. Values below one byte are ignored.
func WithPartSize(size int64) Option {
	return func(e *Engine) {
		if size > 0 {
			e.partSize = size
		}
	}
}

// WithProgress registers the overall progress observer.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logging.WithComponent(logger, "upload") }
}

// Engine uploads media files in fixed-size parts.
//
// The protocol is three-phase and strictly sequential: initiate allocates an
// upload slot, each slice is sent one at a time in ascending part order, and
// complete stitches the acknowledged parts into a stored asset. Any failure
// aborts the whole upload; there is no resume, and progress is left at its
// last value so the caller can offer a restart from phase one.
type Engine struct {
	client   *api.Client
	logger   *slog.Logger
	partSize int64
	progress ProgressFunc
}

// New constructs an Engine over the shared API client.
func New(client *api.Client, opts ...Option) *Engine {
	e := &Engine{
		client:   client,
		logger:   logging.Nop(),
		partSize: DefaultPartSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Upload runs one complete upload. Cancelling the context aborts between and
// within parts; an aborted upload restarts from phase one.
func (e *Engine) Upload(ctx context.Context, req Request) (*Result, error) {
	size, err := e.validate(&req)
	if err != nil {
		return nil, err
	}

	fileName := req.Name + req.Category.Extension()
	totalParts := int((size + e.partSize - 1) / e.partSize)

	source, err := os.Open(req.Path)
	if err != nil {
		return nil, api.Wrap(api.ErrValidation, "upload", "open source file", err)
	}
	defer source.Close()

	uploadID, fileID, err := e.initiate(ctx, fileName, req.Category)
	if err != nil {
		return nil, err
	}
	e.logger.Info("upload initiated", "file", fileName, "parts", totalParts, "upload_id", uploadID)

	reporter := newProgressReporter(totalParts, e.progress)
	parts := make([]Part, 0, totalParts)
	buf := make([]byte, e.partSize)
	for partNumber := 1; partNumber <= totalParts; partNumber++ {
		if err := ctx.Err(); err != nil {
			return nil, api.Wrap(api.ErrTransient, "upload", "cancelled", err)
		}
		n, err := io.ReadFull(source, buf)
		if err == io.ErrUnexpectedEOF && partNumber == totalParts {
			err = nil
		}
		if err != nil {
			return nil, api.Wrap(api.ErrTransient, "upload", fmt.Sprintf("read part %d", partNumber), err)
		}
		part, err := e.uploadPart(ctx, fileName, uploadID, fileID, req.Category, partNumber, buf[:n], reporter)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	result, err := e.complete(ctx, fileName, uploadID, fileID, parts, req)
	if err != nil {
		return nil, err
	}
	reporter.done()
	e.logger.Info("upload complete", "asset", result.AssetID, "parts", len(parts))
	return result, nil
}

// validate enforces the caller-level checks that must fail before any
// request is sent: file presence, non-empty content, name, and an extension
// matching the namespace.
func (e *Engine) validate(req *Request) (int64, error) {
	if strings.TrimSpace(req.Name) == "" {
		return 0, api.Wrap(api.ErrValidation, "upload", "file name is empty", nil)
	}
	info, err := os.Stat(req.Path)
	if err != nil {
		return 0, api.Wrap(api.ErrValidation, "upload", "file not found", err)
	}
	if info.IsDir() {
		return 0, api.Wrap(api.ErrValidation, "upload", "path is a directory", nil)
	}
	if info.Size() == 0 {
		return 0, api.Wrap(api.ErrValidation, "upload", "file is empty", nil)
	}
	wantExt := req.Category.Extension()
	if !strings.EqualFold(filepath.Ext(req.Path), wantExt) {
		return 0, api.Wrap(api.ErrValidation, "upload",
			fmt.Sprintf("%s uploads require a %s file", req.Category, wantExt), nil)
	}
	if req.Category == library.CategoryBroll {
		if req.AspectRatio == "" {
			req.AspectRatio = library.AspectLongform
		}
		if !library.ValidAspectRatio(req.AspectRatio) {
			return 0, api.Wrap(api.ErrValidation, "upload",
				fmt.Sprintf("unknown aspect ratio %q", req.AspectRatio), nil)
		}
	}
	return info.Size(), nil
}

func (e *Engine) initiate(ctx context.Context, fileName string, category library.Category) (string, string, error) {
	form := api.Form{
		Fields: map[string]string{
			"file_name": fileName,
			"category":  string(category),
		},
	}
	var payload struct {
		UploadID string `json:"uploadId"`
		FileID   string `json:"fileId"`
	}
	if err := e.client.PostForm(ctx, "/initiate_upload", form, &payload); err != nil {
		return "", "", err
	}
	return payload.UploadID, payload.FileID, nil
}

func (e *Engine) uploadPart(ctx context.Context, fileName, uploadID, fileID string, category library.Category, partNumber int, data []byte, reporter *progressReporter) (Part, error) {
	form := api.Form{
		Fields: map[string]string{
			"file_name":   fileName,
			"upload_id":   uploadID,
			"part_number": strconv.Itoa(partNumber),
			"file_id":     fileID,
			"category":    string(category),
		},
		File: &api.FilePart{
			Field:  "file",
			Name:   fileName,
			Reader: bytes.NewReader(data),
		},
		Progress: func(sent, total int64) {
			reporter.partProgress(partNumber, sent, total)
		},
	}
	var payload struct {
		ETag string `json:"ETag"`
	}
	if err := e.client.PostForm(ctx, "/upload_chunks/", form, &payload); err != nil {
		return Part{}, err
	}
	return Part{ETag: payload.ETag, PartNumber: partNumber}, nil
}

func (e *Engine) complete(ctx context.Context, fileName, uploadID, fileID string, parts []Part, req Request) (*Result, error) {
	body := map[string]any{
		"file_name": fileName,
		"upload_id": uploadID,
		"parts":     parts,
		"user_id":   req.UserID,
		"space_id":  req.SpaceID,
		"file_id":   fileID,
		"category":  string(req.Category),
		"parent_id": req.ParentID,
		"tags":      req.Tags,
	}
	if req.Category == library.CategoryBroll {
		body["aspect_ratio"] = req.AspectRatio
	}
	var payload struct {
		ClipID   string `json:"clip_id"`
		Location string `json:"location"`
	}
	if err := e.client.PostJSON(ctx, "/complete_upload/", body, &payload); err != nil {
		return nil, err
	}
	result := &Result{AssetID: payload.ClipID, Location: payload.Location, Parts: len(parts)}
	if req.Category == library.CategoryBroll {
		result.AspectRatio = req.AspectRatio
	}
	return result, nil
}

// progressReporter folds per-part transport progress into a single overall
// percentage: ((part-1)*100 + partPercent) / totalParts, clamped to 99 until
// done. Reported values never decrease; 100 is reserved for confirmed
// completion.
type progressReporter struct {
	totalParts int
	fn         ProgressFunc
	last       float64
}

func newProgressReporter(totalParts int, fn ProgressFunc) *progressReporter {
	return &progressReporter{totalParts: totalParts, fn: fn}
}

func (p *progressReporter) partProgress(partNumber int, sent, total int64) {
	if p.fn == nil || total <= 0 {
		return
	}
	partPercent := float64(sent) / float64(total) * 100
	overall := (float64(partNumber-1)*100 + partPercent) / float64(p.totalParts)
	overall = min(overall, 99)
	if overall < p.last {
		return
	}
	p.last = overall
	p.fn(overall)
}

func (p *progressReporter) done() {
	if p.fn == nil {
		return
	}
	p.last = 100
	p.fn(100)
}
