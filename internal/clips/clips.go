package clips

import (
	"context"
	"log/slog"
	"net/url"

	"clipforge/internal/api"
	"clipforge/internal/library"
	"clipforge/internal/logging"
)

// Bucket selects one of the backend's three clip views.
type Bucket string

const (
	// BucketNoTranscript holds clips still waiting on a transcript.
	BucketNoTranscript Bucket = "no-transcript"
	// BucketNoSubclips holds transcribed clips without extracted sub-clips.
	BucketNoSubclips Bucket = "no-subclips"
	// BucketAll holds the full clip catalog.
	BucketAll Bucket = "all"
)

// ValidBucket reports whether the value names a known bucket.
func ValidBucket(value Bucket) bool {
	switch value {
	case BucketNoTranscript, BucketNoSubclips, BucketAll:
		return true
	}
	return false
}

// Clip is one generated clip as reported by the backend.
type Clip struct {
	ID          string `json:"clip_id"`
	Name        string `json:"clip_name"`
	StorageLink string `json:"clip_storage_link,omitempty"`
	Transcript  string `json:"clip_transcript,omitempty"`
	AspectRatio string `json:"aspect_ratio"`
}

// Counts tallies clips by aspect ratio. Only the first two buckets are
// counted; the full catalog is not.
type Counts struct {
	Longform  int
	Shortform int
}

// Count derives aspect-ratio tallies for a clip list.
func Count(list []Clip) Counts {
	var counts Counts
	for _, clip := range list {
		switch clip.AspectRatio {
		case library.AspectLongform:
			counts.Longform++
		case library.AspectShortform:
			counts.Shortform++
		}
	}
	return counts
}

// Service exposes the clips REST surface.
type Service struct {
	client *api.Client
	logger *slog.Logger
}

// NewService constructs a clips service over the shared API client.
func NewService(client *api.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logging.WithComponent(logger, "clips")}
}

// List fetches one bucket's clips for a workspace.
func (s *Service) List(ctx context.Context, spaceID string, bucket Bucket) ([]Clip, error) {
	query := url.Values{"space_id": {spaceID}}
	switch bucket {
	case BucketNoTranscript:
		return s.listData(ctx, "/get_clips_without_transcript", query)
	case BucketNoSubclips:
		return s.listData(ctx, "/get_clips_with_transcript_without_subclips", query)
	case BucketAll:
		var payload struct {
			Clips []Clip `json:"clips_info"`
		}
		if err := s.client.GetJSON(ctx, "/get_all_clips", query, &payload); err != nil {
			return nil, err
		}
		return payload.Clips, nil
	}
	return nil, api.Wrap(api.ErrValidation, "clips", "unknown bucket "+string(bucket), nil)
}

func (s *Service) listData(ctx context.Context, path string, query url.Values) ([]Clip, error) {
	var payload struct {
		Clips []Clip `json:"data"`
	}
	if err := s.client.GetJSON(ctx, path, query, &payload); err != nil {
		return nil, err
	}
	return payload.Clips, nil
}
