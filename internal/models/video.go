package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNotFound is returned when a video id does not exist in the store.
var ErrNotFound = errors.New("video not found")

// ValidationError describes a rejected create/update payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Video represents a single catalog entry
type Video struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	EmbedLink     string    `json:"embedLink"`
	ThumbnailLink string    `json:"thumbnailLink"`
	DownloadLink  string    `json:"downloadLink"`
	Labels        []string  `json:"labels"`
	CreatedAt     time.Time `json:"createdAt"`
}

// VideoFields holds the caller-supplied fields for a create or update.
// Updates replace every field wholesale; there is no partial patch.
type VideoFields struct {
	Title         string   `json:"title"`
	EmbedLink     string   `json:"embedLink"`
	ThumbnailLink string   `json:"thumbnailLink"`
	DownloadLink  string   `json:"downloadLink"`
	Labels        []string `json:"labels"`
}

// Validate checks the required fields. Download link and labels are optional.
func (f *VideoFields) Validate() error {
	if f.Title == "" || f.EmbedLink == "" || f.ThumbnailLink == "" {
		return &ValidationError{Message: "Title, embed link, and thumbnail link are required"}
	}
	return nil
}

// LabelCount is one entry of the label index.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LabelIndex aggregates label usage over the whole corpus.
type LabelIndex struct {
	TotalVideos int          `json:"totalVideos"`
	Labels      []LabelCount `json:"labels"`
}

// Pagination describes one page of a video listing.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// VideoPage is the result of a paginated listing query.
type VideoPage struct {
	Videos     []Video    `json:"videos"`
	Pagination Pagination `json:"pagination"`
}

// BuildLabelIndex turns raw per-label counts into a sorted index.
func BuildLabelIndex(totalVideos int, counts map[string]int) *LabelIndex {
	labels := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		labels = append(labels, LabelCount{Label: label, Count: count})
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Label < labels[j].Label })
	return &LabelIndex{TotalVideos: totalVideos, Labels: labels}
}

// DedupeLabels removes duplicate labels, keeping first-occurrence order.
func DedupeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// EncodeLabels serializes a label set for storage. Labels are de-duplicated
// first; nil encodes as the empty array.
func EncodeLabels(labels []string) (string, error) {
	data, err := json.Marshal(DedupeLabels(labels))
	if err != nil {
		return "", fmt.Errorf("failed to encode labels: %w", err)
	}
	return string(data), nil
}

// DecodeLabels parses a stored label blob. Empty or NULL blobs decode to an
// empty slice, never nil, so JSON responses always carry an array.
func DecodeLabels(blob string) ([]string, error) {
	if blob == "" {
		return []string{}, nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(blob), &labels); err != nil {
		return nil, fmt.Errorf("failed to decode labels: %w", err)
	}
	if labels == nil {
		labels = []string{}
	}
	return labels, nil
}
