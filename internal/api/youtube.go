package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var (
	// ErrVideoNotFound is returned when the YouTube API knows no such video.
	ErrVideoNotFound = errors.New("video not found")
	// ErrUnsupportedURL is returned for URLs no extraction rule matches.
	ErrUnsupportedURL = errors.New("unsupported YouTube URL format")
)

// Prefill carries entry fields derived from a YouTube video, used to
// pre-populate the add-video form.
type Prefill struct {
	Title         string `json:"title"`
	EmbedLink     string `json:"embedLink"`
	ThumbnailLink string `json:"thumbnailLink"`
}

// LookupClient resolves YouTube URLs to prefill data via the Data API.
type LookupClient struct {
	apiKey string

	once    sync.Once
	service *youtube.Service
	initErr error
}

// NewLookupClient creates a new lookup client. The API service is built
// lazily on first use.
func NewLookupClient(apiKey string) *LookupClient {
	return &LookupClient{apiKey: apiKey}
}

// ExtractVideoIDFromURL extracts the video ID from various YouTube URL formats
func ExtractVideoIDFromURL(videoURL string) (string, error) {
	parsedURL, err := url.Parse(videoURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	switch {
	case strings.Contains(parsedURL.Host, "youtube.com"):
		path := parsedURL.Path
		switch {
		case path == "/watch":
			// Format: youtube.com/watch?v=ID
			if id := parsedURL.Query().Get("v"); id != "" {
				return id, nil
			}
		case strings.HasPrefix(path, "/embed/"):
			// Format: youtube.com/embed/ID
			if id := strings.TrimPrefix(path, "/embed/"); id != "" {
				return id, nil
			}
		case strings.HasPrefix(path, "/shorts/"):
			// Format: youtube.com/shorts/ID
			if id := strings.TrimPrefix(path, "/shorts/"); id != "" {
				return id, nil
			}
		}
	case strings.Contains(parsedURL.Host, "youtu.be"):
		// Format: youtu.be/ID
		if id := strings.TrimPrefix(parsedURL.Path, "/"); id != "" {
			return id, nil
		}
	}

	return "", ErrUnsupportedURL
}

// Lookup resolves a YouTube URL to title, embed link and thumbnail link.
func (l *LookupClient) Lookup(ctx context.Context, videoURL string) (*Prefill, error) {
	videoID, err := ExtractVideoIDFromURL(videoURL)
	if err != nil {
		return nil, err
	}

	l.once.Do(func() {
		l.service, l.initErr = youtube.NewService(context.Background(), option.WithAPIKey(l.apiKey))
	})
	if l.initErr != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %v", l.initErr)
	}

	call := l.service.Videos.List([]string{"snippet"}).Id(videoID).MaxResults(1)
	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error fetching video info: %v", err)
	}
	if len(response.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	item := response.Items[0]
	thumbnail := ""
	if item.Snippet.Thumbnails != nil {
		switch {
		case item.Snippet.Thumbnails.High != nil:
			thumbnail = item.Snippet.Thumbnails.High.Url
		case item.Snippet.Thumbnails.Medium != nil:
			thumbnail = item.Snippet.Thumbnails.Medium.Url
		case item.Snippet.Thumbnails.Default != nil:
			thumbnail = item.Snippet.Thumbnails.Default.Url
		}
	}

	return &Prefill{
		Title:         item.Snippet.Title,
		EmbedLink:     "https://www.youtube.com/embed/" + videoID,
		ThumbnailLink: thumbnail,
	}, nil
}
