// Package browse implements the client side of the catalog: an HTTP client
// for the API, the browsing session state machine that keeps the displayed
// list consistent across pagination, filtering and search, and the admin
// gate that defers mutations behind the password challenge.
package browse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/video-vault/internal/models"
)

var (
	// ErrUnauthorized is returned when a mutation is rejected by the server.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidSecret is returned when password verification fails.
	ErrInvalidSecret = errors.New("invalid password")
)

const defaultTimeout = 10 * time.Second

// Client talks to the catalog API over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new catalog client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// FetchPage retrieves one page of the catalog listing.
func (c *Client) FetchPage(ctx context.Context, query models.ListQuery) (*models.VideoPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("limit", strconv.Itoa(query.Limit))
	if query.Label != "" && query.Label != models.LabelAll {
		params.Set("label", query.Label)
	}
	if query.Search != "" {
		params.Set("s", query.Search)
	}

	var page models.VideoPage
	if err := c.do(ctx, http.MethodGet, "/videos?"+params.Encode(), "", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchMeta retrieves the label index.
func (c *Client) FetchMeta(ctx context.Context) (*models.LabelIndex, error) {
	var index models.LabelIndex
	if err := c.do(ctx, http.MethodGet, "/videos/meta", "", nil, &index); err != nil {
		return nil, err
	}
	return &index, nil
}

// VerifyPassword checks a candidate secret against the server.
func (c *Client) VerifyPassword(ctx context.Context, password string) error {
	body := map[string]string{"password": password}
	err := c.do(ctx, http.MethodPost, "/videos/verify-password", "", body, nil)
	if errors.Is(err, ErrUnauthorized) {
		return ErrInvalidSecret
	}
	return err
}

// CreateVideo adds a catalog entry.
func (c *Client) CreateVideo(ctx context.Context, secret string, fields *models.VideoFields) (*models.Video, error) {
	var video models.Video
	if err := c.do(ctx, http.MethodPost, "/videos", secret, fields, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// UpdateVideo replaces an entry's fields wholesale.
func (c *Client) UpdateVideo(ctx context.Context, secret, id string, fields *models.VideoFields) (*models.Video, error) {
	var video models.Video
	if err := c.do(ctx, http.MethodPut, "/videos/"+url.PathEscape(id), secret, fields, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// DeleteVideo removes an entry.
func (c *Client) DeleteVideo(ctx context.Context, secret, id string) error {
	return c.do(ctx, http.MethodDelete, "/videos/"+url.PathEscape(id), secret, nil, nil)
}

// do performs one request and decodes the response into out when non-nil.
// Error statuses are mapped onto the catalog error taxonomy.
func (c *Client) do(ctx context.Context, method, path, secret string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if secret != "" {
		req.Header.Set("Authorization", secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	// The body is best-effort; the status alone decides the error kind.
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusBadRequest:
		return &models.ValidationError{Message: body.Error}
	case http.StatusNotFound:
		return models.ErrNotFound
	default:
		if body.Error != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, body.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
}
