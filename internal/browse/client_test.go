package browse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/video-vault/internal/models"
)

func TestClientFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("limit"))
		assert.Equal(t, "horror", q.Get("label"))
		assert.Equal(t, "thing", q.Get("s"))

		json.NewEncoder(w).Encode(models.VideoPage{
			Videos: []models.Video{{ID: "v1", Title: "The Thing", Labels: []string{"horror"}}},
			Pagination: models.Pagination{
				Page: 2, Limit: 20, Total: 21, TotalPages: 2,
				HasNextPage: false, HasPrevPage: true,
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	page, err := client.FetchPage(context.Background(), models.ListQuery{
		Page: 2, Limit: 20, Label: "horror", Search: "thing",
	})
	require.NoError(t, err)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, "The Thing", page.Videos[0].Title)
	assert.False(t, page.Pagination.HasNextPage)
}

func TestClientFetchPageOmitsAllSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("label"))
		assert.False(t, r.URL.Query().Has("s"))
		json.NewEncoder(w).Encode(models.VideoPage{Videos: []models.Video{}})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchPage(context.Background(), models.ListQuery{
		Page: 1, Limit: 20, Label: models.LabelAll,
	})
	require.NoError(t, err)
}

func TestClientFetchMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos/meta", r.URL.Path)
		json.NewEncoder(w).Encode(models.LabelIndex{
			TotalVideos: 3,
			Labels:      []models.LabelCount{{Label: "horror", Count: 2}},
		})
	}))
	defer srv.Close()

	index, err := NewClient(srv.URL).FetchMeta(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, index.TotalVideos)
	require.Len(t, index.Labels, 1)
}

func TestClientVerifyPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password == "right" {
			json.NewEncoder(w).Encode(map[string]bool{"success": true})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid password"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	assert.NoError(t, client.VerifyPassword(context.Background(), "right"))
	assert.ErrorIs(t, client.VerifyPassword(context.Background(), "wrong"), ErrInvalidSecret)
}

func TestClientMutations(t *testing.T) {
	fields := &models.VideoFields{
		Title:         "New",
		EmbedLink:     "https://example.com/embed/new",
		ThumbnailLink: "https://example.com/thumb.jpg",
		Labels:        []string{"a"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/videos":
			var got models.VideoFields
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode(models.Video{ID: "new-id", Title: got.Title, Labels: got.Labels})
		case r.Method == http.MethodPut && r.URL.Path == "/videos/v1":
			json.NewEncoder(w).Encode(models.Video{ID: "v1", Title: "New"})
		case r.Method == http.MethodDelete && r.URL.Path == "/videos/v1":
			json.NewEncoder(w).Encode(map[string]bool{"success": true})
		case r.Method == http.MethodDelete && r.URL.Path == "/videos/gone":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Video not found"})
		default:
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Title, embed link, and thumbnail link are required"})
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		video, err := client.CreateVideo(ctx, "secret", fields)
		require.NoError(t, err)
		assert.Equal(t, "new-id", video.ID)
	})

	t.Run("Update", func(t *testing.T) {
		video, err := client.UpdateVideo(ctx, "secret", "v1", fields)
		require.NoError(t, err)
		assert.Equal(t, "v1", video.ID)
	})

	t.Run("Delete", func(t *testing.T) {
		assert.NoError(t, client.DeleteVideo(ctx, "secret", "v1"))
	})

	t.Run("Unauthorized", func(t *testing.T) {
		_, err := client.CreateVideo(ctx, "wrong", fields)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("NotFound", func(t *testing.T) {
		err := client.DeleteVideo(ctx, "secret", "gone")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("ValidationError", func(t *testing.T) {
		_, err := client.UpdateVideo(ctx, "secret", "other", fields)
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Message, "required")
	})
}
