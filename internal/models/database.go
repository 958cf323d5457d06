package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlitecloud "github.com/sqlitecloud/sqlitecloud-go"
	"go.uber.org/zap"
)

const videoColumns = "id, title, embed_link, thumbnail_link, download_link, labels, created_at"

// Database represents the database connection and operations
type Database struct {
	db  *sqlitecloud.SQCloud
	log *zap.Logger
}

// NewDatabase creates a new database connection
func NewDatabase(connStr string, log *zap.Logger) (*Database, error) {
	log.Info("connecting to SQLite Cloud database", zap.String("connection", maskConnectionString(connStr)))

	db, err := sqlitecloud.Connect(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite Cloud: %v", err)
	}

	database := &Database{
		db:  db,
		log: log,
	}

	// Create tables if they don't exist
	if err := database.createTables(); err != nil {
		return nil, err
	}

	return database, nil
}

// maskConnectionString hides the API key in logs for security
func maskConnectionString(connStr string) string {
	if strings.Contains(connStr, "apikey=") {
		parts := strings.Split(connStr, "apikey=")
		if len(parts) > 1 {
			return parts[0] + "apikey=***"
		}
	}
	return connStr
}

// createTables creates the necessary tables if they don't exist
func (d *Database) createTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS videos (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			embed_link TEXT NOT NULL,
			thumbnail_link TEXT NOT NULL,
			download_link TEXT NOT NULL DEFAULT '',
			labels TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at)`,
	}

	for _, table := range tables {
		if err := d.db.Execute(table); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}
	return nil
}

// CreateVideo validates the fields and inserts a new video row. The id and
// creation timestamp are assigned here and never change afterwards.
func (d *Database) CreateVideo(fields *VideoFields) (*Video, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	labels := DedupeLabels(fields.Labels)
	blob, err := EncodeLabels(labels)
	if err != nil {
		return nil, err
	}

	video := &Video{
		ID:            uuid.NewString(),
		Title:         fields.Title,
		EmbedLink:     fields.EmbedLink,
		ThumbnailLink: fields.ThumbnailLink,
		DownloadLink:  fields.DownloadLink,
		Labels:        labels,
		CreatedAt:     time.Now().UTC(),
	}

	sql := `INSERT INTO videos (` + videoColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	err = d.db.ExecuteArray(sql, []interface{}{
		video.ID,
		video.Title,
		video.EmbedLink,
		video.ThumbnailLink,
		video.DownloadLink,
		blob,
		video.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert video: %v", err)
	}

	d.log.Info("video created", zap.String("id", video.ID), zap.String("title", video.Title))
	return video, nil
}

// GetVideo retrieves a single video by id.
func (d *Database) GetVideo(id string) (*Video, error) {
	sql := `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`
	result, err := d.db.SelectArray(sql, []interface{}{id})
	if err != nil {
		return nil, fmt.Errorf("failed to query video: %v", err)
	}
	if result.GetNumberOfRows() == 0 {
		return nil, ErrNotFound
	}
	return d.scanVideo(result, 0)
}

// UpdateVideo replaces every mutable field of an existing video. The id and
// created_at columns are left untouched.
func (d *Database) UpdateVideo(id string, fields *VideoFields) (*Video, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	// Read first so a missing id surfaces as NotFound instead of a no-op.
	existing, err := d.GetVideo(id)
	if err != nil {
		return nil, err
	}

	labels := DedupeLabels(fields.Labels)
	blob, err := EncodeLabels(labels)
	if err != nil {
		return nil, err
	}

	sql := `UPDATE videos
		SET title = ?, embed_link = ?, thumbnail_link = ?, download_link = ?, labels = ?
		WHERE id = ?`
	err = d.db.ExecuteArray(sql, []interface{}{
		fields.Title,
		fields.EmbedLink,
		fields.ThumbnailLink,
		fields.DownloadLink,
		blob,
		id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update video: %v", err)
	}

	d.log.Info("video updated", zap.String("id", id))
	return &Video{
		ID:            id,
		Title:         fields.Title,
		EmbedLink:     fields.EmbedLink,
		ThumbnailLink: fields.ThumbnailLink,
		DownloadLink:  fields.DownloadLink,
		Labels:        labels,
		CreatedAt:     existing.CreatedAt,
	}, nil
}

// DeleteVideo removes a video row permanently. There is no soft delete.
func (d *Database) DeleteVideo(id string) error {
	if _, err := d.GetVideo(id); err != nil {
		return err
	}

	if err := d.db.ExecuteArray(`DELETE FROM videos WHERE id = ?`, []interface{}{id}); err != nil {
		return fmt.Errorf("failed to delete video: %v", err)
	}

	d.log.Info("video deleted", zap.String("id", id))
	return nil
}

// ListVideos returns one page of videos ordered by creation time descending,
// newest first, with insertion order breaking ties among equal timestamps.
// Pages past the end come back empty with hasNextPage false.
func (d *Database) ListVideos(query ListQuery) (*VideoPage, error) {
	query = query.Normalize()
	where, args := query.filterClause()

	total, err := d.countVideos(where, args)
	if err != nil {
		return nil, err
	}

	sql := `SELECT ` + videoColumns + ` FROM videos` + where +
		` ORDER BY created_at DESC, rowid ASC LIMIT ? OFFSET ?`
	args = append(args, query.Limit, (query.Page-1)*query.Limit)

	result, err := d.db.SelectArray(sql, args)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %v", err)
	}

	videos := make([]Video, 0, result.GetNumberOfRows())
	for row := uint64(0); row < result.GetNumberOfRows(); row++ {
		video, err := d.scanVideo(result, row)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *video)
	}

	return &VideoPage{
		Videos:     videos,
		Pagination: query.paginate(total),
	}, nil
}

// countVideos counts the rows matching a filter clause.
func (d *Database) countVideos(where string, args []interface{}) (int, error) {
	sql := `SELECT COUNT(*) FROM videos` + where

	var result *sqlitecloud.Result
	var err error
	if len(args) > 0 {
		result, err = d.db.SelectArray(sql, args)
	} else {
		result, err = d.db.Select(sql)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count videos: %v", err)
	}
	if result.GetNumberOfRows() == 0 {
		return 0, nil
	}

	count, err := result.GetInt64Value(0, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to read video count: %v", err)
	}
	return int(count), nil
}

// LabelIndex scans the labels column of the whole corpus and aggregates
// per-label usage counts, sorted lexicographically. Recomputed on every call
// so the index is never stale relative to mutations.
func (d *Database) LabelIndex() (*LabelIndex, error) {
	result, err := d.db.Select(`SELECT labels FROM videos`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan labels: %v", err)
	}

	counts := make(map[string]int)
	rows := result.GetNumberOfRows()
	for row := uint64(0); row < rows; row++ {
		blob, err := result.GetStringValue(row, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to read labels column: %v", err)
		}
		labels, err := DecodeLabels(blob)
		if err != nil {
			return nil, err
		}
		for _, label := range labels {
			counts[label]++
		}
	}

	return BuildLabelIndex(int(rows), counts), nil
}

// scanVideo converts one result row into a Video.
func (d *Database) scanVideo(result *sqlitecloud.Result, row uint64) (*Video, error) {
	fields := make([]string, 7)
	for col := uint64(0); col < 7; col++ {
		value, err := result.GetStringValue(row, col)
		if err != nil {
			return nil, fmt.Errorf("failed to read video column %d: %v", col, err)
		}
		fields[col] = value
	}

	labels, err := DecodeLabels(fields[5])
	if err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields[6])
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %v", err)
	}

	return &Video{
		ID:            fields[0],
		Title:         fields[1],
		EmbedLink:     fields[2],
		ThumbnailLink: fields[3],
		DownloadLink:  fields[4],
		Labels:        labels,
		CreatedAt:     createdAt,
	}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
