package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"autopostq/internal/migrations"
	"autopostq/internal/models"
)

// Database is the SQLite-backed store for the autopost queue.
type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema, err := migrations.GetInitialSchema()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to read schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// InsertAutopost persists a new queue entry and returns the stored record.
func (d *Database) InsertAutopost(ctx context.Context, autopost *models.Autopost) (*models.Autopost, error) {
	emotionState, err := marshalJSON(autopost.EmotionState)
	if err != nil {
		return nil, fmt.Errorf("failed to encode emotion state: %w", err)
	}
	metadata, err := marshalJSON(autopost.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	inspirations, err := marshalJSON(autopost.Inspirations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inspirations: %w", err)
	}
	hashtags, err := marshalJSON(autopost.Hashtags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode hashtags: %w", err)
	}

	result, err := d.db.ExecContext(ctx, InsertAutopostQuery,
		autopost.OwnerID,
		autopost.Body,
		autopost.Mood,
		emotionState,
		autopost.AssetURL,
		autopost.MediaURL,
		autopost.PosterURL,
		autopost.DurationSeconds,
		metadata,
		string(autopost.Status),
		autopost.ScheduledAt.UTC(),
		autopost.CreativeType,
		autopost.Title,
		autopost.Summary,
		inspirations,
		audienceString(autopost.Audience),
		hashtags,
		ctaLabel(autopost),
		ctaURL(autopost),
		autopost.ResponseBody,
		autopost.DelaySeconds,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert autopost: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted autopost id: %w", err)
	}

	return d.GetAutopost(ctx, id)
}

// GetAutopost returns the entry with the given id, or nil when absent.
func (d *Database) GetAutopost(ctx context.Context, id int64) (*models.Autopost, error) {
	row := d.db.QueryRowContext(ctx, SelectAutopostByIDQuery, id)
	autopost, err := scanAutopost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get autopost: %w", err)
	}
	return autopost, nil
}

// ListAutoposts returns one page ordered by id descending. An empty status
// matches everything; a zero cursor starts at the newest entry.
func (d *Database) ListAutoposts(ctx context.Context, status string, cursor int64, limit int) ([]models.Autopost, error) {
	rows, err := d.db.QueryContext(ctx, SelectAutopostsPageQuery,
		status, status, cursor, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list autoposts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	autoposts := []models.Autopost{}
	for rows.Next() {
		autopost, err := scanAutopost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan autopost: %w", err)
		}
		autoposts = append(autoposts, *autopost)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate autoposts: %w", err)
	}
	return autoposts, nil
}

// ReleaseDue flips every scheduled entry with scheduled_at <= until into
// publishing and returns the released records.
func (d *Database) ReleaseDue(ctx context.Context, until time.Time) ([]models.Autopost, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin release transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, SelectDueAutopostIDsQuery, until.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to select due autoposts: %w", err)
	}

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan due autopost id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to iterate due autoposts: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("failed to close due autopost rows: %w", err)
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, ReleaseAutopostQuery, id); err != nil {
			return nil, fmt.Errorf("failed to release autopost %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit release: %w", err)
	}

	released := []models.Autopost{}
	for _, id := range ids {
		autopost, err := d.GetAutopost(ctx, id)
		if err != nil {
			return nil, err
		}
		if autopost != nil {
			released = append(released, *autopost)
		}
	}
	return released, nil
}

// MarkPublished records the feed post that an autopost was published as.
func (d *Database) MarkPublished(ctx context.Context, id, publishedPostID int64) error {
	result, err := d.db.ExecContext(ctx, MarkAutopostPublishedQuery, publishedPostID, id)
	if err != nil {
		return fmt.Errorf("failed to mark autopost published: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read publish update result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// InsertFeedPost persists a published rendition and returns the stored record.
func (d *Database) InsertFeedPost(ctx context.Context, post *models.FeedPost) (*models.FeedPost, error) {
	emotionState, err := marshalJSON(post.EmotionState)
	if err != nil {
		return nil, fmt.Errorf("failed to encode emotion state: %w", err)
	}
	metadata, err := marshalJSON(post.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	publishedAt := post.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}

	result, err := d.db.ExecContext(ctx, InsertFeedPostQuery,
		post.AuthorID,
		post.Body,
		post.Mood,
		emotionState,
		post.MediaURL,
		post.PosterURL,
		post.DurationSeconds,
		metadata,
		publishedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert feed post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted feed post id: %w", err)
	}
	return d.GetFeedPost(ctx, id)
}

// GetFeedPost returns the feed post with the given id, or nil when absent.
func (d *Database) GetFeedPost(ctx context.Context, id int64) (*models.FeedPost, error) {
	var (
		post         models.FeedPost
		emotionState sql.NullString
		metadata     sql.NullString
	)

	err := d.db.QueryRowContext(ctx, SelectFeedPostByIDQuery, id).Scan(
		&post.ID,
		&post.AuthorID,
		&post.Body,
		&post.Mood,
		&emotionState,
		&post.MediaURL,
		&post.PosterURL,
		&post.DurationSeconds,
		&metadata,
		&post.PublishedAt,
		&post.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed post: %w", err)
	}

	if err := unmarshalJSON(emotionState, &post.EmotionState); err != nil {
		return nil, fmt.Errorf("failed to decode emotion state: %w", err)
	}
	if err := unmarshalJSON(metadata, &post.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return &post, nil
}

// CleanupPublished deletes published entries older than the retention window.
func (d *Database) CleanupPublished(ctx context.Context, retentionDays int) (int64, error) {
	result, err := d.db.ExecContext(ctx, DeleteOldPublishedAutopostsQuery, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up published autoposts: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read cleanup result: %w", err)
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAutopost(row rowScanner) (*models.Autopost, error) {
	var (
		autopost     models.Autopost
		emotionState sql.NullString
		metadata     sql.NullString
		inspirations sql.NullString
		audience     sql.NullString
		hashtags     sql.NullString
		status       string
		ctaLabel     sql.NullString
		ctaURL       sql.NullString
	)

	err := row.Scan(
		&autopost.ID,
		&autopost.OwnerID,
		&autopost.Body,
		&autopost.Mood,
		&emotionState,
		&autopost.AssetURL,
		&autopost.MediaURL,
		&autopost.PosterURL,
		&autopost.DurationSeconds,
		&metadata,
		&status,
		&autopost.ScheduledAt,
		&autopost.PublishedPostID,
		&autopost.CreativeType,
		&autopost.Title,
		&autopost.Summary,
		&inspirations,
		&audience,
		&hashtags,
		&ctaLabel,
		&ctaURL,
		&autopost.ResponseBody,
		&autopost.DelaySeconds,
		&autopost.CreatedAt,
		&autopost.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	autopost.Status = models.AutopostStatus(status)

	if err := unmarshalJSON(emotionState, &autopost.EmotionState); err != nil {
		return nil, fmt.Errorf("failed to decode emotion state: %w", err)
	}
	if err := unmarshalJSON(metadata, &autopost.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if err := unmarshalJSON(inspirations, &autopost.Inspirations); err != nil {
		return nil, fmt.Errorf("failed to decode inspirations: %w", err)
	}
	if err := unmarshalJSON(hashtags, &autopost.Hashtags); err != nil {
		return nil, fmt.Errorf("failed to decode hashtags: %w", err)
	}

	if audience.Valid && audience.String != "" {
		value := models.Audience(audience.String)
		autopost.Audience = &value
	}

	if ctaLabel.Valid && ctaLabel.String != "" {
		autopost.CallToActionLabel = &ctaLabel.String
	}
	if ctaURL.Valid && ctaURL.String != "" {
		autopost.CallToActionURL = &ctaURL.String
	}
	if autopost.CallToActionLabel != nil || autopost.CallToActionURL != nil {
		autopost.CallToAction = &models.CallToAction{
			Label: autopost.CallToActionLabel,
			URL:   autopost.CallToActionURL,
		}
	}

	return &autopost, nil
}

// marshalJSON encodes a value for a nullable TEXT column, storing NULL for
// nil maps and slices.
func marshalJSON(v any) (*string, error) {
	switch value := v.(type) {
	case map[string]any:
		if value == nil {
			return nil, nil
		}
	case []string:
		if value == nil {
			return nil, nil
		}
	case nil:
		return nil, nil
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	text := string(encoded)
	return &text, nil
}

func unmarshalJSON(column sql.NullString, target any) error {
	if !column.Valid || column.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(column.String), target)
}

func audienceString(a *models.Audience) *string {
	if a == nil {
		return nil
	}
	s := string(*a)
	return &s
}

func ctaLabel(a *models.Autopost) *string {
	if a.CallToActionLabel != nil {
		return a.CallToActionLabel
	}
	if a.CallToAction != nil {
		return a.CallToAction.Label
	}
	return nil
}

func ctaURL(a *models.Autopost) *string {
	if a.CallToActionURL != nil {
		return a.CallToActionURL
	}
	if a.CallToAction != nil {
		return a.CallToAction.URL
	}
	return nil
}
