package database

const autopostColumns = `
	id, owner_id, body, mood, emotion_state,
	asset_url, media_url, poster_url, duration_seconds,
	metadata, status, scheduled_at, published_post_id,
	creative_type, title, summary, inspirations, audience, hashtags,
	cta_label, cta_url, response_body, delay_seconds,
	created_at, updated_at
`

// Autopost queries
const (
	InsertAutopostQuery = `
		INSERT INTO autoposts (
			owner_id, body, mood, emotion_state,
			asset_url, media_url, poster_url, duration_seconds,
			metadata, status, scheduled_at,
			creative_type, title, summary, inspirations, audience, hashtags,
			cta_label, cta_url, response_body, delay_seconds
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	SelectAutopostByIDQuery = `
		SELECT ` + autopostColumns + `
		FROM autoposts
		WHERE id = ?
	`

	SelectAutopostsPageQuery = `
		SELECT ` + autopostColumns + `
		FROM autoposts
		WHERE (? = '' OR status = ?)
		  AND (? = 0 OR id < ?)
		ORDER BY id DESC
		LIMIT ?
	`

	SelectDueAutopostIDsQuery = `
		SELECT id
		FROM autoposts
		WHERE status = 'scheduled' AND scheduled_at <= ?
		ORDER BY id
	`

	ReleaseAutopostQuery = `
		UPDATE autoposts
		SET status = 'publishing'
		WHERE id = ? AND status = 'scheduled'
	`

	MarkAutopostPublishedQuery = `
		UPDATE autoposts
		SET status = 'published', published_post_id = ?
		WHERE id = ?
	`

	DeleteOldPublishedAutopostsQuery = `
		DELETE FROM autoposts
		WHERE status = 'published'
		  AND updated_at < datetime('now', '-' || ? || ' days')
	`
)

// Feed post queries
const (
	InsertFeedPostQuery = `
		INSERT INTO feed_posts (
			author_id, body, mood, emotion_state,
			media_url, poster_url, duration_seconds, metadata, published_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	SelectFeedPostByIDQuery = `
		SELECT id, author_id, body, mood, emotion_state,
		       media_url, poster_url, duration_seconds, metadata,
		       published_at, created_at
		FROM feed_posts
		WHERE id = ?
	`
)
