package models

import "time"

// AutopostStatus tracks an entry through the queue lifecycle.
type AutopostStatus string

const (
	AutopostStatusScheduled  AutopostStatus = "scheduled"
	AutopostStatusPublishing AutopostStatus = "publishing"
	AutopostStatusPublished  AutopostStatus = "published"
)

// Audience values accepted on create. Unknown values are stored as-is; the
// queue does not enforce visibility semantics.
type Audience string

const (
	AudiencePublic  Audience = "public"
	AudienceFriends Audience = "friends"
	AudiencePrivate Audience = "private"
)

// CallToAction is a label/URL pair attached to campaign entries.
type CallToAction struct {
	Label *string `json:"label,omitempty"`
	URL   *string `json:"url,omitempty"`
}

// Empty reports whether neither the label nor the URL carries content.
func (c *CallToAction) Empty() bool {
	if c == nil {
		return true
	}
	hasLabel := c.Label != nil && *c.Label != ""
	hasURL := c.URL != nil && *c.URL != ""
	return !hasLabel && !hasURL
}

// Autopost is the canonical queue entry as persisted and served over the API.
// The typed campaign fields (CreativeType, Title, ...) are legacy duplicates
// of what producers also write into Metadata; readers must tolerate either
// location being populated.
type Autopost struct {
	ID      int64  `json:"id"`
	OwnerID string `json:"ownerId"`
	Body    string `json:"body"`

	Mood         *string        `json:"mood,omitempty"`
	EmotionState map[string]any `json:"emotionState,omitempty"`

	AssetURL        *string `json:"assetUrl,omitempty"`
	MediaURL        *string `json:"mediaUrl,omitempty"`
	PosterURL       *string `json:"posterUrl,omitempty"`
	DurationSeconds *int    `json:"durationSeconds,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`

	Status          AutopostStatus `json:"status"`
	ScheduledAt     time.Time      `json:"scheduledAt"`
	PublishedPostID *int64         `json:"publishedPostId,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`

	CreativeType      *string       `json:"creativeType,omitempty"`
	Title             *string       `json:"title,omitempty"`
	Summary           *string       `json:"summary,omitempty"`
	Inspirations      []string      `json:"inspirations,omitempty"`
	Audience          *Audience     `json:"audience,omitempty"`
	Hashtags          []string      `json:"hashtags,omitempty"`
	CallToAction      *CallToAction `json:"callToAction,omitempty"`
	CallToActionLabel *string       `json:"callToActionLabel,omitempty"`
	CallToActionURL   *string       `json:"callToActionUrl,omitempty"`
	ResponseBody      *string       `json:"responseBody,omitempty"`
	DelaySeconds      *int          `json:"delaySeconds,omitempty"`
}

// FeedPost is the published rendition of an autopost.
type FeedPost struct {
	ID              int64          `json:"id"`
	AuthorID        string         `json:"authorId"`
	Body            string         `json:"body"`
	Mood            *string        `json:"mood,omitempty"`
	EmotionState    map[string]any `json:"emotionState,omitempty"`
	MediaURL        *string        `json:"mediaUrl,omitempty"`
	PosterURL       *string        `json:"posterUrl,omitempty"`
	DurationSeconds *int           `json:"durationSeconds,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	PublishedAt     time.Time      `json:"publishedAt"`
	CreatedAt       time.Time      `json:"createdAt"`
}
