package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"autopostq/internal/autopost"
	"autopostq/internal/constants"
	"autopostq/internal/errors"
	"autopostq/internal/metrics"
	"autopostq/internal/models"
)

// Store is the persistence boundary the queue service operates against.
type Store interface {
	InsertAutopost(ctx context.Context, entry *models.Autopost) (*models.Autopost, error)
	GetAutopost(ctx context.Context, id int64) (*models.Autopost, error)
	ListAutoposts(ctx context.Context, status string, cursor int64, limit int) ([]models.Autopost, error)
	ReleaseDue(ctx context.Context, until time.Time) ([]models.Autopost, error)
	MarkPublished(ctx context.Context, id, publishedPostID int64) error
	InsertFeedPost(ctx context.Context, post *models.FeedPost) (*models.FeedPost, error)
	CleanupPublished(ctx context.Context, retentionDays int) (int64, error)
	Ping(ctx context.Context) error
}

// QueueService owns the autopost queue lifecycle: enqueue, list, release,
// publish, retention.
type QueueService struct {
	store        Store
	logger       *logrus.Logger
	metrics      *metrics.Metrics
	defaultOwner string
}

func NewQueueService(store Store, logger *logrus.Logger, m *metrics.Metrics, defaultOwner string) *QueueService {
	if defaultOwner == "" {
		defaultOwner = constants.DefaultOwner
	}
	return &QueueService{
		store:        store,
		logger:       logger,
		metrics:      m,
		defaultOwner: defaultOwner,
	}
}

// ListResult is one page of queue entries plus the cursor for the next page.
type ListResult struct {
	Autoposts  []models.Autopost `json:"autoposts"`
	NextCursor *int64            `json:"nextCursor"`
}

// List returns entries newest-first. The cursor is the id of the last entry
// on the previous page; status "all" or "" matches every entry. The limit
// defaults to 25 and is capped at 100.
func (s *QueueService) List(ctx context.Context, status string, cursor int64, limit int) (*ListResult, error) {
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	if status == "all" {
		status = ""
	}

	entries, err := s.store.ListAutoposts(ctx, status, cursor, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to list autoposts")
	}

	result := &ListResult{Autoposts: entries}
	if len(entries) == limit {
		last := entries[len(entries)-1].ID
		result.NextCursor = &last
	}
	return result, nil
}

// CreateAutopostInput carries a validated generic enqueue request.
type CreateAutopostInput struct {
	OwnerID           string
	Body              string
	Mood              *string
	EmotionState      map[string]any
	Metadata          map[string]any
	ScheduledAt       time.Time
	AssetURL          *string
	MediaURL          *string
	PosterURL         *string
	DurationSeconds   *int
	CreativeType      *string
	Title             *string
	Summary           *string
	Inspirations      []string
	Audience          *models.Audience
	Hashtags          []string
	CallToAction      *models.CallToAction
	CallToActionLabel *string
	CallToActionURL   *string
	ResponseBody      *string
	DelaySeconds      *int
}

// CreateGeneric enqueues a plain autopost. The poster URL falls back to the
// media URL and the duration defaults to 30 seconds.
func (s *QueueService) CreateGeneric(ctx context.Context, input CreateAutopostInput) (*models.Autopost, error) {
	owner := input.OwnerID
	if owner == "" {
		owner = s.defaultOwner
	}

	entry := &models.Autopost{
		OwnerID:           owner,
		Body:              input.Body,
		Mood:              input.Mood,
		EmotionState:      input.EmotionState,
		Metadata:          input.Metadata,
		AssetURL:          input.AssetURL,
		MediaURL:          input.MediaURL,
		PosterURL:         ensurePosterURL(input.PosterURL, coalesce(input.MediaURL, input.AssetURL)),
		DurationSeconds:   ensureDuration(input.DurationSeconds),
		Status:            models.AutopostStatusScheduled,
		ScheduledAt:       input.ScheduledAt,
		CreativeType:      input.CreativeType,
		Title:             input.Title,
		Summary:           input.Summary,
		Inspirations:      input.Inspirations,
		Audience:          input.Audience,
		Hashtags:          emptyToNil(autopost.NormalizeHashtags(input.Hashtags)),
		CallToAction:      input.CallToAction,
		CallToActionLabel: coalesce(input.CallToActionLabel, ctaField(input.CallToAction, true)),
		CallToActionURL:   coalesce(input.CallToActionURL, ctaField(input.CallToAction, false)),
		ResponseBody:      input.ResponseBody,
		DelaySeconds:      input.DelaySeconds,
	}

	stored, err := s.store.InsertAutopost(ctx, entry)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to enqueue autopost")
	}

	if s.metrics != nil {
		s.metrics.AutopostCreated(strValue(stored.CreativeType))
	}
	s.logger.WithFields(logrus.Fields{
		"autopost_id":  stored.ID,
		"owner_id":     stored.OwnerID,
		"scheduled_at": stored.ScheduledAt,
	}).Info("Autopost enqueued")

	return stored, nil
}

// CampaignBrief carries a validated campaign enqueue request. Empty optional
// fields get the campaign defaults.
type CampaignBrief struct {
	CampaignID      string
	BrandName       string
	Objective       string
	CreativeType    string
	Title           string
	Summary         string
	Body            string
	Inspirations    []string
	Hashtags        []string
	AssetURL        *string
	PosterURL       *string
	MediaURL        *string
	DurationSeconds *int
	Audience        *models.Audience
	CallToAction    *models.CallToAction
	EmotionSignals  []autopost.SentimentSignal
	ScheduledAt     time.Time
	DelaySeconds    *int
}

var ownerSlugPattern = regexp.MustCompile(`\s+`)
var campaignSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// CreateCampaign enqueues a sponsored campaign entry with the full campaign
// metadata envelope (feed hints, ad campaign brief, adaptive profile).
func (s *QueueService) CreateCampaign(ctx context.Context, brief CampaignBrief) (*models.Autopost, error) {
	if brief.BrandName == "" {
		brief.BrandName = constants.DefaultCampaignBrand
	}
	if brief.Objective == "" {
		brief.Objective = constants.DefaultCampaignObjective
	}
	if brief.CampaignID == "" {
		slug := strings.Trim(campaignSlugPattern.ReplaceAllString(strings.ToLower(brief.Title), "-"), "-")
		brief.CampaignID = fmt.Sprintf("cmp-%s-%d", slug, time.Now().UnixMilli())
	}
	if len(brief.EmotionSignals) == 0 {
		brief.EmotionSignals = BuildEmotionSignals(nil)
	}
	if brief.Body == "" {
		brief.Body = fmt.Sprintf("%s\n\nTap to explore how %s elevates your next moment.", brief.Summary, brief.Title)
	}

	audience := models.AudiencePublic
	if brief.Audience != nil {
		audience = *brief.Audience
	}

	mood := brief.EmotionSignals[0].Label
	owner := ownerSlugPattern.ReplaceAllString(strings.ToLower(brief.BrandName), "-")

	input := CreateAutopostInput{
		OwnerID: owner,
		Body:    brief.Summary,
		Mood:    &mood,
		EmotionState: map[string]any{
			"aggregate":   signalRecords(brief.EmotionSignals),
			"lastUpdated": time.Now().UTC().Format(time.RFC3339),
		},
		Metadata:        buildCampaignMetadata(brief),
		ScheduledAt:     brief.ScheduledAt,
		AssetURL:        brief.AssetURL,
		MediaURL:        brief.MediaURL,
		PosterURL:       brief.PosterURL,
		DurationSeconds: ensureDuration(brief.DurationSeconds),
		CreativeType:    &brief.CreativeType,
		Title:           &brief.Title,
		Summary:         &brief.Summary,
		Inspirations:    brief.Inspirations,
		Audience:        &audience,
		Hashtags:        brief.Hashtags,
		CallToAction:    brief.CallToAction,
		ResponseBody:    &brief.Body,
		DelaySeconds:    brief.DelaySeconds,
	}

	return s.CreateGeneric(ctx, input)
}

// buildCampaignMetadata assembles the metadata envelope that downstream
// readers extract details, feed hints and the campaign brief from.
func buildCampaignMetadata(brief CampaignBrief) map[string]any {
	sentiment := autopost.SentimentSignal{Label: "balanced", Confidence: 0.5}
	if len(brief.EmotionSignals) > 0 {
		sentiment = brief.EmotionSignals[0]
	}

	feedHints := map[string]any{
		"placement":           "feed-ad",
		"isPromoted":          true,
		"campaignId":          brief.CampaignID,
		"brand":               brief.BrandName,
		"objective":           brief.Objective,
		"sentimentLabel":      sentiment.Label,
		"sentimentConfidence": sentiment.Confidence,
		"variantKey":          uuid.NewString(),
	}

	adaptiveProfile := map[string]any{
		"brandVoice":        brief.BrandName,
		"campaignObjective": brief.Objective,
		"emotionSignals":    signalRecords(brief.EmotionSignals),
	}

	return map[string]any{
		"autopost": map[string]any{
			"creativeType":    brief.CreativeType,
			"title":           brief.Title,
			"summary":         brief.Summary,
			"body":            brief.Body,
			"inspirations":    brief.Inspirations,
			"hashtags":        brief.Hashtags,
			"audience":        audienceValue(brief.Audience),
			"callToAction":    ctaRecord(brief.CallToAction),
			"assetUrl":        strAny(coalesce(brief.AssetURL, brief.MediaURL)),
			"posterUrl":       strAny(ensurePosterURL(brief.PosterURL, coalesce(brief.MediaURL, brief.AssetURL))),
			"mediaUrl":        strAny(coalesce(brief.MediaURL, brief.AssetURL)),
			"durationSeconds": *ensureDuration(brief.DurationSeconds),
			"scheduledAt":     brief.ScheduledAt.UTC().Format(time.RFC3339),
			"adaptiveProfile": adaptiveProfile,
			"feedHints":       feedHints,
			"connectionDream": map[string]any{
				"tone":               "aspirational",
				"highlightedEmotion": sentiment.Label,
				"confidence":         sentiment.Confidence,
			},
		},
		"adCampaign": map[string]any{
			"id":             brief.CampaignID,
			"brand":          brief.BrandName,
			"objective":      brief.Objective,
			"isPromoted":     true,
			"emotionSignals": signalRecords(brief.EmotionSignals),
			"callToAction":   ctaRecord(brief.CallToAction),
		},
	}
}

// BuildEmotionSignals decodes a loose sentiment payload from a campaign
// request. An array keeps only well-formed elements; a single object defaults
// the label to "uplifted" and the confidence to 0.72; anything else yields
// the default signal. Confidence is clamped to [0,1].
func BuildEmotionSignals(sentiment any) []autopost.SentimentSignal {
	defaultSignal := autopost.SentimentSignal{Label: "uplifted", Confidence: 0.72}

	switch value := sentiment.(type) {
	case []any:
		signals := []autopost.SentimentSignal{}
		for _, element := range value {
			record := autopost.AsRecord(element)
			if record == nil {
				continue
			}
			label, _ := record["label"].(string)
			confidence, ok := record["confidence"].(float64)
			if label == "" || !ok || math.IsNaN(confidence) || math.IsInf(confidence, 0) {
				continue
			}
			signals = append(signals, autopost.SentimentSignal{
				Label:      label,
				Confidence: clamp01(confidence),
			})
		}
		return signals
	case map[string]any:
		signal := defaultSignal
		if label, ok := value["label"].(string); ok && label != "" {
			signal.Label = label
		}
		if confidence, ok := value["confidence"].(float64); ok {
			signal.Confidence = clamp01(confidence)
		}
		return []autopost.SentimentSignal{signal}
	default:
		return []autopost.SentimentSignal{defaultSignal}
	}
}

// ReleaseDue moves every scheduled entry with scheduledAt <= until into
// publishing and returns the released entries.
func (s *QueueService) ReleaseDue(ctx context.Context, until time.Time) ([]models.Autopost, error) {
	released, err := s.store.ReleaseDue(ctx, until)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to release due autoposts")
	}

	if s.metrics != nil {
		s.metrics.AutopostsReleased(len(released))
	}
	if len(released) > 0 {
		s.logger.WithField("count", len(released)).Info("Released due autoposts")
	}
	return released, nil
}

// Publish turns an autopost into a feed post. Publishing an already published
// entry is a no-op returning the stored entry.
func (s *QueueService) Publish(ctx context.Context, id int64, publishedAt time.Time) (*models.Autopost, error) {
	entry, err := s.store.GetAutopost(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to load autopost")
	}
	if entry == nil {
		message := fmt.Sprintf("Autopost %d not found.", id)
		return nil, errors.New(errors.ErrCodeNotFound, message).WithUserMessage(message)
	}
	if entry.Status == models.AutopostStatusPublished {
		return entry, nil
	}

	post := &models.FeedPost{
		AuthorID:        entry.OwnerID,
		Body:            strValueOr(entry.ResponseBody, entry.Body),
		Mood:            entry.Mood,
		EmotionState:    entry.EmotionState,
		MediaURL:        coalesce(entry.MediaURL, entry.AssetURL),
		PosterURL:       entry.PosterURL,
		DurationSeconds: entry.DurationSeconds,
		Metadata:        buildFeedMetadata(entry),
		PublishedAt:     publishedAt,
	}

	storedPost, err := s.store.InsertFeedPost(ctx, post)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to create feed post")
	}

	if err := s.store.MarkPublished(ctx, entry.ID, storedPost.ID); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to mark autopost published")
	}

	published, err := s.store.GetAutopost(ctx, entry.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to reload published autopost")
	}

	if s.metrics != nil {
		s.metrics.AutopostPublished()
	}
	s.logger.WithFields(logrus.Fields{
		"autopost_id":  entry.ID,
		"feed_post_id": storedPost.ID,
	}).Info("Autopost published")

	return published, nil
}

// CleanupPublished removes published entries older than the retention window.
func (s *QueueService) CleanupPublished(ctx context.Context, retentionDays int) (int64, error) {
	deleted, err := s.store.CleanupPublished(ctx, retentionDays)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to clean up published autoposts")
	}
	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("Cleaned up old published autoposts")
	}
	return deleted, nil
}

// Ping reports store health.
func (s *QueueService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// buildFeedMetadata copies the entry metadata and stamps feed hints with the
// autopost id and the entry status at publish time.
func buildFeedMetadata(entry *models.Autopost) map[string]any {
	base := map[string]any{}
	for key, value := range entry.Metadata {
		base[key] = value
	}

	hints := map[string]any{}
	if section := autopost.AsRecord(base["autopost"]); section != nil {
		if existing := autopost.AsRecord(section["feedHints"]); existing != nil {
			for key, value := range existing {
				hints[key] = value
			}
		}
	}
	hints["isPromoted"] = true
	hints["autopostId"] = entry.ID
	hints["status"] = string(entry.Status)

	base["feedHints"] = hints
	base["autopostStatus"] = string(entry.Status)
	return base
}

func ensurePosterURL(posterURL, mediaURL *string) *string {
	if posterURL != nil && strings.TrimSpace(*posterURL) != "" {
		return posterURL
	}
	if mediaURL != nil && strings.TrimSpace(*mediaURL) != "" {
		return mediaURL
	}
	return nil
}

func ensureDuration(durationSeconds *int) *int {
	if durationSeconds != nil && *durationSeconds > 0 {
		return durationSeconds
	}
	fallback := constants.DefaultDurationSeconds
	return &fallback
}

func signalRecords(signals []autopost.SentimentSignal) []any {
	records := make([]any, 0, len(signals))
	for _, signal := range signals {
		records = append(records, map[string]any{
			"label":      signal.Label,
			"confidence": signal.Confidence,
		})
	}
	return records
}

func ctaRecord(cta *models.CallToAction) any {
	if cta.Empty() {
		return nil
	}
	record := map[string]any{}
	if cta.Label != nil && *cta.Label != "" {
		record["label"] = *cta.Label
	}
	if cta.URL != nil && *cta.URL != "" {
		record["url"] = *cta.URL
	}
	return record
}

func ctaField(cta *models.CallToAction, label bool) *string {
	if cta == nil {
		return nil
	}
	if label {
		return cta.Label
	}
	return cta.URL
}

func audienceValue(a *models.Audience) any {
	if a == nil {
		return string(models.AudiencePublic)
	}
	return string(*a)
}

func strAny(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strValueOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}

func coalesce(values ...*string) *string {
	for _, value := range values {
		if value != nil && strings.TrimSpace(*value) != "" {
			return value
		}
	}
	return nil
}

func emptyToNil(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
