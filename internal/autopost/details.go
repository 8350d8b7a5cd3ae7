package autopost

import (
	"regexp"

	"autopostq/internal/models"
)

// Details is the normalized projection of an entry's opaque metadata bag.
// Fields are extracted independently; a malformed field never blocks the
// extraction of its siblings.
type Details struct {
	CreativeType    string               `json:"creativeType,omitempty"`
	Title           string               `json:"title,omitempty"`
	Summary         string               `json:"summary,omitempty"`
	Body            string               `json:"body,omitempty"`
	Inspirations    []string             `json:"inspirations"`
	Hashtags        []string             `json:"hashtags"`
	Audience        string               `json:"audience,omitempty"`
	AdaptiveProfile Record               `json:"adaptiveProfile,omitempty"`
	FeedHints       *FeedHints           `json:"feedHints,omitempty"`
	CallToAction    *models.CallToAction `json:"callToAction,omitempty"`
	AssetURL        string               `json:"assetUrl,omitempty"`
	PosterURL       string               `json:"posterUrl,omitempty"`
	MediaURL        string               `json:"mediaUrl,omitempty"`
	DurationSeconds *float64             `json:"durationSeconds,omitempty"`
	ScheduledAt     string               `json:"scheduledAt,omitempty"`
	ConnectionDream Record               `json:"connectionDream,omitempty"`
}

var (
	// Campaign producers wrap the interesting fields in one of several
	// container keys; bare producers write them at the top level.
	detailContainerKeys = []string{"autopost", "creative", "payload", "entry"}

	inspirationSeparators = regexp.MustCompile(`[,\n]+`)
	hashtagSeparators     = regexp.MustCompile(`[#,\s]+`)
)

// ExtractDetails parses an opaque metadata value into a structured Details.
// It returns nil when metadata is absent or not a JSON object; everything
// else degrades field by field, never erroring.
func ExtractDetails(metadata any) *Details {
	container := AsRecord(metadata)
	if container == nil {
		return nil
	}

	candidate := PickRecord(container, detailContainerKeys...)
	if candidate == nil {
		candidate = container
	}

	details := &Details{
		CreativeType: PickString(candidate, "creativeType", "creative_type", "type"),
		Title:        PickString(candidate, "title", "headline"),
		Summary:      PickString(candidate, "summary", "body", "description"),
		Body:         PickString(candidate, "body", "message", "text"),
		Audience:     PickString(candidate, "audience", "visibility"),
		AssetURL:     PickString(candidate, "assetUrl", "asset_url", "mediaUrl", "media_url"),
		PosterURL:    PickString(candidate, "posterUrl", "poster_url", "thumbnail"),
		MediaURL:     PickString(candidate, "mediaUrl", "media_url"),
		ScheduledAt:  PickString(candidate, "scheduledAt", "scheduled_at"),

		Inspirations: stringList(PickStringList(candidate, inspirationSeparators, "inspirations", "inspiration_sources")),
		Hashtags:     stringList(PickStringList(candidate, hashtagSeparators, "hashtags", "tags")),

		AdaptiveProfile: PickRecord(candidate, "adaptiveProfile", "adaptive_profile"),
		ConnectionDream: PickRecord(candidate, "connectionDream", "connection_dream"),
	}

	if duration, ok := PickNumber(candidate, "durationSeconds", "duration_seconds"); ok {
		details.DurationSeconds = &duration
	}

	if hintsValue, ok := PickValue(candidate, "feedHints", "feed_hints"); ok {
		details.FeedHints = ParseFeedHints(hintsValue)
	}

	details.CallToAction = extractCallToAction(candidate)

	return details
}

// extractCallToAction resolves a CTA from flat label/url keys first, falling
// back to a nested callToAction record. A CTA with neither label nor URL is
// treated as absent.
func extractCallToAction(candidate Record) *models.CallToAction {
	nested := PickRecord(candidate, "callToAction", "call_to_action")

	label := PickString(candidate, "callToActionLabel", "ctaLabel")
	if label == "" {
		label = PickString(nested, "label", "text")
	}
	url := PickString(candidate, "callToActionUrl", "ctaUrl")
	if url == "" {
		url = PickString(nested, "url", "href")
	}

	if label == "" && url == "" {
		return nil
	}

	cta := &models.CallToAction{}
	if label != "" {
		cta.Label = &label
	}
	if url != "" {
		cta.URL = &url
	}
	return cta
}

// stringList guarantees empty-not-nil for list fields.
func stringList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
