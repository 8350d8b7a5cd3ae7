package autopost

import (
	"net/url"
	"regexp"
	"strings"

	"autopostq/internal/models"
)

// QueueEntry decorates a stored autopost with the derived, never-persisted
// projection: normalized details, feed hints, promotion flag, sentiment
// signals, and the classified card variant. Derivation is recomputed fresh
// on every fetch; nothing here mutates the underlying record.
type QueueEntry struct {
	models.Autopost

	Details          *Details          `json:"details"`
	FeedHints        *FeedHints        `json:"feedHints"`
	IsPromoted       bool              `json:"isPromoted"`
	SentimentSignals []SentimentSignal `json:"sentimentSignals"`
	Variant          CreativeType      `json:"variant"`
}

// MapEntry runs the full normalization pipeline over a raw autopost record.
func MapEntry(raw models.Autopost) *QueueEntry {
	details := ExtractDetails(raw.Metadata)

	hints := mergeFeedHints(raw, details)

	signals := NormalizeSentiment(anyMap(raw.EmotionState))
	if len(signals) == 0 {
		signals = AnalyzeBody(raw.Body)
	}

	entry := &QueueEntry{
		Autopost:         raw,
		Details:          details,
		FeedHints:        hints,
		IsPromoted:       hints != nil && hints.IsPromoted,
		SentimentSignals: signals,
	}
	entry.Variant = Classify(entry)
	return entry
}

// MapEntries maps a page of raw records, preserving order.
func MapEntries(raw []models.Autopost) []*QueueEntry {
	entries := make([]*QueueEntry, 0, len(raw))
	for _, record := range raw {
		entries = append(entries, MapEntry(record))
	}
	return entries
}

// mergeFeedHints prefers hints extracted from the metadata details and falls
// back to a direct feedHints/feed_hints key on the metadata itself.
func mergeFeedHints(raw models.Autopost, details *Details) *FeedHints {
	if details != nil && details.FeedHints != nil {
		return details.FeedHints
	}
	metadata := AsRecord(anyMap(raw.Metadata))
	if metadata == nil {
		return nil
	}
	if hintsValue, ok := PickValue(metadata, "feedHints", "feed_hints"); ok {
		return ParseFeedHints(hintsValue)
	}
	return nil
}

// PrimarySentiment returns the leading sentiment signal, or nil when the
// entry carries none.
func (e *QueueEntry) PrimarySentiment() *SentimentSignal {
	if len(e.SentimentSignals) == 0 {
		return nil
	}
	return &e.SentimentSignals[0]
}

// ResolveCallToAction picks the single authoritative CTA for an entry:
// metadata details first, then the typed callToAction object, then the
// legacy flat label/url fields. Nil only when no source has content.
func (e *QueueEntry) ResolveCallToAction() *models.CallToAction {
	if e.Details != nil && !e.Details.CallToAction.Empty() {
		return e.Details.CallToAction
	}
	if !e.CallToAction.Empty() {
		return e.CallToAction
	}

	label := deref(e.CallToActionLabel)
	url := deref(e.CallToActionURL)
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

// CollectHashtags unions detail and entry hashtags into one normalized set.
func (e *QueueEntry) CollectHashtags() []string {
	var combined []string
	if e.Details != nil {
		combined = append(combined, e.Details.Hashtags...)
	}
	combined = append(combined, e.Hashtags...)
	return NormalizeHashtags(combined)
}

// CollectInspirations deduplicates the extracted inspiration sources.
func (e *QueueEntry) CollectInspirations() []string {
	if e.Details == nil {
		return []string{}
	}
	return stringList(Dedupe(e.Details.Inspirations))
}

// NormalizeHashtags prefixes each tag with "#" and removes case-insensitive
// duplicates, keeping the first-seen original casing.
func NormalizeHashtags(values []string) []string {
	prefixed := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			trimmed = "#" + trimmed
		}
		prefixed = append(prefixed, trimmed)
	}
	return stringList(Dedupe(prefixed))
}

var (
	hashtagInputSeparators = regexp.MustCompile(`[#,\s]+`)
	hashtagInvalidChars    = regexp.MustCompile(`[^a-z0-9]`)
)

// SanitizeHashtagInput turns free-form operator input into clean lowercase
// hashtags: split on hashes/commas/whitespace, strip non-alphanumerics,
// prefix with "#", drop empties and duplicates.
func SanitizeHashtagInput(value string) []string {
	seen := make(map[string]struct{})
	result := []string{}
	for _, part := range hashtagInputSeparators.Split(value, -1) {
		cleaned := hashtagInvalidChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(part)), "")
		if cleaned == "" {
			continue
		}
		tag := "#" + cleaned
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}

// IsSafeExternalURL reports whether a CTA target parses as an absolute
// http(s) URL. Anything else is rejected rather than rendered.
func IsSafeExternalURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
