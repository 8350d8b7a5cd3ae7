package autopost

import "regexp"

// FeedHints is the placement/promotion record producers attach to an entry.
// Every field is optional; producers never converged on one casing, so both
// camel and snake keys are read.
type FeedHints struct {
	Placement           string   `json:"placement,omitempty"`
	IsPromoted          bool     `json:"isPromoted,omitempty"`
	CampaignID          string   `json:"campaignId,omitempty"`
	Brand               string   `json:"brand,omitempty"`
	Objective           string   `json:"objective,omitempty"`
	VariantKey          string   `json:"variantKey,omitempty"`
	SentimentLabel      string   `json:"sentimentLabel,omitempty"`
	SentimentConfidence *float64 `json:"sentimentConfidence,omitempty"`
	AutopostID          *int64   `json:"autopostId,omitempty"`
	Status              string   `json:"status,omitempty"`
	Categories          []string `json:"categories,omitempty"`
}

var categorySeparators = regexp.MustCompile(`[,\n]+`)

// ParseFeedHints decodes a loosely-typed feed hints value. Non-object input
// yields nil; malformed fields are dropped rather than failing the decode.
func ParseFeedHints(v any) *FeedHints {
	record := AsRecord(v)
	if record == nil {
		return nil
	}

	hints := &FeedHints{
		Placement:      PickString(record, "placement"),
		CampaignID:     PickString(record, "campaignId", "campaign_id"),
		Brand:          PickString(record, "brand", "brandName", "brand_name"),
		Objective:      PickString(record, "objective"),
		VariantKey:     PickString(record, "variantKey", "variant_key"),
		SentimentLabel: PickString(record, "sentimentLabel", "sentiment_label"),
		Status:         PickString(record, "status"),
		Categories:     PickStringList(record, categorySeparators, "categories", "category"),
	}

	if promoted, ok := PickBool(record, "isPromoted", "is_promoted", "promoted"); ok {
		hints.IsPromoted = promoted
	}
	if confidence, ok := PickNumber(record, "sentimentConfidence", "sentiment_confidence"); ok {
		clamped := clampConfidence(confidence)
		hints.SentimentConfidence = &clamped
	}
	if id, ok := PickNumber(record, "autopostId", "autopost_id"); ok {
		autopostID := int64(id)
		hints.AutopostID = &autopostID
	}

	return hints
}
