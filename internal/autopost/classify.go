package autopost

import "strings"

// CreativeType is the content genre of an autopost, used to select a
// rendering template downstream.
type CreativeType string

const (
	CreativeConnectionDream   CreativeType = "connectionDream"
	CreativeSponsoredCampaign CreativeType = "sponsoredCampaign"
	CreativeDreamVideo        CreativeType = "dreamVideo"
	CreativePoem              CreativeType = "poem"
	CreativeStory             CreativeType = "story"
	CreativeImageArt          CreativeType = "imageArt"
	CreativeGeneric           CreativeType = "generic"
)

// classifyInput precomputes the redundant type locations once per entry.
// The same logical field may live in the typed entry fields, the metadata
// bag, or the feed hints; the producing services never converged on one
// schema, so all three are consulted in a fixed fallback order.
type classifyInput struct {
	entry        *QueueEntry
	metadata     Record
	creativeType string // lowered, resolved through the fallback chain
	metaType     string // lowered metadata type tag
	detailType   string // lowered creative type from extracted details
}

// classifyRule pairs a variant with its predicate. Rules are evaluated in
// slice order and the first match wins; the ordering is load-bearing.
type classifyRule struct {
	variant CreativeType
	matches func(in *classifyInput) bool
}

var classifyRules = []classifyRule{
	{CreativeConnectionDream, matchConnectionDream},
	{CreativeSponsoredCampaign, matchSponsoredCampaign},
	{CreativeDreamVideo, matchDreamVideo},
	{CreativePoem, matchPoem},
	{CreativeStory, matchStory},
	{CreativeImageArt, matchImageArt},
}

// Classify decides which creative-card variant an entry renders as. It is a
// pure, total function of the entry's content: every entry maps to exactly
// one variant and the same entry always yields the same answer.
func Classify(entry *QueueEntry) CreativeType {
	in := newClassifyInput(entry)
	for _, rule := range classifyRules {
		if rule.matches(in) {
			return rule.variant
		}
	}
	return CreativeGeneric
}

func newClassifyInput(entry *QueueEntry) *classifyInput {
	metadata := AsRecord(anyMap(entry.Metadata))

	in := &classifyInput{
		entry:    entry,
		metadata: metadata,
		metaType: strings.ToLower(PickString(metadata, "type", "contentType", "metadataType")),
	}
	if entry.Details != nil {
		in.detailType = strings.ToLower(entry.Details.CreativeType)
	}
	in.creativeType = resolveCreativeType(entry, metadata)
	return in
}

// resolveCreativeType walks the fallback chain for the creative type string:
// extracted details, top-level metadata keys, the nested producer container,
// then the legacy typed field.
func resolveCreativeType(entry *QueueEntry, metadata Record) string {
	if entry.Details != nil && entry.Details.CreativeType != "" {
		return strings.ToLower(entry.Details.CreativeType)
	}
	if root := PickString(metadata, "creativeType", "creative_type"); root != "" {
		return strings.ToLower(root)
	}
	nested := PickRecord(metadata, detailContainerKeys...)
	if nestedType := PickString(nested, "creativeType", "creative_type", "type"); nestedType != "" {
		return strings.ToLower(nestedType)
	}
	if entry.CreativeType != nil && *entry.CreativeType != "" {
		return strings.ToLower(*entry.CreativeType)
	}
	return strings.ToLower(PickString(nested, "type"))
}

func matchConnectionDream(in *classifyInput) bool {
	if in.entry.Details != nil && in.entry.Details.ConnectionDream != nil {
		return true
	}
	if PickRecord(in.metadata, "connectionDream", "dream") != nil {
		return true
	}
	return in.metaType == "connectiondream" || in.detailType == "connectiondream"
}

func matchSponsoredCampaign(in *classifyInput) bool {
	if in.entry.IsPromoted {
		return true
	}
	if in.entry.FeedHints != nil && in.entry.FeedHints.IsPromoted {
		return true
	}
	if PickRecord(in.metadata, "adCampaign", "campaign", "ad_campaign") != nil {
		return true
	}
	return strings.EqualFold(PickString(in.metadata, "type"), "adcampaign")
}

func matchDreamVideo(in *classifyInput) bool {
	switch in.creativeType {
	case "dreamvideo", "dream_video", "dream":
		return true
	}
	return false
}

func matchPoem(in *classifyInput) bool {
	return in.creativeType == "poem" || in.detailType == "poem" ||
		strings.EqualFold(PickString(in.metadata, "type"), "poem")
}

func matchStory(in *classifyInput) bool {
	if in.creativeType == "story" || in.creativeType == "narrative" || in.detailType == "story" {
		return true
	}
	return strings.EqualFold(PickString(in.metadata, "type"), "story")
}

func matchImageArt(in *classifyInput) bool {
	switch in.creativeType {
	case "imageart", "image", "art":
		return true
	}
	if in.detailType == "imageart" {
		return true
	}
	if strings.Contains(strings.ToLower(PickString(in.metadata, "type")), "image") {
		return true
	}
	for _, category := range hintCategories(in.entry) {
		if strings.Contains(strings.ToLower(category), "image") {
			return true
		}
	}
	return false
}

// hintCategories prefers the categories extracted from metadata details over
// the entry-level feed hints.
func hintCategories(entry *QueueEntry) []string {
	if entry.Details != nil && entry.Details.FeedHints != nil && len(entry.Details.FeedHints.Categories) > 0 {
		return entry.Details.FeedHints.Categories
	}
	if entry.FeedHints != nil {
		return entry.FeedHints.Categories
	}
	return nil
}

func anyMap(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}
