package autopost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"autopostq/internal/models"
)

func entryWith(metadata map[string]any, mutate ...func(*models.Autopost)) *QueueEntry {
	raw := models.Autopost{
		ID:       1,
		OwnerID:  "owner-1",
		Body:     "body",
		Status:   models.AutopostStatusScheduled,
		Metadata: metadata,
	}
	for _, fn := range mutate {
		fn(&raw)
	}
	return MapEntry(raw)
}

func TestClassify_Variants(t *testing.T) {
	tests := []struct {
		name     string
		entry    *QueueEntry
		expected CreativeType
	}{
		{
			name:     "connection dream record in metadata",
			entry:    entryWith(Record{"connectionDream": Record{"tone": "aspirational"}}),
			expected: CreativeConnectionDream,
		},
		{
			name:     "dream alias record",
			entry:    entryWith(Record{"dream": Record{"tone": "wistful"}}),
			expected: CreativeConnectionDream,
		},
		{
			name:     "explicit connectiondream type tag",
			entry:    entryWith(Record{"type": "connectionDream"}),
			expected: CreativeConnectionDream,
		},
		{
			name:     "promoted feed hints",
			entry:    entryWith(Record{"feedHints": Record{"isPromoted": true}}),
			expected: CreativeSponsoredCampaign,
		},
		{
			name:     "ad campaign record",
			entry:    entryWith(Record{"adCampaign": Record{"id": "cmp-1"}}),
			expected: CreativeSponsoredCampaign,
		},
		{
			name:     "campaign alias record",
			entry:    entryWith(Record{"campaign": Record{"id": "cmp-2"}}),
			expected: CreativeSponsoredCampaign,
		},
		{
			name:     "explicit adcampaign type tag",
			entry:    entryWith(Record{"type": "AdCampaign"}),
			expected: CreativeSponsoredCampaign,
		},
		{
			name:     "dream video creative type",
			entry:    entryWith(Record{"creativeType": "dreamvideo"}),
			expected: CreativeDreamVideo,
		},
		{
			name:     "dream_video alias",
			entry:    entryWith(Record{"creativeType": "dream_video"}),
			expected: CreativeDreamVideo,
		},
		{
			name:     "bare dream creative type",
			entry:    entryWith(nil, func(a *models.Autopost) { a.CreativeType = strPtr("dream") }),
			expected: CreativeDreamVideo,
		},
		{
			name:     "poem via metadata type with empty creative type",
			entry:    entryWith(Record{"type": "poem"}),
			expected: CreativePoem,
		},
		{
			name:     "poem via typed field",
			entry:    entryWith(nil, func(a *models.Autopost) { a.CreativeType = strPtr("Poem") }),
			expected: CreativePoem,
		},
		{
			name:     "story creative type",
			entry:    entryWith(Record{"creativeType": "story"}),
			expected: CreativeStory,
		},
		{
			name:     "narrative alias",
			entry:    entryWith(Record{"creativeType": "narrative"}),
			expected: CreativeStory,
		},
		{
			name:     "image art creative type",
			entry:    entryWith(Record{"creativeType": "imageArt"}),
			expected: CreativeImageArt,
		},
		{
			name:     "image substring in metadata type",
			entry:    entryWith(Record{"type": "generated-image-v2"}),
			expected: CreativeImageArt,
		},
		{
			name:     "image category in feed hints",
			entry:    entryWith(Record{"feedHints": Record{"categories": []any{"ImageWall"}}}),
			expected: CreativeImageArt,
		},
		{
			name:     "nothing matches",
			entry:    entryWith(Record{"note": "plain"}),
			expected: CreativeGeneric,
		},
		{
			name:     "nil metadata",
			entry:    entryWith(nil),
			expected: CreativeGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.entry))
		})
	}
}

func TestClassify_Precedence(t *testing.T) {
	t.Run("connection dream outranks sponsored campaign", func(t *testing.T) {
		entry := entryWith(Record{
			"connectionDream": Record{"tone": "aspirational"},
			"adCampaign":      Record{"id": "cmp-1"},
			"feedHints":       Record{"isPromoted": true},
		})
		assert.Equal(t, CreativeConnectionDream, Classify(entry))
	})

	t.Run("promotion outranks creative type", func(t *testing.T) {
		entry := entryWith(
			Record{"feedHints": Record{"isPromoted": true}},
			func(a *models.Autopost) { a.CreativeType = strPtr("dreamvideo") },
		)
		assert.Equal(t, CreativeSponsoredCampaign, Classify(entry))
	})

	t.Run("dream video outranks poem tag", func(t *testing.T) {
		entry := entryWith(Record{"creativeType": "dreamvideo", "type": "poem"})
		assert.Equal(t, CreativeDreamVideo, Classify(entry))
	})

	t.Run("poem outranks image substring", func(t *testing.T) {
		entry := entryWith(Record{"creativeType": "poem", "type": "poem-image"})
		assert.Equal(t, CreativePoem, Classify(entry))
	})
}

func TestClassify_Idempotent(t *testing.T) {
	entries := []*QueueEntry{
		entryWith(Record{"type": "poem"}),
		entryWith(Record{"adCampaign": Record{"id": "cmp-1"}}),
		entryWith(nil),
	}

	for _, entry := range entries {
		first := Classify(entry)
		second := Classify(entry)
		assert.Equal(t, first, second)
		assert.Equal(t, first, entry.Variant, "MapEntry stores the same classification")
	}
}

func TestClassify_Total(t *testing.T) {
	known := map[CreativeType]bool{
		CreativeConnectionDream:   true,
		CreativeSponsoredCampaign: true,
		CreativeDreamVideo:        true,
		CreativePoem:              true,
		CreativeStory:             true,
		CreativeImageArt:          true,
		CreativeGeneric:           true,
	}

	weird := []*QueueEntry{
		entryWith(Record{"type": 12.5}),
		entryWith(Record{"creativeType": []any{"poem"}}),
		entryWith(Record{"feedHints": "promoted"}),
		entryWith(Record{"autopost": Record{"type": nil}}),
	}

	for _, entry := range weird {
		assert.True(t, known[Classify(entry)], "classifier must always land on a known variant")
	}
}

func TestResolveCreativeType_FallbackOrder(t *testing.T) {
	t.Run("producer container wins over top-level keys", func(t *testing.T) {
		entry := entryWith(Record{
			"creativeType": "story",
			"autopost":     Record{"creativeType": "poem"},
		})
		// the autopost container is the extraction candidate, so its
		// creative type is what the details carry
		assert.Equal(t, CreativePoem, Classify(entry))
	})

	t.Run("nested container consulted before typed field", func(t *testing.T) {
		entry := entryWith(
			Record{"payload": Record{"creative_type": "imageart"}},
			func(a *models.Autopost) { a.CreativeType = strPtr("poem") },
		)
		assert.Equal(t, CreativeImageArt, Classify(entry))
	})
}

func strPtr(s string) *string { return &s }
