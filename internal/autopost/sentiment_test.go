package autopost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSentiment_AggregateArray(t *testing.T) {
	state := Record{
		"aggregate": []any{
			Record{"label": "joy", "confidence": 0.9},
			Record{"label": "calm", "confidence": 0.4},
		},
	}

	signals := NormalizeSentiment(state)

	require.Len(t, signals, 2)
	assert.Equal(t, SentimentSignal{Label: "joy", Confidence: 0.9}, signals[0])
	assert.Equal(t, SentimentSignal{Label: "calm", Confidence: 0.4}, signals[1])
}

func TestNormalizeSentiment_ClampsConfidence(t *testing.T) {
	tests := []struct {
		name     string
		state    any
		expected []SentimentSignal
	}{
		{
			name:     "above one",
			state:    Record{"aggregate": []any{Record{"label": "joy", "confidence": 1.4}}},
			expected: []SentimentSignal{{Label: "joy", Confidence: 1}},
		},
		{
			name:     "below zero",
			state:    Record{"aggregate": []any{Record{"label": "dread", "confidence": -0.3}}},
			expected: []SentimentSignal{{Label: "dread", Confidence: 0}},
		},
		{
			name:     "single object above one",
			state:    Record{"label": "hope", "confidence": 7.0},
			expected: []SentimentSignal{{Label: "hope", Confidence: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSentiment(tt.state))
		})
	}
}

func TestNormalizeSentiment_SingleObjectDefaultsConfidence(t *testing.T) {
	tests := []struct {
		name  string
		state any
	}{
		{"missing confidence", Record{"label": "serene"}},
		{"non-numeric confidence", Record{"label": "serene", "confidence": "very"}},
		{"string number confidence", Record{"label": "serene", "confidence": "0.9"}},
		{"null confidence", Record{"label": "serene", "confidence": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := NormalizeSentiment(tt.state)
			require.Len(t, signals, 1)
			assert.Equal(t, "serene", signals[0].Label)
			assert.Equal(t, 0.5, signals[0].Confidence)
		})
	}
}

func TestNormalizeSentiment_DropsMalformedElements(t *testing.T) {
	state := Record{
		"aggregate": []any{
			Record{"label": "joy", "confidence": 0.8},
			Record{"confidence": 0.9},                    // missing label
			Record{"label": "calm"},                      // missing confidence
			Record{"label": 42, "confidence": 0.5},       // non-string label
			Record{"label": "hope", "confidence": "0.7"}, // string-typed number
			"not a record",
			nil,
		},
	}

	signals := NormalizeSentiment(state)

	require.Len(t, signals, 1)
	assert.Equal(t, "joy", signals[0].Label)
}

func TestNormalizeSentiment_EmptyNotNil(t *testing.T) {
	tests := []struct {
		name  string
		state any
	}{
		{"nil input", nil},
		{"string input", "happy"},
		{"array input", []any{"joy"}},
		{"number input", 0.9},
		{"object without label or aggregate", Record{"mood": "fine"}},
		{"aggregate not an array", Record{"aggregate": "joy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := NormalizeSentiment(tt.state)
			assert.NotNil(t, signals)
			assert.Empty(t, signals)
		})
	}
}

func TestAnalyzeBody(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		expectedLabel string
	}{
		{"positive text", "What a wonderful, beautiful morning. I love this!", "positive"},
		{"negative text", "This is terrible and I hate everything about it.", "negative"},
		{"neutral text", "The meeting is at three on Tuesday.", "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := AnalyzeBody(tt.text)
			require.Len(t, signals, 1)
			assert.Equal(t, tt.expectedLabel, signals[0].Label)
			assert.GreaterOrEqual(t, signals[0].Confidence, 0.0)
			assert.LessOrEqual(t, signals[0].Confidence, 1.0)
		})
	}
}

func TestAnalyzeBody_EmptyText(t *testing.T) {
	assert.Empty(t, AnalyzeBody(""))
	assert.Empty(t, AnalyzeBody("   \n\t"))
	assert.NotNil(t, AnalyzeBody(""))
}
