package autopost

import (
	"math"
	"strings"

	"github.com/jonreiter/govader"
)

// SentimentSignal is a detected emotional tone with a confidence in [0,1].
type SentimentSignal struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

const defaultSignalConfidence = 0.5

var vaderAnalyzer = govader.NewSentimentIntensityAnalyzer()

// NormalizeSentiment converts a loosely-typed emotion state value into an
// ordered list of sentiment signals. Input shapes tolerated, in order:
// an object with an "aggregate" array of {label, confidence} elements, or a
// single object carrying label/confidence fields. Anything else yields an
// empty list. Malformed elements are dropped silently; confidence is always
// clamped to [0,1].
func NormalizeSentiment(emotionState any) []SentimentSignal {
	signals := []SentimentSignal{}

	state := AsRecord(emotionState)
	if state == nil {
		return signals
	}

	if aggregate, ok := state["aggregate"].([]any); ok {
		for _, element := range aggregate {
			record := AsRecord(element)
			if record == nil {
				continue
			}
			label, _ := record["label"].(string)
			confidence, ok := signalConfidence(record["confidence"])
			if label == "" || !ok {
				continue
			}
			signals = append(signals, SentimentSignal{
				Label:      label,
				Confidence: clampConfidence(confidence),
			})
		}
		return signals
	}

	label, _ := state["label"].(string)
	if label == "" {
		return signals
	}

	confidence := defaultSignalConfidence
	if value, ok := signalConfidence(state["confidence"]); ok {
		confidence = clampConfidence(value)
	}

	return append(signals, SentimentSignal{Label: label, Confidence: confidence})
}

// AnalyzeBody derives a fallback sentiment signal from free post text when
// no emotion state is available. Labels follow the usual VADER compound
// thresholds; the confidence scales with the polarity strength so a flat
// neutral score still lands at 0.5.
func AnalyzeBody(text string) []SentimentSignal {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []SentimentSignal{}
	}

	compound := vaderAnalyzer.PolarityScores(trimmed).Compound

	label := "neutral"
	switch {
	case compound >= 0.2:
		label = "positive"
	case compound <= -0.2:
		label = "negative"
	}

	confidence := clampConfidence(0.5 + math.Abs(compound)/2)
	return []SentimentSignal{{Label: label, Confidence: confidence}}
}

// signalConfidence accepts only actual finite numbers. Numeric strings are
// rejected here, unlike coerceNumber; a string confidence marks the element
// malformed.
func signalConfidence(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func clampConfidence(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return math.Max(0, math.Min(1, value))
}
