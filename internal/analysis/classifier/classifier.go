package classifier

import (
	"strings"

	"github.com/boweryconnect/companion/internal/model/chat"
	"github.com/boweryconnect/companion/internal/model/crisis"
)

// Emotion tags attached to classified user turns.
const (
	EmotionNeutral   = "neutral"
	EmotionCrisis    = "crisis"
	EmotionPanicked  = "panicked"
	EmotionDepressed = "depressed"
)

// Cadence thresholds, in milliseconds between keystrokes.
const (
	maxCadenceSamples  = 10
	panicMeanThreshold = 100
	panicSpikeInterval = 50
	slowMeanThreshold  = 500
)

// Result is the outcome of classifying a single user utterance.
type Result struct {
	Category    crisis.Category
	Emotion     string
	UrgencyHint crisis.Urgency
}

// Classify maps raw text plus recent typing cadence to a crisis category and
// an advisory emotion tag. Categories are tested in Priority order and the
// first keyword match wins; cadence never overrides a keyword-derived
// category. Pure: no I/O, deterministic.
func Classify(text string, keystrokeIntervals []int) Result {
	category := detectCategory(text)

	emotion := cadenceEmotion(keystrokeIntervals)
	if category != crisis.CategoryGeneral {
		emotion = EmotionCrisis
	}

	return Result{
		Category:    category,
		Emotion:     emotion,
		UrgencyHint: crisis.CategoryUrgency(category),
	}
}

// Mood derives the session mood contribution of a classified turn.
// High-urgency categories read as crisis; medium urgency or a panicked
// cadence reads as anxious.
func (r Result) Mood() chat.Mood {
	if r.UrgencyHint.AtLeast(crisis.UrgencyHigh) {
		return chat.MoodCrisis
	}
	if r.UrgencyHint.AtLeast(crisis.UrgencyMedium) || r.Emotion == EmotionPanicked {
		return chat.MoodAnxious
	}
	return chat.MoodStable
}

func detectCategory(text string) crisis.Category {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return crisis.CategoryGeneral
	}

	for _, category := range Priority {
		for _, keyword := range keywordBuckets[category] {
			if strings.Contains(normalized, keyword) {
				return category
			}
		}
	}
	return crisis.CategoryGeneral
}

func cadenceEmotion(intervals []int) string {
	if len(intervals) == 0 {
		return EmotionNeutral
	}
	if len(intervals) > maxCadenceSamples {
		intervals = intervals[len(intervals)-maxCadenceSamples:]
	}

	sum := 0
	spike := false
	for _, interval := range intervals {
		sum += interval
		if interval < panicSpikeInterval {
			spike = true
		}
	}
	mean := float64(sum) / float64(len(intervals))

	switch {
	case mean < panicMeanThreshold && spike:
		return EmotionPanicked
	case mean > slowMeanThreshold:
		return EmotionDepressed
	default:
		return EmotionNeutral
	}
}
