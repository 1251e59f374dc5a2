// Package escalation maps response urgency to side-effect descriptors. The
// policy only describes effects; the UI layer executes them, so the core
// never touches haptics, audio, or any other device API.
package escalation

import (
	"github.com/boweryconnect/companion/internal/fallback"
	"github.com/boweryconnect/companion/internal/model/crisis"
)

// Vibration patterns in milliseconds, [delay, on, off, on, ...].
var (
	urgentHaptic = []int{0, 200, 100, 200}
	gentleHaptic = []int{100, 200, 100}
)

// Speech parameters for spoken responses (slightly slow and low, to soothe).
const (
	speechRate  = 0.9
	speechPitch = 0.95
)

// Apply returns the side effects for one assistant response.
//
// high/immediate urgency triggers the urgent haptic pattern, inline hotline
// affordances, and a forced local log entry. Medium urgency gets a gentle
// attention haptic. Voice-originated turns additionally get a best-effort
// speak descriptor regardless of urgency.
func Apply(response crisis.Response, isVoiceTurn bool, language string) []crisis.Effect {
	var effects []crisis.Effect

	switch {
	case response.Urgency.AtLeast(crisis.UrgencyHigh):
		effects = append(effects,
			crisis.Effect{Type: crisis.EffectHaptic, Pattern: append([]int(nil), urgentHaptic...)},
			crisis.Effect{Type: crisis.EffectHotline, Contacts: hotlineContacts()},
			crisis.Effect{Type: crisis.EffectLocalLog},
		)
	case response.Urgency == crisis.UrgencyMedium:
		effects = append(effects,
			crisis.Effect{Type: crisis.EffectHaptic, Pattern: append([]int(nil), gentleHaptic...)},
		)
	}

	if isVoiceTurn {
		effects = append(effects, crisis.Effect{
			Type:     crisis.EffectSpeak,
			Text:     response.Message,
			Language: speechLocale(language),
			Rate:     speechRate,
			Pitch:    speechPitch,
		})
	}

	return effects
}

func hotlineContacts() []crisis.HotlineContact {
	return append([]crisis.HotlineContact(nil), fallback.Hotlines...)
}

// speechLocale maps a user language code to a text-to-speech voice locale.
func speechLocale(language string) string {
	switch language {
	case "es":
		return "es-ES"
	case "zh":
		return "zh-CN"
	case "ar":
		return "ar-SA"
	case "ru":
		return "ru-RU"
	default:
		return "en-US"
	}
}
