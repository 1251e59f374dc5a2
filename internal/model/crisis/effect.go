package crisis

// EffectType names a side effect the UI layer knows how to execute.
type EffectType string

const (
	EffectHaptic   EffectType = "haptic"
	EffectHotline  EffectType = "hotline"
	EffectSpeak    EffectType = "speak"
	EffectLocalLog EffectType = "local_log"
)

// Effect is a side-effect descriptor. The engine only describes effects;
// the presentation layer executes them and may drop any it cannot perform.
type Effect struct {
	Type EffectType `json:"type"`

	// Pattern is the vibration timing in milliseconds for haptic effects.
	Pattern []int `json:"pattern,omitempty"`

	// Contacts carries hotline affordances to surface inline.
	Contacts []HotlineContact `json:"contacts,omitempty"`

	// Text and Language drive text-to-speech for speak effects.
	Text     string  `json:"text,omitempty"`
	Language string  `json:"language,omitempty"`
	Rate     float64 `json:"rate,omitempty"`
	Pitch    float64 `json:"pitch,omitempty"`
}

// HotlineContact is an emergency contact surfaced with a response.
type HotlineContact struct {
	Name   string `json:"name"`
	Dial   string `json:"dial,omitempty"`
	Text   string `json:"text,omitempty"`
	Detail string `json:"detail,omitempty"`
}
