package escalation

import (
	"testing"

	"github.com/boweryconnect/companion/internal/model/crisis"
)

func effectsByType(effects []crisis.Effect) map[crisis.EffectType]crisis.Effect {
	m := make(map[crisis.EffectType]crisis.Effect, len(effects))
	for _, e := range effects {
		m[e.Type] = e
	}
	return m
}

func TestApplyHighUrgency(t *testing.T) {
	resp := crisis.Response{Message: "stay with me", Urgency: crisis.UrgencyHigh}
	byType := effectsByType(Apply(resp, false, "en"))

	haptic, ok := byType[crisis.EffectHaptic]
	if !ok {
		t.Fatal("expected haptic effect for high urgency")
	}
	if len(haptic.Pattern) != 4 || haptic.Pattern[1] != 200 {
		t.Fatalf("expected urgent haptic pattern, got %v", haptic.Pattern)
	}

	hotline, ok := byType[crisis.EffectHotline]
	if !ok {
		t.Fatal("expected hotline affordances for high urgency")
	}
	if len(hotline.Contacts) == 0 || hotline.Contacts[0].Dial != "988" {
		t.Fatalf("expected 988 surfaced first, got %+v", hotline.Contacts)
	}

	if _, ok := byType[crisis.EffectLocalLog]; !ok {
		t.Fatal("expected forced local logging for high urgency")
	}
}

func TestApplyImmediateMatchesHigh(t *testing.T) {
	resp := crisis.Response{Message: "m", Urgency: crisis.UrgencyImmediate}
	byType := effectsByType(Apply(resp, false, "en"))
	if _, ok := byType[crisis.EffectHotline]; !ok {
		t.Fatal("expected hotline affordances for immediate urgency")
	}
}

func TestApplyMediumUrgency(t *testing.T) {
	resp := crisis.Response{Message: "m", Urgency: crisis.UrgencyMedium}
	byType := effectsByType(Apply(resp, false, "en"))

	haptic, ok := byType[crisis.EffectHaptic]
	if !ok {
		t.Fatal("expected gentle haptic for medium urgency")
	}
	if len(haptic.Pattern) != 3 {
		t.Fatalf("expected gentle pattern, got %v", haptic.Pattern)
	}
	if _, ok := byType[crisis.EffectHotline]; ok {
		t.Fatal("medium urgency must not surface hotlines")
	}
}

func TestApplyLowUrgencyNoEffects(t *testing.T) {
	resp := crisis.Response{Message: "m", Urgency: crisis.UrgencyLow}
	if effects := Apply(resp, false, "en"); len(effects) != 0 {
		t.Fatalf("expected no effects for low urgency text turn, got %+v", effects)
	}
}

func TestApplyVoiceTurnSpeaks(t *testing.T) {
	resp := crisis.Response{Message: "respira conmigo", Urgency: crisis.UrgencyLow}
	byType := effectsByType(Apply(resp, true, "es"))

	speak, ok := byType[crisis.EffectSpeak]
	if !ok {
		t.Fatal("expected speak effect for voice turn")
	}
	if speak.Text != "respira conmigo" || speak.Language != "es-ES" {
		t.Fatalf("unexpected speak descriptor: %+v", speak)
	}
	if speak.Rate != 0.9 || speak.Pitch != 0.95 {
		t.Fatalf("unexpected speech params: %+v", speak)
	}
}

func TestApplyPatternIsPrivateCopy(t *testing.T) {
	resp := crisis.Response{Message: "m", Urgency: crisis.UrgencyHigh}
	effects := Apply(resp, false, "en")
	effects[0].Pattern[0] = 999

	again := Apply(resp, false, "en")
	if again[0].Pattern[0] == 999 {
		t.Fatal("Apply must not share the pattern slice across calls")
	}
}
