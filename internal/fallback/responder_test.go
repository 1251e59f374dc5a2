package fallback

import (
	"strings"
	"testing"

	"github.com/boweryconnect/companion/internal/model/crisis"
)

func TestRespondSuicidal(t *testing.T) {
	resp := Respond(crisis.CategorySuicidal, "en")
	if resp.Urgency != crisis.UrgencyHigh {
		t.Fatalf("expected high urgency, got %s", resp.Urgency)
	}
	if !resp.Fallback {
		t.Fatal("expected fallback flag set")
	}
	if !strings.Contains(resp.Message, "988") {
		t.Fatalf("suicidal response must surface 988, got %q", resp.Message)
	}
}

func TestRespondCoversEveryCategory(t *testing.T) {
	for _, category := range crisis.Categories {
		resp := Respond(category, "en")
		if resp.Message == "" {
			t.Fatalf("category %s has no fallback message", category)
		}
		if !resp.Urgency.Known() {
			t.Fatalf("category %s has unknown urgency %q", category, resp.Urgency)
		}
	}
}

func TestRespondUnknownCategory(t *testing.T) {
	resp := Respond(crisis.Category("made-up"), "en")
	if resp.Message != table[crisis.CategoryGeneral].message {
		t.Fatalf("unknown category should get the general prompt, got %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "911") {
		t.Fatal("general prompt must instruct calling an emergency number")
	}
}

func TestRespondLocalized(t *testing.T) {
	es := Respond(crisis.CategoryGeneral, "es")
	if !strings.Contains(es.Message, "911") {
		t.Fatalf("localized general prompt must keep the emergency instruction, got %q", es.Message)
	}
	en := Respond(crisis.CategoryGeneral, "en")
	if es.Message == en.Message {
		t.Fatal("expected Spanish override for the general prompt")
	}

	// No override for this category: English copy is the fallback.
	if got := Respond(crisis.CategoryPanic, "es").Message; got != table[crisis.CategoryPanic].message {
		t.Fatalf("expected English copy when no override exists, got %q", got)
	}
}

func TestRespondReturnsCopyOfActions(t *testing.T) {
	resp := Respond(crisis.CategorySuicidal, "en")
	resp.Actions[0] = "mutated"
	if table[crisis.CategorySuicidal].actions[0] == "mutated" {
		t.Fatal("Respond must not expose the shared action slice")
	}
}

func TestGreeting(t *testing.T) {
	if Greeting("es") == Greeting("en") {
		t.Fatal("expected localized greeting for es")
	}
	if Greeting("ru") != Greeting("en") {
		t.Fatal("expected English fallback for unsupported language")
	}
}
