// Package fallback produces canned, locale-aware safety responses for when
// the remote crisis service is unreachable. The response copy lives in
// content.go as static configuration.
package fallback

import "github.com/boweryconnect/companion/internal/model/crisis"

// Respond returns the canned safety response for a category. Unknown
// categories get the general supportive prompt, which always includes an
// explicit instruction to call a real-world emergency number. Pure: no I/O.
func Respond(category crisis.Category, language string) crisis.Response {
	e, ok := table[category]
	if !ok {
		category = crisis.CategoryGeneral
		e = table[crisis.CategoryGeneral]
	}

	message := e.message
	if override, ok := localized[language][category]; ok {
		message = override
	}

	return crisis.Response{
		Message:  message,
		Urgency:  crisis.CategoryUrgency(category),
		Actions:  append([]string(nil), e.actions...),
		Fallback: true,
	}
}

// Greeting returns the session-opening message in the user's language,
// falling back to English.
func Greeting(language string) string {
	if g, ok := greetings[language]; ok {
		return g
	}
	return greetings["en"]
}
