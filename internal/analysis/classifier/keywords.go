package classifier

import "github.com/boweryconnect/companion/internal/model/crisis"

// Priority is the order categories are tested in. First match wins, so
// life-safety categories must come before lower-severity ones. Changing this
// order is a safety policy decision, not a refactor.
var Priority = []crisis.Category{
	crisis.CategorySuicidal,
	crisis.CategoryPsychosis,
	crisis.CategoryPanic,
	crisis.CategorySubstance,
	crisis.CategoryShelter,
	crisis.CategorySustenance,
	crisis.CategoryDisorientation,
	crisis.CategoryAnger,
	crisis.CategoryLoneliness,
}

// keywordBuckets maps each detectable category to the phrases that signal it.
// Matching is substring containment over lower-cased input. Reviewed as
// safety-critical configuration alongside the fallback copy.
var keywordBuckets = map[crisis.Category][]string{
	crisis.CategorySuicidal: {
		"suicide", "suicidal", "kill myself", "kill", "end it", "end it all",
		"want to die", "wanna die", "better off dead", "die",
	},
	crisis.CategoryPsychosis: {
		"voices", "hearing things", "they tell me", "whisper", "hearing",
		"they're watching", "not real",
	},
	crisis.CategoryPanic: {
		"panic", "can't breathe", "cant breathe", "heart racing",
		"heart is racing", "freaking out", "overwhelmed",
	},
	crisis.CategorySubstance: {
		"drugs", "withdrawal", "dope sick", "needle", "relapse", "overdose",
		"getting high", "detox",
	},
	crisis.CategoryShelter: {
		"freezing", "nowhere to go", "nowhere to sleep", "shelter",
		"sleeping outside", "so cold", "cold out here", "warming center",
	},
	crisis.CategorySustenance: {
		"hungry", "starving", "haven't eaten", "havent eaten", "no food",
		"need food", "need to eat",
	},
	crisis.CategoryDisorientation: {
		"confused", "don't know where", "dont know where", "where am i",
		"can't remember", "cant remember", "lost",
	},
	crisis.CategoryAnger: {
		"angry", "pissed", "hate", "furious", "so mad", "rage",
	},
	crisis.CategoryLoneliness: {
		"alone", "lonely", "nobody", "no one cares", "no friends", "invisible",
	},
}
