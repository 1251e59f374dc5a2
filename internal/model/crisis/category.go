package crisis

// Category is the closed set of situational classes the engine can detect.
type Category string

const (
	CategorySuicidal       Category = "suicidal"
	CategoryPsychosis      Category = "psychosis"
	CategoryPanic          Category = "panic"
	CategorySubstance      Category = "substance"
	CategoryShelter        Category = "shelter-need"
	CategorySustenance     Category = "sustenance-need"
	CategoryDisorientation Category = "disorientation"
	CategoryAnger          Category = "anger"
	CategoryLoneliness     Category = "loneliness"
	CategoryGeneral        Category = "general"
)

// Categories lists every known category, highest severity first.
var Categories = []Category{
	CategorySuicidal,
	CategoryPsychosis,
	CategoryPanic,
	CategorySubstance,
	CategoryShelter,
	CategorySustenance,
	CategoryDisorientation,
	CategoryAnger,
	CategoryLoneliness,
	CategoryGeneral,
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
