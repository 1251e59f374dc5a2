package crisis

// categoryUrgency is static configuration: each category carries exactly one
// urgency level. "immediate" is reserved for the remote service's judgment;
// local classification never exceeds high.
var categoryUrgency = map[Category]Urgency{
	CategorySuicidal:       UrgencyHigh,
	CategoryPsychosis:      UrgencyHigh,
	CategoryPanic:          UrgencyMedium,
	CategorySubstance:      UrgencyMedium,
	CategoryShelter:        UrgencyMedium,
	CategorySustenance:     UrgencyMedium,
	CategoryDisorientation: UrgencyMedium,
	CategoryAnger:          UrgencyLow,
	CategoryLoneliness:     UrgencyLow,
	CategoryGeneral:        UrgencyLow,
}

// CategoryUrgency returns the urgency level configured for c. Unknown
// categories rank as low.
func CategoryUrgency(c Category) Urgency {
	if u, ok := categoryUrgency[c]; ok {
		return u
	}
	return UrgencyLow
}
