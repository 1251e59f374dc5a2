package crisis

// Urgency ranks how quickly a response needs human attention.
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyImmediate Urgency = "immediate"
)

var urgencyRank = map[Urgency]int{
	UrgencyLow:       0,
	UrgencyMedium:    1,
	UrgencyHigh:      2,
	UrgencyImmediate: 3,
}

// Known reports whether u is one of the four defined levels.
func (u Urgency) Known() bool {
	_, ok := urgencyRank[u]
	return ok
}

// AtLeast reports whether u ranks at or above other in the total order
// low < medium < high < immediate. Unknown levels rank below low.
func (u Urgency) AtLeast(other Urgency) bool {
	return urgencyRank[u] >= urgencyRank[other]
}

// Max returns the more severe of u and other.
func (u Urgency) Max(other Urgency) Urgency {
	if urgencyRank[other] > urgencyRank[u] {
		return other
	}
	return u
}
