package chat

import "time"

// Mood is the engine's running read of how the user is doing. It only
// escalates during a session; de-escalation requires an explicit calming
// acknowledgment.
type Mood string

const (
	MoodStable  Mood = "stable"
	MoodAnxious Mood = "anxious"
	MoodCrisis  Mood = "crisis"
)

var moodRank = map[Mood]int{
	MoodStable:  0,
	MoodAnxious: 1,
	MoodCrisis:  2,
}

// AtLeast reports whether m is at or above other in stable < anxious < crisis.
func (m Mood) AtLeast(other Mood) bool {
	return moodRank[m] >= moodRank[other]
}

// Max returns the more severe of m and other.
func (m Mood) Max(other Mood) Mood {
	if moodRank[other] > moodRank[m] {
		return other
	}
	return m
}

// Valid reports whether m is one of the three defined moods.
func (m Mood) Valid() bool {
	_, ok := moodRank[m]
	return ok
}

// Session is a single conversation. Exactly one session is current per app run.
type Session struct {
	ID             string    `json:"id"`
	Messages       []Message `json:"messages"`
	Mood           Mood      `json:"mood"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// Snapshot is the persisted subset of a session used to restore state across
// restarts within the freshness window.
type Snapshot struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
	Mood      Mood      `json:"mood"`
	SavedAt   time.Time `json:"savedAt"`
}
