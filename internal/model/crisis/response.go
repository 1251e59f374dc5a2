package crisis

// Response is an assistant reply, whether produced by the remote service or
// by the local fallback table.
type Response struct {
	Message   string   `json:"message"`
	Urgency   Urgency  `json:"urgency"`
	Actions   []string `json:"actions,omitempty"`
	Resources []string `json:"resources,omitempty"`
	Fallback  bool     `json:"fallback,omitempty"`
}

// Well-known response actions understood by the UI layer.
const (
	ActionCall988     = "call_988"
	ActionCall911     = "call_911"
	ActionText741741  = "text_741741"
	ActionCallMission = "call_bowery_mission"
	ActionFindShelter = "find_shelter"
	ActionFindFood    = "find_food"
	ActionBreathing   = "breathing_exercise"
	ActionGrounding   = "grounding_exercise"
)
