package bus

import "github.com/cineforge/muse/pkg/creative"

// Event types published during a dialogue turn.
const (
	// EventStateChanged fires when the tracker commits a new creator state.
	EventStateChanged = "state-changed"
	// EventInspirationFound fires when a content provider has results.
	EventInspirationFound = "inspiration-found"
)

// StateChanged is the payload of EventStateChanged. Previous is nil on the
// first state of a session.
type StateChanged struct {
	SessionID string                 `json:"session_id"`
	Previous  *creative.CreatorState `json:"previous,omitempty"`
	Current   creative.CreatorState  `json:"current"`
}

// InspirationFound is the payload of EventInspirationFound. Module names
// the provider that produced the items.
type InspirationFound struct {
	SessionID string                 `json:"session_id"`
	Items     []creative.Inspiration `json:"items"`
	Module    string                 `json:"module"`
}
