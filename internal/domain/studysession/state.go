package studysession

import "fmt"

// State is the phase a study session is in.
type State int

const (
	Loading State = iota
	Empty
	Presenting
	Revealed
	Complete
)

var stateNames = [...]string{
	Loading:    "loading",
	Empty:      "empty",
	Presenting: "presenting",
	Revealed:   "revealed",
	Complete:   "complete",
}

func (s State) String() string {
	if s >= Loading && s <= Complete {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Reviewing reports whether a card is on screen.
func (s State) Reviewing() bool {
	return s == Presenting || s == Revealed
}

// Done reports whether the session reached a terminal state.
func (s State) Done() bool {
	return s == Empty || s == Complete
}
