package review

import "fmt"

// Rating is the learner's self-assessment after seeing a card's answer.
type Rating int

const (
	Forgot Rating = iota
	Hard
	Good
	Easy
)

// QualityByRating maps the 4-point rating scale onto the classic SM-2
// quality levels 0, 2, 3 and 5. It only feeds the ease-factor update.
var QualityByRating = [4]int{0, 2, 3, 5}

var (
	ratingNames  = [...]string{Forgot: "Forgot", Hard: "Hard", Good: "Good", Easy: "Easy"}
	ratingColors = [...]string{Forgot: "#ef4444", Hard: "#f97316", Good: "#22c55e", Easy: "#3b82f6"}
)

// ClampRating forces any integer into [Forgot, Easy].
func ClampRating(r int) Rating {
	if r < int(Forgot) {
		return Forgot
	}
	if r > int(Easy) {
		return Easy
	}
	return Rating(r)
}

// IsValid reports whether r is one of the four rating levels.
func (r Rating) IsValid() bool {
	return r >= Forgot && r <= Easy
}

// Correct reports whether the rating counts as a successful recall.
func (r Rating) Correct() bool {
	return r >= Good
}

// Quality returns the SM-2 quality level for the rating.
func (r Rating) Quality() int {
	return QualityByRating[ClampRating(int(r))]
}

// Description returns the label shown on the rating button.
func (r Rating) Description() string {
	return ratingNames[ClampRating(int(r))]
}

// Color returns the display colour for the rating button.
func (r Rating) Color() string {
	return ratingColors[ClampRating(int(r))]
}

func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}
