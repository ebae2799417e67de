package blend

// Status is the outcome of a single marching step.
type Status int8

// Step outcomes. OK and StepTooSmall accept the candidate point, StepTooLarge
// and Backward reject it. The remaining values terminate a marching session.
const (
	OK           Status = iota // point accepted
	StepTooLarge               // reject, halve the step
	StepTooSmall               // accept, grow the step
	Backward                   // march reversed direction
	SamePoints                 // no progress possible
	OnRst1                     // left the domain of the first surface
	OnRst2                     // left the domain of the second surface
	OnRst12                    // left both domains at once
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case StepTooLarge:
		return "StepTooLarge"
	case StepTooSmall:
		return "StepTooSmall"
	case Backward:
		return "Backward"
	case SamePoints:
		return "SamePoints"
	case OnRst1:
		return "OnRst1"
	case OnRst2:
		return "OnRst2"
	case OnRst12:
		return "OnRst12"
	}
	return "<unknown status>"
}

// IsTerminal is true for statuses which end a marching session.
func (s Status) IsTerminal() bool {
	return s >= SamePoints
}

// State is the classification of a parameter point against a trimmed domain.
type State int8

// Classification results.
const (
	In State = iota
	On
	Out
	Unknown
)

func (s State) String() string {
	switch s {
	case In:
		return "IN"
	case On:
		return "ON"
	case Out:
		return "OUT"
	}
	return "UNKNOWN"
}
