package attendance

// State is the employee's attendance state for today as derived from the server record.
type State string

const (
	StateNotMarked  State = "not_marked"
	StateCheckedIn  State = "checked_in"
	StateCheckedOut State = "checked_out"
)

// StateOf derives the state from a snapshot. A nil record means nothing was marked yet.
func StateOf(day *AttendanceDay) State {
	switch {
	case day == nil || day.CheckInTime == nil:
		return StateNotMarked
	case day.CheckOutTime == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}

// Action is a transition request on the state machine.
type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

// CanTransition reports whether action is allowed from state, returning the
// sentinel error describing why not.
func CanTransition(state State, action Action) error {
	switch action {
	case ActionCheckIn:
		switch state {
		case StateNotMarked:
			return nil
		case StateCheckedIn:
			return ErrAlreadyCheckedIn
		default:
			return ErrAlreadyCheckedOut
		}
	case ActionCheckOut:
		switch state {
		case StateCheckedIn:
			return nil
		case StateNotMarked:
			return ErrNotCheckedIn
		default:
			return ErrAlreadyCheckedOut
		}
	}
	return ErrInvalidAction
}
