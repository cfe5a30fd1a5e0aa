package twofactor

import "fmt"

// State is the enrollment state of a record.
type State string

const (
	StateDisabled     State = "disabled"
	StatePendingSetup State = "pending_setup"
	StateEnabled      State = "enabled"
)

// Event triggers a state transition.
type Event string

const (
	EventBeginSetup   Event = "begin_setup"
	EventConfirmSetup Event = "confirm_setup"
	EventDisable      Event = "disable"
	EventRegenerate   Event = "regenerate_backup_codes"
)

// transitions is indexed as [from][event] -> to.
var transitions = map[State]map[Event]State{
	StateDisabled: {
		EventBeginSetup: StatePendingSetup,
	},
	StatePendingSetup: {
		EventBeginSetup:   StatePendingSetup, // restarting setup replaces the pending secret
		EventConfirmSetup: StateEnabled,
	},
	StateEnabled: {
		EventRegenerate: StateEnabled,
		EventDisable:    StateDisabled,
	},
}

// Next returns the state reached by firing e from s, or the business error
// explaining why the event is not allowed.
func (s State) Next(e Event) (State, error) {
	if to, ok := transitions[s][e]; ok {
		return to, nil
	}
	return s, rejection(e)
}

// CanFire reports whether e is allowed from s.
func (s State) CanFire(e Event) bool {
	_, ok := transitions[s][e]
	return ok
}

func rejection(e Event) error {
	switch e {
	case EventBeginSetup:
		return ErrAlreadyEnabled
	case EventConfirmSetup:
		return ErrSetupNotInProgress
	case EventDisable, EventRegenerate:
		return ErrNotEnabled
	default:
		return fmt.Errorf("unknown event %q", e)
	}
}
