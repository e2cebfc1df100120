package schedule

import (
	"time"

	"github.com/LionelROLLAND/colocatron/internal/calendar"
	"github.com/LionelROLLAND/colocatron/internal/identity"
	"github.com/LionelROLLAND/colocatron/internal/ledger"
)

// ChoreState is the persistable state of one chore record.
type ChoreState struct {
	Chore identity.Key
	Begin calendar.Week
	Weeks []calendar.Week

	OldLast time.Time
	OldEver bool

	Last time.Time
	Ever bool
}

// Restore rebuilds an occupant schedule from persisted state.
func Restore(presence *ledger.Presence, chores []ChoreState) *Occupant {
	occupant := &Occupant{
		onboarding: presence.Start(),
		presence:   presence,
		chores:     make(map[identity.Key]*choreRecord, len(chores)),
	}
	for _, state := range chores {
		occupant.chores[state.Chore] = &choreRecord{
			history: ledger.RestoreTaskHistory(state.Begin, state.Weeks),
			oldLast: state.OldLast,
			oldEver: state.OldEver,
			last:    state.Last,
			ever:    state.Ever,
		}
	}
	return occupant
}

// ChoreStates returns the persistable state of every tracked chore.
func (o *Occupant) ChoreStates() []ChoreState {
	states := make([]ChoreState, 0, len(o.chores))
	for chore, record := range o.chores {
		states = append(states, ChoreState{
			Chore:   chore,
			Begin:   record.history.Begin(),
			Weeks:   record.history.Weeks(),
			OldLast: record.oldLast,
			OldEver: record.oldEver,
			Last:    record.last,
			Ever:    record.ever,
		})
	}
	return states
}
