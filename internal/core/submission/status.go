// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import "github.com/taibuivan/arxsub/internal/platform/apperr"

// transitions lists, per status, the statuses it may move to. Terminal
// statuses have no entry.
var transitions = map[Status][]Status{
	StatusWorking:   {StatusSubmitted, StatusDeleted, StatusError, StatusWithdrawn},
	StatusSubmitted: {StatusWorking, StatusScheduled, StatusDeleted, StatusError, StatusWithdrawn},
	StatusScheduled: {StatusSubmitted, StatusAnnounced, StatusError},
	StatusError:     {StatusWorking},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves s to the given status or returns InvalidTransition.
func (s *Submission) Transition(to Status) error {
	if !to.IsValid() || !CanTransition(s.Status, to) {
		return apperr.InvalidTransition(string(s.Status), string(to))
	}
	s.Status = to
	return nil
}

// IsTerminal reports whether no transition leaves status.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}
