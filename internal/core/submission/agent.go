// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"strings"

	"github.com/taibuivan/arxsub/internal/platform/sec"
)

// Agent references the user, automation or system process behind an event.
// Agents are external identity records; a submission only stores a copy of
// the reference.
type Agent struct {
	Type         sec.AgentType `json:"agent_type"`
	Identifier   string        `json:"agent_identifier"`
	Username     string        `json:"username,omitempty"`
	Forename     string        `json:"forename,omitempty"`
	Surname      string        `json:"surname,omitempty"`
	Suffix       string        `json:"suffix,omitempty"`
	Email        string        `json:"email,omitempty"`
	Affiliation  string        `json:"affiliation,omitempty"`
	Endorsements []string      `json:"endorsements,omitempty"`
}

// AgentFromUser copies the identity fields of an authenticated user.
func AgentFromUser(user sec.User) Agent {
	return Agent{
		Type:         user.AgentType,
		Identifier:   user.Identifier,
		Username:     user.Username,
		Forename:     user.Forename,
		Surname:      user.Surname,
		Suffix:       user.Suffix,
		Email:        user.Email,
		Affiliation:  user.Affiliation,
		Endorsements: user.Endorsements,
	}
}

// Name returns the display name of the agent.
func (a Agent) Name() string {
	return strings.Join(strings.Fields(a.Forename+" "+a.Surname+" "+a.Suffix), " ")
}
