// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "strings"

// AgentType distinguishes humans from pipeline processes acting on a submission.
type AgentType string

const (
	AgentUser       AgentType = "user"
	AgentAutomation AgentType = "automation"
	AgentSystem     AgentType = "system"
)

// User is the identity resolved from a bearer token.
type User struct {
	Identifier   string    `json:"identifier"`
	Username     string    `json:"username,omitempty"`
	Role         UserRole  `json:"role"`
	AgentType    AgentType `json:"agent_type"`
	Forename     string    `json:"forename"`
	Surname      string    `json:"surname"`
	Suffix       string    `json:"suffix,omitempty"`
	Email        string    `json:"email"`
	Affiliation  string    `json:"affiliation,omitempty"`
	Endorsements []string  `json:"endorsements,omitempty"`
}

// Name returns "forename surname suffix" without dangling spaces.
func (u User) Name() string {
	return strings.Join(strings.Fields(u.Forename+" "+u.Surname+" "+u.Suffix), " ")
}

// Client describes the tool an agent used to reach the API.
// A client is not an agent.
type Client struct {
	RemoteAddress string    `json:"remote_address"`
	RemoteHost    string    `json:"remote_host,omitempty"`
	AgentType     AgentType `json:"agent_type"`
	AgentVersion  string    `json:"agent_version,omitempty"`
}

// UserFromClaims maps verified token claims to a [User].
// Unknown roles degrade to [RoleSubmitter] and a missing agent type to [AgentUser].
func UserFromClaims(claims *AuthClaims) User {
	role := UserRole(claims.Role)
	if !role.Valid() {
		role = RoleSubmitter
	}

	agentType := AgentType(claims.AgentType)
	switch agentType {
	case AgentUser, AgentAutomation, AgentSystem:
	default:
		agentType = AgentUser
	}

	return User{
		Identifier:   claims.UserID,
		Username:     claims.Username,
		Role:         role,
		AgentType:    agentType,
		Forename:     claims.Forename,
		Surname:      claims.Surname,
		Suffix:       claims.Suffix,
		Email:        claims.Email,
		Affiliation:  claims.Affiliation,
		Endorsements: claims.Endorsements,
	}
}
