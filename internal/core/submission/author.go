// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Author is one entry of the ordered author list.
type Author struct {
	Order       int    `json:"order"`
	Forename    string `json:"forename"`
	Surname     string `json:"surname"`
	Initials    string `json:"initials,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	Email       string `json:"email,omitempty"`
	Identifier  string `json:"identifier"`
	Display     string `json:"display,omitempty"`
}

// Normalize puts every name field in NFC, trims it and recomputes the
// identifier. Two submissions typing the same name with different Unicode
// compositions then agree on the identifier.
func (a Author) Normalize() Author {
	a.Forename = normalizeText(a.Forename)
	a.Surname = normalizeText(a.Surname)
	a.Initials = normalizeText(a.Initials)
	a.Affiliation = normalizeText(a.Affiliation)
	a.Email = strings.TrimSpace(a.Email)
	a.Display = normalizeText(a.Display)
	a.Identifier = a.ComputeIdentifier()
	return a
}

// ComputeIdentifier is the hex SHA-1 of the colon-joined name fields.
func (a Author) ComputeIdentifier() string {
	digest := sha1.Sum([]byte(strings.Join([]string{a.Forename, a.Surname, a.Initials, a.Affiliation, a.Email}, ":")))
	return hex.EncodeToString(digest[:])
}

// Canonical renders "forename initials surname (affiliation)".
func (a Author) Canonical() string {
	name := strings.Join(strings.Fields(a.Forename+" "+a.Initials+" "+a.Surname), " ")
	if a.Affiliation != "" {
		return name + " (" + a.Affiliation + ")"
	}
	return name
}

// AuthorsDisplay joins the canonical names in author order.
func AuthorsDisplay(authors []Author) string {
	names := make([]string, 0, len(authors))
	for _, author := range authors {
		names = append(names, author.Canonical())
	}
	return strings.Join(names, ", ")
}

func normalizeText(value string) string {
	return strings.TrimSpace(norm.NFC.String(value))
}
