// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import "time"

// HoldType names a condition that blocks announcement.
type HoldType string

const (
	HoldPatch          HoldType = "patch"
	HoldSourceOversize HoldType = "source_oversize"
	HoldPDFOversize    HoldType = "pdf_oversize"
)

var holdTypeNames = []string{string(HoldPatch), string(HoldSourceOversize), string(HoldPDFOversize)}

// IsValid reports whether h is a recognised [HoldType] value.
func (h HoldType) IsValid() bool {
	switch h {
	case HoldPatch, HoldSourceOversize, HoldPDFOversize:
		return true
	}
	return false
}

// Hold blocks announcement until a waiver of the same type exists.
type Hold struct {
	EventID    string    `json:"event_id"`
	Created    time.Time `json:"created"`
	Creator    Agent     `json:"creator"`
	HoldType   HoldType  `json:"hold_type"`
	HoldReason string    `json:"hold_reason,omitempty"`

	// Automatic marks holds placed by the service itself
	Automatic bool `json:"automatic,omitempty"`
}

// Waiver cancels every hold sharing its type. Matching is by type, not by
// event id.
type Waiver struct {
	EventID      string    `json:"event_id"`
	Created      time.Time `json:"created"`
	Creator      Agent     `json:"creator"`
	WaiverType   HoldType  `json:"waiver_type"`
	WaiverReason string    `json:"waiver_reason,omitempty"`
}
