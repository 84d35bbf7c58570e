// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package category reconciles a submission's classification rows with a
requested (primary, secondaries) target.

Reconciliation is a pure set difference. It never reads or writes storage:
callers load the current rows and apply the returned [Delta] inside the same
transaction so the delta is never computed against stale rows.

# Row Roles

A code that stays in the set but changes role (secondary to primary or back)
produces no add or remove entry. Its is_primary flag is flipped in place and
listed in [Delta.Reflag].
*/
package category

import (
	"slices"
	"strings"
)

// # Domain Types

// Row is one persisted classification of a submission.
type Row struct {
	Code      string `json:"category"`
	IsPrimary bool   `json:"is_primary"`
}

// Target is the requested classification state.
type Target struct {
	Primary     string   `json:"primary_category"`
	Secondaries []string `json:"secondary_categories"`
}

// Codes returns the target as a set: secondaries plus the primary.
func (t Target) Codes() map[string]struct{} {
	codes := make(map[string]struct{}, len(t.Secondaries)+1)
	for _, code := range t.Secondaries {
		codes[code] = struct{}{}
	}
	if t.Primary != "" {
		codes[t.Primary] = struct{}{}
	}
	return codes
}

// Delta lists the row operations that move the existing rows to the target.
type Delta struct {
	ToAdd    []Row    `json:"to_add"`
	ToRemove []string `json:"to_remove"`
	Reflag   []Row    `json:"reflag"`
}

// IsEmpty reports whether applying the delta would change nothing.
func (d Delta) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0 && len(d.Reflag) == 0
}

// ChangeResult summarizes one reconciliation for the caller.
// Primary fields are set only when the primary changed; secondary lists are
// non-empty only when the secondary set changed.
type ChangeResult struct {
	OldPrimary     *string  `json:"old_primary"`
	NewPrimary     *string  `json:"new_primary"`
	OldSecondaries []string `json:"old_secondaries"`
	NewSecondaries []string `json:"new_secondaries"`
}

// PrimaryChanged reports whether the result records a primary change.
func (r ChangeResult) PrimaryChanged() bool {
	return r.OldPrimary != nil || r.NewPrimary != nil
}

// SecondariesChanged reports whether the result records a secondary change.
func (r ChangeResult) SecondariesChanged() bool {
	return len(r.OldSecondaries) > 0 || len(r.NewSecondaries) > 0
}

// # Reconciliation

// Reconcile computes the minimal row operations from existing to target and
// the change summary. It is total over well-formed input.
func Reconcile(existing []Row, target Target) (Delta, ChangeResult) {

	// 1. Early state
	early := make(map[string]bool, len(existing))
	earlyPrimary := ""
	for _, row := range existing {
		early[row.Code] = row.IsPrimary
		if row.IsPrimary {
			earlyPrimary = row.Code
		}
	}

	// 2. Requested state, duplicates collapse
	requested := target.Codes()

	// 3. Set difference
	delta := Delta{ToAdd: []Row{}, ToRemove: []string{}, Reflag: []Row{}}
	for code := range requested {
		wasPrimary, present := early[code]
		isPrimary := code == target.Primary

		switch {
		case !present:
			delta.ToAdd = append(delta.ToAdd, Row{Code: code, IsPrimary: isPrimary})
		case wasPrimary != isPrimary:
			delta.Reflag = append(delta.Reflag, Row{Code: code, IsPrimary: isPrimary})
		}
	}
	for code := range early {
		if _, keep := requested[code]; !keep {
			delta.ToRemove = append(delta.ToRemove, code)
		}
	}

	sortRows(delta.ToAdd)
	sortRows(delta.Reflag)
	slices.Sort(delta.ToRemove)

	// 4. Change summary
	result := ChangeResult{OldSecondaries: []string{}, NewSecondaries: []string{}}
	if earlyPrimary != target.Primary {
		result.OldPrimary = optional(earlyPrimary)
		result.NewPrimary = optional(target.Primary)
	}

	oldSecondaries := secondariesOf(keys(early), earlyPrimary)
	newSecondaries := secondariesOf(keys(requested), target.Primary)
	if !slices.Equal(oldSecondaries, newSecondaries) {
		result.OldSecondaries = oldSecondaries
		result.NewSecondaries = newSecondaries
	}

	return delta, result
}

// Apply returns rows with delta applied. Row order is by code.
func Apply(rows []Row, delta Delta) []Row {
	byCode := make(map[string]Row, len(rows)+len(delta.ToAdd))
	for _, row := range rows {
		byCode[row.Code] = row
	}
	for _, code := range delta.ToRemove {
		delete(byCode, code)
	}
	for _, row := range delta.Reflag {
		byCode[row.Code] = row
	}
	for _, row := range delta.ToAdd {
		byCode[row.Code] = row
	}

	result := make([]Row, 0, len(byCode))
	for _, row := range byCode {
		result = append(result, row)
	}
	sortRows(result)
	return result
}

// Split projects rows into the primary code and the sorted secondary codes.
func Split(rows []Row) (string, []string) {
	primary := ""
	secondaries := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.IsPrimary {
			primary = row.Code
			continue
		}
		secondaries = append(secondaries, row.Code)
	}
	slices.Sort(secondaries)
	return primary, secondaries
}

// # Helpers

func secondariesOf(codes []string, primary string) []string {
	result := make([]string, 0, len(codes))
	for _, code := range codes {
		if code != primary {
			result = append(result, code)
		}
	}
	slices.Sort(result)
	return result
}

func keys[V any](set map[string]V) []string {
	result := make([]string, 0, len(set))
	for code := range set {
		result = append(result, code)
	}
	return result
}

func sortRows(rows []Row) {
	slices.SortFunc(rows, func(a, b Row) int {
		return strings.Compare(a.Code, b.Code)
	})
}

func optional(code string) *string {
	if code == "" {
		return nil
	}
	return &code
}
