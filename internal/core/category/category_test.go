// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/core/category"
)

func primaryCount(rows []category.Row) int {
	count := 0
	for _, row := range rows {
		if row.IsPrimary {
			count++
		}
	}
	return count
}

func codes(rows []category.Row) []string {
	result := make([]string, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.Code)
	}
	return result
}

/*
TestReconcile_FirstAssignment covers the set-categories step of a fresh submission.
*/
func TestReconcile_FirstAssignment(t *testing.T) {
	delta, result := category.Reconcile(nil, category.Target{
		Primary:     "astro-ph.EP",
		Secondaries: []string{"astro-ph.GA"},
	})

	assert.Equal(t, []category.Row{
		{Code: "astro-ph.EP", IsPrimary: true},
		{Code: "astro-ph.GA", IsPrimary: false},
	}, delta.ToAdd)
	assert.Empty(t, delta.ToRemove)
	assert.Empty(t, delta.Reflag)

	assert.Nil(t, result.OldPrimary)
	require.NotNil(t, result.NewPrimary)
	assert.Equal(t, "astro-ph.EP", *result.NewPrimary)
	assert.Empty(t, result.OldSecondaries)
	assert.Equal(t, []string{"astro-ph.GA"}, result.NewSecondaries)
}

/*
TestReconcile_Idempotent applies the same target twice; the second delta is empty.
*/
func TestReconcile_Idempotent(t *testing.T) {
	target := category.Target{Primary: "cs.LG", Secondaries: []string{"stat.ML", "cs.AI", "cs.LG"}}

	delta, _ := category.Reconcile(nil, target)
	rows := category.Apply(nil, delta)

	second, result := category.Reconcile(rows, target)
	assert.True(t, second.IsEmpty())
	assert.False(t, result.PrimaryChanged())
	assert.False(t, result.SecondariesChanged())
	assert.Empty(t, result.OldSecondaries)
	assert.Empty(t, result.NewSecondaries)
}

/*
TestReconcile_Correctness checks that the applied rows equal S ∪ {p} with one primary row.
*/
func TestReconcile_Correctness(t *testing.T) {
	tests := []struct {
		name     string
		existing []category.Row
		target   category.Target
		want     []string
	}{
		{
			name:     "from_empty",
			existing: nil,
			target:   category.Target{Primary: "math.CO", Secondaries: []string{"cs.DS"}},
			want:     []string{"cs.DS", "math.CO"},
		},
		{
			name:     "replace_everything",
			existing: []category.Row{{"hep-th", true}, {"gr-qc", false}},
			target:   category.Target{Primary: "math.MP", Secondaries: []string{"math.AG"}},
			want:     []string{"math.AG", "math.MP"},
		},
		{
			name:     "primary_listed_as_secondary",
			existing: []category.Row{{"cs.CL", true}},
			target:   category.Target{Primary: "cs.CL", Secondaries: []string{"cs.CL", "cs.AI"}},
			want:     []string{"cs.AI", "cs.CL"},
		},
		{
			name:     "drop_secondaries",
			existing: []category.Row{{"stat.ME", true}, {"stat.ML", false}, {"math.ST", false}},
			target:   category.Target{Primary: "stat.ME"},
			want:     []string{"stat.ME"},
		},
		{
			name:     "swap_primary_with_secondary",
			existing: []category.Row{{"astro-ph.GA", true}, {"astro-ph.EP", false}},
			target:   category.Target{Primary: "astro-ph.EP", Secondaries: []string{"astro-ph.GA"}},
			want:     []string{"astro-ph.EP", "astro-ph.GA"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, _ := category.Reconcile(tt.existing, tt.target)
			rows := category.Apply(tt.existing, delta)

			assert.Equal(t, tt.want, codes(rows))
			assert.Equal(t, 1, primaryCount(rows))

			primary, secondaries := category.Split(rows)
			assert.Equal(t, tt.target.Primary, primary)
			assert.NotContains(t, secondaries, primary)
		})
	}
}

/*
TestReconcile_PrimaryFlipInPlace reports a role change without add or remove rows.
*/
func TestReconcile_PrimaryFlipInPlace(t *testing.T) {
	existing := []category.Row{{"astro-ph.GA", true}, {"astro-ph.EP", false}}

	delta, result := category.Reconcile(existing, category.Target{
		Primary:     "astro-ph.EP",
		Secondaries: []string{"astro-ph.GA"},
	})

	assert.Empty(t, delta.ToAdd)
	assert.Empty(t, delta.ToRemove)
	assert.Equal(t, []category.Row{
		{Code: "astro-ph.EP", IsPrimary: true},
		{Code: "astro-ph.GA", IsPrimary: false},
	}, delta.Reflag)

	require.NotNil(t, result.OldPrimary)
	require.NotNil(t, result.NewPrimary)
	assert.Equal(t, "astro-ph.GA", *result.OldPrimary)
	assert.Equal(t, "astro-ph.EP", *result.NewPrimary)
	assert.Equal(t, []string{"astro-ph.EP"}, result.OldSecondaries)
	assert.Equal(t, []string{"astro-ph.GA"}, result.NewSecondaries)
}

func TestReconcile_SecondaryOnlyChange(t *testing.T) {
	existing := []category.Row{{"cs.SE", true}, {"cs.PL", false}}

	delta, result := category.Reconcile(existing, category.Target{
		Primary:     "cs.SE",
		Secondaries: []string{"cs.PL", "cs.DB"},
	})

	assert.Equal(t, []category.Row{{Code: "cs.DB"}}, delta.ToAdd)
	assert.False(t, result.PrimaryChanged())
	assert.Equal(t, []string{"cs.PL"}, result.OldSecondaries)
	assert.Equal(t, []string{"cs.DB", "cs.PL"}, result.NewSecondaries)
}
