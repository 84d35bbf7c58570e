// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "Arxsub", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("author_email", "tai@arxiv.org").
		Email("author_email", "tai@arxiv.org").
		OneOf("hold_type", "patch", "patch", "source_oversize").
		Custom("paper_id", false, "unused").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("body", "").                               // Fails
		OneOf("hold_type", "nap", "patch", "pdf_oversize"). // Fails
		Email("email", "not-an-email").                     // Fails
		Custom("paper_id", false, "unused").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	require.Len(t, ae.Details, 3)
	assert.Equal(t, "hold_type", ae.Details[1].Field)
	assert.Equal(t, "Must be one of: patch, pdf_oversize", ae.Details[1].Message)
}

/*
TestValidator_ArxivID accepts both identifier schemes.
*/
func TestValidator_ArxivID(t *testing.T) {
	tests := []struct {
		value   string
		isValid bool
	}{
		{"2101.01234", true},
		{"0704.0001", true},
		{"hep-th/9901001", true},
		{"math.GT/0309136", true},
		{"2101.01234v2", false},
		{"arXiv:2101.01234", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			v := &validate.Validator{}
			v.ArxivID("arxiv_id", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

type startPayload struct {
	Type     string `json:"submission_type" validate:"required,oneof=new replacement withdrawal cross jref"`
	Comments string `json:"comments" validate:"max=10"`
}

/*
TestStruct_MapsTagErrors checks that tag failures surface as field errors keyed by JSON name.
*/
func TestStruct_MapsTagErrors(t *testing.T) {
	err := validate.Struct(startPayload{Type: "bogus", Comments: "far too long a comment"})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	require.Len(t, ae.Details, 2)
	assert.Equal(t, "submission_type", ae.Details[0].Field)
	assert.Equal(t, "comments", ae.Details[1].Field)

	assert.NoError(t, validate.Struct(startPayload{Type: "new"}))
}
