package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

func strPtr(s string) *string { return &s }

func TestValidateStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		input     interface{}
		wantRules []string
	}{
		{
			name:  "valid question",
			input: &models.QuestionCreateRequest{Text: "What is 2+2?", Difficulty: "medium"},
		},
		{
			name:  "difficulty is optional",
			input: &models.QuestionCreateRequest{Text: "Name a prime"},
		},
		{
			name:      "missing text and bad difficulty",
			input:     &models.QuestionCreateRequest{Difficulty: "extreme"},
			wantRules: []string{"required", "difficulty_level"},
		},
		{
			name:      "update pointer difficulty",
			input:     &models.QuestionUpdateRequest{Difficulty: strPtr("nightmare")},
			wantRules: []string{"difficulty_level"},
		},
		{
			name:      "unknown role",
			input:     &models.AccountCreateRequest{Username: "u", Email: "u@example.com", Password: "p", Role: "proctor"},
			wantRules: []string{"user_role"},
		},
		{
			name:      "bad email",
			input:     &models.AccountCreateRequest{Username: "u", Email: "nope", Password: "p"},
			wantRules: []string{"email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if len(tt.wantRules) == 0 {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			var rules []string
			for _, e := range verrs {
				rules = append(rules, e.Rule)
			}
			assert.ElementsMatch(t, tt.wantRules, rules)
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())
	assert.Equal(t, "validation failed: Email is required",
		ValidationErrors{{Field: "Email", Message: "is required"}}.Error())
	assert.Equal(t, "validation failed: 2 field errors",
		ValidationErrors{{Field: "a"}, {Field: "b"}}.Error())
}
