package reachability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for ClassifyField:
// - Each category classifies its keyword fields
// - Matching is case-insensitive and substring-based
// - Category order breaks ties (credentials before pii)
// - Non-sensitive fields do not classify

func TestClassifyField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field    string
		category string
		ok       bool
	}{
		// Test: Each category classifies its keyword fields
		{"password_hash", "credentials", true},
		{"api_key", "credentials", true},
		{"credit_card_number", "financial", true},
		{"salary", "financial", true},
		{"diagnosis_code", "health", true},
		{"patient_id", "health", true},
		{"email", "pii", true},
		{"phone_number", "pii", true},
		{"date_of_birth", "pii", true},

		// Test: Matching is case-insensitive and substring-based
		{"UserEmail", "pii", true},
		{"SSN", "pii", true},
		{"reset_TOKEN", "credentials", true},

		// Test: Category order breaks ties (credentials before pii)
		{"email_token", "credentials", true},

		// Test: Non-sensitive fields do not classify
		{"id", "", false},
		{"created_at", "", false},
		{"title", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		category, ok := ClassifyField(tt.field)
		assert.Equal(t, tt.ok, ok, "field %q", tt.field)
		assert.Equal(t, tt.category, category, "field %q", tt.field)
	}
}
