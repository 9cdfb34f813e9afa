package reachability

import "strings"

// sensitiveCategory is one row of the field classifier table. Categories are
// checked in order; the first keyword hit wins.
type sensitiveCategory struct {
	name     string
	keywords []string
}

// sensitiveCategories is the fixed 4-category keyword classifier used by the
// sensitiveOnly filter. Matching is case-insensitive substring.
var sensitiveCategories = []sensitiveCategory{
	{"credentials", []string{
		"password", "passwd", "secret", "token", "api_key", "apikey",
		"credential", "private_key", "auth_key", "session_key", "salt",
	}},
	{"financial", []string{
		"card_number", "credit_card", "cvv", "iban", "account_number",
		"routing_number", "salary", "balance", "payment", "invoice", "tax_id",
	}},
	{"health", []string{
		"diagnosis", "medical", "prescription", "patient", "treatment",
		"blood_type", "allergy", "icd_code", "health_record",
	}},
	{"pii", []string{
		"email", "phone", "address", "ssn", "social_security", "passport",
		"date_of_birth", "dob", "birth_date", "national_id", "driver_license",
		"first_name", "last_name", "full_name", "ip_address",
	}},
}

// ClassifyField returns the sensitive category of a field name, if any.
func ClassifyField(field string) (string, bool) {
	lower := strings.ToLower(field)
	for _, cat := range sensitiveCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.name, true
			}
		}
	}
	return "", false
}

// sensitiveFieldsOf returns the subset of fields that classify as sensitive,
// paired with their categories, preserving field order.
func sensitiveFieldsOf(fields []string) []classifiedField {
	var out []classifiedField
	for _, f := range fields {
		if cat, ok := ClassifyField(f); ok {
			out = append(out, classifiedField{Field: f, Category: cat})
		}
	}
	return out
}

// classifiedField pairs a field name with its sensitive category.
type classifiedField struct {
	Field    string
	Category string
}
