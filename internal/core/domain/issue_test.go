package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIssue_CanonicalForm(t *testing.T) {
	issue := ParseIssue("[ERROR:wrong_year:2024:2023] Document is for tax year 2023")

	assert.Equal(t, SeverityError, issue.Severity)
	assert.Equal(t, "wrong_year", issue.Type)
	assert.Equal(t, "2024", issue.Expected)
	assert.Equal(t, "2023", issue.Detected)
	assert.Equal(t, "Document is for tax year 2023", issue.Message)
}

func TestParseIssue_SeverityCaseInsensitive(t *testing.T) {
	assert.Equal(t, SeverityError, ParseIssue("[error:illegible::] blurry scan").Severity)
	assert.Equal(t, SeverityWarning, ParseIssue("[Warning:low_quality::] low resolution").Severity)
}

func TestParseIssue_TwoFieldCanonical(t *testing.T) {
	issue := ParseIssue("[WARNING:handwritten] Contains handwritten notes")

	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.Equal(t, "handwritten", issue.Type)
	assert.Empty(t, issue.Expected)
	assert.Empty(t, issue.Detected)
}

func TestParseIssue_LegacyForm(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		severity IssueSeverity
		issType  string
	}{
		{"wrong_year is an error", "[wrong_year] year mismatch", SeverityError, "wrong_year"},
		{"wrong_type is an error", "[wrong_type] not a W2", SeverityError, "wrong_type"},
		{"incomplete is an error", "[incomplete] missing page 2", SeverityError, "incomplete"},
		{"illegible is an error", "[illegible] cannot read", SeverityError, "illegible"},
		{"unknown type is a warning", "[handwritten] pencil marks", SeverityWarning, "handwritten"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := ParseIssue(tt.raw)
			assert.Equal(t, tt.severity, issue.Severity)
			assert.Equal(t, tt.issType, issue.Type)
		})
	}
}

func TestParseIssue_PlainText(t *testing.T) {
	issue := ParseIssue("something looked off")

	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.Equal(t, "other", issue.Type)
	assert.Equal(t, "something looked off", issue.Message)
}

func TestParseIssue_NeverFails(t *testing.T) {
	for _, raw := range []string{"", "[", "]", "[]", "[:::]", "  [ ] ", "no brackets ] here"} {
		issue := ParseIssue(raw)
		assert.NotEmpty(t, issue.Severity, "raw=%q", raw)
	}
}

func TestSuggestedAction_UsesExpectedDetected(t *testing.T) {
	issue := ParseIssue("[ERROR:wrong_type:W2:1099-NEC] type mismatch")
	action := SuggestedAction(issue)
	assert.Contains(t, action, "W2")
	assert.Contains(t, action, "1099-NEC")

	// Without specifics the generic message is used.
	generic := SuggestedAction(ParseIssue("[wrong_type] type mismatch"))
	assert.Contains(t, generic, "expected document type")
}

func TestSuggestedAction_WrongYearExpected(t *testing.T) {
	action := SuggestedAction(ParseIssue("[ERROR:wrong_year:2024:2023] stale"))
	assert.Contains(t, action, "2024")
}

func TestFriendlyIssue(t *testing.T) {
	friendly := FriendlyIssue("[ERROR:illegible::] Scan too dark.")
	assert.Contains(t, friendly, "Scan too dark.")
	assert.Contains(t, friendly, "clearer copy")

	// No message: just the action.
	assert.Equal(t, SuggestedAction(Issue{Type: "incomplete"}), FriendlyIssue("[incomplete]"))
}
