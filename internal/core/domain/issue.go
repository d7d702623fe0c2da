package domain

import (
	"fmt"
	"strings"
)

// IssueSeverity classifies how serious a document issue is.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue types with error severity in the legacy one-field encoding.
// Anything else in legacy form is a warning.
var legacyErrorTypes = map[string]bool{
	"wrong_year": true,
	"wrong_type": true,
	"incomplete": true,
	"illegible":  true,
}

// Issue is a parsed document issue.
//
// The canonical encoding is "[SEVERITY:type:expected:detected] free text"
// with case-insensitive severity. The legacy encoding is "[type] text"
// with severity inferred from the type name. Plain text with no brackets
// is a warning of type "other".
type Issue struct {
	Severity IssueSeverity
	Type     string
	Expected string
	Detected string
	Message  string
}

// ParseIssue decodes an encoded issue string. It never fails: malformed
// encodings degrade through the legacy form down to a plain-text warning.
func ParseIssue(raw string) Issue {
	raw = strings.TrimSpace(raw)

	open := strings.Index(raw, "[")
	end := strings.Index(raw, "]")
	if open != 0 || end < 0 {
		return Issue{Severity: SeverityWarning, Type: "other", Message: raw}
	}

	inner := raw[1:end]
	message := strings.TrimSpace(raw[end+1:])

	parts := strings.Split(inner, ":")
	if len(parts) >= 2 {
		if sev, ok := parseSeverity(parts[0]); ok {
			issue := Issue{
				Severity: sev,
				Type:     strings.ToLower(strings.TrimSpace(parts[1])),
				Message:  message,
			}
			if len(parts) > 2 {
				issue.Expected = strings.TrimSpace(parts[2])
			}
			if len(parts) > 3 {
				issue.Detected = strings.TrimSpace(parts[3])
			}
			return issue
		}
	}

	// Legacy one-field form: severity inferred from the type name.
	issueType := strings.ToLower(strings.TrimSpace(inner))
	severity := SeverityWarning
	if legacyErrorTypes[issueType] {
		severity = SeverityError
	}
	return Issue{Severity: severity, Type: issueType, Message: message}
}

func parseSeverity(s string) (IssueSeverity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	default:
		return "", false
	}
}

// SuggestedAction maps an issue to a human-readable remediation,
// using Expected/Detected for a specific message when present.
func SuggestedAction(issue Issue) string {
	switch issue.Type {
	case "wrong_year":
		if issue.Expected != "" {
			return fmt.Sprintf("Please upload the %s version of this document.", issue.Expected)
		}
		return "Please upload the document for the correct tax year."
	case "wrong_type":
		if issue.Expected != "" && issue.Detected != "" {
			return fmt.Sprintf("Expected a %s but received a %s. Please upload the correct document.", issue.Expected, issue.Detected)
		}
		return "This does not appear to be the expected document type. Please upload the correct document."
	case "incomplete":
		return "The document appears to be missing pages. Please upload the complete file."
	case "illegible":
		return "The document is difficult to read. Please upload a clearer copy or scan."
	case "duplicate":
		return "This document was already received. No action needed unless it replaces an earlier upload."
	case "password_protected":
		return "The file is password protected. Please remove the password and upload again."
	default:
		return "Please review this document and re-upload it if anything looks wrong."
	}
}

// FriendlyIssue renders an encoded issue string for client display.
func FriendlyIssue(raw string) string {
	issue := ParseIssue(raw)
	if issue.Message != "" {
		return fmt.Sprintf("%s %s", issue.Message, SuggestedAction(issue))
	}
	return SuggestedAction(issue)
}
