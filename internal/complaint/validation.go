package complaint

import (
	"strings"
)

// Validation problem codes. Each maps to a localized message.
const (
	ProblemAttorneyRequired = "complaint.attorney_required"
	ProblemTextTooShort     = "complaint.text_too_short"
	ProblemInvalidAttorney  = "complaint.invalid_attorney"
)

// Problem is one failed check on a submission.
type Problem struct {
	Field string
	Code  string
	Args  []any
}

// ValidationError collects every failed check on a submission.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Field + ": " + p.Code
	}
	return "invalid complaint: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, code string, args ...any) {
	e.Problems = append(e.Problems, Problem{Field: field, Code: code, Args: args})
}

// Has reports whether the error contains a problem with the given code.
func (e *ValidationError) Has(code string) bool {
	for _, p := range e.Problems {
		if p.Code == code {
			return true
		}
	}
	return false
}

// Formatter renders a message code, such as a localization.Localizer bound to
// a language.
type Formatter func(code string, args ...any) string

// Messages renders every problem through format.
func (e *ValidationError) Messages(format Formatter) []string {
	out := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		out[i] = format(p.Code, p.Args...)
	}
	return out
}
