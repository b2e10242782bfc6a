package content

import (
	"fmt"
	"strings"
)

// ContentValidationError reports content that cannot be validated at all.
// Ordinary findings are returned as Diagnostics instead.
type ContentValidationError struct {
	Message      string
	UnitID       string
	SectionTitle string
	CodeExample  string
	Err          error
}

func (e *ContentValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	var context []string
	if e.UnitID != "" {
		context = append(context, "unit "+e.UnitID)
	}
	if e.SectionTitle != "" {
		context = append(context, fmt.Sprintf("section %q", e.SectionTitle))
	}
	if len(context) > 0 {
		b.WriteString(" (" + strings.Join(context, ", ") + ")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ContentValidationError) Unwrap() error {
	return e.Err
}
