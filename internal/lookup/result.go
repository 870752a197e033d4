package lookup

import (
	"fmt"
	"strings"
	"unicode"

	"qrzbuddy/internal/qrz"
)

// TermError is a non-fatal failure of one term in a batch.
type TermError struct {
	Term    SearchTerm
	Kind    qrz.Kind
	Message string
}

func (e TermError) String() string {
	if mentions(e.Message, string(e.Term)) {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Term, e.Message)
}

// mentions reports whether term appears in message as a whole word.
func mentions(message, term string) bool {
	words := strings.FieldsFunc(message, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '/'
	})
	for _, word := range words {
		if strings.EqualFold(word, term) {
			return true
		}
	}
	return false
}

// Result is the outcome of one batch. Every submitted term ends up in
// exactly one of Resolved, Errors, Skipped or Unresolved.
type Result[T any] struct {
	// Records[i] was fetched for Resolved[i].
	Records  []T
	Resolved []SearchTerm
	Errors   []TermError
	// Skipped holds terms already known to have no record.
	Skipped []SearchTerm
	// Unresolved holds terms never attempted because the batch stopped early.
	Unresolved []SearchTerm
	// CredentialsNeeded is set when a session could not be obtained because
	// no credentials were available.
	CredentialsNeeded bool
}

// Report joins all term errors into one message, one per line.
func (r Result[T]) Report() string {
	lines := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}
