package entity

import "fmt"

// Violation is a single schema violation, located by its path in the form value.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// ValidationResult is derived from the form value on every change or submit.
// An empty Violations slice means the value is valid.
type ValidationResult struct {
	Violations []Violation `json:"violations,omitempty"`
}

// Valid reports whether the result holds no violations.
func (r ValidationResult) Valid() bool {
	return len(r.Violations) == 0
}

// First returns the violation that is surfaced to the user.
func (r ValidationResult) First() (Violation, bool) {
	if r.Valid() {
		return Violation{}, false
	}
	return r.Violations[0], true
}
