package entity

// QueryContext is the page's navigational intent decoded from its query string.
// A nil Name means no name was supplied.
type QueryContext struct {
	Name *string
}

// HasName reports whether a name was supplied.
func (q QueryContext) HasName() bool {
	return q.Name != nil
}

// NameOr returns the supplied name, or fallback when there is none.
func (q QueryContext) NameOr(fallback string) string {
	if q.Name == nil {
		return fallback
	}
	return *q.Name
}
