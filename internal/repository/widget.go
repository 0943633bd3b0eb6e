package repository

import (
	"encoding/json"

	"github.com/user/crawler-console/internal/entity"
)

// TableWidget renders the crawler table. Implementations only draw; row state is
// owned by the list view.
type TableWidget interface {
	Configure(columns []entity.Column)
	Render(rows []entity.CrawlerRecord)
	// ResetView forces a re-layout at the given height. height <= 0 keeps the
	// current height.
	ResetView(height int)
}

// DetailPane shows the expanded detail of a single table row.
type DetailPane interface {
	ShowDetail(index int, html string)
}

// Alerter surfaces a blocking error message to the operator.
type Alerter interface {
	Alert(message string)
}

// Navigator opens another console page.
type Navigator interface {
	Open(location string)
}

// Indicator is the form editor's validity/status line.
type Indicator interface {
	Set(ok bool, text string)
}

// FormWidget holds the schema-driven form's current value.
type FormWidget interface {
	SetValue(value json.RawMessage)
}

// TreePane renders a JSON document as a read-only tree.
type TreePane interface {
	ShowLoading(text string)
	ShowTree(doc json.RawMessage)
}
