package response

import (
	"encoding/json"

	"github.com/user/crawler-console/internal/delivery/page"
)

// ErrorResponse carries the text shown to the operator. For remote-call failures it
// is the raw response body of the crawler API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports the console and its optional row cache backend.
type HealthResponse struct {
	Status string            `json:"status"`
	Assets string            `json:"assets"`
	Checks map[string]string `json:"checks,omitempty"`
}

// TableResponse is the rendered crawler table.
type TableResponse struct {
	page.Table
}

// DetailResponse is the expanded detail of one table row.
type DetailResponse struct {
	Index int    `json:"index"`
	HTML  string `json:"html"`
}

// RemoveResponse confirms a deleted crawler and returns the remaining table.
type RemoveResponse struct {
	Removed string     `json:"removed"`
	Table   page.Table `json:"table"`
}

// EditorResponse is the editor page's state.
type EditorResponse struct {
	Mode      string               `json:"mode"`
	Value     json.RawMessage      `json:"value,omitempty"`
	Indicator *page.IndicatorState `json:"indicator,omitempty"`
	Response  json.RawMessage      `json:"response,omitempty"`
}

// ResultResponse is a fetched document, formatted as an indented tree.
type ResultResponse struct {
	Name     string          `json:"name"`
	Tree     string          `json:"tree"`
	Document json.RawMessage `json:"document"`
}
