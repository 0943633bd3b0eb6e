package usecase

import (
	"bytes"
	"encoding/json"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/user/crawler-console/internal/entity"
)

const (
	unsetPlaceholder = "-"
	timestampLayout  = "2006-01-02 15:04:05"
)

// FormatTimestamp renders Unix seconds as a local date/time, or "-" when unset.
func FormatTimestamp(sec int64) string {
	if sec <= 0 {
		return unsetPlaceholder
	}
	return time.Unix(sec, 0).Local().Format(timestampLayout)
}

// FormatWeight renders a weight without trailing zeros.
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// DetailHTML shows plain text verbatim in an HTML pane, one <br> per line break.
func DetailHTML(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}

// FormatTree renders a JSON document as an indented tree.
func FormatTree(doc json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// compactJSON renders a server response on a single line, or verbatim when it is not JSON.
func compactJSON(doc []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, doc); err != nil {
		return string(doc)
	}
	return buf.String()
}

// TableHeight is the table's layout height: the viewport minus the page heading,
// margins included.
func TableHeight(viewportHeight int, heading entity.Box) int {
	h := viewportHeight - heading.OuterHeight()
	if h < 0 {
		return 0
	}
	return h
}

// Columns is the fixed column set of the crawler table.
func Columns() []entity.Column {
	return []entity.Column{
		{Field: "crawler_name", Title: "CrawlerName", Format: func(r entity.CrawlerRecord) string { return r.CrawlerName }},
		{Field: "status", Title: "Status", Format: func(r entity.CrawlerRecord) string { return r.Status }},
		{Field: "weight", Title: "Weight", Format: func(r entity.CrawlerRecord) string { return FormatWeight(r.Weight) }},
		{Field: "author", Title: "Author", Format: func(r entity.CrawlerRecord) string { return r.Author }},
		{Field: "create_time", Title: "CreateTime", Format: func(r entity.CrawlerRecord) string { return FormatTimestamp(r.CreateTime) }},
		{Field: "modify_time", Title: "ModifyTime", Format: func(r entity.CrawlerRecord) string { return FormatTimestamp(r.ModifyTime) }},
		{Field: "operate", Title: "Operate", Format: func(entity.CrawlerRecord) string { return "edit | remove" }},
	}
}
