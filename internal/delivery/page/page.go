// Package page implements the console's widget ports as plain state, so the HTTP
// and terminal surfaces can present whatever a use case drew.
package page

import (
	"encoding/json"
	"sync"

	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
)

var (
	_ repository.TableWidget = (*Page)(nil)
	_ repository.DetailPane  = (*Page)(nil)
	_ repository.Alerter     = (*Page)(nil)
	_ repository.Navigator   = (*Page)(nil)
	_ repository.Indicator   = (*Page)(nil)
	_ repository.FormWidget  = (*Page)(nil)
	_ repository.TreePane    = (*Page)(nil)
)

// IndicatorState is the editor's status line.
type IndicatorState struct {
	OK   bool   `json:"ok"`
	Text string `json:"text"`
}

// Table is a rendered crawler table.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Names   []string   `json:"names"`
	Height  int        `json:"height,omitempty"`
	Layouts int        `json:"layouts"`
}

// Page records the latest state of every widget.
type Page struct {
	mu sync.Mutex

	columns []entity.Column
	rows    []entity.CrawlerRecord
	height  int
	layouts int

	details   map[int]string
	alert     string
	location  string
	indicator *IndicatorState
	value     json.RawMessage
	loading   string
	tree      json.RawMessage
}

func New() *Page {
	return &Page{details: make(map[int]string)}
}

func (p *Page) Configure(columns []entity.Column) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.columns = append([]entity.Column(nil), columns...)
}

func (p *Page) Render(rows []entity.CrawlerRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = append([]entity.CrawlerRecord(nil), rows...)
}

func (p *Page) ResetView(height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if height > 0 {
		p.height = height
	}
	p.layouts++
}

func (p *Page) ShowDetail(index int, html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.details[index] = html
}

func (p *Page) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alert = message
}

func (p *Page) Open(location string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = location
}

func (p *Page) Set(ok bool, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indicator = &IndicatorState{OK: ok, Text: text}
}

func (p *Page) SetValue(value json.RawMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = append(json.RawMessage(nil), value...)
}

func (p *Page) ShowLoading(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = text
	p.tree = nil
}

func (p *Page) ShowTree(doc json.RawMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = ""
	p.tree = append(json.RawMessage(nil), doc...)
}

// Table renders the current rows through the configured columns.
func (p *Page) Table() Table {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := Table{
		Columns: make([]string, 0, len(p.columns)),
		Rows:    make([][]string, 0, len(p.rows)),
		Names:   make([]string, 0, len(p.rows)),
		Height:  p.height,
		Layouts: p.layouts,
	}
	for _, c := range p.columns {
		t.Columns = append(t.Columns, c.Title)
	}
	for _, r := range p.rows {
		cells := make([]string, 0, len(p.columns))
		for _, c := range p.columns {
			cells = append(cells, c.Format(r))
		}
		t.Rows = append(t.Rows, cells)
		t.Names = append(t.Names, r.CrawlerName)
	}
	return t
}

// Detail is the expanded detail of the row at index.
func (p *Page) Detail(index int) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.details[index]
	return d, ok
}

func (p *Page) LastAlert() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alert
}

func (p *Page) Location() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location
}

// Indicator is nil until the editor has set it.
func (p *Page) Indicator() *IndicatorState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.indicator == nil {
		return nil
	}
	ind := *p.indicator
	return &ind
}

func (p *Page) Value() json.RawMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Tree returns the rendered document, or the loading text while there is none.
func (p *Page) Tree() (doc json.RawMessage, loading string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree, p.loading
}
