package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
)

// scriptedLoader replays a fixed list of signals per URL and records the order
// of requests.
type scriptedLoader struct {
	mu       sync.Mutex
	signals  map[string][]entity.LoadSignal
	silent   map[string]bool // never signals, never closes
	requests []string
}

func (l *scriptedLoader) Load(ctx context.Context, url string) <-chan entity.LoadSignal {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, url)

	if l.silent[url] {
		return make(chan entity.LoadSignal)
	}
	sigs := l.signals[url]
	ch := make(chan entity.LoadSignal, len(sigs))
	for _, s := range sigs {
		ch <- s
	}
	close(ch)
	return ch
}

func (l *scriptedLoader) Requests() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.requests...)
}

// fakeAPI is an in-memory CrawlerAPI with per-operation failure injection.
type fakeAPI struct {
	mu sync.Mutex

	list      *entity.CrawlerList
	listErr   error
	deleteErr error
	submitErr error
	docs      map[string]json.RawMessage // retrieve/test results by name
	fetchErr  error

	// block, when set, holds Delete and Create until it is closed.
	block chan struct{}

	deleted []string
	created []string
	updated []string
	bodies  []json.RawMessage
	tested  []string
}

func (f *fakeAPI) List(ctx context.Context, opts repository.ListOptions) (*entity.CrawlerList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &entity.CrawlerList{Total: f.list.Total, Rows: append([]entity.CrawlerRecord(nil), f.list.Rows...)}, nil
}

func (f *fakeAPI) wait() {
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeAPI) Create(ctx context.Context, name string, record json.RawMessage) (json.RawMessage, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, name)
	f.bodies = append(f.bodies, record)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return json.RawMessage(`{"status": "ok"}`), nil
}

func (f *fakeAPI) Update(ctx context.Context, name string, record json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, name)
	f.bodies = append(f.bodies, record)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return json.RawMessage(`{"status": "ok"}`), nil
}

func (f *fakeAPI) Delete(ctx context.Context, name string) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, name)
	return f.deleteErr
}

func (f *fakeAPI) Retrieve(ctx context.Context, name string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	doc, ok := f.docs[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return doc, nil
}

func (f *fakeAPI) Test(ctx context.Context, name string) (json.RawMessage, error) {
	f.mu.Lock()
	f.tested = append(f.tested, name)
	f.mu.Unlock()
	return f.Retrieve(ctx, name)
}

// bodyError mimics a transport error carrying the server's response body.
type bodyError struct{ body string }

func (e *bodyError) Error() string   { return "remote call failed" }
func (e *bodyError) RawBody() string { return e.body }

// fakeDocs serves static documents by path.
type fakeDocs map[string]string

func (d fakeDocs) FetchDocument(ctx context.Context, path string) ([]byte, error) {
	doc, ok := d[path]
	if !ok {
		return nil, errors.New("no such document: " + path)
	}
	return []byte(doc), nil
}

// recorder implements every widget port and records what it was told to show.
type recorder struct {
	mu sync.Mutex

	columns  []entity.Column
	renders  [][]entity.CrawlerRecord
	heights  []int
	details  []string
	alerts   []string
	opened   []string
	indOK    []bool
	indText  []string
	values   []json.RawMessage
	loadings []string
	trees    []json.RawMessage
}

func (r *recorder) Configure(columns []entity.Column) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.columns = columns
}

func (r *recorder) Render(rows []entity.CrawlerRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, rows)
}

func (r *recorder) ResetView(height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heights = append(r.heights, height)
}

func (r *recorder) ShowDetail(index int, html string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.details = append(r.details, html)
}

func (r *recorder) Alert(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, message)
}

func (r *recorder) Open(location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, location)
}

func (r *recorder) Set(ok bool, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indOK = append(r.indOK, ok)
	r.indText = append(r.indText, text)
}

func (r *recorder) SetValue(value json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
}

func (r *recorder) ShowLoading(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadings = append(r.loadings, text)
}

func (r *recorder) ShowTree(doc json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trees = append(r.trees, doc)
}

func (r *recorder) lastRender() []entity.CrawlerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.renders) == 0 {
		return nil
	}
	return r.renders[len(r.renders)-1]
}

// manualTimer captures AfterFunc calls so tests can fire them explicitly.
type manualTimer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
}

func (m *manualTimer) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	m.fn = f
}

func (m *manualTimer) Fire() {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}
