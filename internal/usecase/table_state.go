package usecase

import "github.com/user/crawler-console/internal/entity"

// TableEvent is something that changes the crawler table's rows.
type TableEvent interface {
	isTableEvent()
}

// RowsLoaded replaces the rows with a fresh collection fetch.
type RowsLoaded struct {
	Rows []entity.CrawlerRecord
}

// RowRemoved drops every row whose crawler_name is Name.
type RowRemoved struct {
	Name string
}

func (RowsLoaded) isTableEvent() {}
func (RowRemoved) isTableEvent() {}

// ReduceRows returns the rows after applying ev. The input slice is never modified
// and the relative order of surviving rows is preserved.
func ReduceRows(rows []entity.CrawlerRecord, ev TableEvent) []entity.CrawlerRecord {
	switch ev := ev.(type) {
	case RowsLoaded:
		return append([]entity.CrawlerRecord{}, ev.Rows...)
	case RowRemoved:
		next := make([]entity.CrawlerRecord, 0, len(rows))
		for _, row := range rows {
			if row.CrawlerName != ev.Name {
				next = append(next, row)
			}
		}
		return next
	default:
		return rows
	}
}
