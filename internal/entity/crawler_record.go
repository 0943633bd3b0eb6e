package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingCrawlerName is returned when a record from the API has no identifying name.
var ErrMissingCrawlerName = errors.New("crawler record has an empty crawler_name")

// CrawlerRecord mirrors one row of the crawler collection endpoint.
// Timestamps are Unix seconds; a non-positive value means "unset".
type CrawlerRecord struct {
	ID          int             `json:"id"`
	CrawlerName string          `json:"crawler_name"`
	Status      string          `json:"status"`
	Weight      float64         `json:"weight"`
	Author      string          `json:"author"`
	CreateTime  int64           `json:"create_time"`
	ModifyTime  int64           `json:"modify_time"`
	Conf        json.RawMessage `json:"conf,omitempty"` // opaque crawler configuration
}

// CrawlerList is the envelope returned by the collection endpoint.
type CrawlerList struct {
	Total int64           `json:"total"`
	Rows  []CrawlerRecord `json:"rows"`
}

// DecodeCrawlerList parses a collection response and checks its shape.
func DecodeCrawlerList(data []byte) (*CrawlerList, error) {
	var raw struct {
		Total int64            `json:"total"`
		Rows  *[]CrawlerRecord `json:"rows"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding crawler list: %w", err)
	}
	if raw.Rows == nil {
		return nil, errors.New("decoding crawler list: response has no rows field")
	}
	for i, row := range *raw.Rows {
		if row.CrawlerName == "" {
			return nil, fmt.Errorf("row %d: %w", i, ErrMissingCrawlerName)
		}
	}
	return &CrawlerList{Total: raw.Total, Rows: *raw.Rows}, nil
}
