package main

import (
	"fmt"
	"strconv"

	"github.com/user/crawler-console/internal/entity"
)

func entityRow(name string) entity.CrawlerRecord {
	return entity.CrawlerRecord{CrawlerName: name}
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("row index must be a non-negative integer, got %q", s)
	}
	return index, nil
}
