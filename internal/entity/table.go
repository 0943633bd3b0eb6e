package entity

// Column describes one column of the crawler table.
type Column struct {
	Field  string
	Title  string
	Format func(row CrawlerRecord) string
}

// Box is the rendered vertical extent of a page element.
type Box struct {
	Height       int
	MarginTop    int
	MarginBottom int
}

// OuterHeight is the height including margins.
func (b Box) OuterHeight() int {
	return b.Height + b.MarginTop + b.MarginBottom
}
