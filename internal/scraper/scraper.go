package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/pfrederiksen/legislator-ages/internal/httpclient"
	"github.com/pfrederiksen/legislator-ages/internal/legislator"
	"github.com/pfrederiksen/legislator-ages/internal/logger"
)

// ErrTableNotFound is returned when a page has no matching wikitable.
var ErrTableNotFound = errors.New("wikitable not found")

// Table is a parsed wikitable.
type Table struct {
	ID      string           `json:"id,omitempty"`
	Columns []string         `json:"columns"`
	Rows    []legislator.Row `json:"rows"`
}

// Getter fetches a URL body.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Scraper handles fetching and parsing wikitables
type Scraper struct {
	client Getter
}

// New creates a new Scraper instance
func New(client Getter) *Scraper {
	if client == nil {
		client = httpclient.New(httpclient.Options{})
	}
	return &Scraper{client: client}
}

// FetchTable fetches url and parses its first wikitable, or the one with
// the given id when id is not empty.
func (s *Scraper) FetchTable(ctx context.Context, url, id string, withLinks bool) (*Table, error) {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	sel, err := findTable(doc, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	table := Extract(sel, withLinks)
	logger.SetGauge("scraper.rows", float64(len(table.Rows)))
	logger.Info("Scraped table", logger.Fields{
		"url":     url,
		"table":   id,
		"columns": len(table.Columns),
		"rows":    len(table.Rows),
	})
	return table, nil
}

// FetchTables fetches url and parses every wikitable on it.
func (s *Scraper) FetchTables(ctx context.Context, url string, withLinks bool) ([]*Table, error) {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return extractAll(doc, withLinks), nil
}

// ParseTable reads an HTML document from r and parses its first wikitable
// (or the one with the given id).
func ParseTable(r io.Reader, id string, withLinks bool) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	sel, err := findTable(doc, id)
	if err != nil {
		return nil, err
	}
	return Extract(sel, withLinks), nil
}

// ParseTables reads an HTML document from r and parses every wikitable.
func ParseTables(r io.Reader, withLinks bool) ([]*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return extractAll(doc, withLinks), nil
}

func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	start := time.Now()
	body, err := s.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	logger.RecordTiming("scraper.fetch", time.Since(start))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

func findTable(doc *goquery.Document, id string) (*goquery.Selection, error) {
	selector := "table.wikitable"
	if id != "" {
		selector += "#" + id
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		if id != "" {
			return nil, fmt.Errorf("%w: id %q", ErrTableNotFound, id)
		}
		return nil, ErrTableNotFound
	}
	return sel, nil
}

func extractAll(doc *goquery.Document, withLinks bool) []*Table {
	tables := make([]*Table, 0)
	doc.Find("table.wikitable").Each(func(_ int, sel *goquery.Selection) {
		tables = append(tables, Extract(sel, withLinks))
	})
	return tables
}

// Extract parses a table selection into columns and rows.
func Extract(table *goquery.Selection, withLinks bool) *Table {
	id, _ := table.Attr("id")
	cols := ParseSchema(table)
	return &Table{
		ID:      id,
		Columns: cols,
		Rows:    ParseRows(table, cols, withLinks),
	}
}

// ParseSchema returns the column names from the table's first row.
func ParseSchema(table *goquery.Selection) []string {
	cols := make([]string, 0)
	headerRow(table).ChildrenFiltered("th").Each(func(_ int, th *goquery.Selection) {
		name := CellText(th)
		n := span(th, "colspan")
		if n > 1 {
			for i := 1; i <= n; i++ {
				cols = append(cols, fmt.Sprintf("%s - %d", name, i))
			}
			return
		}
		cols = append(cols, name)
	})
	return cols
}

type carried struct {
	value string
	left  int
}

// ParseRows returns one Row per body row after the header. Cells with a
// rowspan are repeated in the following rows, and each row's own cells fill
// the columns left over, in order.
func ParseRows(table *goquery.Selection, cols []string, withLinks bool) []legislator.Row {
	rows := make([]legislator.Row, 0)
	header := headerRow(table)
	pending := make(map[string]*carried)

	bodyRows(table).Each(func(_ int, tr *goquery.Selection) {
		if header.Length() > 0 && tr.Get(0) == header.Get(0) {
			return
		}

		row := make(legislator.Row)
		free := make([]string, 0, len(cols))
		for _, col := range cols {
			if c, ok := pending[col]; ok {
				row[col] = c.value
				c.left--
				if c.left == 0 {
					delete(pending, col)
				}
				continue
			}
			free = append(free, col)
		}

		tr.ChildrenFiltered("td, th").Each(func(i int, cell *goquery.Selection) {
			if i >= len(free) {
				return
			}
			col := free[i]
			row[col] = CellText(cell)
			if n := span(cell, "rowspan"); n > 1 {
				pending[col] = &carried{value: row[col], left: n - 1}
			}
			if withLinks {
				if href, ok := cell.Find("a[href]").First().Attr("href"); ok {
					row[col+legislator.LinkSuffix] = href
				}
			}
		})

		rows = append(rows, row)
	})
	return rows
}

func headerRow(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").First()
}

// bodyRows returns the rows of the table's first tbody, excluding rows of
// nested tables.
func bodyRows(table *goquery.Selection) *goquery.Selection {
	body := table.ChildrenFiltered("tbody").First()
	if body.Length() == 0 {
		return table.ChildrenFiltered("tr")
	}
	return body.ChildrenFiltered("tr")
}

func span(sel *goquery.Selection, attr string) int {
	v, ok := sel.Attr(attr)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// CellText returns the visible text of a cell with non-breaking and other
// compatibility spaces folded into plain spaces, trimmed. Text inside
// <style> elements is dropped.
func CellText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	text := norm.NFKC.String(b.String())
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	return strings.TrimSpace(text)
}

func writeText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode && (n.Data == "style" || n.Data == "script") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}
