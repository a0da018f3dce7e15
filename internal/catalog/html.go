package catalog

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// DecodeHTMLTable reads rows from the regulatory table as published in
// HTML. Each <tr> with at least two <td> cells yields a row: clause
// number, factor title, specialists (optional), research (optional).
// Header rows built from <th> cells are skipped.
func DecodeHTMLTable(data []byte) ([]Row, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html table: %w", err)
	}

	var rows []Row
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			if row, ok := rowFromCells(cellTexts(n)); ok {
				rows = append(rows, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return rows, nil
}

// cellTexts returns the visible text of each <td> child of a row
func cellTexts(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			cells = append(cells, visibleText(c))
		}
	}
	return cells
}

func rowFromCells(cells []string) (Row, bool) {
	if len(cells) < 2 {
		return Row{}, false
	}

	number := strings.TrimSpace(cells[0])
	number = strings.TrimPrefix(strings.ToLower(number), "п.")
	row := Row{
		ID:    parseClauseID(leadingInteger(number)),
		Title: cells[1],
	}
	// An empty specialists cell leaves the list nil so the title is scanned.
	if len(cells) > 2 && strings.TrimSpace(cells[2]) != "" {
		row.Specialties = SpecialtyList(splitSpecialtySegment(cells[2]))
	}
	if len(cells) > 3 {
		row.Research = cells[3]
	}
	return row, true
}

// leadingInteger keeps the first numeric component of "4.2.1" style numbers
func leadingInteger(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// visibleText extracts text nodes, skipping scripts and styles. Line
// breaks inside a cell become spaces.
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
