package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseGrid turns calendar table markup into rows of cell text.
//
// The input is usually the inner HTML of a <tbody>, which the HTML parser
// would drop outside a table context, so bare row markup is wrapped in a
// table first. Only <td> cells are collected; header cells are ignored.
func ParseGrid(markup string) ([][]string, error) {
	if !strings.Contains(strings.ToLower(markup), "<table") {
		markup = "<table><tbody>" + markup + "</tbody></table>"
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar markup: %w", err)
	}

	grid := [][]string{}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.ChildrenFiltered("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, cell.Text())
		})
		grid = append(grid, cells)
	})

	return grid, nil
}
