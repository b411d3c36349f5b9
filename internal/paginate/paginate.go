// Package paginate slices ordered listings into fixed-size pages.
package paginate

import (
	"strconv"
	"strings"
)

// PerPage is the page size of every listing.
const PerPage = 10

type Page struct {
	Number      int  `json:"number"`
	NumPages    int  `json:"num_pages"`
	Count       int  `json:"count"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// New builds the page for a listing of count items. raw is the 1-based page
// number as it arrived in the query string. Anything unparsable means page 1;
// a number outside 1..NumPages, below or above, lands on the last page.
func New(count int, raw string) Page {
	if count < 0 {
		count = 0
	}
	numPages := (count + PerPage - 1) / PerPage
	if numPages == 0 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	return Page{
		Number:      number,
		NumPages:    numPages,
		Count:       count,
		PerPage:     PerPage,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) Limit() int {
	return p.PerPage
}

// Len is the number of items on this page.
func (p Page) Len() int {
	rest := p.Count - p.Offset()
	if rest > p.PerPage {
		return p.PerPage
	}
	if rest < 0 {
		return 0
	}
	return rest
}
