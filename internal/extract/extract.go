// Package extract turns a SUUMO search results page into unit listings.
package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	domain "github.com/donaldgifford/rent-notifier/pkg/types"
)

// DefaultOrigin is prefixed to the relative detail links found on the page.
const DefaultOrigin = "https://suumo.jp"

// Selectors locates the listing fields in the page markup. Building fields
// are looked up inside a building group, unit fields inside a unit row.
type Selectors struct {
	Building       string
	BuildingName   string
	NearestStation string
	BuildingAge    string

	Unit              string
	Link              string
	Rent              string
	AdministrationFee string
	Deposit           string
	Gratuity          string
	FloorPlan         string
	FloorArea         string
	FloorNumber       string
}

// DefaultSelectors returns the selectors for the current SUUMO markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Building:       ".cassetteitem",
		BuildingName:   ".cassetteitem_content-title",
		NearestStation: ".cassetteitem_detail-col1",
		BuildingAge:    ".cassetteitem_detail-col3",

		Unit:              "table.cassetteitem_other tbody",
		Link:              "a.js-cassette_link_href",
		Rent:              ".cassetteitem_price--rent",
		AdministrationFee: ".cassetteitem_price--administration",
		Deposit:           ".cassetteitem_price--deposit",
		Gratuity:          ".cassetteitem_price--gratuity",
		FloorPlan:         ".cassetteitem_madori",
		FloorArea:         ".cassetteitem_menseki",
		FloorNumber:       "td:nth-child(3)",
	}
}

// Result is the output of a single extraction.
type Result struct {
	Listings  []domain.Listing
	Buildings int
	Skipped   int
}

// Extractor walks building groups and their unit rows in document order.
type Extractor struct {
	origin    string
	selectors Selectors
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOrigin sets the origin prefixed to relative detail links.
func WithOrigin(origin string) Option {
	return func(e *Extractor) {
		e.origin = strings.TrimSuffix(origin, "/")
	}
}

// WithSelectors replaces the default selectors.
func WithSelectors(s Selectors) Option {
	return func(e *Extractor) {
		e.selectors = s
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		origin:    DefaultOrigin,
		selectors: DefaultSelectors(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse builds a document tree from raw page markup.
func Parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page markup: %w", err)
	}
	return doc, nil
}

// Extract returns one listing per unit row that carries a usable detail
// link. Rows without one are counted in Result.Skipped. A page with no
// building groups yields an empty result, not an error.
func (e *Extractor) Extract(doc *goquery.Document) *Result {
	res := &Result{}
	sel := e.selectors

	doc.Find(sel.Building).Each(func(_ int, b *goquery.Selection) {
		res.Buildings++

		name := text(b, sel.BuildingName)
		station := text(b, sel.NearestStation)
		age := text(b, sel.BuildingAge)

		b.Find(sel.Unit).Each(func(_ int, row *goquery.Selection) {
			href, ok := row.Find(sel.Link).First().Attr("href")
			href = strings.TrimSpace(href)
			if !ok || !navigable(href) {
				res.Skipped++
				return
			}

			res.Listings = append(res.Listings, domain.Listing{
				BuildingName:      name,
				NearestStation:    station,
				BuildingAge:       age,
				Rent:              text(row, sel.Rent),
				AdministrationFee: text(row, sel.AdministrationFee),
				Deposit:           text(row, sel.Deposit),
				Gratuity:          text(row, sel.Gratuity),
				FloorPlan:         text(row, sel.FloorPlan),
				FloorArea:         text(row, sel.FloorArea),
				FloorNumber:       text(row, sel.FloorNumber),
				URL:               e.origin + href,
			})
		})
	})

	return res
}

// navigable reports whether href points at a real page. Script pseudo-links
// are used on the site for favourite and compare toggles.
func navigable(href string) bool {
	if href == "" {
		return false
	}
	return !strings.Contains(strings.ToLower(href), "javascript")
}

// text joins the text of every match, so multi-line cells such as the
// station list stay together.
func text(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).Text())
}
