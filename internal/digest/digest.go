// Package digest renders new listings into a single bounded text message.
package digest

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	domain "github.com/donaldgifford/rent-notifier/pkg/types"
)

// DefaultMaxChars is the message budget of the push API.
const DefaultMaxChars = 2000

// TruncationMarker is appended when a digest is cut to the budget.
const TruncationMarker = "\n...(文字数制限のため省略)"

// ErrNoListings is returned when Compose is called without listings.
var ErrNoListings = errors.New("no listings to compose")

var separator = "\n" + strings.Repeat("-", 15) + "\n"

// Digest is a composed message.
type Digest struct {
	Text      string
	Count     int
	Truncated bool
}

// Composer builds digests with a fixed character budget.
type Composer struct {
	maxChars int
}

// Option configures a Composer.
type Option func(*Composer)

// WithMaxChars sets the character budget. Zero or less disables the bound.
func WithMaxChars(n int) Option {
	return func(c *Composer) {
		c.maxChars = n
	}
}

// NewComposer creates a Composer with the default budget.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{maxChars: DefaultMaxChars}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RenderListing formats one listing block.
func RenderListing(l *domain.Listing) string {
	return fmt.Sprintf(
		"🏠 %s (%s)\n家賃: %s (管 %s)\n敷礼: %s / %s\n間取: %s / %s (%s)\n最寄: %s\n%s",
		l.BuildingName, l.BuildingAge,
		l.Rent, l.AdministrationFee,
		l.Deposit, l.Gratuity,
		l.FloorPlan, l.FloorArea, l.FloorNumber,
		l.NearestStation,
		l.URL,
	)
}

// Compose renders listings under a count header. Text longer than the
// budget, counted in code points, is cut at the budget and followed by
// TruncationMarker; the cut may fall inside a listing block.
func (c *Composer) Compose(listings []domain.Listing) (*Digest, error) {
	if len(listings) == 0 {
		return nil, ErrNoListings
	}

	blocks := make([]string, 0, len(listings))
	for i := range listings {
		blocks = append(blocks, RenderListing(&listings[i]))
	}

	text := fmt.Sprintf("【新着物件 %d件】\n\n", len(listings)) + strings.Join(blocks, separator)

	d := &Digest{Text: text, Count: len(listings)}
	if c.maxChars > 0 && utf8.RuneCountInString(text) > c.maxChars {
		d.Text = cut(text, c.maxChars) + TruncationMarker
		d.Truncated = true
	}
	return d, nil
}

// cut returns the first n code points of s.
func cut(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
