// Package dedup filters listings down to the ones not notified before.
package dedup

import (
	domain "github.com/donaldgifford/rent-notifier/pkg/types"
)

// Accumulator is the set of urls accepted during the current run. It keeps
// acceptance order so the history is appended in the order listings were
// announced.
type Accumulator struct {
	seen map[string]struct{}
	urls []string
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[string]struct{})}
}

// Add records url and reports whether it was not already present.
func (a *Accumulator) Add(url string) bool {
	if _, ok := a.seen[url]; ok {
		return false
	}
	a.seen[url] = struct{}{}
	a.urls = append(a.urls, url)
	return true
}

// Has reports whether url has been accepted.
func (a *Accumulator) Has(url string) bool {
	_, ok := a.seen[url]
	return ok
}

// URLs returns the accepted urls in acceptance order.
func (a *Accumulator) URLs() []string {
	out := make([]string, len(a.urls))
	copy(out, a.urls)
	return out
}

// Len returns the number of accepted urls.
func (a *Accumulator) Len() int {
	return len(a.urls)
}

// Filter returns the listings whose url is in neither the history snapshot
// nor acc, in input order. Accepted urls are added to acc as they are seen,
// so the first occurrence of a repeated url wins.
func Filter(
	listings []domain.Listing,
	history map[string]struct{},
	acc *Accumulator,
) []domain.Listing {
	var fresh []domain.Listing
	for i := range listings {
		url := listings[i].URL
		if _, sent := history[url]; sent {
			continue
		}
		if !acc.Add(url) {
			continue
		}
		fresh = append(fresh, listings[i])
	}
	return fresh
}
