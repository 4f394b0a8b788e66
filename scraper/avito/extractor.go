package avito

import (
	"avito-position-probe/models"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"
)

const (
	itemSelector      = `div[data-marker="item"]`
	itemIDAttr        = "data-item-id"
	containerIDPrefix = "i"
	itemsLinkMarker   = "/items/"
	titleSelector     = `[itemprop="name"]`

	// UntitledPlaceholder is used when a listing carries no title marker.
	UntitledPlaceholder = "Untitled"
)

// idStrategy recovers a listing id from one result element.
type idStrategy func(item *goquery.Selection) (string, bool)

// idStrategies are tried in order; the first hit wins.
var idStrategies = []idStrategy{
	idFromItemAttr,
	idFromContainerID,
	idFromItemsLink,
}

// Extractor turns a search results page into listings in document order.
type Extractor struct {
	withTitles bool
	strategies []idStrategy
}

type ExtractorOption func(*Extractor)

// WithTitles makes the extractor fill ListingRecord.Title.
func WithTitles() ExtractorOption {
	return func(e *Extractor) {
		e.withTitles = true
	}
}

func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{strategies: idStrategies}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses html and returns one record per listing element that yields
// an id. Elements without any recoverable id are skipped. The order of the
// result is the order of the page and is never changed.
//
// Extract does not panic; any internal failure comes back as an error wrapping
// ErrParse together with an empty slice.
func (e *Extractor) Extract(html string) (records []models.ListingRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = []models.ListingRecord{}
			err = fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []models.ListingRecord{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	records = []models.ListingRecord{}
	doc.Find(itemSelector).Each(func(_ int, item *goquery.Selection) {
		id, ok := e.recoverID(item)
		if !ok {
			return
		}

		record := models.ListingRecord{ID: id, Title: mo.None[string]()}
		if e.withTitles {
			record.Title = mo.Some(extractTitle(item))
		}
		records = append(records, record)
	})

	return records, nil
}

func (e *Extractor) recoverID(item *goquery.Selection) (string, bool) {
	for _, strategy := range e.strategies {
		if id, ok := strategy(item); ok {
			return id, true
		}
	}
	return "", false
}

func idFromItemAttr(item *goquery.Selection) (string, bool) {
	id := strings.TrimSpace(item.AttrOr(itemIDAttr, ""))
	return id, id != ""
}

func idFromContainerID(item *goquery.Selection) (string, bool) {
	raw := strings.TrimSpace(item.AttrOr("id", ""))
	digits, found := strings.CutPrefix(raw, containerIDPrefix)
	if !found || !models.IsDigits(digits) {
		return "", false
	}
	return digits, true
}

func idFromItemsLink(item *goquery.Selection) (string, bool) {
	var id string
	item.Find(`a[href*="` + itemsLinkMarker + `"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if candidate, ok := idFromHref(link.AttrOr("href", "")); ok {
			id = candidate
			return false
		}
		return true
	})
	return id, id != ""
}

// idFromHref takes the path segment after the last "/items/" marker, drops any
// query string and accepts it only when it is all digits.
func idFromHref(href string) (string, bool) {
	idx := strings.LastIndex(href, itemsLinkMarker)
	if idx < 0 {
		return "", false
	}

	segment := href[idx+len(itemsLinkMarker):]
	segment, _, _ = strings.Cut(segment, "?")
	segment, _, _ = strings.Cut(segment, "/")

	if !models.IsDigits(segment) {
		return "", false
	}
	return segment, true
}

func extractTitle(item *goquery.Selection) string {
	title := strings.TrimSpace(item.Find(titleSelector).First().Text())
	if title == "" {
		return UntitledPlaceholder
	}
	return title
}
