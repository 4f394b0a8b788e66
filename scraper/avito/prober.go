package avito

import (
	"avito-position-probe/models"
	"avito-position-probe/utils"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	listingTitleMarker = `[data-marker="item-view/title"]`
	listingGoneMarker  = `[data-marker="error/resale"]`
)

// Prober checks that a listing id refers to a live ad before a user starts
// tracking it. It searches for the id itself, which Avito answers with the
// ad page when the listing exists.
type Prober struct {
	fetcher    PageFetcher
	region     models.RegionCode
	maxRetries int
}

func NewProber(fetcher PageFetcher, maxRetries int) *Prober {
	return &Prober{
		fetcher:    fetcher,
		region:     models.RegionSaintPetersburg,
		maxRetries: maxRetries,
	}
}

// Exists reports whether the listing page for id is live. Transport failures
// are retried; a challenge page is not.
func (p *Prober) Exists(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if err := models.ValidateTargetID(id); err != nil {
		return false, err
	}

	var html string
	err := utils.Retry(ctx, p.maxRetries, func() error {
		page, err := p.fetcher.Fetch(ctx, id, p.region)
		if err != nil {
			if reason := fetchReason(err); reason == ReasonChallenge || reason == ReasonCancelled {
				return fmt.Errorf("%w: %w", utils.ErrPermanent, err)
			}
			return err
		}
		html = page
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("probe listing %s: %w", id, err)
	}

	return listingPageLive(html)
}

func listingPageLive(html string) (live bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			live, err = false, fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, errors.Join(ErrParse, err)
	}

	hasTitle := doc.Find(listingTitleMarker).Length() > 0
	gone := doc.Find(listingGoneMarker).Length() > 0
	return hasTitle && !gone, nil
}
