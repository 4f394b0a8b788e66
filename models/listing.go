package models

import "github.com/samber/mo"

// ListingRecord is one ad extracted from a search results page.
type ListingRecord struct {
	ID    string
	Title mo.Option[string]
}

// SweepJob is one (query, region) pair of a sweep, numbered from 1.
type SweepJob struct {
	Index  int
	Total  int
	Query  string
	Region RegionCode
}
