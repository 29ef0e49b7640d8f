package domain

import (
	"fmt"
	"time"
)

type Review struct {
	PlaceID   string
	PlaceName string
	Time      time.Time // UTC
	Date      string    // display form derived from Time, "02-01-2006"
	Reviewer  string
	Rating    *float64
	Text      string
	Lang      string // source language code, e.g. "en"
	PhotoURL  string
	Sentiment *float64 // polarity in [-1,1], derived after acquisition
}

const ReviewDateLayout = "02-01-2006"

// Key identifies a review for deduplication: full-row equality over source
// fields. Sentiment and Date are excluded — both are derived columns and must
// not split otherwise-equal rows.
func (r Review) Key() string {
	rating := ""
	if r.Rating != nil {
		rating = fmt.Sprintf("%.3f", *r.Rating)
	}
	return fmt.Sprintf("%s|%d|%s|%s|%s|%s|%s",
		r.PlaceID, r.Time.Unix(), r.Reviewer, rating, r.Text, r.Lang, r.PhotoURL)
}
