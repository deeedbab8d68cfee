package coop

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"coop_shift_notifier/internal/domain/shift"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// Markup of the member-services shift grid. Nothing outside this file should
// know about it.
const (
	gridSelector     = "div.grid-container"
	columnSelector   = "div.col"
	headerSelector   = "p"
	sentinelSelector = `p[align="center"]`
	entrySelector    = "a.shift"
	noShiftsMarker   = "-- No shifts --"
)

// Extractor turns a shift grid page into day blocks.
type Extractor struct {
	logger *logrus.Entry
}

func NewExtractor(logger *logrus.Entry) *Extractor {
	return &Extractor{logger: logger}
}

// Extract parses one grid page. Days and shifts are returned in document
// order. Malformed columns degrade to empty fields; only a page without any
// grid is an error (shift.ErrGridNotFound).
func (e *Extractor) Extract(r io.Reader, baseURL *url.URL) ([]shift.DayBlock, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &shift.ParseError{Reason: fmt.Sprintf("read document: %v", err)}
	}

	grid := doc.Find(gridSelector).First()
	if grid.Length() == 0 {
		return nil, shift.ErrGridNotFound
	}

	days := make([]shift.DayBlock, 0, 7)
	grid.Find(columnSelector).Each(func(_ int, col *goquery.Selection) {
		days = append(days, e.extractDay(col, baseURL))
	})
	return days, nil
}

func (e *Extractor) extractDay(col *goquery.Selection, baseURL *url.URL) shift.DayBlock {
	header := strings.TrimSpace(col.Find(headerSelector).First().Find("b").First().Text())
	block := shift.DayBlock{Shifts: []shift.Record{}}
	fields := strings.Fields(header)
	if len(fields) > 0 {
		block.Day = fields[0]
	}
	if len(fields) > 1 {
		block.Date = fields[1]
	}
	if len(fields) < 2 {
		e.logger.WithField("header", header).Warn("Day header is malformed")
	}

	if hasNoShiftsMarker(col) {
		block.Availability = shift.AvailabilityNone
		return block
	}

	col.Find(entrySelector).Each(func(_ int, entry *goquery.Selection) {
		block.Shifts = append(block.Shifts, e.extractShift(entry, baseURL))
	})
	if len(block.Shifts) > 0 {
		block.Availability = shift.AvailabilityListed
	} else {
		block.Availability = shift.AvailabilityUnknown
		e.logger.WithFields(logrus.Fields{"day": block.Day, "date": block.Date}).
			Warn("Day has neither shifts nor the no-shifts marker")
	}
	return block
}

func (e *Extractor) extractShift(entry *goquery.Selection, baseURL *url.URL) shift.Record {
	timeText := strings.TrimSpace(entry.Find("b").First().Text())

	description := entry.Text()
	if timeText != "" {
		description = strings.ReplaceAll(description, timeText, "")
	}
	description = strings.Join(strings.Fields(description), " ")

	rec := shift.Record{
		TimeText:    timeText,
		Description: description,
		Link:        resolveLink(baseURL, strings.TrimSpace(entry.AttrOr("href", ""))),
	}

	start, end, err := shift.ParseTimeRange(timeText)
	if err != nil {
		e.logger.WithError(err).WithField("description", description).Warn("Could not normalize shift time, using midnight")
	}
	rec.Start, rec.End = start, end
	return rec
}

func hasNoShiftsMarker(col *goquery.Selection) bool {
	found := false
	col.Find(sentinelSelector).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		found = strings.Contains(p.Text(), noShiftsMarker)
		return !found
	})
	return found
}

func resolveLink(baseURL *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return baseURL.String() + href
	}
	return baseURL.ResolveReference(ref).String()
}
