package library

import (
	"context"
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

// Day counts the displayed photos captured on one calendar day
type Day struct {
	Date  string    `json:"date"`
	Count int       `json:"count"`
	First PhotoPath `json:"first"`
}

type Month struct {
	Month time.Month `json:"month"`
	Count int        `json:"count"`
	Days  []*Day     `json:"days"`
}

type Year struct {
	Year   int      `json:"year"`
	Count  int      `json:"count"`
	Months []*Month `json:"months"`
}

// Timeline groups photos by capture date, in chronological order
type Timeline struct {
	Years []*Year `json:"years"`
	// Undated photos have neither an EXIF date nor a readable file
	Undated int `json:"undated"`
}

// Add counts the photo at path for the day of t, the first path added to a
// day is kept as its representative
func (timeline *Timeline) Add(t time.Time, path PhotoPath) {
	if t.IsZero() {
		timeline.Undated++
		return
	}
	var year *Year
	for _, y := range timeline.Years {
		if y.Year == t.Year() {
			year = y
			break
		}
	}
	if year == nil {
		year = &Year{Year: t.Year()}
		timeline.Years = append(timeline.Years, year)
		sort.Slice(timeline.Years, func(i, j int) bool { return timeline.Years[i].Year < timeline.Years[j].Year })
	}
	year.Count++
	year.add(t, path)
}

func (year *Year) add(t time.Time, path PhotoPath) {
	var month *Month
	for _, m := range year.Months {
		if m.Month == t.Month() {
			month = m
			break
		}
	}
	if month == nil {
		month = &Month{Month: t.Month()}
		year.Months = append(year.Months, month)
		sort.Slice(year.Months, func(i, j int) bool { return year.Months[i].Month < year.Months[j].Month })
	}
	month.Count++
	month.add(t, path)
}

func (m *Month) add(t time.Time, path PhotoPath) {
	key := t.Format(dayLayout)
	for _, d := range m.Days {
		if d.Date == key {
			d.Count++
			return
		}
	}
	m.Days = append(m.Days, &Day{Date: key, Count: 1, First: path})
	sort.Slice(m.Days, func(i, j int) bool { return m.Days[i].Date < m.Days[j].Date })
}

// Timeline returns the capture dates of the displayed photos
func (c *Collection) Timeline(ctx context.Context) Timeline {
	timeline := Timeline{Years: []*Year{}}
	for _, e := range c.Display() {
		timeline.Add(CaptureTime(ctx, e.Path, c.md), e.Path)
	}
	return timeline
}
