package library

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bitbucket.org/kleinnic74/geosnap/domain/tags"

	"github.com/stretchr/testify/assert"
)

func TestTimelineAdd(t *testing.T) {
	data := []struct {
		dates []time.Time
		paths []PhotoPath

		years   []int
		months  []string
		days    []string
		counts  []int
		undated int
	}{
		{
			dates:  dates("2020-05-20", "2020-04-12", "2020-04-12"),
			paths:  []PhotoPath{"/one.jpg", "/two.jpg", "/three.jpg"},
			years:  []int{2020},
			months: []string{"2020-04", "2020-05"},
			days:   []string{"2020-04-12:/two.jpg", "2020-05-20:/one.jpg"},
			counts: []int{2, 1},
		},
		{
			dates:   append(dates("2021-01-02", "2019-12-31"), time.Time{}),
			paths:   []PhotoPath{"/a.jpg", "/b.jpg", "/c.jpg"},
			years:   []int{2019, 2021},
			months:  []string{"2019-12", "2021-01"},
			days:    []string{"2019-12-31:/b.jpg", "2021-01-02:/a.jpg"},
			counts:  []int{1, 1},
			undated: 1,
		},
	}

	for i, d := range data {
		var line Timeline
		for j, date := range d.dates {
			line.Add(date, d.paths[j])
		}
		var years []int
		var months, days []string
		var counts []int
		for _, y := range line.Years {
			years = append(years, y.Year)
			for _, m := range y.Months {
				months = append(months, fmt.Sprintf("%d-%02d", y.Year, m.Month))
				for _, day := range m.Days {
					days = append(days, fmt.Sprintf("%s:%s", day.Date, day.First))
					counts = append(counts, day.Count)
				}
			}
		}
		assert.Equal(t, d.years, years, "#%d", i)
		assert.Equal(t, d.months, months, "#%d", i)
		assert.Equal(t, d.days, days, "#%d", i)
		assert.Equal(t, d.counts, counts, "#%d", i)
		assert.Equal(t, d.undated, line.Undated, "#%d", i)
	}
}

func dates(in ...string) []time.Time {
	result := make([]time.Time, len(in))
	for i, s := range in {
		ts, err := time.Parse("2006-01-02", s)
		if err != nil {
			panic(err)
		}
		result[i] = ts
	}
	return result
}

func TestCollectionTimeline(t *testing.T) {
	md := newFakeMetadata(map[PhotoPath]fakeFile{
		"/p/a.jpg": {tags: tags.Set{tags.DateTimeOriginal: tags.TextValue("2020:01:01 10:00:00")}},
		"/p/b.jpg": {modified: mustTime("2020-01-01T18:00:00Z")},
		"/p/c.jpg": {},
	})
	c := NewCollection(md)
	c.AddPaths(context.Background(), "/p/a.jpg", "/p/b.jpg", "/p/c.jpg")

	line := c.Timeline(context.Background())
	assert.Equal(t, 1, line.Undated)
	if assert.Len(t, line.Years, 1) {
		assert.Equal(t, 2, line.Years[0].Count)
		days := line.Years[0].Months[0].Days
		if assert.Len(t, days, 1) {
			assert.Equal(t, "2020-01-01", days[0].Date)
			assert.Equal(t, 2, days[0].Count)
			assert.Equal(t, PhotoPath("/p/a.jpg"), days[0].First)
		}
	}
}
