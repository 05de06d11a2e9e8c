package cursor_test

import (
	"net/http/httptest"
	"testing"

	"bitbucket.org/kleinnic74/geosnap/rest/cursor"
	"github.com/stretchr/testify/assert"
)

const (
	start0Page20     = "eyJTdGFydCI6MCwiUGFnZVNpemUiOjIwfQ=="
	start20Page20    = "eyJTdGFydCI6MjAsIlBhZ2VTaXplIjoyMH0="
	start3000Page100 = "eyJTdGFydCI6MzAwMCwiUGFnZVNpemUiOjEwMH0="
)

func TestEncodeCursor(t *testing.T) {
	data := []struct {
		Cursor   cursor.Cursor
		Expected string
	}{
		{Cursor: cursor.Cursor{Start: 0, PageSize: 20}, Expected: start0Page20},
		{Cursor: cursor.Cursor{Start: 20, PageSize: 20}, Expected: start20Page20},
		{Cursor: cursor.Cursor{Start: 3000, PageSize: 100}, Expected: start3000Page100},
	}
	for i, d := range data {
		encoded := d.Cursor.Encode()
		if encoded != d.Expected {
			t.Errorf("#%d: Bad value for encoded cursor: expected %s, got %s", i, d.Expected, encoded)
		}
	}
}

func TestDecodeCursor(t *testing.T) {
	data := []struct {
		Encoded  string
		Expected cursor.Cursor
	}{
		{Encoded: start0Page20, Expected: cursor.Cursor{Start: 0, PageSize: 20}},
		{Encoded: start20Page20, Expected: cursor.Cursor{Start: 20, PageSize: 20}},
		{Encoded: "", Expected: cursor.Cursor{Start: 0, PageSize: 33}},
		{Encoded: "not base64!", Expected: cursor.Cursor{Start: 0, PageSize: 33}},
		{Encoded: start3000Page100, Expected: cursor.Cursor{Start: 3000, PageSize: 100}},
	}
	for i, d := range data {
		actual := cursor.DecodeFromString(d.Encoded, 33)
		assert.Equal(t, d.Expected, actual, "%d: bad cursor value", i)
	}
}

func TestDecodeFromRequest(t *testing.T) {
	data := []struct {
		URL      string
		Expected cursor.Cursor
	}{
		{"/photos", cursor.Cursor{Start: 0, PageSize: cursor.DefaultPageSize}},
		{"/photos?p=5", cursor.Cursor{Start: 0, PageSize: 5}},
		{"/photos?c=" + start20Page20 + "&p=7", cursor.Cursor{Start: 20, PageSize: 7}},
		{"/photos?p=-1", cursor.Cursor{Start: 0, PageSize: cursor.DefaultPageSize}},
		{"/photos?p=100000", cursor.Cursor{Start: 0, PageSize: cursor.MaxPageSize}},
	}
	for _, d := range data {
		r := httptest.NewRequest("GET", d.URL, nil)
		assert.Equal(t, d.Expected, cursor.DecodeFromRequest(r), d.URL)
	}
}

func TestPreviousAndSlice(t *testing.T) {
	_, exists := cursor.Cursor{Start: 0, PageSize: 10}.Previous()
	assert.False(t, exists)
	previous, exists := cursor.Cursor{Start: 5, PageSize: 10}.Previous()
	assert.True(t, exists)
	assert.Equal(t, 0, previous.Start)

	from, to, more := cursor.Cursor{Start: 10, PageSize: 10}.Slice(25)
	assert.Equal(t, []interface{}{10, 20, true}, []interface{}{from, to, more})
	from, to, more = cursor.Cursor{Start: 20, PageSize: 10}.Slice(25)
	assert.Equal(t, []interface{}{20, 25, false}, []interface{}{from, to, more})
	from, to, more = cursor.Cursor{Start: 40, PageSize: 10}.Slice(25)
	assert.Equal(t, []interface{}{25, 25, false}, []interface{}{from, to, more})
}

func TestPageLinks(t *testing.T) {
	page := cursor.PageFor([]int{1}, cursor.Cursor{Start: 20, PageSize: 20}, true)
	assert.Equal(t, []cursor.Link{{"previous", start0Page20}, {"next", "eyJTdGFydCI6NDAsIlBhZ2VTaXplIjoyMH0="}}, page.Links)
}
