// Package cursor implements the paging of list responses. A cursor is the
// base64 encoded JSON of the start index and the page size.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
)

type Cursor struct {
	Start    int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

// DecodeFromRequest reads the cursor from the 'c' query parameter, the page
// size can be overridden with 'p'
func DecodeFromRequest(r *http.Request) Cursor {
	cursor := DecodeFromString(r.URL.Query().Get("c"), DefaultPageSize)
	if p := r.URL.Query().Get("p"); p != "" {
		if pageSize, err := strconv.Atoi(p); err == nil && pageSize > 0 {
			cursor.PageSize = pageSize
		}
	}
	if cursor.PageSize > MaxPageSize {
		cursor.PageSize = MaxPageSize
	}
	return cursor
}

// DecodeFromString decodes an encoded cursor, invalid values yield the first
// page
func DecodeFromString(encoded string, defaultPageSize int) Cursor {
	cursor := Cursor{PageSize: defaultPageSize}
	if encoded == "" {
		return cursor
	}
	asJSON, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return cursor
	}
	var decoded Cursor
	if err := json.Unmarshal(asJSON, &decoded); err != nil || decoded.Start < 0 {
		return cursor
	}
	if decoded.PageSize <= 0 {
		decoded.PageSize = defaultPageSize
	}
	return decoded
}

func (c Cursor) Encode() string {
	asJSON, err := json.Marshal(&c)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(asJSON)
}

func (c Cursor) Previous() (Cursor, bool) {
	if c.Start <= 0 {
		return Cursor{}, false
	}
	start := c.Start - c.PageSize
	if start < 0 {
		start = 0
	}
	return Cursor{Start: start, PageSize: c.PageSize}, true
}

func (c Cursor) Next() (Cursor, bool) {
	return Cursor{Start: c.Start + c.PageSize, PageSize: c.PageSize}, true
}

// Slice returns the bounds of the page in a list of total elements and
// whether elements follow the page
func (c Cursor) Slice(total int) (from, to int, hasMore bool) {
	from = c.Start
	if from > total {
		from = total
	}
	to = from + c.PageSize
	if to > total {
		to = total
	}
	return from, to, to < total
}
