// Package bookmarks parses browser bookmark exports and splits them into batches.
package bookmarks

import (
	"bytes"
	"encoding/json"
	"io"
	"regexp"
	"unicode/utf8"

	"github.com/jonathan/bookmark-organizer/internal/types"
)

var (
	anchorPattern = regexp.MustCompile(`(?s)<DT><A HREF="(.*?)" ADD_DATE="(\d+)"[^>]*>(.*?)</A>`)
	iconPattern   = regexp.MustCompile(`ICON="data:image/[^;"]+;base64,(.*?)"`)

	// jsonEntryPattern matches url/add_date/title triples in JSON-shaped text
	// that could not be decoded as a whole.
	jsonEntryPattern = regexp.MustCompile(`"url"\s*:\s*"((?:[^"\\]|\\.)*)"\s*,\s*"add_date"\s*:\s*"?(\d+)"?\s*,\s*"title"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseReader reads r fully and parses it with Parse.
func ParseReader(r io.Reader) ([]types.Bookmark, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Cause: err}
	}
	return Parse(data)
}

// Parse extracts bookmarks from a Netscape bookmark export or a JSON array.
// Entries are returned in source order. No matches yields an empty slice.
func Parse(data []byte) ([]types.Bookmark, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, &DecodeError{Offset: invalidOffset(data)}
	}
	content := string(data)

	if result := parseAnchors(content); len(result) > 0 {
		return result, nil
	}
	return parseJSON(data), nil
}

func parseAnchors(content string) []types.Bookmark {
	matches := anchorPattern.FindAllStringSubmatchIndex(content, -1)
	result := make([]types.Bookmark, 0, len(matches))
	for _, m := range matches {
		b := types.Bookmark{
			URL:     content[m[2]:m[3]],
			AddDate: content[m[4]:m[5]],
			Title:   content[m[6]:m[7]],
		}
		// only the span of this anchor is searched, so an icon never leaks to a neighbour
		if icon := iconPattern.FindStringSubmatch(content[m[0]:m[1]]); icon != nil {
			b.IconData = icon[1]
		}
		result = append(result, b)
	}
	return result
}

type jsonEntry struct {
	URL      *string    `json:"url"`
	AddDate  flexString `json:"add_date"`
	Title    string     `json:"title"`
	IconData string     `json:"icon_data"`
}

// flexString accepts both "123" and 123.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func parseJSON(data []byte) []types.Bookmark {
	var entries []jsonEntry
	if err := json.Unmarshal(bytes.TrimSpace(data), &entries); err == nil {
		result := make([]types.Bookmark, 0, len(entries))
		for _, e := range entries {
			// entries without a url key are not bookmarks; an empty url is kept as captured
			if e.URL == nil {
				continue
			}
			result = append(result, types.Bookmark{
				URL:      *e.URL,
				AddDate:  string(e.AddDate),
				Title:    e.Title,
				IconData: e.IconData,
			})
		}
		return result
	}

	content := string(data)
	matches := jsonEntryPattern.FindAllStringSubmatch(content, -1)
	result := make([]types.Bookmark, 0, len(matches))
	for _, m := range matches {
		result = append(result, types.Bookmark{
			URL:     unquoteJSON(m[1]),
			AddDate: m[2],
			Title:   unquoteJSON(m[3]),
		})
	}
	return result
}

// unquoteJSON decodes JSON escapes in a captured string body, keeping the raw
// text when the escapes are themselves malformed.
func unquoteJSON(raw string) string {
	var s string
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &s); err != nil {
		return raw
	}
	return s
}

func invalidOffset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}
