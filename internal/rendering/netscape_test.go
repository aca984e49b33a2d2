package rendering

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/bookmark-organizer/internal/bookmarks"
	"github.com/jonathan/bookmark-organizer/internal/types"
)

var fixedNow = time.Unix(1700000000, 0)

func TestRenderHTML_EndToEndExample(t *testing.T) {
	organized := []types.OrganizedBookmark{
		{URL: "https://a.example", AddDate: "1000", Title: "A", Category: "Work", Description: "d1"},
		{URL: "https://b.example", AddDate: "2000", Title: "B", Category: "Personal", Description: "d2"},
	}

	out, err := RenderHTML(organized, fixedNow)
	require.NoError(t, err)

	want := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3 ADD_DATE="1700000000" LAST_MODIFIED="1700000000" PERSONAL_TOOLBAR_FOLDER="true">Favorites bar</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1700000000">Work</H3>
        <DL><p>
            <DT><A HREF="https://a.example" ADD_DATE="1000">A</A>
        </DL><p>
        <DT><H3 ADD_DATE="1700000000">Personal</H3>
        <DL><p>
            <DT><A HREF="https://b.example" ADD_DATE="2000">B</A>
        </DL><p>
    </DL><p>
</DL><p>
`
	assert.Equal(t, want, string(out))
}

func TestRenderHTML_Empty(t *testing.T) {
	out, err := RenderHTML(nil, fixedNow)
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasSuffix(s, "    <DL><p>\n    </DL><p>\n</DL><p>\n"))
	assert.Equal(t, 1, strings.Count(s, "<H3"))
}

func TestRenderHTML_GroupingAndIcons(t *testing.T) {
	organized := []types.OrganizedBookmark{
		{URL: "https://go.dev", AddDate: "1", Title: "Go", Category: "Dev", IconData: "R0lGODlh"},
		{URL: "https://news.example", AddDate: "2", Title: "News"},
		{URL: "https://rust-lang.org", AddDate: "3", Title: "Rust", Category: "Dev"},
		{URL: "https://r.example/?a=1&b=2", AddDate: "4", Title: "<b>Bold</b> title", Category: "R&D"},
	}

	out, err := RenderHTML(organized, fixedNow)
	require.NoError(t, err)
	s := string(out)

	dev := strings.Index(s, ">Dev</H3>")
	uncategorized := strings.Index(s, ">Uncategorized</H3>")
	rnd := strings.Index(s, ">R&amp;D</H3>")
	require.Positive(t, dev)
	require.Positive(t, uncategorized)
	require.Positive(t, rnd)
	assert.Less(t, dev, uncategorized, "folders follow first-seen order")
	assert.Less(t, uncategorized, rnd)

	assert.Equal(t, 1, strings.Count(s, ">Dev</H3>"), "one folder per category")
	assert.Less(t, strings.Index(s, ">Rust</A>"), uncategorized, "Rust is filed under Dev")

	assert.Contains(t, s, `<DT><A HREF="https://go.dev" ADD_DATE="1" ICON="data:image/png;base64,R0lGODlh">Go</A>`)
	assert.Contains(t, s, `<DT><A HREF="https://rust-lang.org" ADD_DATE="3">Rust</A>`)
	assert.Contains(t, s, `HREF="https://r.example/?a=1&amp;b=2"`)
	assert.Contains(t, s, `><b>Bold</b> title</A>`, "titles are written verbatim")
}

func TestRender_RoundTripsThroughParser(t *testing.T) {
	organized := []types.OrganizedBookmark{
		{URL: "https://a.example", AddDate: "1000", Title: "A", Category: "Work", IconData: "iVBORw0KGgo="},
		{URL: "https://b.example", AddDate: "2000", Title: "B", Category: "Personal"},
		{URL: "https://c.example", AddDate: "3000", Title: "C", Category: "Work"},
	}

	out, err := RenderHTML(organized, fixedNow)
	require.NoError(t, err)

	parsed, err := bookmarks.Parse(out)
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	// Export order is grouped by folder.
	assert.Equal(t, "https://a.example", parsed[0].URL)
	assert.Equal(t, "iVBORw0KGgo=", parsed[0].IconData)
	assert.Equal(t, "https://c.example", parsed[1].URL)
	assert.Equal(t, "3000", parsed[1].AddDate)
	assert.Equal(t, "https://b.example", parsed[2].URL)
	assert.Empty(t, parsed[2].IconData)
}

func TestGroupByCategory(t *testing.T) {
	folders := GroupByCategory([]types.OrganizedBookmark{
		{URL: "1", Category: "B"},
		{URL: "2", Category: "A"},
		{URL: "3"},
		{URL: "4", Category: "B"},
	})

	require.Len(t, folders, 3)
	assert.Equal(t, "B", folders[0].Name)
	assert.Equal(t, "A", folders[1].Name)
	assert.Equal(t, types.UncategorizedFolder, folders[2].Name)
	assert.Len(t, folders[0].Bookmarks, 2)
	assert.Equal(t, "4", folders[0].Bookmarks[1].URL)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_WriterError(t *testing.T) {
	err := Render(failingWriter{}, []types.OrganizedBookmark{{URL: "u", Category: "c"}}, fixedNow)
	require.Error(t, err)

	var tmplErr *TemplateError
	assert.ErrorAs(t, err, &tmplErr)
}
