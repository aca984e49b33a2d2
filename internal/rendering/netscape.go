package rendering

import (
	"bytes"
	_ "embed"
	"io"
	"sync"
	"text/template"
	"time"

	"github.com/jonathan/bookmark-organizer/internal/types"
)

// DownloadFilename is the attachment name used for exported documents.
const DownloadFilename = "organized_bookmarks.html"

// ToolbarFolderName is the toolbar folder that wraps every category folder.
const ToolbarFolderName = "Favorites bar"

//go:embed templates/netscape.html.tmpl
var netscapeTemplate string

// Folder is one category folder of the export, in first-seen order.
type Folder struct {
	Name      string
	Bookmarks []types.OrganizedBookmark
}

// TemplateData represents the data structure passed to the export template
type TemplateData struct {
	Timestamp   int64
	ToolbarName string
	Folders     []Folder
}

var (
	parseOnce  sync.Once
	parsedTmpl *template.Template
	parseErr   error
)

func loadTemplate() (*template.Template, error) {
	parseOnce.Do(func() {
		parsedTmpl, parseErr = template.New("netscape").Funcs(template.FuncMap{
			"escapeAttr": EscapeAttr,
			"escapeText": EscapeText,
		}).Parse(netscapeTemplate)
	})
	if parseErr != nil {
		return nil, &TemplateError{Message: "failed to parse export template", Cause: parseErr}
	}
	return parsedTmpl, nil
}

// GroupByCategory groups bookmarks into folders by category, preserving the order in which
// categories first appear and the order of bookmarks within each folder.
func GroupByCategory(bookmarks []types.OrganizedBookmark) []Folder {
	index := make(map[string]int)
	folders := make([]Folder, 0)
	for _, b := range bookmarks {
		name := b.Folder()
		i, ok := index[name]
		if !ok {
			i = len(folders)
			index[name] = i
			folders = append(folders, Folder{Name: name})
		}
		folders[i].Bookmarks = append(folders[i].Bookmarks, b)
	}
	return folders
}

// Render writes a Netscape bookmark document for bookmarks to w. Folder timestamps
// are taken from now, not from any bookmark's add date.
func Render(w io.Writer, bookmarks []types.OrganizedBookmark, now time.Time) error {
	tmpl, err := loadTemplate()
	if err != nil {
		return err
	}

	data := TemplateData{
		Timestamp:   now.Unix(),
		ToolbarName: ToolbarFolderName,
		Folders:     GroupByCategory(bookmarks),
	}

	if err := tmpl.Execute(w, data); err != nil {
		return &TemplateError{Message: "failed to execute export template", Cause: err}
	}
	return nil
}

// RenderHTML renders the document into memory.
func RenderHTML(bookmarks []types.OrganizedBookmark, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, bookmarks, now); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
