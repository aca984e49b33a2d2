// Package types provides the record types shared by the bookmark organizer packages.
package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// UncategorizedFolder is the folder name used for bookmarks without a category.
const UncategorizedFolder = "Uncategorized"

// Bookmark is a single entry parsed from a bookmark export.
// AddDate is kept as the captured text and is never converted.
type Bookmark struct {
	URL      string `json:"url" validate:"required"`
	AddDate  string `json:"add_date"`
	Title    string `json:"title"`
	IconData string `json:"icon_data,omitempty"`
}

// OrganizedBookmark is a Bookmark after classification.
type OrganizedBookmark struct {
	URL         string `json:"url" validate:"required"`
	AddDate     string `json:"add_date"`
	Title       string `json:"title"`
	IconData    string `json:"icon_data,omitempty"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ClassifierInput is the view of a Bookmark sent to the classifier (no icon payload).
type ClassifierInput struct {
	URL     string `json:"url"`
	AddDate string `json:"add_date"`
	Title   string `json:"title"`
}

// ForClassifier strips fields that must not leave the process.
func (b Bookmark) ForClassifier() ClassifierInput {
	return ClassifierInput{URL: b.URL, AddDate: b.AddDate, Title: b.Title}
}

// Organize combines the passthrough fields of b with a category and description.
func (b Bookmark) Organize(category, description string) OrganizedBookmark {
	return OrganizedBookmark{
		URL:         b.URL,
		AddDate:     b.AddDate,
		Title:       b.Title,
		IconData:    b.IconData,
		Category:    category,
		Description: description,
	}
}

// Folder returns the folder this bookmark is filed under.
func (o OrganizedBookmark) Folder() string {
	if o.Category == "" {
		return UncategorizedFolder
	}
	return o.Category
}

// OrganizedBookmarks is the request body of the HTML conversion endpoint.
type OrganizedBookmarks []OrganizedBookmark

// Validate validates every item using the validator.
func (list OrganizedBookmarks) Validate() error {
	validate := validator.New()
	for i := range list {
		if err := validate.Struct(&list[i]); err != nil {
			return fmt.Errorf("bookmark %d: %w", i, err)
		}
	}
	return nil
}
