package sheets

import (
	"strings"

	"github.com/playperu/quizbowl/internal/quizbowl"
)

const urlPrefix = "https://docs.google.com/spreadsheets/d/"

// ValidateURL returns the message a moderator sees for a bad sheet URL.
func ValidateURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return &quizbowl.ValidationError{Field: "sheetUrl", Message: "URL is required"}
	}
	if !strings.HasPrefix(url, urlPrefix) {
		return &quizbowl.ValidationError{Field: "sheetUrl", Message: `The URL must start with "` + urlPrefix + `"`}
	}
	return nil
}

// ParseSheetID extracts the spreadsheet ID from a sheet URL.
func ParseSheetID(url string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(url), urlPrefix)
	if !ok {
		return "", false
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest, rest != ""
}

// SheetURL is the inverse of ParseSheetID.
func SheetURL(id string) string {
	return urlPrefix + id
}
