package entity

// Field limits applied before an article reaches persistence. Titles are
// truncated to MaxTitleLength; content above MaxContentLength is rejected.
const (
	MaxTitleLength   = 500
	MaxContentLength = 1 << 20
)

// Article is a single news article extracted from a detail page.
// Content holds sanitized HTML; PublishedDate is the raw on-page string.
type Article struct {
	Title         string
	Summary       string
	Content       string
	Thumbnail     string
	PublishedDate string
	Tags          []string
	Author        string
	SourceURL     string
	SourceName    string
	CategoryCode  string
}

// TruncateTitle cuts the title to MaxTitleLength runes.
func (a *Article) TruncateTitle() {
	runes := []rune(a.Title)
	if len(runes) > MaxTitleLength {
		a.Title = string(runes[:MaxTitleLength])
	}
}

// Validate reports the first required field that is missing or out of bounds.
func (a *Article) Validate() error {
	switch {
	case a.Title == "":
		return fieldError("title", "is empty")
	case a.Content == "":
		return fieldError("content", "is empty")
	case len(a.Content) > MaxContentLength:
		return fieldError("content", "exceeds max length")
	case a.CategoryCode == "":
		return fieldError("category_code", "is unset")
	}
	return nil
}

// FieldError describes an invalid article field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Reason
}

func fieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
