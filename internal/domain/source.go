package domain

import "fmt"

const (
	// previewLimit is the maximum number of content characters shown in a
	// source summary before truncation.
	previewLimit = 200

	unknownTitle = "Unknown Title"
	unknownDate  = "Unknown Date"
)

// SourceSummary is the display form of one retrieved chunk: a bolded title
// and publish date header followed by a content preview.
type SourceSummary string

// NewSourceSummary formats a chunk for display. Missing metadata fields fall
// back to "Unknown Title" / "Unknown Date"; content longer than 200 runes is
// cut and suffixed with an ellipsis.
func NewSourceSummary(c Chunk) SourceSummary {
	title := c.Title
	if title == "" {
		title = unknownTitle
	}
	date := c.PublishTime
	if date == "" {
		date = unknownDate
	}
	preview := c.Content
	if runes := []rune(preview); len(runes) > previewLimit {
		preview = string(runes[:previewLimit]) + "..."
	}
	return SourceSummary(fmt.Sprintf("**%s** (%s)\n%s", title, date, preview))
}

// Summaries formats a ranked result set in order.
func Summaries(chunks []ScoredChunk) []SourceSummary {
	if len(chunks) == 0 {
		return nil
	}
	out := make([]SourceSummary, 0, len(chunks))
	for _, sc := range chunks {
		out = append(out, NewSourceSummary(sc.Chunk))
	}
	return out
}
