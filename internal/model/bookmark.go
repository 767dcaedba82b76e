package model

import "time"

// Label sources.
const (
	SourceUser = "user"
	SourceAI   = "ai"
)

// Label is a categorical tag attached to a bookmark.
type Label struct {
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Source     string   `json:"source"` // "user" or "ai"
	Confidence float64  `json:"confidence,omitempty"`
}

// Bookmark represents a saved URL with metadata and labels.
type Bookmark struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Labels      []Label   `json:"labels"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title       string
	URL         string
	Description string
	Labels      []Label
}

// NewBookmark creates a Bookmark with a generated UUID and timestamp.
func NewBookmark(params NewBookmarkParams) Bookmark {
	labels := params.Labels
	if labels == nil {
		labels = []Label{}
	}

	return Bookmark{
		ID:          GenerateUUID(),
		Title:       params.Title,
		URL:         params.URL,
		Description: params.Description,
		Labels:      labels,
		CreatedAt:   time.Now(),
	}
}

// BookmarkRef is the minimal identity view used by similarity and
// duplicate-detection logic.
type BookmarkRef struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Ref returns the minimal identity view of the bookmark.
func (b Bookmark) Ref() BookmarkRef {
	return BookmarkRef{
		ID:          b.ID,
		URL:         b.URL,
		Title:       b.Title,
		Description: b.Description,
	}
}

// HasLabel reports whether the bookmark carries a label with the given
// name and category, from any source.
func (b Bookmark) HasLabel(name string, category Category) bool {
	for _, l := range b.Labels {
		if l.Name == name && l.Category == category {
			return true
		}
	}
	return false
}
