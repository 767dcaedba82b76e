package model

// Category classifies what kind of label a suggestion proposes.
type Category string

// Suggestion categories.
const (
	CategoryTopic    Category = "topic"
	CategoryType     Category = "type"
	CategoryPriority Category = "priority"
)

// LabelSuggestion is a single AI-proposed label for a bookmark.
// Immutable once received from the provider.
type LabelSuggestion struct {
	Label      string   `json:"label"`
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"` // in [0,1]
	Reasoning  string   `json:"reasoning,omitempty"`
}

// AnnotatedBookmark pairs a bookmark with its suggestion partition.
// AutoApplied and Remaining are disjoint and together cover the full
// suggestion sequence for the bookmark.
type AnnotatedBookmark struct {
	Bookmark    Bookmark          `json:"bookmark"`
	AutoApplied []LabelSuggestion `json:"autoAppliedLabels"`
	Remaining   []LabelSuggestion `json:"remainingLabels"`
}

// AllSuggestions returns the union of auto-applied and remaining
// suggestions, auto-applied first.
func (a AnnotatedBookmark) AllSuggestions() []LabelSuggestion {
	all := make([]LabelSuggestion, 0, len(a.AutoApplied)+len(a.Remaining))
	all = append(all, a.AutoApplied...)
	all = append(all, a.Remaining...)
	return all
}

// AutoApplySettings controls the auto-apply decision procedure.
// A ConfidenceThreshold of zero or less means "unset" and disables
// auto-apply regardless of Enabled.
type AutoApplySettings struct {
	Enabled              bool    `json:"enabled"`
	ConfidenceThreshold  float64 `json:"confidenceThreshold"`
	MaxLabels            int     `json:"maxLabels"`
	NotificationsEnabled bool    `json:"notificationsEnabled"`
}

// DefaultAutoApplySettings returns the settings used when no
// configuration file exists.
func DefaultAutoApplySettings() AutoApplySettings {
	return AutoApplySettings{
		Enabled:              false,
		ConfidenceThreshold:  0.85,
		MaxLabels:            3,
		NotificationsEnabled: true,
	}
}
