package presentation

import (
	"strings"

	"adaptive-truth/internal/models"
)

// VerdictClass is the badge styling chosen for a verdict
type VerdictClass string

const (
	VerdictSupported VerdictClass = "status-supported"
	VerdictRefuted   VerdictClass = "status-refuted"
	VerdictUncertain VerdictClass = "status-uncertain"
)

// ClassifyVerdict maps a free-form verdict label to its badge class.
// Only "supported" and "refuted" (any case, exact otherwise) are special.
func ClassifyVerdict(verdict string) VerdictClass {
	switch strings.ToLower(verdict) {
	case "supported":
		return VerdictSupported
	case "refuted":
		return VerdictRefuted
	default:
		return VerdictUncertain
	}
}

// SourceCategory is the display label for where a piece of evidence came from
type SourceCategory string

const (
	SourceLocalKnowledge SourceCategory = "Local Knowledge"
	SourceWebSearch      SourceCategory = "Web Search"
)

// Icon returns the glyph shown next to the category label
func (c SourceCategory) Icon() string {
	if c == SourceLocalKnowledge {
		return "📂"
	}
	return "🌐"
}

var localSourceTokens = []string{"local", "chroma", "pinecone"}

// ClassifySource labels an evidence source by case-insensitive substring
// match. It is a display heuristic and never feeds into the verdict.
func ClassifySource(source string) SourceCategory {
	lower := strings.ToLower(source)
	for _, token := range localSourceTokens {
		if strings.Contains(lower, token) {
			return SourceLocalKnowledge
		}
	}
	return SourceWebSearch
}

// HasWebSources reports whether any evidence source mentions "web" or "http".
// This is independent of ClassifySource: a source can be labelled local and
// still count here.
func HasWebSources(evidence []models.EvidenceItem) bool {
	for _, item := range evidence {
		lower := strings.ToLower(item.Source)
		if strings.Contains(lower, "web") || strings.Contains(lower, "http") {
			return true
		}
	}
	return false
}

// SourceStrategy is the summary label shown for the evidence set as a whole
func SourceStrategy(hasWeb bool) string {
	if hasWeb {
		return "Live Web Search"
	}
	return "Local Database"
}
