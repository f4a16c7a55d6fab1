package presentation

import (
	"fmt"
	"strings"
	"sync"

	"adaptive-truth/internal/models"
)

// EvidenceDisplayMode decides whether evidence details start open
type EvidenceDisplayMode int

const (
	CollapsedByDefault EvidenceDisplayMode = iota
	AlwaysExpanded
)

func (m EvidenceDisplayMode) String() string {
	if m == AlwaysExpanded {
		return "expanded"
	}
	return "collapsed"
}

// ParseDisplayMode accepts "collapsed" or "expanded" in any case
func ParseDisplayMode(value string) (EvidenceDisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "collapsed":
		return CollapsedByDefault, nil
	case "expanded":
		return AlwaysExpanded, nil
	default:
		return CollapsedByDefault, fmt.Errorf("unknown evidence display mode %q", value)
	}
}

// EvidenceView is one evidence card, ready to print
type EvidenceView struct {
	Category          SourceCategory `json:"category"`
	Icon              string         `json:"icon"`
	Source            string         `json:"source"`
	Text              string         `json:"text"`
	URL               string         `json:"url,omitempty"`
	LinkTarget        string         `json:"link_target,omitempty"`
	LinkRel           string         `json:"link_rel,omitempty"`
	Confidence        float64        `json:"confidence"`
	ConfidencePercent float64        `json:"confidence_percent"`
	ConfidenceWidth   string         `json:"confidence_width"`
}

// HasLink reports whether a "View Source" link should be emitted
func (e EvidenceView) HasLink() bool {
	return e.URL != ""
}

// ResultView is everything the result panel shows for one verification
type ResultView struct {
	Claim          string         `json:"claim,omitempty"`
	Verdict        string         `json:"verdict"`
	VerdictClass   VerdictClass   `json:"verdict_class"`
	Reasoning      string         `json:"reasoning"`
	Evidence       []EvidenceView `json:"evidence"`
	HasWebSources  bool           `json:"has_web_sources"`
	SourceStrategy string         `json:"source_strategy"`
	Expanded       bool           `json:"expanded"`
	Collapsible    bool           `json:"collapsible"`
}

// BuildEvidenceView converts one item, clamping and defaulting as needed
func BuildEvidenceView(item models.EvidenceItem) EvidenceView {
	category := ClassifySource(item.Source)
	view := EvidenceView{
		Category:          category,
		Icon:              category.Icon(),
		Source:            PlainText(item.Source),
		Text:              PlainText(item.Text),
		Confidence:        ClampConfidence(item.Confidence),
		ConfidencePercent: ConfidencePercent(item.Confidence),
		ConfidenceWidth:   ConfidenceWidth(item.Confidence),
	}
	if link := SafeLink(item.URL); link != "" {
		view.URL = link
		view.LinkTarget = LinkTarget
		view.LinkRel = LinkRel
	}
	return view
}

// BuildResultView renders a result with the given expand state. A nil
// result renders nothing.
func BuildResultView(result *models.VerificationResult, expanded bool) *ResultView {
	if result == nil {
		return nil
	}

	verdict := PlainText(result.Verdict)
	if verdict == "" {
		verdict = "Uncertain"
	}

	hasWeb := HasWebSources(result.Evidence)
	view := &ResultView{
		Claim:          PlainText(result.Claim),
		Verdict:        verdict,
		VerdictClass:   ClassifyVerdict(result.Verdict),
		Reasoning:      PlainText(result.Reasoning),
		Evidence:       make([]EvidenceView, 0, len(result.Evidence)),
		HasWebSources:  hasWeb,
		SourceStrategy: SourceStrategy(hasWeb),
		Expanded:       expanded,
	}
	for _, item := range result.Evidence {
		view.Evidence = append(view.Evidence, BuildEvidenceView(item))
	}
	return view
}

// Presenter owns the result panel's only local state: whether evidence
// details are expanded. A new result resets it to the mode's default.
type Presenter struct {
	mu       sync.Mutex
	mode     EvidenceDisplayMode
	expanded bool
	current  *models.VerificationResult
}

// NewPresenter creates a presenter with a fixed display policy
func NewPresenter(mode EvidenceDisplayMode) *Presenter {
	return &Presenter{
		mode:     mode,
		expanded: mode == AlwaysExpanded,
	}
}

// Mode returns the display policy
func (p *Presenter) Mode() EvidenceDisplayMode {
	return p.mode
}

// Render produces the view for result, or nil when there is nothing to show
func (p *Presenter) Render(result *models.VerificationResult) *ResultView {
	p.mu.Lock()
	defer p.mu.Unlock()

	if result != p.current {
		p.current = result
		p.expanded = p.mode == AlwaysExpanded
	}
	if result == nil {
		return nil
	}

	view := BuildResultView(result, p.expanded)
	view.Collapsible = p.mode == CollapsedByDefault
	return view
}

// Toggle flips the evidence section and returns the new state. It has no
// effect when evidence is always expanded.
func (p *Presenter) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode == AlwaysExpanded {
		return true
	}
	p.expanded = !p.expanded
	return p.expanded
}

// Expanded reports the current toggle state
func (p *Presenter) Expanded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expanded
}
