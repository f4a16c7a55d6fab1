package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyClaim is returned when a claim is empty after trimming
var ErrEmptyClaim = errors.New("claim cannot be empty")

// Claim is a user-supplied assertion, already trimmed and non-empty
type Claim string

// NewClaim trims the text and rejects whitespace-only input
func NewClaim(text string) (Claim, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyClaim
	}
	return Claim(trimmed), nil
}

func (c Claim) String() string {
	return string(c)
}

// VerificationRequest is the body sent to the verification service
type VerificationRequest struct {
	Claim string `json:"claim"`
}

// VerificationResult is the verification service's answer for one claim
type VerificationResult struct {
	Claim     string         `json:"claim,omitempty"` // echoed by the service when present
	Verdict   string         `json:"verdict"`         // "Supported", "Refuted", anything else is uncertain
	Reasoning string         `json:"reasoning"`
	Evidence  []EvidenceItem `json:"evidence"`
}

// EvidenceItem is one piece of supporting or refuting material
type EvidenceItem struct {
	Source     string  `json:"source"`
	Text       string  `json:"text"`
	URL        string  `json:"url,omitempty"`
	Confidence float64 `json:"confidence"` // nominally 0.0-1.0, not validated here
}

// HasURL reports whether the item carries a link
func (e EvidenceItem) HasURL() bool {
	return strings.TrimSpace(e.URL) != ""
}

// wireResult mirrors VerificationResult with pointers so absent fields can be told apart
type wireResult struct {
	Claim     *string         `json:"claim"`
	Verdict   *string         `json:"verdict"`
	Reasoning *string         `json:"reasoning"`
	Evidence  []*wireEvidence `json:"evidence"`
}

type wireEvidence struct {
	Source     *string  `json:"source"`
	Text       *string  `json:"text"`
	URL        *string  `json:"url"`
	Confidence *float64 `json:"confidence"`
}

// DecodeVerificationResult parses a service response body. The body must be a
// JSON object carrying a verdict; every other field is defaulted when absent.
func DecodeVerificationResult(body []byte) (*VerificationResult, error) {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("response body is not a JSON object")
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if wire.Verdict == nil {
		return nil, fmt.Errorf("response is missing the verdict field")
	}

	result := &VerificationResult{
		Claim:     deref(wire.Claim),
		Verdict:   *wire.Verdict,
		Reasoning: deref(wire.Reasoning),
		Evidence:  make([]EvidenceItem, 0, len(wire.Evidence)),
	}
	for _, item := range wire.Evidence {
		// null entries in the array carry nothing worth showing
		if item == nil {
			continue
		}
		evidence := EvidenceItem{
			Source: deref(item.Source),
			Text:   deref(item.Text),
			URL:    strings.TrimSpace(deref(item.URL)),
		}
		if item.Confidence != nil {
			evidence.Confidence = *item.Confidence
		}
		result.Evidence = append(result.Evidence, evidence)
	}

	return result, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
