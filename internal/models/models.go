package models

import (
	"encoding/json"

	"github.com/lehigh-university-libraries/shopik/internal/apperr"
)

// Dimensions of a product in inches. Values are kept as the model wrote them.
type Dimensions struct {
	Length Amount `json:"length"`
	Height Amount `json:"height"`
	Width  Amount `json:"width"`
}

// Prices are single USD estimates per marketplace.
type Prices struct {
	EBay   Amount `json:"eBay"`
	Amazon Amount `json:"Amazon"`
}

// ProductAnalysis is the structured description of a product photo
type ProductAnalysis struct {
	Description string     `json:"description"`
	Brand       string     `json:"brand"`
	Dimensions  Dimensions `json:"dimensions"`
	Category    string     `json:"category"`
	Prices      Prices     `json:"prices"`
}

// OutcomeKind tags an AnalysisOutcome.
type OutcomeKind string

const (
	OutcomeSuccess      OutcomeKind = "success"
	OutcomeParseFailure OutcomeKind = "parse_failure"
	OutcomeFailed       OutcomeKind = "failed"
)

// AnalysisOutcome is exactly one of a parsed analysis, a parse failure with
// the raw model text, or a failed pipeline stage.
type AnalysisOutcome struct {
	Kind     OutcomeKind
	Analysis *ProductAnalysis
	Raw      string
	Err      error
}

func Success(a ProductAnalysis) AnalysisOutcome {
	return AnalysisOutcome{Kind: OutcomeSuccess, Analysis: &a}
}

func ParseFailure(raw string, err error) AnalysisOutcome {
	return AnalysisOutcome{Kind: OutcomeParseFailure, Raw: raw, Err: err}
}

func Failed(err error) AnalysisOutcome {
	return AnalysisOutcome{Kind: OutcomeFailed, Err: err}
}

// InvalidJSONMessage is reported for analyses that could not be parsed.
const InvalidJSONMessage = "Invalid JSON format in analysis result"

// MarshalJSON renders {"product": ...} on success and {"error": ...} otherwise.
// Failure messages are rendered with apperr.Public, so upstream response
// bodies never reach the client.
func (o AnalysisOutcome) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OutcomeSuccess:
		return json.Marshal(struct {
			Product *ProductAnalysis `json:"product"`
		}{o.Analysis})
	case OutcomeParseFailure:
		return json.Marshal(struct {
			Error string `json:"error"`
			Raw   string `json:"raw,omitempty"`
		}{InvalidJSONMessage, o.Raw})
	default:
		msg := apperr.Public(o.Err)
		if msg == "" {
			msg = "analysis failed"
		}
		return json.Marshal(struct {
			Error string `json:"error"`
		}{msg})
	}
}

// ImageResult is the outcome for one uploaded image.
type ImageResult struct {
	Asset    string          `json:"-"`
	DataURL  string          `json:"dataURL,omitempty"`
	Analysis AnalysisOutcome `json:"analysis"`
}

// ImageResults is the /process-images response body.
type ImageResults struct {
	Results []ImageResult `json:"results"`
}
