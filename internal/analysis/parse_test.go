package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lehigh-university-libraries/shopik/internal/apperr"
	"github.com/lehigh-university-libraries/shopik/internal/models"
)

func TestParseProductAnalysis(t *testing.T) {
	expected := models.ProductAnalysis{
		Description: "Classic leather sneaker",
		Brand:       "Adidas",
		Category:    "clothing",
		Dimensions:  models.Dimensions{Length: "12", Height: "5", Width: "4"},
		Prices:      models.Prices{EBay: "45", Amazon: "70"},
	}

	tests := []struct {
		name     string
		response string
	}{
		{
			name: "plain JSON with product wrapper",
			response: `{"product": {"description": "Classic leather sneaker", "brand": "Adidas",
				"dimensions": {"length": "12", "height": "5", "width": "4"},
				"category": "clothing", "prices": {"eBay": "45", "Amazon": "70"}}}`,
		},
		{
			name: "fenced JSON with smart quotes",
			response: "```json\n{\n  “product”: {\n    “description”: “Classic leather sneaker”,\n" +
				"    “brand”: “Adidas”,\n    “dimensions”: {“length”: “12”, “height”: “5”, “width”: “4”},\n" +
				"    “category”: “clothing”,\n    “prices”: {“eBay”: “45”, “Amazon”: “70”}\n  }\n}\n```",
		},
		{
			name: "bare object with numeric values and lowercase keys",
			response: `{"description": "Classic leather sneaker", "brand": "Adidas",
				"dimensions": {"length": 12, "height": 5, "width": 4},
				"category": "clothing", "prices": {"ebay": 45, "amazon": 70}}`,
		},
		{
			name: "surrounding chatter",
			response: `Sure! Here is the analysis: {"product": {"description": "Classic leather sneaker", "brand": "Adidas",
				"dimensions": {"length": "12", "height": "5", "width": "4"},
				"category": "clothing", "prices": {"eBay": "45", "Amazon": "70"}}} Let me know if you need more.`,
		},
		{
			name: "smart single quotes as delimiters",
			response: "{‘product’: {‘description’: ‘Classic leather sneaker’, ‘brand’: ‘Adidas’, " +
				"‘dimensions’: {‘length’: ‘12’, ‘height’: ‘5’, ‘width’: ‘4’}, " +
				"‘category’: ‘clothing’, ‘prices’: {‘eBay’: ‘45’, ‘Amazon’: ‘70’}}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProductAnalysis(tt.response)
			if err != nil {
				t.Fatalf("ParseProductAnalysis failed: %v", err)
			}
			if diff := cmp.Diff(expected, got); diff != "" {
				t.Errorf("Analysis mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseProductAnalysisKeepsApostrophes(t *testing.T) {
	got, err := ParseProductAnalysis("{“product”: {“description”: “Men’s denim jacket”, “brand”: “Levi’s”}}")
	if err != nil {
		t.Fatalf("ParseProductAnalysis failed: %v", err)
	}
	if got.Description != "Men's denim jacket" || got.Brand != "Levi's" {
		t.Errorf("Unexpected analysis %+v", got)
	}
}

func TestParseProductAnalysisErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "free text", response: "I'm sorry, I can't identify the product in this image."},
		{name: "truncated JSON", response: `{"product": {"description": "Mug", "brand": "Ikea"`},
		{name: "null product", response: `{"product": null}`},
		{name: "missing description", response: `{"product": {"brand": "Ikea"}}`},
		{name: "wrong shape", response: `{"product": {"description": "Mug", "prices": [1, 2]}}`},
		{name: "empty", response: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProductAnalysis(tt.response)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !apperr.Is(err, apperr.KindParse) {
				t.Errorf("Expected parse error, got %v", err)
			}
		})
	}
}
