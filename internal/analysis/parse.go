package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/lehigh-university-libraries/shopik/internal/apperr"
	"github.com/lehigh-university-libraries/shopik/internal/models"
	"github.com/lehigh-university-libraries/shopik/internal/sanitize"
)

// extractJSONObject returns the text between the first '{' and the last '}'.
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseProductAnalysis sanitizes a model answer and decodes the product it
// describes. Both {"product": {...}} and a bare product object are accepted.
func ParseProductAnalysis(raw string) (models.ProductAnalysis, error) {
	var result models.ProductAnalysis

	obj, ok := extractJSONObject(sanitize.CleanModelJSONText(raw))
	if !ok {
		return result, apperr.Parse("no JSON object in analysis", nil)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &top); err != nil {
		// some replies use smart single quotes as JSON delimiters
		retry, found := extractJSONObject(sanitize.CleanModelJSONTextAllQuotes(raw))
		if !found || json.Unmarshal([]byte(retry), &top) != nil {
			return result, apperr.Parse("failed to parse JSON response", err)
		}
		obj = retry
	}

	body := json.RawMessage(obj)
	for k, v := range top {
		if strings.EqualFold(k, "product") {
			body = v
			break
		}
	}
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return result, apperr.Parse("product is null", nil)
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return result, apperr.Parse("failed to parse product", err)
	}

	if strings.TrimSpace(result.Description) == "" {
		return result, apperr.Parse("description is required", errors.New("missing description"))
	}
	return result, nil
}
