package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Amount is a number-like value the model may send as a string or a number.
// It is always stored and emitted as a string.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("amount must be a string or number, got %s", data)
		}
		*a = Amount(n.String())
		return nil
	}
}
