package models

import (
	"bytes"
	"encoding/json"
)

// Scalar is a JSON string that clients may also send as a bare number, e.g. a
// publishing year of 1965.
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	v, err := decodeScalar(data)
	if err != nil {
		return err
	}
	*s = Scalar(v)
	return nil
}

func decodeScalar(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
