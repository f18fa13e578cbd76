package postgres

import (
	"bytes"
	"encoding/json"
)

// embedded is a related collection aggregated into one JSON column. Depending on the
// relationship the column holds null, a single object or an array; all three decode
// to an ordered slice.
type embedded[T any] []T

func (e *embedded[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*e = nil
		return nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*e = items
		return nil
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*e = embedded[T]{one}
	return nil
}

func decodeEmbedded[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out embedded[T]
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return []T(out), nil
}
