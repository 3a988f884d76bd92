package store

import "encoding/json"

func marshalFailures(failures []string) (string, error) {
	if failures == nil {
		failures = []string{}
	}
	b, err := json.Marshal(failures)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalFailures(b []byte) ([]string, error) {
	if len(b) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
