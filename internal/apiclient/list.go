package apiclient

import (
	"bytes"
	"encoding/json"
)

// ListKind tells which shape a list endpoint answered with.
type ListKind int

const (
	KindEmpty ListKind = iota // null, empty body or an unrecognised shape
	KindArray                 // bare JSON array
	KindPage                  // paginated envelope {"results": [...], "count": n}
)

// List is the normalised result of a list endpoint.  Items is never nil.
type List[T any] struct {
	Kind  ListKind
	Items []T
	Count int
}

type pageEnvelope struct {
	Results json.RawMessage `json:"results"`
	Count   *int            `json:"count"`
}

// DecodeList accepts either a bare array or a paginated envelope.  Any other
// shape yields an empty list rather than an error; only malformed items are
// reported.
func DecodeList[T any](raw []byte) (List[T], error) {
	empty := List[T]{Kind: KindEmpty, Items: []T{}}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return empty, nil
	}
	switch raw[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return empty, err
		}
		if items == nil {
			items = []T{}
		}
		return List[T]{Kind: KindArray, Items: items, Count: len(items)}, nil
	case '{':
		var env pageEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return empty, nil
		}
		res := bytes.TrimSpace(env.Results)
		if len(res) == 0 || res[0] != '[' {
			return empty, nil
		}
		var items []T
		if err := json.Unmarshal(res, &items); err != nil {
			return empty, err
		}
		if items == nil {
			items = []T{}
		}
		count := len(items)
		if env.Count != nil {
			count = *env.Count
		}
		return List[T]{Kind: KindPage, Items: items, Count: count}, nil
	}
	return empty, nil
}
