package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID int `json:"id"`
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		description string
		body        string
		kind        ListKind
		ids         []int
		count       int
	}{
		{"null body", `null`, KindEmpty, []int{}, 0},
		{"empty body", ``, KindEmpty, []int{}, 0},
		{"object without results", `{"detail":"ok"}`, KindEmpty, []int{}, 0},
		{"results not an array", `{"results":{"id":1}}`, KindEmpty, []int{}, 0},
		{"scalar", `42`, KindEmpty, []int{}, 0},
		{"bare array", `[{"id":1},{"id":2}]`, KindArray, []int{1, 2}, 2},
		{"empty array", `[]`, KindArray, []int{}, 0},
		{"paginated envelope", `{"count":10,"next":null,"results":[{"id":3}]}`, KindPage, []int{3}, 10},
		{"envelope without count", `{"results":[{"id":4},{"id":5}]}`, KindPage, []int{4, 5}, 2},
	}
	for _, test := range tests {
		list, err := DecodeList[item]([]byte(test.body))
		require.NoErrorf(t, err, test.description)
		assert.Equalf(t, test.kind, list.Kind, test.description)
		assert.NotNilf(t, list.Items, test.description)
		ids := []int{}
		for _, it := range list.Items {
			ids = append(ids, it.ID)
		}
		assert.Equalf(t, test.ids, ids, test.description)
		assert.Equalf(t, test.count, list.Count, test.description)
	}
}

func TestDecodeListMalformedItems(t *testing.T) {
	list, err := DecodeList[item]([]byte(`[{"id":"x"}]`))
	assert.Error(t, err)
	assert.Empty(t, list.Items)
}
