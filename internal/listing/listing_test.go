package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parliamentplating/reservations-web/internal/model"
)

func strp(s string) *string { return &s }

func TestSearchEvents(t *testing.T) {
	events := []model.Event{
		{ID: 1, Title: "Harvest Dinner", Description: strp("five courses")},
		{ID: 2, Title: "Gin Masterclass", Description: nil},
		{ID: 3, Title: "Brunch", Description: strp("Bottomless GIN cocktails")},
	}
	tests := []struct {
		description string
		query       string
		ids         []uint64
	}{
		{"empty query keeps all", "  ", []uint64{1, 2, 3}},
		{"title match ignores case", "harvest", []uint64{1}},
		{"title or description", "gin", []uint64{2, 3}},
		{"no match", "whisky", []uint64{}},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			ids := []uint64{}
			for _, e := range SearchEvents(events, tt.query) {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestFilterReservations(t *testing.T) {
	rs := []model.Reservation{
		{ID: 1, ReferenceCode: "PPPA-AAA", Status: model.StatusReserved, GuestEmail: "ann@example.com"},
		{ID: 2, ReferenceCode: "PPPA-BBB", Status: model.StatusPending, GuestEmail: "bob@example.com"},
		{ID: 3, ReferenceCode: "PPPA-CCC", Status: model.StatusPending, GuestEmail: "cat@example.com", EventTitle: "Harvest"},
	}
	assert.Len(t, FilterReservations(rs, "", ""), 3)
	assert.Len(t, FilterReservations(rs, model.StatusPending, ""), 2)
	assert.Len(t, FilterReservations(rs, model.StatusPending, "bob@"), 1)
	assert.Len(t, FilterReservations(rs, "", "harvest"), 1)
	assert.Len(t, FilterReservations(rs, model.StatusReserved, "ccc"), 0)
}

func TestSplitPayments(t *testing.T) {
	pending, history := SplitPayments([]model.Payment{
		{ID: 1, Status: model.PaymentPending},
		{ID: 2, Status: model.PaymentCompleted},
		{ID: 3, Status: model.PaymentRefunded},
	})
	assert.Len(t, pending, 1)
	assert.Len(t, history, 2)
}

type row struct {
	ID   int
	Name string
}

func rowKey(r row) int { return r.ID }

func TestOptimisticServerWins(t *testing.T) {
	o := NewOptimistic([]row{{1, "a"}, {2, "b"}, {3, "c"}}, rowKey)

	o.Remove(2)
	assert.True(t, o.Provisional())
	assert.Equal(t, []row{{1, "a"}, {3, "c"}}, o.Items())

	// the delete failed server-side: server still has row 2
	diverged := o.Reconcile([]row{{1, "a"}, {2, "b"}, {3, "c"}})
	assert.True(t, diverged)
	assert.False(t, o.Provisional())
	assert.Equal(t, []row{{1, "a"}, {2, "b"}, {3, "c"}}, o.Items())
}

func TestOptimisticReplaceAndMatchingReconcile(t *testing.T) {
	o := NewOptimistic([]row{{1, "a"}}, rowKey)
	o.Replace(row{1, "renamed"})
	o.Replace(row{4, "new"})
	assert.Equal(t, []row{{1, "renamed"}, {4, "new"}}, o.Items())

	assert.False(t, o.Reconcile([]row{{1, "renamed"}, {4, "new"}}))
}
