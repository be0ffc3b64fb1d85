package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, price string, qty int) Item {
	return Item{ID: id, Name: "Product " + id, Price: price, Quantity: qty}
}

func TestAddInsertsAndIncrements(t *testing.T) {
	s := New()
	s.Add(item("1", "10.00", 1))
	s.Add(item("2", "5.00", 2))
	s.Add(item("1", "10.00", 1))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "2", items[1].ID)
}

func TestUpdateQuantityBelowOneRemoves(t *testing.T) {
	s := New()
	s.Add(item("1", "10.00", 3))

	r := New()
	r.Add(item("1", "10.00", 3))
	r.Remove("1")

	s.UpdateQuantity("1", 0)
	assert.Equal(t, r.Items(), s.Items())
	assert.Zero(t, s.Len())

	s.Add(item("1", "10.00", 1))
	s.UpdateQuantity("1", -5)
	assert.Zero(t, s.Len())
}

func TestUpdateQuantitySets(t *testing.T) {
	s := New()
	s.Add(item("1", "10.00", 1))
	s.UpdateQuantity("1", 7)
	assert.Equal(t, 7, s.Items()[0].Quantity)
}

func TestUpdateQuantityAbsentIsNoop(t *testing.T) {
	s := New()
	s.Add(item("1", "10.00", 1))
	s.UpdateQuantity("99", 3)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "1", s.Items()[0].ID)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	s := New()
	s.Add(item("1", "10.00", 1))
	s.Remove("99")
	assert.Equal(t, 1, s.Len())
}

func TestClearIsIdempotent(t *testing.T) {
	s := New()
	s.Add(item("1", "10.00", 2))
	s.Clear()
	assert.Zero(t, s.Len())
	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Items())
}

func TestTotalsRecomputeFromLines(t *testing.T) {
	s := New()
	s.Add(item("1", "10.00", 2))

	assert.Equal(t, "20.00", Format(s.Subtotal()))
	assert.Equal(t, "2.00", Format(s.Tax()))
	assert.Equal(t, "22.00", Format(s.Total()))

	s.UpdateQuantity("1", 3)
	assert.Equal(t, "33.00", Format(s.Total()))
}

func TestJSONRoundTripKeepsOrder(t *testing.T) {
	s := New()
	s.Add(item("3", "1.50", 1))
	s.Add(item("1", "2.00", 4))
	s.Add(item("2", "0.99", 2))

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	restored := New()
	require.NoError(t, json.Unmarshal(raw, restored))
	assert.Equal(t, s.Items(), restored.Items())
	assert.Equal(t, Format(s.Total()), Format(restored.Total()))
}
