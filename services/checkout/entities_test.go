package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartUnmarshalCamelCase(t *testing.T) {
	payload := `{
		"items": [
			{"productId": 1, "quantity": 2, "productName": "Espresso", "unitPrice": 3.50},
			{"productId": 4, "quantity": 1, "productName": "Latte", "price": 4.25}
		],
		"total": 11.25
	}`

	var cart Cart
	require.NoError(t, json.Unmarshal([]byte(payload), &cart))

	require.Len(t, cart.Items, 2)
	assert.Equal(t, int64(1), cart.Items[0].ProductID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "Espresso", cart.Items[0].ProductName)
	assert.Equal(t, 3.50, cart.Items[0].UnitPrice)
	assert.Equal(t, 4.25, cart.Items[1].UnitPrice)
	assert.Equal(t, 11.25, cart.Total)
}

func TestCartUnmarshalPascalCase(t *testing.T) {
	// Some cart service versions emit PascalCase; both spellings must
	// normalize to the same cart.
	payload := `{
		"Items": [
			{"ProductId": 1, "Quantity": 2, "ProductName": "Espresso", "Price": 3.50}
		],
		"Total": 7.00
	}`

	var cart Cart
	require.NoError(t, json.Unmarshal([]byte(payload), &cart))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1), cart.Items[0].ProductID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "Espresso", cart.Items[0].ProductName)
	assert.Equal(t, 3.50, cart.Items[0].UnitPrice)
	assert.Equal(t, 7.00, cart.Total)
}

func TestCartUnmarshalMixedCasing(t *testing.T) {
	payload := `{
		"Items": [
			{"productId": 2, "Quantity": 3, "unitPrice": 2.00}
		],
		"total": 6.00
	}`

	var cart Cart
	require.NoError(t, json.Unmarshal([]byte(payload), &cart))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].ProductID)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 2.00, cart.Items[0].UnitPrice)
}

func TestComputedTotalPrefersReportedTotal(t *testing.T) {
	cart := Cart{
		Items: []CartItem{{ProductID: 1, Quantity: 2, UnitPrice: 3.50}},
		Total: 9.99,
	}
	assert.Equal(t, 9.99, cart.ComputedTotal())
}

func TestComputedTotalFallsBackToLineSum(t *testing.T) {
	cart := Cart{
		Items: []CartItem{
			{ProductID: 1, Quantity: 2, UnitPrice: 3.50},
			{ProductID: 2, Quantity: 1, UnitPrice: 4.25},
		},
	}
	assert.InDelta(t, 11.25, cart.ComputedTotal(), 0.0001)
}

func TestCartIsEmpty(t *testing.T) {
	var nilCart *Cart
	assert.True(t, nilCart.IsEmpty())
	assert.True(t, (&Cart{}).IsEmpty())
	assert.False(t, (&Cart{Items: []CartItem{{ProductID: 1}}}).IsEmpty())
}
