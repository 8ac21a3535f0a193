package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() map[string]Product {
	return IndexProducts([]Product{
		{ID: "P1", Name: "Keyboard", Price: 10, Quantity: 5},
		{ID: "P2", Name: "Mouse", Price: 20, Quantity: 3},
	})
}

func requireKind(t *testing.T, err error, kind ErrorKind, entityID string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, kind, verr.Kind)
	assert.Equal(t, entityID, verr.EntityID)
}

func TestValidateRequest_EmptyLines(t *testing.T) {
	err := ValidateRequest(OrderRequest{CustomerID: "C1"})
	requireKind(t, err, ErrNoProductsFound, "")
}

func TestValidateRequest_NonPositiveQuantity(t *testing.T) {
	err := ValidateRequest(OrderRequest{
		CustomerID: "C1",
		Lines:      []RequestedLine{{ProductID: "P1", Quantity: 0}},
	})
	requireKind(t, err, ErrInsufficientQuantity, "P1")
}

func TestValidateRequest_DuplicateProductRejected(t *testing.T) {
	err := ValidateRequest(OrderRequest{
		CustomerID: "C1",
		Lines: []RequestedLine{
			{ProductID: "P1", Quantity: 2},
			{ProductID: "P1", Quantity: 3},
		},
	})
	requireKind(t, err, ErrDuplicateProduct, "P1")
}

func TestCheckProductsExist_EmptyMatchSet(t *testing.T) {
	lines := []RequestedLine{{ProductID: "PX", Quantity: 1}}
	err := CheckProductsExist(lines, map[string]Product{})
	requireKind(t, err, ErrProductNotFound, "PX")
}

func TestCheckProductsExist_ReportsFirstMissingInRequestOrder(t *testing.T) {
	lines := []RequestedLine{
		{ProductID: "P1", Quantity: 1},
		{ProductID: "PX", Quantity: 1},
		{ProductID: "PY", Quantity: 1},
	}
	err := CheckProductsExist(lines, catalog())
	requireKind(t, err, ErrProductNotFound, "PX")
}

func TestCheckAvailability_Passes(t *testing.T) {
	lines := []RequestedLine{
		{ProductID: "P1", Quantity: 5},
		{ProductID: "P2", Quantity: 3},
	}
	assert.NoError(t, CheckAvailability(lines, catalog()))
}

func TestCheckAvailability_ReportsFirstOffenderInRequestOrder(t *testing.T) {
	lines := []RequestedLine{
		{ProductID: "P2", Quantity: 4},
		{ProductID: "P1", Quantity: 6},
	}
	err := CheckAvailability(lines, catalog())
	requireKind(t, err, ErrInsufficientQuantity, "P2")
}

func TestBuildLineItems_SnapshotsPriceAndPreservesOrder(t *testing.T) {
	lines := []RequestedLine{
		{ProductID: "P2", Quantity: 1},
		{ProductID: "P1", Quantity: 2},
	}

	items := BuildLineItems(lines, catalog())

	require.Len(t, items, 2)
	assert.Equal(t, OrderLineItem{ProductID: "P2", Quantity: 1, UnitPrice: 20}, items[0])
	assert.Equal(t, OrderLineItem{ProductID: "P1", Quantity: 2, UnitPrice: 10}, items[1])
}

func TestComputeAdjustments(t *testing.T) {
	lines := []RequestedLine{
		{ProductID: "P1", Quantity: 2},
		{ProductID: "P2", Quantity: 3},
	}

	adjustments := ComputeAdjustments(lines, catalog())

	require.Len(t, adjustments, 2)
	assert.Equal(t, InventoryAdjustment{ProductID: "P1", Requested: 2, Quantity: 3}, adjustments[0])
	assert.Equal(t, InventoryAdjustment{ProductID: "P2", Requested: 3, Quantity: 0}, adjustments[1])
}

func TestOrderTotal(t *testing.T) {
	order := Order{Items: []OrderLineItem{
		{ProductID: "P1", Quantity: 2, UnitPrice: 10},
		{ProductID: "P2", Quantity: 1, UnitPrice: 20},
	}}
	assert.Equal(t, 40.0, order.Total())
}
