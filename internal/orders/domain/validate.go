package domain

// The functions in this file are the pure half of the workflow: they compare
// the requested lines against the catalog records resolved for them and derive
// the values to persist. All of them preserve the original request order —
// which id gets reported first on failure is an observable contract.

// ValidateRequest checks the request shape before the catalog is consulted.
// An empty line list reports ErrNoProductsFound; a non-positive quantity or a
// repeated product id rejects the whole request.
func ValidateRequest(req OrderRequest) error {
	if len(req.Lines) == 0 {
		return NewValidationError(ErrNoProductsFound, "")
	}

	seen := make(map[string]struct{}, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return NewValidationError(ErrInsufficientQuantity, line.ProductID)
		}
		if _, dup := seen[line.ProductID]; dup {
			return NewValidationError(ErrDuplicateProduct, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// IndexProducts keys the resolved catalog records by product id. The resolver
// gives no ordering guarantee, so everything downstream works off this index.
func IndexProducts(products []Product) map[string]Product {
	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}

// CheckProductsExist verifies that every requested id resolved to a catalog
// record, reporting ErrProductNotFound naming the first unmatched id in
// request order. An entirely empty request is rejected earlier, in
// ValidateRequest, as ErrNoProductsFound.
func CheckProductsExist(lines []RequestedLine, byID map[string]Product) error {
	for _, line := range lines {
		if _, ok := byID[line.ProductID]; !ok {
			return NewValidationError(ErrProductNotFound, line.ProductID)
		}
	}
	return nil
}

// CheckAvailability compares each requested quantity against the matched
// product's available stock. The first line in request order that exceeds
// availability determines the reported id. Pure; no side effects.
func CheckAvailability(lines []RequestedLine, byID map[string]Product) error {
	for _, line := range lines {
		if line.Quantity > byID[line.ProductID].Quantity {
			return NewValidationError(ErrInsufficientQuantity, line.ProductID)
		}
	}
	return nil
}

// BuildLineItems pairs each requested line with its product's current price,
// snapshotting the price into the line item. Request order is preserved.
func BuildLineItems(lines []RequestedLine, byID map[string]Product) []OrderLineItem {
	items := make([]OrderLineItem, len(lines))
	for i, line := range lines {
		items[i] = OrderLineItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: byID[line.ProductID].Price,
		}
	}
	return items
}

// ComputeAdjustments derives one stock write-back per requested product:
// the observed quantity minus the requested quantity. Validation has already
// ruled out negative results for the snapshot the workflow saw.
func ComputeAdjustments(lines []RequestedLine, byID map[string]Product) []InventoryAdjustment {
	adjustments := make([]InventoryAdjustment, len(lines))
	for i, line := range lines {
		adjustments[i] = InventoryAdjustment{
			ProductID: line.ProductID,
			Requested: line.Quantity,
			Quantity:  byID[line.ProductID].Quantity - line.Quantity,
		}
	}
	return adjustments
}
