package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestProduct_ValidateInvariants(t *testing.T) {
	testCases := []struct {
		name    string
		product Product
		want    []error
	}{
		{
			name:    "valid product",
			product: Product{Name: "Keyboard", Category: "peripherals", Price: 100, Quantity: 10},
			want:    nil,
		},
		{
			name:    "zero price and quantity are valid",
			product: Product{Name: "Freebie", Category: "misc"},
			want:    nil,
		},
		{
			name:    "missing name",
			product: Product{Category: "peripherals", Price: 100, Quantity: 10},
			want:    []error{ErrProductNameRequired},
		},
		{
			name:    "name too long",
			product: Product{Name: strings.Repeat("x", MaxProductNameLength+1), Category: "peripherals"},
			want:    []error{ErrProductNameTooLong},
		},
		{
			name:    "missing category",
			product: Product{Name: "Keyboard", Price: 100, Quantity: 10},
			want:    []error{ErrProductCategoryRequired},
		},
		{
			name:    "negative price",
			product: Product{Name: "Keyboard", Category: "peripherals", Price: -1},
			want:    []error{ErrProductPriceNegative},
		},
		{
			name:    "negative quantity",
			product: Product{Name: "Keyboard", Category: "peripherals", Quantity: -1},
			want:    []error{ErrProductQuantityNegative},
		},
		{
			name:    "multiple violations",
			product: Product{Price: -1, Quantity: -1},
			want:    []error{ErrProductNameRequired, ErrProductCategoryRequired, ErrProductPriceNegative, ErrProductQuantityNegative},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.product.ValidateInvariants()
			if len(errs) != len(tc.want) {
				t.Fatalf("expected %d violations, got %v", len(tc.want), errs)
			}
			for i, want := range tc.want {
				if !errors.Is(errs[i], want) {
					t.Errorf("violation %d: expected %v, got %v", i, want, errs[i])
				}
			}
		})
	}
}

func TestProductPatch_IsEmpty(t *testing.T) {
	if !(ProductPatch{}).IsEmpty() {
		t.Error("expected zero patch to be empty")
	}

	qty := 5
	if (ProductPatch{Quantity: &qty}).IsEmpty() {
		t.Error("expected patch with a field to be non-empty")
	}
}
