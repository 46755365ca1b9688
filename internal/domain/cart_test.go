package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCartTotalsSumLines(t *testing.T) {
	cart := Cart{
		ID: "cart-1",
		Lines: []CartLine{
			{ID: "l1", VariantID: "v1", Quantity: 2, UnitPrice: decimal.NewFromInt(1000)},
			{ID: "l2", VariantID: "v2", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
		},
	}

	totals := cart.Totals()
	if totals.ItemCount != 3 {
		t.Fatalf("item count %d, want 3", totals.ItemCount)
	}
	if !totals.TotalPrice.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("total %s, want 2500", totals.TotalPrice)
	}

	var empty Cart
	if got := empty.Totals(); got.ItemCount != 0 || !got.TotalPrice.Equal(decimal.Zero) {
		t.Fatalf("empty cart totals %+v", got)
	}
}

func TestCartOwnerValid(t *testing.T) {
	customer := "cust-1"
	session := "sess-1"
	cases := []struct {
		name  string
		owner CartOwner
		want  bool
	}{
		{"customer only", CartOwner{CustomerID: &customer}, true},
		{"session only", CartOwner{SessionKey: &session}, true},
		{"both set", CartOwner{CustomerID: &customer, SessionKey: &session}, false},
		{"neither set", CartOwner{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.owner.Valid(); got != tc.want {
				t.Fatalf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}
