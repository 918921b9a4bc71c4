package reservation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func consistent() ProductState {
	return ProductState{
		ProductID:       "P1",
		Name:            "sofa set",
		CurrentQuantity: 7,
		BaseQuantity:    10,
		CurrentPrice:    100,
		TotalValue:      700,
		ReservedTotal:   3,
	}
}

func TestCheckProduct_ConsistentStateHasNoViolations(t *testing.T) {
	require.Empty(t, CheckProduct(consistent()))
}

func TestCheckProduct_NegativeStock(t *testing.T) {
	ps := consistent()
	ps.CurrentQuantity = -1
	ps.TotalValue = -100
	vs := CheckProduct(ps)
	require.NotEmpty(t, vs)
	require.Contains(t, vs[0].Reason, "negative stock")
}

func TestCheckProduct_StockNotConserved(t *testing.T) {
	// the lost-credit shape: reservation gone but stock never restored
	ps := consistent()
	ps.ReservedTotal = 0
	vs := CheckProduct(ps)
	require.Len(t, vs, 1)
	require.Contains(t, vs[0].Reason, "not conserved")
}

func TestCheckProduct_TotalValueDrift(t *testing.T) {
	ps := consistent()
	ps.TotalValue = 650 // written independently of a quantity update
	vs := CheckProduct(ps)
	require.Len(t, vs, 1)
	require.Contains(t, vs[0].Reason, "total_value")
}

func TestCheckProduct_FulfilledHoldsStayAccounted(t *testing.T) {
	// fulfill consumes stock without touching it: the record remains and
	// keeps the conservation equation balanced
	ps := consistent()
	vs := CheckProduct(ps)
	require.Empty(t, vs)

	// cancelling instead restores quantity and removes the record
	ps.CurrentQuantity = 10
	ps.TotalValue = 1000
	ps.ReservedTotal = 0
	require.Empty(t, CheckProduct(ps))
}
