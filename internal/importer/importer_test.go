package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fullRow() map[string]string {
	return map[string]string{
		colID:            " 250-10-0001-01-00006 ",
		colName:          "طقم جلوس ميموري",
		colSector:        "قطاع الصعيد",
		colWarehouse:     "الفيوم - مفروشات ومراتب",
		colQuantity:      "2",
		colCurrentPrice:  "868.421",
		colPrice:         "989.999",
		colOriginalPrice: "1164.706",
	}
}

func TestParseRow(t *testing.T) {
	p, err := ParseRow(fullRow())
	require.NoError(t, err)
	require.Equal(t, "250-10-0001-01-00006", p.ProductID)
	require.Equal(t, "Furniture", p.Category)
	require.Equal(t, 2, p.CurrentQuantity)
	require.Equal(t, 2, p.BaseQuantity)
	require.InDelta(t, 868.421, p.CurrentPrice, 1e-9)
	require.InDelta(t, 2*868.421, p.TotalValue, 1e-9)
	require.InDelta(t, 1164.706-989.999, p.DiscountAmount, 1e-6)
	require.InDelta(t, (1164.706-989.999)/1164.706*100, p.DiscountPercentage, 1e-6)
}

func TestParseRow_TolerantNumbers(t *testing.T) {
	row := fullRow()
	row[colQuantity] = ""
	row[colCurrentPrice] = "n/a"
	row[colOriginalPrice] = ""

	p, err := ParseRow(row)
	require.NoError(t, err)
	require.Equal(t, 0, p.CurrentQuantity)
	require.Zero(t, p.CurrentPrice)
	require.Zero(t, p.DiscountAmount)
	require.Zero(t, p.DiscountPercentage)
	require.Zero(t, p.TotalValue)
}

func TestParseRow_FloatQuantity(t *testing.T) {
	row := fullRow()
	row[colQuantity] = "3.0"
	p, err := ParseRow(row)
	require.NoError(t, err)
	require.Equal(t, 3, p.CurrentQuantity)
}

func TestParseRow_MissingIDOrName(t *testing.T) {
	row := fullRow()
	row[colID] = "  "
	_, err := ParseRow(row)
	require.Error(t, err)

	row = fullRow()
	row[colName] = ""
	_, err = ParseRow(row)
	require.Error(t, err)
}

func TestSampleProductsAreConsistent(t *testing.T) {
	for _, p := range SampleProducts() {
		require.InDelta(t, float64(p.CurrentQuantity)*p.CurrentPrice, p.TotalValue, 1e-9, p.ProductID)
		require.Equal(t, p.CurrentQuantity, p.BaseQuantity, p.ProductID)
		require.Greater(t, p.DiscountAmount, 0.0, p.ProductID)
	}
}
