package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryFromID(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"250-10-0001-01-00006", "Furniture"},
		{"250-02-0001-01-00008", "Furniture"}, // -01- segment takes precedence
		{"250-02-0001-02-00008", "Carpets"},
		{"250-03-0001-03-00001", "Linens"},
		{"250-10-9999", "Furniture"},
		{"250-02-9999", "Carpets"},
		{"250-03-9999", "Linens"},
		{"999-99-0001", "General"},
		{"", "General"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CategoryFromID(tc.id), "id %q", tc.id)
	}
}
