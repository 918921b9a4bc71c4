package catalog

import "strings"

// CategoryFromID maps the warehouse numbering scheme embedded in product ids
// onto a storefront category. Segment -01- is furniture, -02- carpets,
// -03- linens; the 250-xx prefixes predate the segment convention.
func CategoryFromID(id string) string {
	if id == "" {
		return "General"
	}
	switch {
	case strings.Contains(id, "-01-"):
		return "Furniture"
	case strings.Contains(id, "-02-"):
		return "Carpets"
	case strings.Contains(id, "-03-"):
		return "Linens"
	}
	lower := strings.ToLower(id)
	switch {
	case strings.Contains(lower, "250-10"):
		return "Furniture"
	case strings.Contains(lower, "250-02"):
		return "Carpets"
	case strings.Contains(lower, "250-03"):
		return "Linens"
	}
	return "General"
}
