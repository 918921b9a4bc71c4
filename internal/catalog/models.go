package catalog

import "time"

// Product is one inventory line item. CurrentQuantity is the authoritative
// available stock; TotalValue is always rewritten together with it.
// BaseQuantity is the reference count as of the last moment the product had
// zero outstanding reservations (set at import, rebased by admin edits).
type Product struct {
	ProductID          string
	Name               string
	Category           string
	WarehouseName      string
	Sector             string
	Price              float64
	CurrentPrice       float64
	OriginalPrice      float64
	DiscountAmount     float64
	DiscountPercentage float64
	CurrentQuantity    int
	BaseQuantity       int
	TotalValue         float64
	ImportedAt         time.Time
	UpdatedAt          time.Time
}

// View is the wire shape the storefront already consumes.
type View struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Price              float64 `json:"price"`
	OriginalPrice      float64 `json:"original_price"`
	CurrentPrice       float64 `json:"current_price"`
	Category           string  `json:"category"`
	WarehouseName      string  `json:"warehouse_name"`
	Sector             string  `json:"sector"`
	CurrentQuantity    int     `json:"current_quantity"`
	DiscountAmount     float64 `json:"discount_amount"`
	DiscountPercentage float64 `json:"discount_percentage"`
	TotalValue         float64 `json:"total_value,omitempty"`
}

func (p Product) ToView() View {
	return View{
		ID:                 p.ProductID,
		Name:               p.Name,
		Price:              p.Price,
		OriginalPrice:      p.OriginalPrice,
		CurrentPrice:       p.CurrentPrice,
		Category:           p.Category,
		WarehouseName:      p.WarehouseName,
		Sector:             p.Sector,
		CurrentQuantity:    p.CurrentQuantity,
		DiscountAmount:     p.DiscountAmount,
		DiscountPercentage: p.DiscountPercentage,
		TotalValue:         p.TotalValue,
	}
}

func ToViews(ps []Product) []View {
	out := make([]View, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ToView())
	}
	return out
}

// Suggestion is the autocomplete shape.
type Suggestion struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// WarehouseStat aggregates one warehouse's inventory.
type WarehouseStat struct {
	Name            string   `json:"name"`
	TotalProducts   int      `json:"total_products"`
	TotalQuantity   int      `json:"total_quantity"`
	TotalValue      float64  `json:"total_value"`
	AveragePrice    float64  `json:"average_price"`
	CategoriesCount int      `json:"categories_count"`
	Categories      []string `json:"categories"`
}
