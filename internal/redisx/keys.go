package redisx

import "time"

const (
	// Catalog read cache: product:{product_id} -> product JSON
	KeyProduct = "product:%s"

	// Distinct lists: catalog:warehouses / catalog:categories -> JSON array
	KeyWarehouses = "catalog:warehouses"
	KeyCategories = "catalog:categories"

	// Aggregated warehouse stats: catalog:warehouse_stats -> JSON array
	KeyWarehouseStats = "catalog:warehouse_stats"
)

var (
	TTLProduct = 5 * time.Minute
	TTLCatalog = 10 * time.Minute
	TTLStats   = 2 * time.Minute
)
