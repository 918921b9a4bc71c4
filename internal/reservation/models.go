package reservation

import "time"

// Reservation is a customer's hold on a quantity of a product pending pickup.
// While it exists un-fulfilled, its quantity has already been debited from the
// product's available stock. ProductName is a snapshot taken at booking time
// and is deliberately not kept in sync with later renames.
type Reservation struct {
	ID              string    `json:"_id"`
	ProductID       string    `json:"productId"`
	ProductName     string    `json:"productName"`
	CustomerID      string    `json:"customerId"`
	CustomerName    string    `json:"customerName"`
	CustomerContact string    `json:"customerContact"`
	Quantity        int       `json:"quantity"`
	PickupDate      string    `json:"pickupDate"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	IsFulfilled     bool      `json:"isFulfilled"`
}
