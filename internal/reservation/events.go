package reservation

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkax "github.com/kabbani-home/inventory-api/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

const TopicInventoryEvents = "inventory.events"

const (
	EventReservationCreated   = "ReservationCreated"
	EventReservationCancelled = "ReservationCancelled"
	EventReservationFulfilled = "ReservationFulfilled"
	EventStockAdjusted        = "StockAdjusted"
	EventLedgerDiverged       = "LedgerDiverged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // product id
	Payload       json.RawMessage `json:"payload"`
}

type ReservationEventPayload struct {
	ReservationID string `json:"reservation_id"`
	ProductID     string `json:"product_id"`
	CustomerID    string `json:"customer_id"`
	Quantity      int    `json:"quantity"`
}

type StockAdjustedPayload struct {
	ProductID   string `json:"product_id"`
	Delta       int    `json:"delta"`
	NewQuantity int    `json:"new_quantity"`
}

type LedgerDivergedPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// Partition key = product id, so every event touching one product keeps order.
func PartitionKey(productID string) []byte { return []byte(productID) }

// Publisher emits reservation lifecycle events. A nil Publisher is a no-op so
// the state machine works without a broker (tests, the reconcile tool).
type Publisher struct {
	Producer    *kafkax.Producer
	ServiceName string
}

func (p *Publisher) publish(eventType, productID string, payload any) {
	if p == nil || p.Producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.ServiceName,
		CorrelationID: productID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Producer.Publish(PartitionKey(productID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (p *Publisher) ReservationCreated(r Reservation) {
	p.publish(EventReservationCreated, r.ProductID, ReservationEventPayload{
		ReservationID: r.ID, ProductID: r.ProductID, CustomerID: r.CustomerID, Quantity: r.Quantity,
	})
}

func (p *Publisher) ReservationCancelled(r Reservation) {
	p.publish(EventReservationCancelled, r.ProductID, ReservationEventPayload{
		ReservationID: r.ID, ProductID: r.ProductID, CustomerID: r.CustomerID, Quantity: r.Quantity,
	})
}

func (p *Publisher) ReservationFulfilled(r Reservation) {
	p.publish(EventReservationFulfilled, r.ProductID, ReservationEventPayload{
		ReservationID: r.ID, ProductID: r.ProductID, CustomerID: r.CustomerID, Quantity: r.Quantity,
	})
}

func (p *Publisher) StockAdjusted(productID string, delta, newQuantity int) {
	p.publish(EventStockAdjusted, productID, StockAdjustedPayload{
		ProductID: productID, Delta: delta, NewQuantity: newQuantity,
	})
}

func (p *Publisher) LedgerDiverged(productID string, quantity int, reason string) {
	p.publish(EventLedgerDiverged, productID, LedgerDivergedPayload{
		ProductID: productID, Quantity: quantity, Reason: reason,
	})
}
