package domain

// Order lifecycle event types pushed to websocket subscribers.
const (
	EventOrderCreated  = "order.created"
	EventOrderCanceled = "order.canceled"
	EventOrderMatched  = "order.matched"
)

// OrderEvent is broadcast after an order transition commits.
type OrderEvent struct {
	Type  string `json:"type"`
	Order Order  `json:"order"`
}
