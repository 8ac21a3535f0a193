package httpx

type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Products   []RequestedLineDTO `json:"products"`
}

type RequestedLineDTO struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type OrderResponse struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customer_id"`
	Items      []OrderItemResponse `json:"items"`
	Total      float64             `json:"total"`
	CreatedAt  string              `json:"created_at"`
}

type OrderItemResponse struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type WorklogEntryResponse struct {
	Stage      string `json:"stage"`
	Detail     string `json:"detail,omitempty"`
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	RecordedAt string `json:"recorded_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
