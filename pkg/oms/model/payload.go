package model

// WirePayload is the body of a Dhan super order placement.
type WirePayload struct {
	DhanClientID    string          `json:"dhanClientId"`
	CorrelationID   string          `json:"correlationId,omitempty"`
	TransactionType TransactionType `json:"transactionType"`
	ExchangeSegment ExchangeSegment `json:"exchangeSegment"`
	ProductType     ProductType     `json:"productType"`
	OrderType       OrderType       `json:"orderType"`
	SecurityID      string          `json:"securityId"`
	Quantity        int64           `json:"quantity"`
	Price           *float64        `json:"price,omitempty"`
	TargetPrice     float64         `json:"targetPrice"`
	StopLossPrice   float64         `json:"stopLossPrice"`
	TrailingJump    float64         `json:"trailingJump"`
}

type SubmissionResult struct {
	OrderID     string `json:"orderId"`
	OrderStatus string `json:"orderStatus"`
}
