package dto

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// WebhookAck is returned to providers once an event has been handled
type WebhookAck struct {
	Received bool `json:"received"`
}
