// Package api holds the response envelopes shared by every debmarket
// HTTP handler. Handlers return domain payloads directly; these types
// cover the remaining cases (errors, acknowledgements, health) so the
// swagger annotations have a concrete schema to point at.
package api

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// MessageResponse acknowledges an action that returns no payload,
// such as cancelling a deposit.
type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
