package api

type ErrorResponse struct {
	Error   string       `json:"error" example:"something went wrong"`
	Code    string       `json:"code,omitempty" example:"CAPACITY_EXCEEDED"`
	Details []FieldError `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
