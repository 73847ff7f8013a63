package model

type ErrorBody struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: ErrorBody{Message: message}}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PingResponse struct {
	OK bool   `json:"ok"`
	TS string `json:"ts"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
