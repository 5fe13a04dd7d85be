package backend

import "github.com/cinderlabs/cinder-client/internal/shared"

type burnableResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    []shared.Asset `json:"data"`
}

type dataResponse[T any] struct {
	Data T `json:"data"`
}

type recordsResponse struct {
	Records []shared.BurnRecord `json:"records"`
}

type logRequest struct {
	Message string `json:"message"`
}
