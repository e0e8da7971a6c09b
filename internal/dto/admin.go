package dto

import "time"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	TraceID   string    `json:"traceId"`
	Token     string    `json:"token,omitempty"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type OrdersResponse struct {
	TraceID string     `json:"traceId"`
	Orders  []OrderDTO `json:"orders"`
}

type CreateOrderRequest struct {
	CustomerName string `json:"customerName"`
	CPF          string `json:"cpf"`
	GlassesModel string `json:"glassesModel"`
	LensType     string `json:"lensType"`
}

type CreateOrderResponse struct {
	TraceID string `json:"traceId"`
	ID      int64  `json:"id"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}
