package dto

import (
	"time"

	"oticas/internal/domain"
)

type LookupRequest struct {
	CPF string `json:"cpf"`
}

// LookupResponse carries one of three outcomes. OrderID is set for a single
// match, Matches for several and Message when nothing was found.
type LookupResponse struct {
	TraceID string            `json:"traceId"`
	Outcome string            `json:"outcome"`
	OrderID *int64            `json:"orderId,omitempty"`
	Matches []OrderSummaryDTO `json:"matches,omitempty"`
	Message string            `json:"message,omitempty"`
}

type OrderSummaryDTO struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
}

type HistoryEntryDTO struct {
	Status string `json:"status"`
	Date   string `json:"date"`
}

type OrderDTO struct {
	ID            string            `json:"id"`
	CustomerName  string            `json:"customerName"`
	CPF           string            `json:"cpf"`
	FormattedCPF  string            `json:"formattedCpf"`
	CurrentStatus string            `json:"currentStatus"`
	Description   string            `json:"description"`
	CreatedAt     time.Time         `json:"createdAt"`
	History       []HistoryEntryDTO `json:"history"`
}

type TimelineStepDTO struct {
	Stage        string           `json:"stage"`
	Index        int              `json:"index"`
	IsCompleted  bool             `json:"isCompleted"`
	IsCurrent    bool             `json:"isCurrent"`
	HistoryEntry *HistoryEntryDTO `json:"historyEntry"`
}

type OrderDetailResponse struct {
	TraceID  string            `json:"traceId"`
	Order    OrderDTO          `json:"order"`
	Timeline []TimelineStepDTO `json:"timeline"`
}

type StatusesResponse struct {
	Statuses []string `json:"statuses"`
	Terminal string   `json:"terminal"`
}

func FromSummaries(summaries []domain.OrderSummary) []OrderSummaryDTO {
	out := make([]OrderSummaryDTO, len(summaries))
	for i, s := range summaries {
		out[i] = OrderSummaryDTO{
			ID:          s.ID,
			CreatedAt:   s.CreatedAt,
			Description: s.Description,
			Status:      s.Status,
		}
	}
	return out
}

func FromOrder(o domain.Order) OrderDTO {
	history := make([]HistoryEntryDTO, len(o.History))
	for i, h := range o.History {
		history[i] = HistoryEntryDTO{Status: string(h.Status), Date: h.Date}
	}
	return OrderDTO{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CPF:           o.CPF,
		FormattedCPF:  domain.FormatCPF(o.CPF),
		CurrentStatus: string(o.CurrentStatus),
		Description:   o.Description,
		CreatedAt:     o.CreatedAt,
		History:       history,
	}
}

func FromOrders(orders []domain.Order) []OrderDTO {
	out := make([]OrderDTO, len(orders))
	for i, o := range orders {
		out[i] = FromOrder(o)
	}
	return out
}

func FromTimeline(steps []domain.TimelineStep) []TimelineStepDTO {
	out := make([]TimelineStepDTO, len(steps))
	for i, s := range steps {
		step := TimelineStepDTO{
			Stage:       string(s.Stage),
			Index:       s.Index,
			IsCompleted: s.IsCompleted,
			IsCurrent:   s.IsCurrent,
		}
		if s.HistoryEntry != nil {
			step.HistoryEntry = &HistoryEntryDTO{Status: string(s.HistoryEntry.Status), Date: s.HistoryEntry.Date}
		}
		out[i] = step
	}
	return out
}
