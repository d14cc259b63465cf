package handler

import (
	"encoding/json"
	"time"

	"aprovame/internal/payable/models"
)

type PayableResponse struct {
	ID           string      `json:"id"`
	Value        json.Number `json:"value"`
	EmissionDate time.Time   `json:"emissionDate"`
	Assignor     string      `json:"assignor"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toPayableResponse(p *models.Payable) *PayableResponse {
	return &PayableResponse{
		ID:           p.ID.String(),
		Value:        json.Number(p.Value.StringFixed(2)),
		EmissionDate: p.EmissionDate,
		Assignor:     p.AssignorID.String(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toPayableListResponse(list []*models.Payable) []*PayableResponse {
	out := make([]*PayableResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPayableResponse(p))
	}
	return out
}
