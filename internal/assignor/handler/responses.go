package handler

import (
	"time"

	"aprovame/internal/assignor/models"
)

type AssignorResponse struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toAssignorResponse(a *models.Assignor) *AssignorResponse {
	return &AssignorResponse{
		ID:        a.ID.String(),
		Document:  a.Document,
		Email:     a.Email,
		Phone:     a.Phone,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAssignorListResponse(list []*models.Assignor) []*AssignorResponse {
	out := make([]*AssignorResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAssignorResponse(a))
	}
	return out
}
