package handler

import "aprovame/internal/batch/models"

type ReceiptResponse struct {
	BatchID       string `json:"batchId"`
	TotalPayables int    `json:"totalPayables"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

type TestEmailResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

func toReceiptResponse(r *models.Receipt) *ReceiptResponse {
	return &ReceiptResponse{
		BatchID:       r.BatchID.String(),
		TotalPayables: r.TotalPayables,
		Status:        r.Status,
		Message:       r.Message,
	}
}
