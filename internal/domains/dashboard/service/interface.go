package service

import (
	"context"

	"novelpedia-backend/internal/domains/dashboard/model"
	"novelpedia-backend/internal/policy"
)

type ServiceInterface interface {
	// Stats covers every novel the actor authored
	Stats(ctx context.Context, actor policy.Actor) (*model.Stats, error)

	// ExportStats renders Stats as an XLSX workbook
	ExportStats(ctx context.Context, actor policy.Actor) ([]byte, error)
}
