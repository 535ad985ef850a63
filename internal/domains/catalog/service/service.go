package service

import (
	"context"
	"strings"

	"novelpedia-backend/internal/domains/catalog/model"
	"novelpedia-backend/internal/domains/catalog/repository"
	"novelpedia-backend/internal/policy"
)

type catalogService struct {
	repo repository.Repository
}

func NewCatalogService(repo repository.Repository) ServiceInterface {
	return &catalogService{repo: repo}
}

func (s *catalogService) List(ctx context.Context, kind model.Kind) ([]model.Term, error) {
	if !kind.Valid() {
		return nil, model.ErrInvalidKind
	}
	return s.repo.List(ctx, kind)
}

func (s *catalogService) Get(ctx context.Context, kind model.Kind, id int64) (*model.Term, error) {
	if !kind.Valid() {
		return nil, model.ErrInvalidKind
	}
	return s.repo.Get(ctx, kind, id)
}

func (s *catalogService) Create(ctx context.Context, actor policy.Actor, kind model.Kind, req model.CreateTermRequest) (*model.Term, error) {
	name, err := checkWrite(actor, kind, req)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, kind, name)
}

func (s *catalogService) Update(ctx context.Context, actor policy.Actor, kind model.Kind, id int64, req model.UpdateTermRequest) (*model.Term, error) {
	name, err := checkWrite(actor, kind, req)
	if err != nil {
		return nil, err
	}
	return s.repo.Rename(ctx, kind, id, name)
}

func (s *catalogService) Delete(ctx context.Context, actor policy.Actor, kind model.Kind, id int64) error {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return err
	}
	if !kind.Valid() {
		return model.ErrInvalidKind
	}
	return s.repo.Delete(ctx, kind, id)
}

// checkWrite returns the trimmed name once actor, kind and name pass.
func checkWrite(actor policy.Actor, kind model.Kind, req model.CreateTermRequest) (string, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return "", err
	}
	if !kind.Valid() {
		return "", model.ErrInvalidKind
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return "", err
	}
	return req.Name, nil
}

func (s *catalogService) Resolve(ctx context.Context, kind model.Kind, names []string) ([]model.Term, error) {
	if !kind.Valid() {
		return nil, model.ErrInvalidKind
	}
	names = model.NormalizeNames(names)
	if len(names) == 0 {
		return []model.Term{}, nil
	}
	return s.repo.GetOrCreate(ctx, kind, names)
}
