package service

import (
	"context"

	"bookshelf-backend/internal/domains/readinghistory/model"
	"bookshelf-backend/internal/domains/readinghistory/repository"
	"bookshelf-backend/internal/shared/authz"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/internal/shared/validation"
)

// ServiceInterface - reading history business logic.
type ServiceInterface interface {
	// List returns the caller's own entries.
	List(ctx context.Context, actor *authz.Actor, params query.Params) ([]model.ReadingHistory, query.PageInfo, error)
	Get(ctx context.Context, actor *authz.Actor, id int64) (*model.ReadingHistory, error)
	Create(ctx context.Context, actor *authz.Actor, req model.CreateRequest) (*model.ReadingHistory, error)
	UpdateIsRead(ctx context.Context, actor *authz.Actor, id int64, req model.UpdateRequest) (*model.ReadingHistory, error)
	Delete(ctx context.Context, id int64) error
}

type HistoryService struct {
	repo repository.RepositoryInterface
}

func NewService(repo repository.RepositoryInterface) ServiceInterface {
	return &HistoryService{repo: repo}
}

func (s *HistoryService) List(ctx context.Context, actor *authz.Actor, params query.Params) ([]model.ReadingHistory, query.PageInfo, error) {
	if actor == nil {
		return nil, query.PageInfo{}, model.ErrForbidden
	}
	return s.repo.ListForUser(ctx, actor.UserID, params)
}

// Get is allowed for the owner and for admins.
func (s *HistoryService) Get(ctx context.Context, actor *authz.Actor, id int64) (*model.ReadingHistory, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Owns(h.UserID) {
		return nil, model.ErrForbidden
	}
	return h, nil
}

func (s *HistoryService) Create(ctx context.Context, actor *authz.Actor, req model.CreateRequest) (*model.ReadingHistory, error) {
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	var userID int64
	switch {
	case req.UserID != nil:
		userID = *req.UserID
	case actor != nil:
		userID = actor.UserID
	default:
		return nil, model.ErrUserNotFound
	}

	return s.repo.Create(ctx, userID, req.BookID)
}

// UpdateIsRead flips is_read. Only the owner may do it, admins included.
func (s *HistoryService) UpdateIsRead(ctx context.Context, actor *authz.Actor, id int64, req model.UpdateRequest) (*model.ReadingHistory, error) {
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(h.UserID) {
		return nil, model.ErrNotOwner
	}

	return s.repo.SetRead(ctx, id, *req.IsRead)
}

func (s *HistoryService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
