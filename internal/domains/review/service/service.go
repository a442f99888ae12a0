package service

import (
	"context"

	"bookshelf-backend/internal/domains/review/model"
	"bookshelf-backend/internal/domains/review/repository"
	"bookshelf-backend/internal/shared/authz"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/internal/shared/validation"
)

// ServiceInterface - review business logic.
type ServiceInterface interface {
	List(ctx context.Context, scope model.Scope, params query.Params) ([]model.Review, query.PageInfo, error)
	Get(ctx context.Context, id int64) (*model.Review, error)
	Create(ctx context.Context, actor *authz.Actor, req model.CreateReviewRequest) (*model.Review, error)
	Update(ctx context.Context, actor *authz.Actor, id int64, req model.UpdateReviewRequest) (*model.Review, error)
	Delete(ctx context.Context, id int64) error
}

type ReviewService struct {
	repo repository.RepositoryInterface
}

func NewService(repo repository.RepositoryInterface) ServiceInterface {
	return &ReviewService{repo: repo}
}

func (s *ReviewService) List(ctx context.Context, scope model.Scope, params query.Params) ([]model.Review, query.PageInfo, error) {
	return s.repo.List(ctx, scope, params)
}

func (s *ReviewService) Get(ctx context.Context, id int64) (*model.Review, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a review. Unknown user or book ids surface as 422s from
// the foreign keys.
func (s *ReviewService) Create(ctx context.Context, actor *authz.Actor, req model.CreateReviewRequest) (*model.Review, error) {
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

	return s.repo.Create(ctx, &model.Review{Comment: req.Comment, UserID: userID, BookID: req.BookID})
}

// Update changes the comment. Only the author of the review may do it.
func (s *ReviewService) Update(ctx context.Context, actor *authz.Actor, id int64, req model.UpdateReviewRequest) (*model.Review, error) {
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(review.UserID) {
		return nil, model.ErrForbidden
	}

	return s.repo.UpdateComment(ctx, id, req.Comment)
}

func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
