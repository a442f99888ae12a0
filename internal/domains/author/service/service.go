package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/author/repository"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/internal/shared/validation"
)

// ServiceInterface - author business logic.
type ServiceInterface interface {
	List(ctx context.Context, params query.Params) ([]model.Author, query.PageInfo, error)
	// Get returns the author with Books loaded.
	Get(ctx context.Context, id int64) (*model.Author, error)
	Create(ctx context.Context, req model.AuthorRequest) (*model.Author, error)
	Update(ctx context.Context, id int64, req model.AuthorRequest) (*model.Author, error)
	Delete(ctx context.Context, id int64) error
}

type AuthorService struct {
	repo repository.RepositoryInterface
}

func NewService(repo repository.RepositoryInterface) ServiceInterface {
	return &AuthorService{repo: repo}
}

func (s *AuthorService) List(ctx context.Context, params query.Params) ([]model.Author, query.PageInfo, error) {
	return s.repo.List(ctx, params)
}

func (s *AuthorService) Get(ctx context.Context, id int64) (*model.Author, error) {
	author, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	books, err := s.repo.Books(ctx, id)
	if err != nil {
		return nil, err
	}
	author.Books = books

	return author, nil
}

func (s *AuthorService) Create(ctx context.Context, req model.AuthorRequest) (*model.Author, error) {
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	author, err := s.repo.Create(ctx, req.ToAuthor())
	if err != nil {
		return nil, err
	}

	log.Info().Int64("author_id", author.ID).Str("name", author.Name).Msg("author created")
	return author, nil
}

func (s *AuthorService) Update(ctx context.Context, id int64, req model.AuthorRequest) (*model.Author, error) {
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	author := req.ToAuthor()
	author.ID = id
	return s.repo.Update(ctx, author)
}

// Delete removes the author. Book links go with it (ON DELETE CASCADE).
func (s *AuthorService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
