package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/book/repository"
	"bookshelf-backend/internal/infrastructure/storage"
	"bookshelf-backend/internal/shared/apperror"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/internal/shared/validation"
	"bookshelf-backend/pkg/database"
)

const (
	imagePrefix    = "books/images/"
	documentPrefix = "books/files/"
)

// BookService - implements ServiceInterface
type BookService struct {
	pool        database.Pool
	repo        repository.RepositoryInterface
	users       UserLookup
	store       storage.ObjectStore
	images      *storage.ImageProcessor
	maxDocBytes int64
}

// NewService - constructor with DI
func NewService(
	pool database.Pool,
	repo repository.RepositoryInterface,
	users UserLookup,
	store storage.ObjectStore,
	images *storage.ImageProcessor,
	maxDocBytes int64,
) ServiceInterface {
	return &BookService{
		pool:        pool,
		repo:        repo,
		users:       users,
		store:       store,
		images:      images,
		maxDocBytes: maxDocBytes,
	}
}

// List returns one page of books with their authors attached.
func (s *BookService) List(ctx context.Context, params query.Params) ([]model.Book, query.PageInfo, error) {
	books, info, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, info, err
	}

	if err := s.repo.LoadAuthors(ctx, books); err != nil {
		return nil, info, err
	}
	return books, info, nil
}

func (s *BookService) Get(ctx context.Context, id int64) (*model.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, book)
}

// Create stores the cover and the document, then inserts the book and its
// author links in one transaction. Uploaded objects are removed again when
// the insert fails.
func (s *BookService) Create(ctx context.Context, req model.CreateBookRequest, image, document model.File) (*model.Book, error) {
	if err := s.checkAuthors(ctx, req.AuthorIDs); err != nil {
		return nil, err
	}

	cover, err := s.images.Process(image.Data)
	if err != nil {
		return nil, imageError(err)
	}

	if len(document.Data) == 0 {
		return nil, model.ErrInvalidDocument
	}
	if s.maxDocBytes > 0 && int64(len(document.Data)) > s.maxDocBytes {
		return nil, model.ErrDocumentTooBig
	}

	imageURL, err := s.store.Put(ctx, imagePrefix+uuid.NewString()+cover.Ext, cover.Data, cover.ContentType)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	docURL, err := s.store.Put(ctx, documentPrefix+uuid.NewString()+documentExt(document.Name), document.Data, documentType(document))
	if err != nil {
		s.discard(imageURL)
		return nil, apperror.Storage(err)
	}

	book := req.ToBook()
	book.ImageURL = imageURL
	book.BookURL = docURL

	created, err := database.WithTransactionResult(ctx, s.pool, func(tx pgx.Tx) (*model.Book, error) {
		repo := s.repo.WithTx(tx)

		created, err := repo.Create(ctx, book)
		if err != nil {
			return nil, err
		}
		if err := repo.SyncAuthors(ctx, created.ID, req.AuthorIDs); err != nil {
			return nil, err
		}
		return created, nil
	})
	if err != nil {
		s.discard(imageURL)
		s.discard(docURL)
		return nil, err
	}

	log.Info().Int64("book_id", created.ID).Str("title", created.Title).Msg("book created")

	return s.withAuthors(ctx, created)
}

// Update replaces the editable columns and re-attaches the authors.
func (s *BookService) Update(ctx context.Context, id int64, req model.UpdateBookRequest) (*model.Book, error) {
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkAuthors(ctx, req.AuthorIDs); err != nil {
		return nil, err
	}

	req.Apply(book)

	updated, err := database.WithTransactionResult(ctx, s.pool, func(tx pgx.Tx) (*model.Book, error) {
		repo := s.repo.WithTx(tx)

		updated, err := repo.Update(ctx, book)
		if err != nil {
			return nil, err
		}
		if err := repo.SyncAuthors(ctx, updated.ID, req.AuthorIDs); err != nil {
			return nil, err
		}
		return updated, nil
	})
	if err != nil {
		return nil, err
	}

	return s.withAuthors(ctx, updated)
}

// Delete removes the row first; stored objects are cleaned up best-effort.
func (s *BookService) Delete(ctx context.Context, id int64) error {
	book, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.discard(book.ImageURL)
	s.discard(book.BookURL)
	return nil
}

// ApplyRating merges one user's rating into the book's ratings. The row is
// locked for the read-modify-write, so concurrent ratings of the same book
// are serialized.
func (s *BookService) ApplyRating(ctx context.Context, req model.RateBookRequest) (*model.Book, error) {
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrUserNotFound
	}

	return database.WithTransactionResult(ctx, s.pool, func(tx pgx.Tx) (*model.Book, error) {
		repo := s.repo.WithTx(tx)

		book, err := repo.GetForUpdate(ctx, req.ID)
		if err != nil {
			return nil, err
		}

		return repo.UpdateRatings(ctx, book.ID, book.Ratings.Apply(req.UserID, req.Rating))
	})
}

// ════════════════════════════════════════════════════════════════
// HELPERS
// ════════════════════════════════════════════════════════════════

func (s *BookService) withAuthors(ctx context.Context, book *model.Book) (*model.Book, error) {
	books := []model.Book{*book}
	if err := s.repo.LoadAuthors(ctx, books); err != nil {
		return nil, err
	}
	return &books[0], nil
}

func (s *BookService) checkAuthors(ctx context.Context, ids []int64) error {
	missing, err := s.repo.MissingAuthors(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return model.ErrAuthorsNotFound
	}
	return nil
}

// discard deletes an object without failing the request.
func (s *BookService) discard(url string) {
	if url == "" {
		return
	}
	if err := s.store.Delete(context.Background(), url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("failed to delete stored object")
	}
}

func imageError(err error) error {
	if errors.Is(err, storage.ErrImageTooLarge) {
		return model.ErrImageTooLarge.WithCause(err)
	}
	if errors.Is(err, storage.ErrNotAnImage) || errors.Is(err, storage.ErrUnsupportedFmt) {
		return model.ErrInvalidImage.WithCause(err)
	}
	return fmt.Errorf("failed to process image: %w", err)
}

func documentExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 10 {
		return ""
	}
	return ext
}

func documentType(f model.File) string {
	if f.ContentType == "" {
		return "application/octet-stream"
	}
	return f.ContentType
}
