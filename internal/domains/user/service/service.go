package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"bookshelf-backend/internal/domains/user/model"
	"bookshelf-backend/internal/domains/user/repository"
	"bookshelf-backend/internal/shared/authz"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/internal/shared/validation"
	"bookshelf-backend/pkg/jwt"
	"bookshelf-backend/pkg/kv"
)

// TokenIssuer signs access tokens. *jwt.Manager implements it.
type TokenIssuer interface {
	GenerateAccessToken(userID int64, role string) (string, error)
}

// ServiceInterface - authentication and user management.
type ServiceInterface interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error)
	Session(ctx context.Context, actor *authz.Actor) (*model.User, error)
	Logout(ctx context.Context, claims *jwt.Claims) error

	List(ctx context.Context, actor *authz.Actor, params query.Params) ([]model.User, query.PageInfo, error)
	Get(ctx context.Context, actor *authz.Actor, id int64) (*model.User, error)
	Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	Update(ctx context.Context, actor *authz.Actor, id int64, req model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id int64) error

	// Exists backs the rating and review checks of other domains.
	Exists(ctx context.Context, id int64) (bool, error)
}

type UserService struct {
	repo     repository.RepositoryInterface
	tokens   TokenIssuer
	revoked  kv.Store
	hashCost int
	now      func() time.Time
}

// NewService - constructor with DI. hashCost is the bcrypt cost; values
// below bcrypt.MinCost fall back to bcrypt.DefaultCost.
func NewService(repo repository.RepositoryInterface, tokens TokenIssuer, revoked kv.Store, hashCost int) ServiceInterface {
	if hashCost < bcrypt.MinCost {
		hashCost = bcrypt.DefaultCost
	}
	return &UserService{repo: repo, tokens: tokens, revoked: revoked, hashCost: hashCost, now: time.Now}
}

// ========================================
// AUTHENTICATION
// ========================================

// Register creates an account and signs the user in. The first account
// ever registered becomes the admin.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error) {
	if err := validation.Check(req); err != nil {
		return nil, "", err
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, "", err
	}

	u, err := s.repo.Register(ctx, &model.User{
		Name:         req.Name,
		Email:        model.NormalizeEmail(req.Email),
		Username:     req.Username,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}

	log.Info().Int64("user_id", u.ID).Str("role", u.Role).Msg("user registered")
	return u, token, nil
}

// Login checks the credentials. Unknown email and wrong password give the
// same error.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	if err := validation.Check(req); err != nil {
		return nil, "", err
	}

	u, err := s.repo.GetByEmail(ctx, model.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, "", model.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", model.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}

	return u, token, nil
}

func (s *UserService) Session(ctx context.Context, actor *authz.Actor) (*model.User, error) {
	if actor == nil {
		return nil, model.ErrUserNotFound
	}
	return s.repo.GetByID(ctx, actor.UserID)
}

// Logout revokes the token until it would have expired anyway.
func (s *UserService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}

	ttl := claims.TTL(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.revoked.Set(ctx, jwt.RevocationKey(claims.ID), "1", ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// ========================================
// USERS
// ========================================

func (s *UserService) List(ctx context.Context, actor *authz.Actor, params query.Params) ([]model.User, query.PageInfo, error) {
	if !actor.IsAdmin() {
		return nil, query.PageInfo{}, model.ErrForbidden
	}
	return s.repo.List(ctx, params)
}

func (s *UserService) Get(ctx context.Context, actor *authz.Actor, id int64) (*model.User, error) {
	if !actor.IsAdmin() && !actor.Owns(id) {
		return nil, model.ErrForbidden
	}
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &model.User{
		Name:         req.Name,
		Email:        model.NormalizeEmail(req.Email),
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
	})
}

// Update lets users edit their own profile; admins may edit anyone and
// change roles.
func (s *UserService) Update(ctx context.Context, actor *authz.Actor, id int64, req model.UpdateUserRequest) (*model.User, error) {
	if !actor.IsAdmin() && !actor.Owns(id) {
		return nil, model.ErrForbidden
	}
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil && *req.Role != u.Role {
		if !actor.IsAdmin() {
			return nil, model.ErrForbidden
		}
		u.Role = *req.Role
	}

	u.Name = req.Name
	u.Email = model.NormalizeEmail(req.Email)
	u.Username = req.Username

	if req.Password != nil {
		if u.PasswordHash, err = s.hash(*req.Password); err != nil {
			return nil, err
		}
	}

	return s.repo.Update(ctx, u)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *UserService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
