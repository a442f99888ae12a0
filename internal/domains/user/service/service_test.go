package service

import (
	"context"
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bookshelf-backend/internal/domains/user/model"
	"bookshelf-backend/internal/shared/authz"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/pkg/jwt"
	"bookshelf-backend/pkg/kv"
)

// memRepo is an in-memory RepositoryInterface.
type memRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMemRepo() *memRepo { return &memRepo{users: map[int64]*model.User{}, nextID: 1} }

func (r *memRepo) List(context.Context, query.Params) ([]model.User, query.PageInfo, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, query.NewPageInfo(len(out), 1, 10, len(out)), nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *memRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *memRepo) Register(ctx context.Context, u *model.User) (*model.User, error) {
	u.Role = authz.RoleUser
	if len(r.users) == 0 {
		u.Role = authz.RoleAdmin
	}
	return r.Create(ctx, u)
}

func (r *memRepo) Create(_ context.Context, u *model.User) (*model.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, model.ErrEmailTaken
		}
	}
	c := *u
	c.ID = r.nextID
	r.nextID++
	r.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r *memRepo) Update(_ context.Context, u *model.User) (*model.User, error) {
	c := *u
	r.users[u.ID] = &c
	return u, nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func newService(repo *memRepo, store kv.Store) (*UserService, *jwt.Manager) {
	tokens := jwt.NewManager("test-secret", time.Hour)
	svc := NewService(repo, tokens, store, bcrypt.MinCost).(*UserService)
	return svc, tokens
}

func register(t *testing.T, svc ServiceInterface, email string) *model.User {
	t.Helper()
	u, _, err := svc.Register(context.Background(), model.RegisterRequest{
		Name:                 "Reader",
		Email:                email,
		Username:             email[:4],
		Password:             "correct horse",
		PasswordConfirmation: "correct horse",
	})
	require.NoError(t, err)
	return u
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	svc, tokens := newService(newMemRepo(), kv.NewMemoryStore())

	first, token, err := svc.Register(context.Background(), model.RegisterRequest{
		Name: "Ada", Email: " ADA@example.com ", Username: "ada",
		Password: "correct horse", PasswordConfirmation: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, authz.RoleAdmin, first.Role)
	assert.Equal(t, "ada@example.com", first.Email)
	assert.NotEqual(t, "correct horse", first.PasswordHash)

	claims, err := tokens.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, first.ID, claims.UserID)

	second := register(t, svc, "bob@example.com")
	assert.Equal(t, authz.RoleUser, second.Role)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc, _ := newService(newMemRepo(), kv.NewMemoryStore())

	_, _, err := svc.Register(context.Background(), model.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Username: "ada",
		Password: "correct horse", PasswordConfirmation: "battery staple",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The given data was invalid.")
}

func TestLogin(t *testing.T) {
	svc, _ := newService(newMemRepo(), kv.NewMemoryStore())
	register(t, svc, "ada@example.com")

	u, token, err := svc.Login(context.Background(), model.LoginRequest{Email: "Ada@Example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ada@example.com", u.Email)

	_, _, err = svc.Login(context.Background(), model.LoginRequest{Email: "ada@example.com", Password: "wrong password"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), model.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogout_RevokesUntilExpiry(t *testing.T) {
	store := kv.NewMemoryStore()
	svc, tokens := newService(newMemRepo(), store)

	token, err := tokens.GenerateAccessToken(1, authz.RoleUser)
	require.NoError(t, err)
	claims, err := tokens.ValidateAccessToken(token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims))

	revoked, err := store.Exists(context.Background(), jwt.RevocationKey(claims.ID))
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLogout_ExpiredTokenIsNoop(t *testing.T) {
	store := kv.NewMemoryStore()
	svc, _ := newService(newMemRepo(), store)

	claims := &jwt.Claims{RegisteredClaims: gojwt.RegisteredClaims{
		ID:        "old",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	require.NoError(t, svc.Logout(context.Background(), claims))

	revoked, err := store.Exists(context.Background(), jwt.RevocationKey("old"))
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestGet_SelfOrAdmin(t *testing.T) {
	svc, _ := newService(newMemRepo(), kv.NewMemoryStore())
	admin := register(t, svc, "ada@example.com")
	bob := register(t, svc, "bob@example.com")
	carol := register(t, svc, "carol@example.com")

	bobActor := &authz.Actor{UserID: bob.ID, Role: authz.RoleUser}

	_, err := svc.Get(context.Background(), bobActor, bob.ID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), bobActor, carol.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = svc.Get(context.Background(), &authz.Actor{UserID: admin.ID, Role: authz.RoleAdmin}, carol.ID)
	assert.NoError(t, err)
}

func TestList_AdminOnly(t *testing.T) {
	svc, _ := newService(newMemRepo(), kv.NewMemoryStore())
	register(t, svc, "ada@example.com")

	_, _, err := svc.List(context.Background(), &authz.Actor{UserID: 2, Role: authz.RoleUser}, query.Params{})
	assert.ErrorIs(t, err, model.ErrForbidden)

	users, _, err := svc.List(context.Background(), &authz.Actor{UserID: 1, Role: authz.RoleAdmin}, query.Params{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUpdate_UserCannotPromoteSelf(t *testing.T) {
	svc, _ := newService(newMemRepo(), kv.NewMemoryStore())
	register(t, svc, "ada@example.com")
	bob := register(t, svc, "bob@example.com")
	actor := &authz.Actor{UserID: bob.ID, Role: authz.RoleUser}

	admin := authz.RoleAdmin
	_, err := svc.Update(context.Background(), actor, bob.ID, model.UpdateUserRequest{
		Name: "Bob", Email: "bob@example.com", Username: "bobby", Role: &admin,
	})
	assert.ErrorIs(t, err, model.ErrForbidden)

	same := authz.RoleUser
	updated, err := svc.Update(context.Background(), actor, bob.ID, model.UpdateUserRequest{
		Name: "Bob", Email: "bob@example.com", Username: "bobby", Role: &same,
	})
	require.NoError(t, err)
	assert.Equal(t, "bobby", updated.Username)
	assert.Equal(t, authz.RoleUser, updated.Role)
}

func TestUpdate_RoleChangeRefusedBeforeHashing(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newService(repo, kv.NewMemoryStore())
	register(t, svc, "ada@example.com")
	bob := register(t, svc, "bob@example.com")
	before := *repo.users[bob.ID]

	// An unusable cost makes any hashing attempt fail.
	svc.hashCost = bcrypt.MaxCost + 1

	admin := authz.RoleAdmin
	password := "a much better one"
	_, err := svc.Update(context.Background(), &authz.Actor{UserID: bob.ID, Role: authz.RoleUser}, bob.ID, model.UpdateUserRequest{
		Name: "Bob", Email: "bob@example.com", Username: "bobby", Role: &admin, Password: &password,
	})

	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.Equal(t, before, *repo.users[bob.ID])
}

func TestUpdate_ChangesPassword(t *testing.T) {
	svc, _ := newService(newMemRepo(), kv.NewMemoryStore())
	u := register(t, svc, "ada@example.com")

	newPassword := "a much better one"
	_, err := svc.Update(context.Background(), &authz.Actor{UserID: u.ID, Role: u.Role}, u.ID, model.UpdateUserRequest{
		Name: "Ada", Email: "ada@example.com", Username: "ada", Password: &newPassword,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), model.LoginRequest{Email: "ada@example.com", Password: newPassword})
	assert.NoError(t, err)
}

func TestDelete_Unknown(t *testing.T) {
	svc, _ := newService(newMemRepo(), kv.NewMemoryStore())
	err := svc.Delete(context.Background(), 42)
	assert.True(t, errors.Is(err, model.ErrUserNotFound))
}
