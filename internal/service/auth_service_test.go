package service

import (
	"context"
	"strings"
	"testing"

	"restopos/internal/apierror"
	"restopos/internal/config"
	"restopos/internal/dto"
	"restopos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cloned := *u
	r.users[u.ID] = &cloned
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *u
	return &cloned, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	out := []model.User{}
	for _, u := range r.users {
		if includeInactive || u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	cloned := *u
	r.users[u.ID] = &cloned
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.IsActive = false
	}
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.IsActive = true
	}
	return nil
}

func authTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
}

func seedUser(t *testing.T, repo *stubUserRepo, username, password, role string, active bool) uuid.UUID {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Username:     username,
		Name:         "Test " + username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     active,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u.ID
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "maria", "s3cret", model.RoleCashier, true)
	svc := NewAuthService(repo, authTestConfig())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "s3cret"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, model.RoleCashier, resp.User.Role)
	// JWTs are three dot-separated segments
	assert.Len(t, strings.Split(resp.AccessToken, "."), 3)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "maria", "s3cret", model.RoleCashier, true)
	svc := NewAuthService(repo, authTestConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "nope"})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindAuthentication))
}

func TestLoginInactiveUserRejected(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "maria", "s3cret", model.RoleCashier, false)
	svc := NewAuthService(repo, authTestConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "s3cret"})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindAuthentication))
}

func TestRefreshRoundTrip(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "maria", "s3cret", model.RoleTreasurer, true)
	svc := NewAuthService(repo, authTestConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
}

func TestRefreshGarbageTokenRejected(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), authTestConfig())
	_, err := svc.Refresh(context.Background(), "not.a.token")
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindAuthentication))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "maria", "s3cret", model.RoleCashier, true)
	svc := NewAuthService(repo, authTestConfig())

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "maria",
		Name:     "Another Maria",
		Password: "longenough",
		Role:     model.RoleSupervisor,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestDeactivateAndReactivateUser(t *testing.T) {
	repo := newStubUserRepo()
	id := seedUser(t, repo, "maria", "s3cret", model.RoleCashier, true)
	svc := NewAuthService(repo, authTestConfig())
	ctx := context.Background()

	require.NoError(t, svc.DeactivateUser(ctx, id))
	users, err := svc.ListUsers(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, svc.ReactivateUser(ctx, id))
	users, err = svc.ListUsers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
