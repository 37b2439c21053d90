package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/trainwell/pathway-api/internal/models"
	"github.com/trainwell/pathway-api/pkg/config"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
)

type mockUserRepo struct {
	user          *models.User
	refreshToken  *models.RefreshToken
	revokedIDs    []string
	issuedTokens  []*models.RefreshToken
	revokedUserID string
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if m.user == nil || m.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, _ string, _ time.Time) error { return nil }

func (m *mockUserRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	m.issuedTokens = append(m.issuedTokens, token)
	return nil
}

func (m *mockUserRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	if m.refreshToken == nil || m.refreshToken.Token != token {
		return nil, sql.ErrNoRows
	}
	return m.refreshToken, nil
}

func (m *mockUserRepo) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	m.revokedIDs = append(m.revokedIDs, id)
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	m.revokedUserID = userID
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test_secret",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
	}
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "trainer@example.com",
		PasswordHash: string(hash),
		FullName:     "Taylor Trainer",
		Role:         models.RoleTrainer,
		Active:       true,
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	repo := &mockUserRepo{user: activeUser(t)}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "trainer@example.com",
		Password: "correct-horse",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleTrainer, resp.User.Role)
	require.Len(t, repo.issuedTokens, 1)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleTrainer, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{user: activeUser(t)}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "trainer@example.com",
		Password: "wrong",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	svc := NewAuthService(&mockUserRepo{user: user}, testJWTConfig(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "trainer@example.com",
		Password: "correct-horse",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := &mockUserRepo{
		user: activeUser(t),
		refreshToken: &models.RefreshToken{
			ID:        "rt-1",
			UserID:    "user-1",
			Token:     "old-token",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	resp, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})

	require.NoError(t, err)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.Equal(t, []string{"rt-1"}, repo.revokedIDs)
	require.Len(t, repo.issuedTokens, 1)
	assert.Equal(t, resp.RefreshToken, repo.issuedTokens[0].Token)
}

func TestRefreshExpiredToken(t *testing.T) {
	repo := &mockUserRepo{
		user: activeUser(t),
		refreshToken: &models.RefreshToken{
			ID:        "rt-1",
			UserID:    "user-1",
			Token:     "old-token",
			ExpiresAt: time.Now().Add(-time.Minute),
		},
	}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	_, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.revokedIDs)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	repo := &mockUserRepo{user: activeUser(t)}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "trainer@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	other := NewAuthService(repo, config.JWTConfig{Secret: "different", Expiration: time.Hour}, nil, zap.NewNop())
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}
