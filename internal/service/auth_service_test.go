package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chumcred/academy-lmp-api/internal/models"
)

type mockAuthRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	u, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	return nil
}

func authFixture(t *testing.T) (*AuthService, *mockAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Secret1!"), bcrypt.MinCost)
	require.NoError(t, err)

	student := &models.User{
		ID:           "stu1",
		Email:        "ada@chumcred.academy",
		PasswordHash: string(hash),
		FullName:     "Ada Obi",
		Role:         models.RoleStudent,
		Active:       true,
	}
	dormant := &models.User{
		ID:           "old1",
		Email:        "old@chumcred.academy",
		PasswordHash: string(hash),
		FullName:     "Former Student",
		Role:         models.RoleStudent,
		Active:       false,
	}
	repo := &mockAuthRepo{
		byEmail: map[string]*models.User{student.Email: student, dormant.Email: dormant},
		byID:    map[string]*models.User{student.ID: student, dormant.ID: dormant},
	}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "academy-lmp",
	})
	return svc, repo
}

func TestAuthLoginIssuesToken(t *testing.T) {
	svc, _ := authFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "ada@chumcred.academy", Password: "Secret1!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "stu1", resp.User.ID)
	assert.Equal(t, models.RoleStudent, resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "stu1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "ada@chumcred.academy", Password: "nope",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestAuthLoginUnknownEmail(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "ghost@chumcred.academy", Password: "whatever",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "old@chumcred.academy", Password: "Secret1!",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}

func TestAuthValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestAuthChangePassword(t *testing.T) {
	svc, repo := authFixture(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "stu1", models.ChangePasswordRequest{
		CurrentPassword: "Secret1!", NewPassword: "NewSecret2!",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.byID["stu1"].PasswordHash), []byte("NewSecret2!")))
}

func TestAuthChangePasswordWrongCurrent(t *testing.T) {
	svc, _ := authFixture(t)

	err := svc.ChangePassword(context.Background(), "stu1", models.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "NewSecret2!",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current password")
}
