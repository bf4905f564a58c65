package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chumcred/academy-lmp-api/internal/models"
	"github.com/chumcred/academy-lmp-api/pkg/config"
)

type mockSeedUserRepo struct {
	users []*models.User
}

func (m *mockSeedUserRepo) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *mockSeedUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = fmt.Sprintf("user%d", len(m.users)+1)
	m.users = append(m.users, user)
	return nil
}

type mockSeedModuleRepo struct {
	byWeek map[int]*models.Module
}

func (m *mockSeedModuleRepo) Count(ctx context.Context) (int, error) {
	return len(m.byWeek), nil
}

func (m *mockSeedModuleRepo) Create(ctx context.Context, module *models.Module) error {
	if m.byWeek == nil {
		m.byWeek = make(map[int]*models.Module)
	}
	module.ID = fmt.Sprintf("mod%d", module.WeekNumber)
	m.byWeek[module.WeekNumber] = module
	return nil
}

func (m *mockSeedModuleRepo) FindByWeek(ctx context.Context, week int) (*models.Module, error) {
	if mod, ok := m.byWeek[week]; ok {
		return mod, nil
	}
	return nil, sql.ErrNoRows
}

type mockSeedAssignmentRepo struct {
	created []*models.Assignment
}

func (m *mockSeedAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = fmt.Sprintf("asg%d", len(m.created)+1)
	m.created = append(m.created, assignment)
	return nil
}

type mockSeedMaterialRepo struct {
	tuples map[string]bool
}

func tupleKey(moduleID, title string, kind models.MaterialKind, path string) string {
	return moduleID + "|" + title + "|" + string(kind) + "|" + path
}

func (m *mockSeedMaterialRepo) ExistsTuple(ctx context.Context, moduleID, title string, kind models.MaterialKind, pathOrURL string) (bool, error) {
	return m.tuples[tupleKey(moduleID, title, kind, pathOrURL)], nil
}

func (m *mockSeedMaterialRepo) Create(ctx context.Context, material *models.Material) error {
	if m.tuples == nil {
		m.tuples = make(map[string]bool)
	}
	material.ID = fmt.Sprintf("mat%d", len(m.tuples)+1)
	m.tuples[tupleKey(material.ModuleID, material.Title, material.Kind, material.PathOrURL)] = true
	return nil
}

func seedFixture() (*SeedService, *mockSeedUserRepo, *mockSeedModuleRepo, *mockSeedAssignmentRepo, *mockSeedMaterialRepo) {
	users := &mockSeedUserRepo{}
	modules := &mockSeedModuleRepo{}
	assignments := &mockSeedAssignmentRepo{}
	materials := &mockSeedMaterialRepo{}
	cfg := config.SeedConfig{
		AdminEmail:    "admin@chumcred.academy",
		AdminPassword: "Admin@123",
		AdminName:     "Administrator",
	}
	svc := NewSeedService(users, modules, assignments, materials, cfg, zap.NewNop())
	return svc, users, modules, assignments, materials
}

func TestSeedServiceFreshDatabase(t *testing.T) {
	svc, users, modules, assignments, _ := seedFixture()

	result, err := svc.EnsureSeed(context.Background())
	require.NoError(t, err)

	assert.True(t, result.AdminCreated)
	assert.NotEmpty(t, result.AdminNotice)
	assert.Equal(t, 6, result.ModulesCreated)
	assert.Equal(t, 29, result.MaterialsCreated)

	require.Len(t, users.users, 1)
	admin := users.users[0]
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("Admin@123")))

	require.Len(t, modules.byWeek, 6)
	require.Len(t, assignments.created, 6)
	for _, asg := range assignments.created {
		assert.NotNil(t, asg.Prompt)
		assert.NotNil(t, asg.DueDate)
	}
}

func TestSeedServiceSecondRunCreatesNothing(t *testing.T) {
	svc, _, _, _, _ := seedFixture()

	_, err := svc.EnsureSeed(context.Background())
	require.NoError(t, err)

	second, err := svc.EnsureSeed(context.Background())
	require.NoError(t, err)

	assert.False(t, second.AdminCreated)
	assert.Empty(t, second.AdminNotice)
	assert.Zero(t, second.ModulesCreated)
	assert.Zero(t, second.MaterialsCreated)
}

func TestSeedServiceReinsertsRemovedMaterial(t *testing.T) {
	svc, _, modules, _, materials := seedFixture()

	_, err := svc.EnsureSeed(context.Background())
	require.NoError(t, err)

	// Simulate a manual deletion of one seed material.
	removed := tupleKey(modules.byWeek[1].ID, "Streamlit Docs", models.MaterialKindLink, "https://docs.streamlit.io/")
	require.True(t, materials.tuples[removed])
	delete(materials.tuples, removed)

	third, err := svc.EnsureSeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, third.MaterialsCreated)
	assert.True(t, materials.tuples[removed])
}

func TestSeedServiceSkipsWeeksWithoutModule(t *testing.T) {
	svc, _, modules, _, materials := seedFixture()

	// Non-empty module table with none of the seed weeks present: modules
	// are not recreated and material seeding has nothing to attach to.
	modules.byWeek = map[int]*models.Module{9: {ID: "mod9", WeekNumber: 9}}

	result, err := svc.EnsureSeed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.ModulesCreated)
	assert.Zero(t, result.MaterialsCreated)
	assert.Empty(t, materials.tuples)
}
