package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chumcred/academy-lmp-api/internal/models"
)

type mockMaterialRepo struct {
	byID map[string]*models.Material
	seq  int
}

func (m *mockMaterialRepo) ListByModule(ctx context.Context, moduleID string) ([]models.Material, error) {
	var out []models.Material
	for _, mat := range m.byID {
		if mat.ModuleID == moduleID {
			out = append(out, *mat)
		}
	}
	return out, nil
}

func (m *mockMaterialRepo) FindByID(ctx context.Context, id string) (*models.Material, error) {
	if mat, ok := m.byID[id]; ok {
		return mat, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMaterialRepo) Create(ctx context.Context, material *models.Material) error {
	if m.byID == nil {
		m.byID = make(map[string]*models.Material)
	}
	m.seq++
	material.ID = fmt.Sprintf("mat%d", m.seq)
	m.byID[material.ID] = material
	return nil
}

func (m *mockMaterialRepo) Update(ctx context.Context, id, title string, kind *models.MaterialKind, pathOrURL *string) error {
	mat, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	mat.Title = title
	if kind != nil {
		mat.Kind = *kind
	}
	if pathOrURL != nil {
		mat.PathOrURL = *pathOrURL
	}
	return nil
}

func (m *mockMaterialRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

type mockModuleReader struct {
	modules map[string]*models.Module
}

func (m *mockModuleReader) FindByID(ctx context.Context, id string) (*models.Module, error) {
	if mod, ok := m.modules[id]; ok {
		return mod, nil
	}
	return nil, sql.ErrNoRows
}

type mockFileRemover struct {
	removed []string
	err     error
}

func (m *mockFileRemover) Delete(filename string) error {
	m.removed = append(m.removed, filename)
	return m.err
}

func materialFixture(remover *mockFileRemover) (*MaterialService, *mockMaterialRepo) {
	repo := &mockMaterialRepo{}
	modules := &mockModuleReader{modules: map[string]*models.Module{
		"mod1": {ID: "mod1", WeekNumber: 1, Title: "Week 1"},
	}}
	svc := NewMaterialService(repo, modules, remover, nil, validator.New(), zap.NewNop())
	return svc, repo
}

func TestMaterialAddLink(t *testing.T) {
	svc, repo := materialFixture(&mockFileRemover{})

	material, err := svc.Add(context.Background(), AddMaterialRequest{
		ModuleID:  "mod1",
		Title:     "Course Handbook",
		Kind:      models.MaterialKindLink,
		PathOrURL: "https://example.com/handbook",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, material.ID)
	assert.Len(t, repo.byID, 1)
}

func TestMaterialAddUnknownModule(t *testing.T) {
	svc, _ := materialFixture(&mockFileRemover{})

	_, err := svc.Add(context.Background(), AddMaterialRequest{
		ModuleID:  "missing",
		Title:     "Orphan",
		Kind:      models.MaterialKindLink,
		PathOrURL: "https://example.com",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module not found")
}

func TestMaterialAddRejectsBadKind(t *testing.T) {
	svc, _ := materialFixture(&mockFileRemover{})

	_, err := svc.Add(context.Background(), AddMaterialRequest{
		ModuleID:  "mod1",
		Title:     "Bad",
		Kind:      models.MaterialKind("video"),
		PathOrURL: "https://example.com",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid material payload")
}

func TestMaterialUpdateTitleOnly(t *testing.T) {
	svc, repo := materialFixture(&mockFileRemover{})

	created, err := svc.Add(context.Background(), AddMaterialRequest{
		ModuleID: "mod1", Title: "Old", Kind: models.MaterialKindLink, PathOrURL: "https://example.com/a",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), UpdateMaterialRequest{
		MaterialID: created.ID, Title: "New",
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, models.MaterialKindLink, updated.Kind)
	assert.Equal(t, "https://example.com/a", repo.byID[created.ID].PathOrURL)
}

func TestMaterialUpdateKindAndPath(t *testing.T) {
	svc, _ := materialFixture(&mockFileRemover{})

	created, err := svc.Add(context.Background(), AddMaterialRequest{
		ModuleID: "mod1", Title: "Slides", Kind: models.MaterialKindLink, PathOrURL: "https://example.com/slides",
	})
	require.NoError(t, err)

	kind := models.MaterialKindFile
	path := "uploads/slides.pdf"
	updated, err := svc.Update(context.Background(), UpdateMaterialRequest{
		MaterialID: created.ID, Title: "Slides", Kind: &kind, PathOrURL: &path,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MaterialKindFile, updated.Kind)
	assert.Equal(t, "uploads/slides.pdf", updated.PathOrURL)
}

func TestMaterialUpdateUnknown(t *testing.T) {
	svc, _ := materialFixture(&mockFileRemover{})

	_, err := svc.Update(context.Background(), UpdateMaterialRequest{
		MaterialID: "missing", Title: "x",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "material not found")
}

func TestMaterialDeleteRemovesBackingFile(t *testing.T) {
	remover := &mockFileRemover{}
	svc, repo := materialFixture(remover)

	created, err := svc.Add(context.Background(), AddMaterialRequest{
		ModuleID: "mod1", Title: "Worksheet", Kind: models.MaterialKindFile, PathOrURL: "uploads/sheet.xlsx",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Equal(t, []string{"uploads/sheet.xlsx"}, remover.removed)
	assert.Empty(t, repo.byID)
}

func TestMaterialDeleteProceedsWhenFileRemovalFails(t *testing.T) {
	remover := &mockFileRemover{err: os.ErrPermission}
	svc, repo := materialFixture(remover)

	created, err := svc.Add(context.Background(), AddMaterialRequest{
		ModuleID: "mod1", Title: "Report", Kind: models.MaterialKindFile, PathOrURL: "uploads/report.pdf",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Len(t, remover.removed, 1)
	assert.Empty(t, repo.byID)
}

func TestMaterialDeleteLinkSkipsFileRemoval(t *testing.T) {
	remover := &mockFileRemover{}
	svc, _ := materialFixture(remover)

	created, err := svc.Add(context.Background(), AddMaterialRequest{
		ModuleID: "mod1", Title: "Docs", Kind: models.MaterialKindLink, PathOrURL: "https://example.com/docs",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, remover.removed)
}
