package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chumcred/academy-lmp-api/internal/models"
)

func TestExistsTuple(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM materials WHERE module_id = $1 AND title = $2 AND kind = $3 AND path_or_url = $4)")).
		WithArgs("m1", "Power BI Documentation", models.MaterialKindLink, "https://learn.microsoft.com/power-bi/").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsTuple(context.Background(), "m1", "Power BI Documentation", models.MaterialKindLink, "https://learn.microsoft.com/power-bi/")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMaterialTitleOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE materials SET title = $2 WHERE id = $1")).
		WithArgs("mat1", "New Title").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "mat1", "New Title", nil, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMaterialTitleAndPath(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE materials SET title = $2, path_or_url = $3 WHERE id = $1")).
		WithArgs("mat1", "New Title", "https://example.com/doc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "mat1", "New Title", nil, strPtr("https://example.com/doc"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMaterialAllFields(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	kind := models.MaterialKindFile
	mock.ExpectExec(regexp.QuoteMeta("UPDATE materials SET title = $2, kind = $3, path_or_url = $4 WHERE id = $1")).
		WithArgs("mat1", "New Title", kind, "uploads/new.pdf").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "mat1", "New Title", &kind, strPtr("uploads/new.pdf"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMaterialNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	mock.ExpectExec("DELETE FROM materials").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
