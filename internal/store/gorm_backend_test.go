package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupGormBackend(t *testing.T) (*GormBackend, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormBackend(db), mock
}

func TestGormBackend_LoadFound(t *testing.T) {
	backend, mock := setupGormBackend(t)

	rows := sqlmock.NewRows([]string{"name", "value", "updated_at"}).
		AddRow("arogya_meds", `[{"id":"1"}]`, time.Now())
	mock.ExpectQuery("SELECT \\* FROM `collections`").WillReturnRows(rows)

	value, ok, err := backend.Load(context.Background(), "arogya_meds")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"1"}]`, string(value))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBackend_LoadMissing(t *testing.T) {
	backend, mock := setupGormBackend(t)

	mock.ExpectQuery("SELECT \\* FROM `collections`").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value", "updated_at"}))

	value, ok, err := backend.Load(context.Background(), "arogya_meds")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestGormBackend_LoadError(t *testing.T) {
	backend, mock := setupGormBackend(t)

	mock.ExpectQuery("SELECT \\* FROM `collections`").WillReturnError(errors.New("connection refused"))

	_, _, err := backend.Load(context.Background(), "arogya_meds")
	assert.Error(t, err)
}

func TestGormBackend_SaveUpserts(t *testing.T) {
	backend, mock := setupGormBackend(t)

	mock.ExpectExec("INSERT INTO `collections`.*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := backend.Save(context.Background(), "arogya_meds", []byte(`[]`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBackend_Remove(t *testing.T) {
	backend, mock := setupGormBackend(t)

	mock.ExpectExec("DELETE FROM `collections`").WillReturnResult(sqlmock.NewResult(0, 1))

	err := backend.Remove(context.Background(), "arogya_user")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_OverGormBackendSurfacesFailures(t *testing.T) {
	backend, mock := setupGormBackend(t)
	s := New(backend)

	mock.ExpectQuery("SELECT \\* FROM `collections`").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value", "updated_at"}))
	mock.ExpectExec("INSERT INTO `collections`").WillReturnError(errors.New("disk full"))

	_, err := s.Reminders(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
