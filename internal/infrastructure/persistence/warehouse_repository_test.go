package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/domain/warehouse"
)

// newMockWarehouseRepository creates a GormWarehouseRepository with a
// mocked SQL connection
func newMockWarehouseRepository(t *testing.T) (*GormWarehouseRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormWarehouseRepository(gormDB), mock, mockDB
}

func warehouseRows(id uuid.UUID, name string, state shared.LifecycleState, version int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "state", "deleted_at", "name", "address", "phone"}).
		AddRow(id, now, now, version, string(state), nil, name, "12 Harbor Street, Hamburg", "")
}

func TestGormWarehouseRepository_FindByID(t *testing.T) {
	t.Run("finds existing warehouse", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		warehouseID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(warehouseID, 1).
			WillReturnRows(warehouseRows(warehouseID, "North Depot", shared.LifecycleActive, 1))

		w, err := repo.FindByID(context.Background(), warehouseID)

		require.NoError(t, err)
		assert.Equal(t, warehouseID, w.ID)
		assert.Equal(t, "North Depot", w.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing warehouse", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		warehouseID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(warehouseID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		w, err := repo.FindByID(context.Background(), warehouseID)

		assert.Nil(t, w)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("finds deleted warehouse too", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		warehouseID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(warehouseID, 1).
			WillReturnRows(warehouseRows(warehouseID, "North Depot", shared.LifecycleDeleted, 2))

		w, err := repo.FindByID(context.Background(), warehouseID)

		require.NoError(t, err)
		assert.True(t, w.IsDeleted())
	})
}

func TestGormWarehouseRepository_FindActiveByID(t *testing.T) {
	t.Run("filters on active state", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		warehouseID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE id = \$1 AND state = \$2 .* LIMIT .*`).
			WithArgs(warehouseID, string(shared.LifecycleActive), 1).
			WillReturnRows(warehouseRows(warehouseID, "North Depot", shared.LifecycleActive, 1))

		w, err := repo.FindActiveByID(context.Background(), warehouseID)

		require.NoError(t, err)
		assert.Equal(t, warehouseID, w.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWarehouseRepository_ExistsByName(t *testing.T) {
	t.Run("matches case-insensitively among non-deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "warehouses" WHERE LOWER\(name\) = LOWER\(\$1\) AND state = \$2`).
			WithArgs("north depot", string(shared.LifecycleActive)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByName(context.Background(), "north depot")

		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("reports false when no match", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "warehouses"`).
			WithArgs("South Depot", string(shared.LifecycleActive)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByName(context.Background(), "South Depot")

		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormWarehouseRepository_Save(t *testing.T) {
	t.Run("stale version returns concurrency conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		w, err := warehouse.NewWarehouse("North Depot", "12 Harbor Street, Hamburg", "")
		require.NoError(t, err)
		require.NoError(t, w.Rename("South Depot"))

		mock.ExpectExec(`UPDATE "warehouses" SET .* WHERE .*id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.Save(context.Background(), w)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("matching version updates the row", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		w, err := warehouse.NewWarehouse("North Depot", "12 Harbor Street, Hamburg", "")
		require.NoError(t, err)
		require.NoError(t, w.Rename("South Depot"))

		mock.ExpectExec(`UPDATE "warehouses" SET .* WHERE .*id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), w)

		assert.NoError(t, err)
	})
}
