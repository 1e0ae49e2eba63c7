package postgresql_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/database"
	"github.com/officecorner/officecorner-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations")
}

func applyMigrations(ctx context.Context, db *database.DB) error {
	for _, name := range []string{"0001_init.down.sql", "0001_init.up.sql"} {
		sql, err := os.ReadFile(filepath.Join(migrationsDir(), name))
		if err != nil {
			return err
		}
		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return err
		}
	}
	return nil
}

// newTestDB connects to TEST_DATABASE_URL, recreating the schema once per
// run and truncating every table per test. Skips when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, 4, 0)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	migrateOnce.Do(func() { migrateErr = applyMigrations(ctx, db) })
	require.NoError(t, migrateErr)

	_, err = db.Exec(ctx, `TRUNCATE TABLE events, tasks, payroll_settings, attendances, refresh_tokens, users CASCADE`)
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, db *database.DB, email string, role user.Role, status user.Status) user.User {
	t.Helper()
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	u, err := postgresql.NewUserRepository(db).Create(context.Background(), user.User{
		Email:        email,
		Name:         "Test " + email,
		PasswordHash: &hash,
		Role:         role,
		Status:       status,
	})
	require.NoError(t, err)
	return u
}
