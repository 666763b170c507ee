package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

// testDB is nil when TEST_DATABASE_URL is unset.
var testDB *database.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to test database: %v\n", err)
			os.Exit(1)
		}
		if err := migrate(db); err != nil {
			fmt.Fprintf(os.Stderr, "failed to migrate test database: %v\n", err)
			os.Exit(1)
		}
		testDB = db
	}

	code := m.Run()
	if testDB != nil {
		testDB.Close()
	}
	os.Exit(code)
}

func migrate(db *database.DB) error {
	ctx := context.Background()
	for _, name := range []string{"000001_init.down.sql", "000001_init.up.sql"} {
		sql, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", name))
		if err != nil {
			return err
		}
		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// requireDB skips the test without a database and empties every table otherwise.
func requireDB(t *testing.T) *database.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	_, err := testDB.Exec(context.Background(),
		"TRUNCATE TABLE attendances, leave_applications, employees, users, work_locations, companies CASCADE")
	require.NoError(t, err)
	return testDB
}

type fixture struct {
	CompanyID  string
	LocationID string
	UserID     string
	EmployeeID string
}

func seed(t *testing.T, db *database.DB) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture

	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO companies (name) VALUES ('Test Company') RETURNING id`).Scan(&f.CompanyID))
	require.NoError(t, db.QueryRow(ctx, `
		INSERT INTO work_locations (company_id, name, latitude, longitude, allowed_radius_meters)
		VALUES ($1, 'Head Office', -6.2, 106.816666, 100) RETURNING id
	`, f.CompanyID).Scan(&f.LocationID))
	require.NoError(t, db.QueryRow(ctx, `
		INSERT INTO users (company_id, email, password_hash, role)
		VALUES ($1, 'budi@example.com', 'hash', 'employee') RETURNING id
	`, f.CompanyID).Scan(&f.UserID))
	require.NoError(t, db.QueryRow(ctx, `
		INSERT INTO employees (user_id, company_id, location_id, employee_code, full_name)
		VALUES ($1, $2, $3, 'EMP-001', 'Budi Santoso') RETURNING id
	`, f.UserID, f.CompanyID, f.LocationID).Scan(&f.EmployeeID))

	return f
}

func addEmployee(t *testing.T, db *database.DB, companyID, code string) string {
	t.Helper()
	var id string
	require.NoError(t, db.QueryRow(context.Background(), `
		INSERT INTO employees (company_id, employee_code, full_name)
		VALUES ($1, $2, $2) RETURNING id
	`, companyID, code).Scan(&id))
	return id
}
