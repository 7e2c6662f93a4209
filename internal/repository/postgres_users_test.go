package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{
	"user_id", "name", "email", "role", "password_hash", "age", "gender", "ethnicity", "bmi",
	"smoking_habits", "alcohol_use", "stress_levels", "diet", "physical_activity",
	"onboarded_at", "created_at", "updated_at",
}

func setupMockUsersDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresUsersRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresUsersRepository(db)
}

func TestGetUser_Success(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	userID := uuid.New().String()
	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).AddRow(
		userID, "Ada Obi", "ada@example.com", "patient", []byte("hash"), 34, "Female", "", 31.2,
		"Current smoker", "Regular", "High", "Poor", "Sedentary",
		now, now, now,
	)
	mock.ExpectQuery(`SELECT`).WithArgs(userID).WillReturnRows(rows)

	u, err := repo.GetUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", u.Name)
	assert.Equal(t, domain.RolePatient, u.Role)
	require.NotNil(t, u.Age)
	assert.Equal(t, 34, *u.Age)
	require.NotNil(t, u.BMI)
	assert.InDelta(t, 31.2, *u.BMI, 1e-9)
	assert.Equal(t, "Current smoker", u.SmokingHabits)
	assert.True(t, u.Onboarded())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_NullProfile(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).AddRow(
		"u-1", "Dr. Bello", "bello@example.com", "doctor", []byte("hash"), nil, "", "", nil,
		"", "", "", "", "",
		nil, now, now,
	)
	mock.ExpectQuery(`SELECT`).WithArgs("u-1").WillReturnRows(rows)

	u, err := repo.GetUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Nil(t, u.Age)
	assert.Nil(t, u.BMI)
	assert.False(t, u.Onboarded())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_NotFound(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_EmptyID(t *testing.T) {
	db, _, repo := setupMockUsersDB(t)
	defer db.Close()

	_, err := repo.GetUser(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers_RoleAndSearch(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE 1=1 AND role = \$1 AND \(name ILIKE \$2 OR email ILIKE \$2\)`).
		WithArgs("doctor", "%bel%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY name ASC`).
		WithArgs("doctor", "%bel%", 10, 10).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			"u-2", "Dr. Bello", "bello@example.com", "doctor", []byte("h"), nil, "", "", nil,
			"", "", "", "", "", nil, now, now,
		))

	users, total, err := repo.ListUsers(context.Background(), UserFilters{Role: domain.RoleDoctor, Search: "bel"}, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "Dr. Bello", users[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "Ada", "ada@example.com", "patient", []byte("h"), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.CreateUser(context.Background(), &domain.User{
		Name: "Ada", Email: "ada@example.com", Role: domain.RolePatient, PasswordHash: []byte("h"),
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_AssignsID(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(0, 1))

	u := &domain.User{Name: "Ada", Email: "ada@example.com", Role: domain.RolePatient}
	id, err := repo.CreateUser(context.Background(), u)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, u.UserID)
	assert.False(t, u.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile_NotFound(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProfile(context.Background(), &domain.User{UserID: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM users`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteUser(context.Background(), "u-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByRole(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	mock.ExpectQuery(`GROUP BY role`).WillReturnRows(sqlmock.NewRows([]string{"role", "count"}).
		AddRow("patient", 7).
		AddRow("doctor", 2).
		AddRow("admin", 1))

	stats, err := repo.CountByRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.UserStats{Total: 10, Patients: 7, Doctors: 2, Admins: 1}, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}
