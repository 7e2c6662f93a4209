package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"

	"github.com/google/uuid"
)

// PostgresUsersRepository implements UsersRepository over the users table.
type PostgresUsersRepository struct {
	db *sql.DB
}

// NewPostgresUsersRepository creates a users repository.
func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	user_id::text,
	name,
	email,
	role,
	password_hash,
	age,
	gender,
	ethnicity,
	bmi,
	smoking_habits,
	alcohol_use,
	stress_levels,
	diet,
	physical_activity,
	onboarded_at,
	created_at,
	updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var age sql.NullInt64
	var bmi sql.NullFloat64
	var onboardedAt sql.NullTime

	err := row.Scan(
		&u.UserID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.PasswordHash,
		&age,
		&u.Gender,
		&u.Ethnicity,
		&bmi,
		&u.SmokingHabits,
		&u.AlcoholUse,
		&u.StressLevels,
		&u.Diet,
		&u.PhysicalActivity,
		&onboardedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if age.Valid {
		v := int(age.Int64)
		u.Age = &v
	}
	if bmi.Valid {
		v := bmi.Float64
		u.BMI = &v
	}
	if onboardedAt.Valid {
		v := onboardedAt.Time
		u.OnboardedAt = &v
	}
	return &u, nil
}

// GetUser returns ErrNotFound when userID does not exist.
func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrNotFound
	}
	query := `SELECT` + userColumns + ` FROM users WHERE user_id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// GetUserByEmail matches email case-insensitively.
func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, ErrNotFound
	}
	query := `SELECT` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// GetUserByName returns the first user with exactly this name and role.
func (r *PostgresUsersRepository) GetUserByName(ctx context.Context, name string, role domain.Role) (*domain.User, error) {
	if name == "" {
		return nil, ErrNotFound
	}
	query := `SELECT` + userColumns + ` FROM users WHERE name = $1 AND role = $2 ORDER BY created_at LIMIT 1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, name, string(role)))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// ListUsers returns one page of users and the total matching count.
func (r *PostgresUsersRepository) ListUsers(ctx context.Context, filters UserFilters, page, size int) ([]*domain.User, int, error) {
	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filters.Role != "" {
		where = append(where, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, string(filters.Role))
		argIdx++
	}
	if filters.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+filters.Search+"%")
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM users WHERE " + strings.Join(where, " AND ")
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page, size = normalizePage(page, size)
	query := `SELECT` + userColumns + `
		FROM users
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY name ASC, user_id ASC
		LIMIT $` + fmt.Sprintf("%d", argIdx) + ` OFFSET $` + fmt.Sprintf("%d", argIdx+1)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// CreateUser inserts user, assigning an id when empty. A taken email is ErrDuplicate.
func (r *PostgresUsersRepository) CreateUser(ctx context.Context, user *domain.User) (string, error) {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, name, email, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.UserID, user.Name, user.Email, string(user.Role), user.PasswordHash, now, now,
	)
	if err != nil {
		return "", mapError(err)
	}
	return user.UserID, nil
}

// UpdateProfile writes name, demographics and lifestyle fields.
func (r *PostgresUsersRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	var age sql.NullInt64
	if user.Age != nil {
		age = sql.NullInt64{Int64: int64(*user.Age), Valid: true}
	}
	var bmi sql.NullFloat64
	if user.BMI != nil {
		bmi = sql.NullFloat64{Float64: *user.BMI, Valid: true}
	}
	var onboardedAt sql.NullTime
	if user.OnboardedAt != nil {
		onboardedAt = sql.NullTime{Time: *user.OnboardedAt, Valid: true}
	}
	user.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			name = $2,
			age = $3,
			gender = $4,
			ethnicity = $5,
			bmi = $6,
			smoking_habits = $7,
			alcohol_use = $8,
			stress_levels = $9,
			diet = $10,
			physical_activity = $11,
			onboarded_at = $12,
			updated_at = $13
		WHERE user_id = $1`,
		user.UserID, user.Name, age, user.Gender, user.Ethnicity, bmi,
		user.SmokingHabits, user.AlcoholUse, user.StressLevels, user.Diet, user.PhysicalActivity,
		onboardedAt, user.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// DeleteUser removes the user; readings and appointments cascade.
func (r *PostgresUsersRepository) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// CountByRole returns the admin dashboard headcount.
func (r *PostgresUsersRepository) CountByRole(ctx context.Context) (domain.UserStats, error) {
	var stats domain.UserStats
	rows, err := r.db.QueryContext(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return stats, fmt.Errorf("count users by role: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return stats, err
		}
		stats.Total += n
		switch domain.Role(role) {
		case domain.RolePatient:
			stats.Patients = n
		case domain.RoleDoctor:
			stats.Doctors = n
		case domain.RoleAdmin:
			stats.Admins = n
		}
	}
	return stats, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
