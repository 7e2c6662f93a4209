package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"

	"github.com/google/uuid"
)

// MemoryUsersRepo backs the portal when the database is disabled.
type MemoryUsersRepo struct {
	mu    sync.RWMutex
	users map[string]domain.User // userID -> User
}

func NewMemoryUsersRepo() *MemoryUsersRepo {
	return &MemoryUsersRepo{users: map[string]domain.User{}}
}

var _ UsersRepository = (*MemoryUsersRepo)(nil)

func (r *MemoryUsersRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUsersRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUsersRepo) GetUserByName(_ context.Context, name string, role domain.Role) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *domain.User
	for _, u := range r.users {
		if u.Name == name && u.Role == role {
			if found == nil || u.CreatedAt.Before(found.CreatedAt) {
				u := u
				found = &u
			}
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r *MemoryUsersRepo) ListUsers(_ context.Context, filters UserFilters, page, size int) ([]*domain.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filters.Search)
	all := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		if filters.Role != "" && u.Role != filters.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		u := u
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].UserID < all[j].UserID
	})

	total := len(all)
	page, size = normalizePage(page, size)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *MemoryUsersRepo) CreateUser(_ context.Context, user *domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return "", ErrDuplicate
		}
	}
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.UserID] = *user
	return user.UserID, nil
}

func (r *MemoryUsersRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[user.UserID]
	if !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	cur.Name = user.Name
	cur.Age = user.Age
	cur.Gender = user.Gender
	cur.Ethnicity = user.Ethnicity
	cur.BMI = user.BMI
	cur.SmokingHabits = user.SmokingHabits
	cur.AlcoholUse = user.AlcoholUse
	cur.StressLevels = user.StressLevels
	cur.Diet = user.Diet
	cur.PhysicalActivity = user.PhysicalActivity
	cur.OnboardedAt = user.OnboardedAt
	cur.UpdatedAt = user.UpdatedAt
	r.users[user.UserID] = cur
	return nil
}

func (r *MemoryUsersRepo) DeleteUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return ErrNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *MemoryUsersRepo) CountByRole(_ context.Context) (domain.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s domain.UserStats
	for _, u := range r.users {
		s.Total++
		switch u.Role {
		case domain.RolePatient:
			s.Patients++
		case domain.RoleDoctor:
			s.Doctors++
		case domain.RoleAdmin:
			s.Admins++
		}
	}
	return s, nil
}
