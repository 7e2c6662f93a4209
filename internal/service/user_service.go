package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/advisor"
	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/repository"
	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"go.uber.org/zap"
)

// UserService manages profiles and the admin user list.
type UserService interface {
	GetProfile(ctx context.Context, actor Actor) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor Actor, req ProfileRequest) (*domain.User, error)
	CompleteOnboarding(ctx context.Context, actor Actor, req ProfileRequest) (*domain.User, error)

	ListUsers(ctx context.Context, actor Actor, req ListUsersRequest) (*ListUsersResponse, error)
	UserStats(ctx context.Context, actor Actor) (domain.UserStats, error)
	ListDoctors(ctx context.Context) ([]DoctorOption, error)
	ListPatients(ctx context.Context, actor Actor) ([]*domain.User, error)
	DeleteUser(ctx context.Context, actor Actor, userID string) error
}

// ProfileRequest carries the onboarding form. Empty strings leave a field unset.
type ProfileRequest struct {
	Name             string `json:"name"`
	Age              *int   `json:"age"`
	Gender           string `json:"gender"`
	Ethnicity        string `json:"ethnicity"`
	BMI              string `json:"bmi"`
	PhysicalActivity string `json:"physical_activity"`
	Diet             string `json:"diet"`
	AlcoholUse       string `json:"alcohol_use"`
	SmokingHabits    string `json:"smoking_habits"`
	StressLevels     string `json:"stress_levels"`
}

type ListUsersRequest struct {
	Search string
	Role   string
	Page   int
	Size   int
}

type ListUsersResponse struct {
	Items []*domain.User `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// DoctorOption is an entry of the booking form's doctor picker.
type DoctorOption struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// Accepted onboarding options per field, in canonical spelling.
var profileOptions = map[string][]string{
	"physical_activity": {advisor.ActivitySedentary, advisor.ActivityLight, advisor.ActivityModerate, advisor.ActivityActive},
	"diet":              {advisor.DietPoor, advisor.DietAverage, advisor.DietGood},
	"alcohol_use":       {advisor.AlcoholNone, advisor.AlcoholOccasional, advisor.AlcoholRegular},
	"smoking_habits":    {advisor.SmokingNon, advisor.SmokingFormer, advisor.SmokingCurrent},
	"stress_levels":     {advisor.StressLow, advisor.StressModerate, advisor.StressHigh},
}

const maxListSize = 200

type userService struct {
	users    repository.UsersRepository
	cache    AlertCache
	notifier subscription.Notifier
	now      func() time.Time
	logger   *zap.Logger
}

// NewUserService creates a UserService. cache may be nil.
func NewUserService(users repository.UsersRepository, cache AlertCache, notifier subscription.Notifier, logger *zap.Logger) UserService {
	return &userService{
		users:    users,
		cache:    cache,
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, actor Actor) (*domain.User, error) {
	u, err := s.users.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor Actor, req ProfileRequest) (*domain.User, error) {
	return s.saveProfile(ctx, actor, req, false)
}

func (s *userService) CompleteOnboarding(ctx context.Context, actor Actor, req ProfileRequest) (*domain.User, error) {
	return s.saveProfile(ctx, actor, req, true)
}

func (s *userService) saveProfile(ctx context.Context, actor Actor, req ProfileRequest, onboarding bool) (*domain.User, error) {
	u, err := s.users.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if name := strings.TrimSpace(req.Name); name != "" && name != u.Name {
		// Appointments and issued tokens refer to doctors by name.
		if u.Role == domain.RoleDoctor {
			return nil, invalid(MsgDoctorRename)
		}
		u.Name = name
	}
	if req.Age != nil {
		if *req.Age < 0 || *req.Age > 150 {
			return nil, invalid(MsgInvalidAge)
		}
		u.Age = req.Age
	}
	if g := strings.TrimSpace(req.Gender); g != "" {
		u.Gender = g
	}
	if e := strings.TrimSpace(req.Ethnicity); e != "" {
		u.Ethnicity = e
	}
	if strings.TrimSpace(req.BMI) != "" {
		bmi := advisor.ParseBMI(req.BMI)
		if bmi == nil {
			return nil, invalid(MsgInvalidBMI)
		}
		u.BMI = bmi
	}

	fields := []struct {
		key string
		raw string
		dst *string
	}{
		{"physical_activity", req.PhysicalActivity, &u.PhysicalActivity},
		{"diet", req.Diet, &u.Diet},
		{"alcohol_use", req.AlcoholUse, &u.AlcoholUse},
		{"smoking_habits", req.SmokingHabits, &u.SmokingHabits},
		{"stress_levels", req.StressLevels, &u.StressLevels},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.raw) == "" {
			continue
		}
		v, ok := canonicalOption(f.key, f.raw)
		if !ok {
			return nil, invalid(fmt.Sprintf("Unknown %s option %q.", strings.ReplaceAll(f.key, "_", " "), f.raw))
		}
		*f.dst = v
	}

	if onboarding && u.OnboardedAt == nil {
		t := s.now().UTC()
		u.OnboardedAt = &t
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.logger.Info("Profile updated",
		zap.String("user_id", u.UserID),
		zap.Bool("onboarding", onboarding),
	)
	notify(ctx, s.notifier, s.logger, subscription.TopicUsers)
	return u, nil
}

func canonicalOption(field, raw string) (string, bool) {
	n := advisor.Normalize(raw)
	if field == "diet" && n == advisor.StressModerate {
		n = advisor.DietAverage
	}
	for _, opt := range profileOptions[field] {
		if n == opt {
			return n, true
		}
	}
	return "", false
}

func (s *userService) ListUsers(ctx context.Context, actor Actor, req ListUsersRequest) (*ListUsersResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	filters := repository.UserFilters{Search: strings.TrimSpace(req.Search)}
	if strings.TrimSpace(req.Role) != "" {
		role, ok := domain.ParseRole(req.Role)
		if !ok {
			return nil, invalid(MsgInvalidRole)
		}
		filters.Role = role
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Size <= 0 {
		req.Size = 50
	}
	if req.Size > maxListSize {
		req.Size = maxListSize
	}

	items, total, err := s.users.ListUsers(ctx, filters, req.Page, req.Size)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ListUsersResponse{Items: items, Total: total, Page: req.Page, Size: req.Size}, nil
}

func (s *userService) UserStats(ctx context.Context, actor Actor) (domain.UserStats, error) {
	if !actor.IsAdmin() {
		return domain.UserStats{}, ErrForbidden
	}
	stats, err := s.users.CountByRole(ctx)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("count users: %w", err)
	}
	return stats, nil
}

func (s *userService) ListDoctors(ctx context.Context) ([]DoctorOption, error) {
	users, err := s.listAll(ctx, domain.RoleDoctor)
	if err != nil {
		return nil, err
	}
	out := make([]DoctorOption, 0, len(users))
	for _, u := range users {
		out = append(out, DoctorOption{UserID: u.UserID, Name: u.Name})
	}
	return out, nil
}

func (s *userService) ListPatients(ctx context.Context, actor Actor) ([]*domain.User, error) {
	if !actor.Role.CanManageAppointments() {
		return nil, ErrForbidden
	}
	return s.listAll(ctx, domain.RolePatient)
}

func (s *userService) listAll(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	var all []*domain.User
	for page := 1; ; page++ {
		items, total, err := s.users.ListUsers(ctx, repository.UserFilters{Role: role}, page, maxListSize)
		if err != nil {
			return nil, fmt.Errorf("list %ss: %w", role, err)
		}
		all = append(all, items...)
		if len(items) == 0 || len(all) >= total {
			break
		}
	}
	if all == nil {
		all = []*domain.User{}
	}
	return all, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor Actor, userID string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if userID == actor.UserID {
		return invalid(MsgCannotDeleteSelf)
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info("User deleted",
		zap.String("user_id", userID),
		zap.String("deleted_by", actor.UserID),
	)
	if s.cache != nil {
		if err := s.cache.ClearAlerts(ctx, userID); err != nil {
			s.logger.Warn("Failed to clear alert cache", zap.String("user_id", userID), zap.Error(err))
		}
	}
	notify(ctx, s.notifier, s.logger, subscription.TopicUsers)
	return nil
}
