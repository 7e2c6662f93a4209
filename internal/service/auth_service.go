package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/metrics"
	"github.com/Emmanjr/health-monitoring/internal/repository"
	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// AuthService handles account creation and bearer tokens.
type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ParseToken(token string) (*Actor, error)
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // defaults to patient
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse tells the client where to go next: onboarding for a new
// patient, otherwise the role's home page.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
	HomePath    string       `json:"home_path"`
}

// Claims is the JWT payload.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
	Name   string      `json:"name"`
	jwt.RegisteredClaims
}

type authService struct {
	users    repository.UsersRepository
	notifier subscription.Notifier
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewAuthService creates an AuthService signing HS256 tokens with secret.
func NewAuthService(users repository.UsersRepository, notifier subscription.Notifier, secret string, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) AuthService {
	return &authService{
		users:    users,
		notifier: notifier,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		metrics:  m,
		logger:   logger,
	}
}

func (s *authService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		s.count("signup", "invalid")
		return nil, invalid(MsgRequiredFields)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		s.count("signup", "invalid")
		return nil, invalid(MsgInvalidEmail)
	}
	if len(req.Password) < minPasswordLength {
		s.count("signup", "invalid")
		return nil, invalid(MsgShortPassword)
	}
	role := domain.RolePatient
	if strings.TrimSpace(req.Role) != "" {
		r, ok := domain.ParseRole(req.Role)
		if !ok {
			s.count("signup", "invalid")
			return nil, invalid(MsgInvalidRole)
		}
		role = r
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		PasswordHash: hash,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.count("signup", "duplicate")
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.UserID = id

	s.logger.Info("User signed up",
		zap.String("user_id", id),
		zap.String("role", string(role)),
	)
	s.count("signup", "ok")
	notify(ctx, s.notifier, s.logger, subscription.TopicUsers)
	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		s.count("login", "invalid")
		return nil, invalid(MsgRequiredFields)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("User login failed: unknown email", zap.String("reason", "invalid_credentials"))
			s.count("login", "denied")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		s.logger.Warn("User login failed: wrong password",
			zap.String("user_id", user.UserID),
			zap.String("reason", "invalid_credentials"),
		)
		s.count("login", "denied")
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("User logged in", zap.String("user_id", user.UserID))
	s.count("login", "ok")
	return s.respond(user)
}

func (s *authService) ParseToken(token string) (*Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return &Actor{UserID: claims.UserID, Role: claims.Role, Name: claims.Name}, nil
}

func (s *authService) respond(user *domain.User) (*AuthResponse, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		UserID: user.UserID,
		Role:   user.Role,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResponse{
		AccessToken: signed,
		ExpiresAt:   expires,
		User:        user,
		HomePath:    homePath(user),
	}, nil
}

func homePath(u *domain.User) string {
	if u.Role == domain.RolePatient && !u.Onboarded() {
		return "/onboarding"
	}
	return "/" + string(u.Role)
}

func (s *authService) count(method, status string) {
	if s.metrics != nil {
		s.metrics.AuthAttempts.WithLabelValues(method, status).Inc()
	}
}
