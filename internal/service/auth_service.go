package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"station-player/internal/domain"
	"station-player/internal/identity"
	"station-player/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserAlreadyExists is returned when attempting to sign up with a taken username.
	ErrUserAlreadyExists = errors.New("username already taken")
	// ErrInvalidToken indicates a login token that failed validation.
	ErrInvalidToken = errors.New("invalid login token")
)

// AuthService describes account lifecycle and login-token operations.
type AuthService interface {
	Signup(ctx context.Context, name, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
	LoginWithGoogle(ctx context.Context, name, email, imgURL string) (*domain.User, error)
	IssueToken(user *domain.User) (string, error)
	ParseToken(token string) (identity.Identity, error)
}

type authService struct {
	users     repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (s *authService) Signup(ctx context.Context, name, username, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	username = strings.TrimSpace(username)

	if name == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: missing required signup information", domain.ErrInvalidArgument)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:     name,
		Username: username,
		Password: string(hash),
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Password == "" {
		// Federated identity, no local credential to verify.
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

// LoginWithGoogle resolves a federated identity to a local account, creating
// one without a credential digest on first login.
func (s *authService) LoginWithGoogle(ctx context.Context, name, email, imgURL string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: missing google account email", domain.ErrInvalidArgument)
	}

	user, err := s.users.GetByUsername(ctx, email)
	if err == nil {
		return sanitizeUser(user), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	user = &domain.User{
		Name:     name,
		Username: email,
		ImgURL:   imgURL,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

type loginClaims struct {
	Name    string `json:"name"`
	ImgURL  string `json:"imgUrl,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

func (s *authService) IssueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := loginClaims{
		Name:    user.Name,
		ImgURL:  user.ImgURL,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign login token: %w", err)
	}
	return signed, nil
}

func (s *authService) ParseToken(tokenStr string) (identity.Identity, error) {
	var claims loginClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return identity.Identity{}, ErrInvalidToken
	}
	return identity.Identity{
		ID:      claims.Subject,
		Name:    claims.Name,
		ImgURL:  claims.ImgURL,
		IsAdmin: claims.IsAdmin,
	}, nil
}

// sanitizeUser strips the credential digest before a user value crosses the
// system boundary.
func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.Password = ""
	return &clean
}
