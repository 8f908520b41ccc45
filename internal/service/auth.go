// Package service contains application services for accounts, projects, files and sharing.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/and161185/pocketfile/internal/crypto"
	"github.com/and161185/pocketfile/internal/errs"
	"github.com/and161185/pocketfile/internal/limiter"
	"github.com/and161185/pocketfile/internal/model"
	"github.com/and161185/pocketfile/internal/repository"
)

// AuthService defines registration, login and token verification.
type AuthService interface {
	// Register creates an account; the first account ever becomes admin.
	Register(ctx context.Context, username, email, password string) (model.Session, error)
	// Login applies rate-limiting and authenticates the user.
	Login(ctx context.Context, username, password, ip string) (model.Session, error)
	// Authenticate verifies a session token and returns its principal.
	Authenticate(ctx context.Context, token string) (model.Principal, error)
	// Me loads the account behind a principal.
	Me(ctx context.Context, p model.Principal) (*model.User, error)
}

type AuthServiceImpl struct {
	users   repository.UserRepository
	signKey []byte
	ttl     time.Duration
	lim     limiter.Limiter
	now     func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, ttl time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	if lim == nil {
		lim = limiter.Nop{}
	}
	return &AuthServiceImpl{users: users, signKey: signKey, ttl: ttl, lim: lim, now: time.Now}
}

// sessionClaims carries the role next to the registered claims; sub is the user id.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Register validates input, rejects taken names and stores an argon2id hash.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (model.Session, error) {
	username, err := checkUsername(username)
	if err != nil {
		return model.Session{}, err
	}
	email, err = checkEmail(email)
	if err != nil {
		return model.Session{}, err
	}
	if err := checkPassword(password); err != nil {
		return model.Session{}, err
	}
	if err := ensureUnique(ctx, s.users, username, email, 0); err != nil {
		return model.Session{}, err
	}

	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return model.Session{}, err
	}
	u, err := s.users.Register(ctx, username, email, hash)
	if err != nil {
		return model.Session{}, err
	}
	return s.newSession(*u)
}

// Login authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) Login(ctx context.Context, username, password, ip string) (model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.Session{}, fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	}
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Session{}, err
	}
	if !allowed {
		return model.Session{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Session{}, err
	}
	if err != nil || !pkgcrypto.VerifyPassword(password, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Session{}, errs.ErrRateLimited
		}
		// same answer for unknown user and wrong password
		return model.Session{}, fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	}

	_ = s.lim.Success(ctx, username, ipHash)
	return s.newSession(*u)
}

// Authenticate verifies signature, expiry, subject and role of a session token.
func (s *AuthServiceImpl) Authenticate(_ context.Context, token string) (model.Principal, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.signKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: invalid or expired token", errs.ErrUnauthorized)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return model.Principal{}, fmt.Errorf("%w: bad token subject", errs.ErrUnauthorized)
	}
	role, ok := model.ParseRole(claims.Role)
	if !ok {
		return model.Principal{}, fmt.Errorf("%w: bad token role", errs.ErrUnauthorized)
	}
	return model.Principal{UserID: id, Role: role}, nil
}

// Me returns the account of p.
func (s *AuthServiceImpl) Me(ctx context.Context, p model.Principal) (*model.User, error) {
	return s.users.GetByID(ctx, p.UserID)
}

// newSession issues a signed HS256 JWT for u.
func (s *AuthServiceImpl) newSession(u model.User) (model.Session, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := sessionClaims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{Token: signed, ExpiresAt: exp, User: u}, nil
}

// ensureUnique is the friendly pre-check; unique constraints remain the real guard.
func ensureUnique(ctx context.Context, users repository.UserRepository, username, email string, excludeID int64) error {
	if username != "" {
		taken, err := users.UsernameTaken(ctx, username, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: username already exists", errs.ErrAlreadyExists)
		}
	}
	if email != "" {
		taken, err := users.EmailTaken(ctx, email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: email already exists", errs.ErrAlreadyExists)
		}
	}
	return nil
}
