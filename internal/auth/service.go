package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/KretovDmitry/storefront/internal/config"
	"github.com/KretovDmitry/storefront/internal/jwt"
	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/user"
	"github.com/KretovDmitry/storefront/pkg/logger"
)

// Service authenticates requests carrying a token issued by the
// account system and authorizes staff and owner routes.
type Service struct {
	repo   Repository
	logger logger.Logger
	config *config.Config
}

func NewService(repo Repository, logger logger.Logger, config *config.Config) (*Service, error) {
	if repo == nil {
		return nil, errors.New("nil dependency: repository")
	}
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	return &Service{repo: repo, logger: logger, config: config}, nil
}

// Authorization middleware.
func (s *Service) Middleware(next http.Handler) http.Handler {
	f := func(w http.ResponseWriter, r *http.Request) {
		authCookie, err := r.Cookie("Authorization")
		if err != nil {
			if errors.Is(err, http.ErrNoCookie) {
				ErrorHandlerFunc(w, r, fmt.Errorf("authorization token: %w", errs.ErrInvalidCredentials))
				return
			}
			ErrorHandlerFunc(w, r, fmt.Errorf("authorization token: %w", err))
			return
		}

		userID, err := jwt.GetUserID(authCookie.Value, s.config.JWT.SigningKey)
		if err != nil {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: %s", errs.ErrInvalidCredentials, err))
			return
		}

		u, err := s.repo.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				ErrorHandlerFunc(w, r, fmt.Errorf("%w: user %d not found", errs.ErrInvalidCredentials, userID))
				return
			}
			ErrorHandlerFunc(w, r, fmt.Errorf("get user %d: %w", userID, err))
			return
		}

		r = r.WithContext(user.NewContext(r.Context(), u))

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(f)
}

// RequireStaff lets through staff members only. Must run after Middleware.
func RequireStaff(next http.Handler) http.Handler {
	return requireUser(func(u *user.User) bool { return u.IsStaff }, next)
}

// RequireOwner lets through store owners only. Must run after Middleware.
func RequireOwner(next http.Handler) http.Handler {
	return requireUser(func(u *user.User) bool { return u.IsOwner }, next)
}

func requireUser(allowed func(*user.User) bool, next http.Handler) http.Handler {
	f := func(w http.ResponseWriter, r *http.Request) {
		u, found := user.FromContext(r.Context())
		if !found {
			ErrorHandlerFunc(w, r, errs.ErrInvalidCredentials)
			return
		}
		if !allowed(u) {
			ErrorHandlerFunc(w, r, errs.ErrAccessDenied)
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(f)
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status Unauthorized (401).
	case errors.Is(err, errs.ErrInvalidCredentials):
		code = http.StatusUnauthorized

	// Status Forbidden (403).
	case errors.Is(err, errs.ErrAccessDenied):
		code = http.StatusForbidden
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
