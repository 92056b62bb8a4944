// Package services holds the application logic between the transport layer
// and the repositories: account signup/login, the doctor-scoped patient
// registry and the dashboard.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/common"
	"github.com/dmitrijs2005/clinicdesk/internal/server/auth"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
	"github.com/dmitrijs2005/clinicdesk/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type SignupInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

// LoginInput identifies the account by Email when set, otherwise by
// FullName.
type LoginInput struct {
	FullName string
	Email    string
	Password string
}

// AuthResult is returned by a successful signup or login.
type AuthResult struct {
	User  *models.User
	Token string
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.Hasher
	tokens      *auth.TokenIssuer
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, h auth.Hasher, t *auth.TokenIssuer) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      h,
		tokens:      t,
		now:         time.Now,
	}
}

// Signup creates the account and returns it with a fresh token.
// A taken email yields common.ErrAlreadyExists.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	ve := &common.ValidationError{}
	requireField(ve, "fullName", in.FullName)
	requireField(ve, "email", in.Email)
	requireField(ve, "phone", in.Phone)
	requireField(ve, "password", in.Password)
	if len(in.Password) > auth.MaxPasswordBytes {
		ve.Add("password", fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes))
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates by email or by full name. Several accounts may share
// a name; the password is tried against each, oldest first. An unknown
// account yields common.ErrorNotFound and a wrong password
// common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)

	ve := &common.ValidationError{}
	if in.Email == "" {
		requireField(ve, "fullName", in.FullName)
	}
	requireField(ve, "password", in.Password)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	candidates, err := s.candidates(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if len(candidates) == 0 {
		// Keep the response time close to that of a wrong password.
		_ = s.hasher.Verify(in.Password, s.dummy())
		return nil, common.ErrorNotFound
	}

	for _, u := range candidates {
		if err := s.hasher.Verify(in.Password, u.PasswordHash); err == nil {
			token, err := s.tokens.Issue(u.ID, u.Email)
			if err != nil {
				return nil, fmt.Errorf("error issuing token: %w", err)
			}
			return &AuthResult{User: u, Token: token}, nil
		}
	}

	return nil, common.ErrInvalidCredentials
}

func (s *UserService) candidates(ctx context.Context, in LoginInput) ([]*models.User, error) {
	repo := s.repomanager.Users(s.db)

	if in.Email != "" {
		u, err := repo.GetUserByEmail(ctx, in.Email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return []*models.User{u}, nil
	}

	return repo.FindUsersByName(ctx, in.FullName)
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func requireField(ve *common.ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
}
