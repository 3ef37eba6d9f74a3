package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

// UserService registers users and serves profile lookups.
type UserService struct {
	repo       ports.UserRepository
	members    AffiliationCounter
	hrCodeHash []byte
	logger     zerolog.Logger
	now        func() time.Time
}

// NewUserService returns a UserService. hrCodeHash is the bcrypt hash of the
// shared HR secret; when empty no registration is granted the hr role.
// members guards company renames.
func NewUserService(repo ports.UserRepository, hrCodeHash string, members AffiliationCounter, logger zerolog.Logger) *UserService {
	return &UserService{
		repo:       repo,
		members:    members,
		hrCodeHash: []byte(hrCodeHash),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user on first sign-in. An existing email returns the
// stored user together with domain.ErrUserExists.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Profile.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, domain.ErrUserExists
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	var user *domain.User
	if strings.EqualFold(strings.TrimSpace(in.RequestedRole), string(domain.RoleHR)) {
		user, err = domain.NewHR(in.Profile, s.verifyHRCode(in.HRCode), s.now())
		if errors.Is(err, domain.ErrInvalidHRCode) {
			s.logger.Warn().Str("email", email).Msg("hr registration with invalid secret code")
		}
	} else {
		user, err = domain.NewEmployee(in.Profile, s.now())
	}
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			if existing, findErr := s.repo.FindByEmail(ctx, email); findErr == nil {
				return existing, domain.ErrUserExists
			}
		}
		return nil, err
	}

	s.logger.Info().
		Str("user_id", created.ID).
		Str("email", created.Email).
		Str("role", string(created.Role)).
		Msg("user registered")
	return created, nil
}

func (s *UserService) verifyHRCode(code string) bool {
	if len(s.hrCodeHash) == 0 || code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.hrCodeHash, []byte(code)) == nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	return s.repo.FindByEmail(ctx, email)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// GetRole returns the stored role for email.
func (s *UserService) GetRole(ctx context.Context, email string) (domain.Role, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter ports.UserListFilter) (*ports.Page[*domain.User], error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	filter.Search = strings.TrimSpace(filter.Search)
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ports.NewPage(users, total, filter.PageRequest), nil
}

// UpdateProfile edits profile fields. Company fields are only accepted for
// hr users; role and package are never touched here. Affiliations are keyed
// by company name, so a company with active employees cannot be renamed.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update ports.ProfileUpdate) (bool, error) {
	if update.Empty() {
		return false, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if !user.IsHR() && (update.CompanyName != nil || update.CompanyLogo != nil) {
		return false, fmt.Errorf("%w: only hr users have a company", domain.ErrValidation)
	}
	if update.Name != nil {
		n := strings.TrimSpace(*update.Name)
		if n == "" {
			return false, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
		}
		update.Name = &n
	}
	if update.CompanyName != nil {
		n := strings.TrimSpace(*update.CompanyName)
		if n == "" {
			return false, fmt.Errorf("%w: companyName must not be empty", domain.ErrValidation)
		}
		update.CompanyName = &n
		if err := s.checkRename(ctx, user, n); err != nil {
			return false, err
		}
	}

	modified, err := s.repo.UpdateProfile(ctx, user.ID, update)
	if err != nil {
		return false, fmt.Errorf("update profile: %w", err)
	}
	if modified {
		s.logger.Info().Str("user_id", user.ID).Msg("profile updated")
	}
	return modified, nil
}

func (s *UserService) checkRename(ctx context.Context, hr *domain.User, newName string) error {
	if domain.CompanyKey(newName) == domain.CompanyKey(hr.CompanyName) {
		return nil
	}
	n, err := s.members.CountActive(ctx, hr.CompanyName)
	if err != nil {
		return fmt.Errorf("count affiliations: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s has %d active employees and cannot be renamed", domain.ErrStatusConflict, hr.CompanyName, n)
	}
	return nil
}
