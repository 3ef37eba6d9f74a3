package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

// resolveHR loads the HR user behind email. Unknown emails and non-hr users
// both yield domain.ErrHRNotFound.
func resolveHR(ctx context.Context, users ports.UserRepository, email string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: hr email is required", domain.ErrValidation)
	}
	hr, err := users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrHRNotFound
		}
		return nil, err
	}
	if !hr.IsHR() {
		return nil, domain.ErrHRNotFound
	}
	return hr, nil
}

type nopAuditor struct{}

func (nopAuditor) Enqueue(domain.RequestEvent) {}
