package service

import (
	"context"
	"fmt"
	"time"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

const defaultLockTTL = 10 * time.Second

// AffiliationCounter counts the active affiliations of a company.
type AffiliationCounter interface {
	CountActive(ctx context.Context, companyName string) (int64, error)
}

// CapacityPolicy gates new affiliations against a company's package limit.
type CapacityPolicy struct {
	counter AffiliationCounter
	locker  ports.Locker
	lockTTL time.Duration
}

// NewCapacityPolicy returns a policy counting through counter. When locker is
// nil, Reserve does not serialise concurrent admissions.
func NewCapacityPolicy(counter AffiliationCounter, locker ports.Locker, lockTTL time.Duration) *CapacityPolicy {
	if locker == nil {
		locker = nopLocker{}
	}
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &CapacityPolicy{counter: counter, locker: locker, lockTTL: lockTTL}
}

// CanAdmit reports whether the company has fewer active affiliations than
// packageLimit.
func (p *CapacityPolicy) CanAdmit(ctx context.Context, companyName string, packageLimit int) (bool, error) {
	n, err := p.counter.CountActive(ctx, companyName)
	if err != nil {
		return false, fmt.Errorf("count affiliations: %w", err)
	}
	return n < int64(packageLimit), nil
}

// Reserve takes the company's capacity lease and checks CanAdmit under it.
// On success the caller writes the affiliation and then calls release; on
// failure the lease is already released. A full company yields
// domain.ErrCapacityExceeded.
func (p *CapacityPolicy) Reserve(ctx context.Context, companyName string, packageLimit int) (release func(), err error) {
	release, err = p.locker.Acquire(ctx, capacityLockKey(companyName), p.lockTTL)
	if err != nil {
		return nil, err
	}

	ok, err := p.CanAdmit(ctx, companyName, packageLimit)
	if err != nil {
		release()
		return nil, err
	}
	if !ok {
		release()
		return nil, domain.ErrCapacityExceeded
	}
	return release, nil
}

func capacityLockKey(companyName string) string {
	return "capacity:" + domain.CompanyKey(companyName)
}

type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}
