package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is fixed server-side when the user record is built.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

const (
	DefaultPackageName  = "basic"
	DefaultPackageLimit = 5
)

// User is either an employee or an HR manager owning a company.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhotoURL     string    `json:"photoURL,omitempty"`
	Birthdate    string    `json:"birthdate,omitempty"`
	Role         Role      `json:"role"`
	CompanyName  string    `json:"companyName,omitempty"`
	CompanyLogo  string    `json:"companyLogo,omitempty"`
	Package      string    `json:"package,omitempty"`
	PackageLimit int       `json:"packageLimit,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsHR reports whether the user manages a company.
func (u *User) IsHR() bool { return u != nil && u.Role == RoleHR }

// Profile carries the client-supplied registration fields. Role is resolved
// by the caller and never read from here.
type Profile struct {
	Name        string
	Email       string
	PhotoURL    string
	Birthdate   string
	CompanyName string
	CompanyLogo string
}

// NewEmployee builds an employee record from a registration profile.
func NewEmployee(p Profile, now time.Time) (*User, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &User{
		Name:      strings.TrimSpace(p.Name),
		Email:     NormalizeEmail(p.Email),
		PhotoURL:  p.PhotoURL,
		Birthdate: p.Birthdate,
		Role:      RoleEmployee,
		CreatedAt: now,
	}, nil
}

// NewHR builds an HR record on the default package. verified must be the
// outcome of the HR secret check; an unverified call never yields an hr user.
func NewHR(p Profile, verified bool, now time.Time) (*User, error) {
	if !verified {
		return nil, ErrInvalidHRCode
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.CompanyName) == "" {
		return nil, fmt.Errorf("%w: companyName is required for hr", ErrValidation)
	}
	return &User{
		Name:         strings.TrimSpace(p.Name),
		Email:        NormalizeEmail(p.Email),
		PhotoURL:     p.PhotoURL,
		Birthdate:    p.Birthdate,
		Role:         RoleHR,
		CompanyName:  strings.TrimSpace(p.CompanyName),
		CompanyLogo:  p.CompanyLogo,
		Package:      DefaultPackageName,
		PackageLimit: DefaultPackageLimit,
		CreatedAt:    now,
	}, nil
}

func (p Profile) validate() error {
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	return nil
}

// NormalizeEmail trims and lowercases an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CompanyKey is the case-insensitive identity of a company name.
func CompanyKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
