package domain

import (
	"fmt"
	"strings"
	"time"
)

// AssetType distinguishes assets that come back from those that are consumed.
type AssetType string

const (
	AssetReturnable    AssetType = "returnable"
	AssetNonReturnable AssetType = "non-returnable"
)

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool {
	return t == AssetReturnable || t == AssetNonReturnable
}

// Asset is a stock line. Quantity is the available stock and never negative.
type Asset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        AssetType `json:"type"`
	Quantity    int       `json:"quantity"`
	Image       string    `json:"image,omitempty"`
	CompanyName string    `json:"companyName,omitempty"`
	HREmail     string    `json:"hrEmail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewAsset validates and normalises a new stock line.
func NewAsset(name string, t AssetType, quantity int, now time.Time) (*Asset, error) {
	name = NormalizeAssetName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: type must be %q or %q", ErrValidation, AssetReturnable, AssetNonReturnable)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return &Asset{Name: name, Type: t, Quantity: quantity, CreatedAt: now}, nil
}

// NormalizeAssetName lowercases and trims an asset name.
func NormalizeAssetName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AssetPatch is a partial update; nil fields are left untouched.
type AssetPatch struct {
	Name     *string
	Type     *AssetType
	Quantity *int
	Image    *string
}

// Validate normalises the patch in place and rejects invalid values.
func (p *AssetPatch) Validate() error {
	if p.Name != nil {
		n := NormalizeAssetName(*p.Name)
		if n == "" {
			return fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		p.Name = &n
	}
	if p.Type != nil && !p.Type.Valid() {
		return fmt.Errorf("%w: unknown asset type %q", ErrValidation, *p.Type)
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p AssetPatch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.Quantity == nil && p.Image == nil
}

// TypeCount is one slice of the asset-type breakdown.
type TypeCount struct {
	Type  string `json:"_id"`
	Count int64  `json:"count"`
}

// NameCount is one bar of the most-requested chart.
type NameCount struct {
	Name  string `json:"_id"`
	Count int64  `json:"count"`
}
