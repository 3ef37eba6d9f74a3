package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

func TestCreateAsset_Normalises(t *testing.T) {
	repo := newStubAssetRepo()
	svc := NewAssetService(repo, zerolog.Nop())

	a, err := svc.CreateAsset(context.Background(), ports.CreateAssetInput{
		Name: "  MacBook Pro ", Type: "returnable", Quantity: 3, HREmail: "HR@Acme.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == "" || a.Name != "macbook pro" || a.HREmail != "hr@acme.com" {
		t.Errorf("unexpected asset %+v", a)
	}
}

func TestCreateAsset_Validation(t *testing.T) {
	svc := NewAssetService(newStubAssetRepo(), zerolog.Nop())

	for _, in := range []ports.CreateAssetInput{
		{Name: "", Type: "returnable"},
		{Name: "pen", Type: "borrowed"},
		{Name: "pen", Type: "non-returnable", Quantity: -1},
	} {
		if _, err := svc.CreateAsset(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%+v: expected ErrValidation, got %v", in, err)
		}
	}
}

func TestUpdateAsset(t *testing.T) {
	repo := newStubAssetRepo(&domain.Asset{ID: "a1", Name: "pen", Type: domain.AssetNonReturnable, Quantity: 10})
	svc := NewAssetService(repo, zerolog.Nop())

	name, qty := " Blue PEN ", 4
	matched, modified, err := svc.UpdateAsset(context.Background(), "a1", domain.AssetPatch{Name: &name, Quantity: &qty})
	if err != nil || !matched || !modified {
		t.Fatalf("expected update, got %v %v %v", matched, modified, err)
	}
	a, _ := repo.FindByID(context.Background(), "a1")
	if a.Name != "blue pen" || a.Quantity != 4 {
		t.Errorf("unexpected asset after update %+v", a)
	}

	neg := -1
	if _, _, err := svc.UpdateAsset(context.Background(), "a1", domain.AssetPatch{Quantity: &neg}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, _, err := svc.UpdateAsset(context.Background(), "missing", domain.AssetPatch{Quantity: &qty}); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound, got %v", err)
	}
	if _, _, err := svc.UpdateAsset(context.Background(), "a1", domain.AssetPatch{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for empty patch, got %v", err)
	}
}

func TestListAssets_FiltersByType(t *testing.T) {
	repo := newStubAssetRepo(
		&domain.Asset{ID: "a1", Name: "laptop", Type: domain.AssetReturnable},
		&domain.Asset{ID: "a2", Name: "paper", Type: domain.AssetNonReturnable},
	)
	svc := NewAssetService(repo, zerolog.Nop())

	page, err := svc.ListAssets(context.Background(), ports.AssetListFilter{Type: "returnable"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "a1" {
		t.Errorf("unexpected page %+v", page)
	}
	if _, err := svc.ListAssets(context.Background(), ports.AssetListFilter{Type: "gadget"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestDashboard(t *testing.T) {
	assets := newStubAssetRepo(
		&domain.Asset{ID: "a1", Type: domain.AssetReturnable},
		&domain.Asset{ID: "a2", Type: domain.AssetReturnable},
		&domain.Asset{ID: "a3", Type: domain.AssetNonReturnable},
	)
	var reqs []*domain.AssetRequest
	for i, name := range []string{"laptop", "laptop", "mouse", "chair", "desk", "pen", "cable"} {
		reqs = append(reqs, &domain.AssetRequest{ID: string(rune('a' + i)), AssetName: name})
	}
	svc := NewDashboardService(assets, newStubRequestRepo(reqs...))

	pie, err := svc.AssetTypeBreakdown(context.Background())
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	if len(pie) != 2 || pie[0].Type != "non-returnable" || pie[0].Count != 1 || pie[1].Count != 2 {
		t.Errorf("unexpected pie %+v", pie)
	}

	bar, err := svc.TopRequestedAssets(context.Background())
	if err != nil {
		t.Fatalf("bar: %v", err)
	}
	if len(bar) != 5 || bar[0].Name != "laptop" || bar[0].Count != 2 {
		t.Errorf("unexpected bar %+v", bar)
	}
}
