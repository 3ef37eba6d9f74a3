package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// Repositories bundles every collection adapter over one database.
type Repositories struct {
	Users        *UserRepository
	Assets       *AssetRepository
	Requests     *RequestRepository
	Affiliations *AffiliationRepository
	Packages     *PackageRepository
	Events       *EventRepository
}

func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		Assets:       NewAssetRepository(db),
		Requests:     NewRequestRepository(db),
		Affiliations: NewAffiliationRepository(db),
		Packages:     NewPackageRepository(db),
		Events:       NewEventRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	for name, ix := range map[string]indexer{
		collectionUsers:        r.Users,
		collectionAssets:       r.Assets,
		collectionRequests:     r.Requests,
		collectionAffiliations: r.Affiliations,
		collectionPackages:     r.Packages,
		collectionEvents:       r.Events,
	} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("indexes %s: %w", name, err)
		}
	}
	return nil
}
