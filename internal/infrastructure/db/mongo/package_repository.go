package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

type packageDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	EmployeeLimit int                `bson:"employeeLimit"`
	Price         int64              `bson:"price"`
	Features      []string           `bson:"features,omitempty"`
}

func (d *packageDocument) toDomain() *domain.Package {
	return &domain.Package{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		EmployeeLimit: d.EmployeeLimit,
		Price:         d.Price,
		Features:      d.Features,
	}
}

// PackageRepository reads the package catalogue.
type PackageRepository struct {
	col *mongo.Collection
}

func NewPackageRepository(db *mongo.Database) *PackageRepository {
	return &PackageRepository{col: db.Collection(collectionPackages)}
}

var _ ports.PackageRepository = (*PackageRepository)(nil)

func (r *PackageRepository) FindByID(ctx context.Context, id string) (*domain.Package, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc packageDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, fmt.Errorf("find package: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns the catalogue cheapest first.
func (r *PackageRepository) List(ctx context.Context) ([]*domain.Package, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "price", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find packages: %w", err)
	}
	var docs []packageDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode packages: %w", err)
	}
	out := make([]*domain.Package, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// EnsureDefaults seeds the catalogue when the collection is empty.
func (r *PackageRepository) EnsureDefaults(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count packages: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(domain.DefaultPackages))
	for _, p := range domain.DefaultPackages {
		docs = append(docs, packageDocument{
			Name:          p.Name,
			EmployeeLimit: p.EmployeeLimit,
			Price:         p.Price,
			Features:      p.Features,
		})
	}
	res, err := r.col.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("seed packages: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func (r *PackageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
