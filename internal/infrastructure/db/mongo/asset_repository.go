package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

type assetDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Type        string             `bson:"type"`
	Quantity    int                `bson:"quantity"`
	Image       string             `bson:"image,omitempty"`
	CompanyName string             `bson:"companyName,omitempty"`
	HREmail     string             `bson:"hrEmail,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *assetDocument) toDomain() *domain.Asset {
	return &domain.Asset{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Type:        domain.AssetType(d.Type),
		Quantity:    d.Quantity,
		Image:       d.Image,
		CompanyName: d.CompanyName,
		HREmail:     d.HREmail,
		CreatedAt:   d.CreatedAt,
	}
}

// AssetRepository stores stock lines and doubles as the inventory ledger.
type AssetRepository struct {
	col *mongo.Collection
}

func NewAssetRepository(db *mongo.Database) *AssetRepository {
	return &AssetRepository{col: db.Collection(collectionAssets)}
}

var (
	_ ports.AssetRepository = (*AssetRepository)(nil)
	_ ports.InventoryLedger = (*AssetRepository)(nil)
)

func (r *AssetRepository) Create(ctx context.Context, a *domain.Asset) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, assetDocument{
		Name:        a.Name,
		Type:        string(a.Type),
		Quantity:    a.Quantity,
		Image:       a.Image,
		CompanyName: a.CompanyName,
		HREmail:     a.HREmail,
		CreatedAt:   a.CreatedAt.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("insert asset: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *AssetRepository) FindByID(ctx context.Context, id string) (*domain.Asset, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc assetDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, fmt.Errorf("find asset: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AssetRepository) List(ctx context.Context, f ports.AssetListFilter) ([]*domain.Asset, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Search != "" {
		filter["name"] = containsFold(f.Search)
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}
	cur, err := r.col.Find(ctx, filter, pageOptions(f.Skip(), f.Limit, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("find assets: %w", err)
	}
	var docs []assetDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode assets: %w", err)
	}
	assets := make([]*domain.Asset, 0, len(docs))
	for i := range docs {
		assets = append(assets, docs[i].toDomain())
	}
	return assets, total, nil
}

func (r *AssetRepository) Update(ctx context.Context, id string, p domain.AssetPatch) (bool, bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, false, err
	}
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Type != nil {
		set["type"] = string(*p.Type)
	}
	if p.Quantity != nil {
		set["quantity"] = *p.Quantity
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return false, false, fmt.Errorf("update asset: %w", err)
	}
	return res.MatchedCount > 0, res.ModifiedCount > 0, nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete asset: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// CountByType groups asset lines by type.
func (r *AssetRepository) CountByType(ctx context.Context) ([]domain.TypeCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$type"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate asset types: %w", err)
	}
	var rows []struct {
		Type  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode asset types: %w", err)
	}
	out := make([]domain.TypeCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.TypeCount{Type: row.Type, Count: row.Count})
	}
	return out, nil
}

// Adjust moves stock by delta in a single conditional update. A decrement
// only matches while quantity covers it.
func (r *AssetRepository) Adjust(ctx context.Context, assetID string, delta int) error {
	oid, err := parseID(assetID)
	if err != nil {
		return err
	}
	if delta == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, adjustFilter(oid, delta), bson.M{"$inc": bson.M{"quantity": delta}})
	if err != nil {
		return fmt.Errorf("adjust inventory: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("adjust inventory: %w", err)
	}
	if n == 0 {
		return domain.ErrAssetNotFound
	}
	return domain.ErrInsufficientStock
}

func adjustFilter(oid primitive.ObjectID, delta int) bson.M {
	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}
	return filter
}

func (r *AssetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	})
	return err
}
