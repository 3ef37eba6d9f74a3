package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

// companyKey is stored beside companyName so the uniqueness index and the
// capacity count match names case-insensitively.
type affiliationDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID    string             `bson:"employeeId"`
	EmployeeEmail string             `bson:"employeeEmail"`
	CompanyName   string             `bson:"companyName"`
	CompanyKey    string             `bson:"companyKey"`
	HREmail       string             `bson:"hrEmail,omitempty"`
	Status        string             `bson:"status"`
	JoinedAt      time.Time          `bson:"joinedAt"`
}

func (d *affiliationDocument) toDomain() *domain.Affiliation {
	return &domain.Affiliation{
		ID:            d.ID.Hex(),
		EmployeeID:    d.EmployeeID,
		EmployeeEmail: d.EmployeeEmail,
		CompanyName:   d.CompanyName,
		HREmail:       d.HREmail,
		Status:        d.Status,
		JoinedAt:      d.JoinedAt,
	}
}

type AffiliationRepository struct {
	col *mongo.Collection
}

func NewAffiliationRepository(db *mongo.Database) *AffiliationRepository {
	return &AffiliationRepository{col: db.Collection(collectionAffiliations)}
}

var _ ports.AffiliationRepository = (*AffiliationRepository)(nil)

// Ensure upserts on (employeeId, companyKey); fields are only written when
// the document is inserted.
func (r *AffiliationRepository) Ensure(ctx context.Context, a *domain.Affiliation) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	key := domain.CompanyKey(a.CompanyName)
	filter := bson.M{"employeeId": a.EmployeeID, "companyKey": key}
	update := bson.M{"$setOnInsert": bson.M{
		"employeeEmail": domain.NormalizeEmail(a.EmployeeEmail),
		"companyName":   a.CompanyName,
		"hrEmail":       a.HREmail,
		"status":        a.Status,
		"joinedAt":      a.JoinedAt.UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return "", false, fmt.Errorf("upsert affiliation: %w", err)
	}
	if err == nil && res.UpsertedID != nil {
		return res.UpsertedID.(primitive.ObjectID).Hex(), true, nil
	}

	// Existing link, or a concurrent upsert won the unique index.
	var doc affiliationDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return "", false, fmt.Errorf("find affiliation: %w", err)
	}
	return doc.ID.Hex(), false, nil
}

func (r *AffiliationRepository) CountActive(ctx context.Context, companyName string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{
		"companyKey": domain.CompanyKey(companyName),
		"status":     domain.AffiliationActive,
	})
	if err != nil {
		return 0, fmt.Errorf("count affiliations: %w", err)
	}
	return n, nil
}

func (r *AffiliationRepository) ListByCompany(ctx context.Context, f ports.AffiliationListFilter) ([]*domain.Affiliation, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"companyKey": domain.CompanyKey(f.CompanyName),
		"status":     domain.AffiliationActive,
	}
	if f.Search != "" {
		filter["employeeEmail"] = containsFold(f.Search)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count affiliations: %w", err)
	}
	cur, err := r.col.Find(ctx, filter, pageOptions(f.Skip(), f.Limit, bson.D{{Key: "joinedAt", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("find affiliations: %w", err)
	}
	var docs []affiliationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode affiliations: %w", err)
	}
	out := make([]*domain.Affiliation, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

func (r *AffiliationRepository) DeleteForCompany(ctx context.Context, id, companyName string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid, "companyKey": domain.CompanyKey(companyName)})
	if err != nil {
		return false, fmt.Errorf("delete affiliation: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *AffiliationRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete affiliation: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAffiliationNotFound
	}
	return nil
}

func (r *AffiliationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employeeId", Value: 1}, {Key: "companyKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "companyKey", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("affiliation indexes: %w", err)
	}
	return nil
}
