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

type historyDocument struct {
	Status    string    `bson:"status"`
	Timestamp time.Time `bson:"timestamp"`
	Actor     string    `bson:"actor,omitempty"`
}

type requestDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	AssetID       string             `bson:"assetId"`
	AssetName     string             `bson:"assetName"`
	Quantity      int                `bson:"quantity"`
	ApprovedQty   int                `bson:"approvedQuantity,omitempty"`
	UserName      string             `bson:"userName"`
	Email         string             `bson:"email"`
	Reason        string             `bson:"reason,omitempty"`
	Status        string             `bson:"status"`
	CreatedAt     time.Time          `bson:"createdAt"`
	ApprovalDate  *time.Time         `bson:"approvalDate,omitempty"`
	ReturnedAt    *time.Time         `bson:"returnedAt,omitempty"`
	StatusHistory []historyDocument  `bson:"statusHistory,omitempty"`
}

func (d *requestDocument) toDomain() *domain.AssetRequest {
	req := &domain.AssetRequest{
		ID:               d.ID.Hex(),
		AssetID:          d.AssetID,
		AssetName:        d.AssetName,
		Quantity:         d.Quantity,
		ApprovedQuantity: d.ApprovedQty,
		UserName:         d.UserName,
		Email:            d.Email,
		Reason:           d.Reason,
		Status:           domain.RequestStatus(d.Status),
		CreatedAt:        d.CreatedAt,
		ApprovalDate:     d.ApprovalDate,
		ReturnedAt:       d.ReturnedAt,
	}
	for _, h := range d.StatusHistory {
		req.StatusHistory = append(req.StatusHistory, domain.StatusHistoryEntry{
			Status:    domain.RequestStatus(h.Status),
			Timestamp: h.Timestamp,
			Actor:     h.Actor,
		})
	}
	return req
}

// RequestRepository implements ports.RequestRepository on asset_requests.
type RequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{col: db.Collection(collectionRequests)}
}

var _ ports.RequestRepository = (*RequestRepository)(nil)

func (r *RequestRepository) Create(ctx context.Context, req *domain.AssetRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := requestDocument{
		AssetID:   req.AssetID,
		AssetName: req.AssetName,
		Quantity:  req.Quantity,
		UserName:  req.UserName,
		Email:     req.Email,
		Reason:    req.Reason,
		Status:    string(req.Status),
		CreatedAt: req.CreatedAt.UTC(),
	}
	for _, h := range req.StatusHistory {
		doc.StatusHistory = append(doc.StatusHistory, historyDocument{
			Status: string(h.Status), Timestamp: h.Timestamp.UTC(), Actor: h.Actor,
		})
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert request: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*domain.AssetRequest, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc requestDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *RequestRepository) List(ctx context.Context, f ports.RequestListFilter) ([]*domain.AssetRequest, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Email != "" {
		filter["email"] = f.Email
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}
	cur, err := r.col.Find(ctx, filter, pageOptions(f.Skip(), f.Limit, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("find requests: %w", err)
	}
	var docs []requestDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode requests: %w", err)
	}
	reqs := make([]*domain.AssetRequest, 0, len(docs))
	for i := range docs {
		reqs = append(reqs, docs[i].toDomain())
	}
	return reqs, total, nil
}

// Transition applies t only while the stored status equals t.From.
func (r *RequestRepository) Transition(ctx context.Context, id string, t ports.Transition) (*domain.AssetRequest, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc requestDocument
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(t.From)},
		transitionUpdate(t),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: request %s is not %s", domain.ErrStatusConflict, id, t.From)
		}
		return nil, fmt.Errorf("transition request: %w", err)
	}
	return doc.toDomain(), nil
}

// transitionUpdate builds the $set/$unset/$push document for t. Moving back
// to an earlier status clears the timestamp of the state being left.
func transitionUpdate(t ports.Transition) bson.M {
	at := t.At.UTC()
	set := bson.M{"status": string(t.To)}
	unset := bson.M{}

	switch t.To {
	case domain.StatusApproved:
		if t.From == domain.StatusReturned {
			unset["returnedAt"] = ""
		} else {
			set["approvalDate"] = at
			if t.Quantity > 0 {
				set["approvedQuantity"] = t.Quantity
			}
		}
	case domain.StatusReturned:
		set["returnedAt"] = at
	case domain.StatusRejected:
		set["rejectedAt"] = at
	case domain.StatusPending:
		unset["approvalDate"] = ""
		unset["approvedQuantity"] = ""
	}

	update := bson.M{
		"$set":  set,
		"$push": bson.M{"statusHistory": historyDocument{Status: string(t.To), Timestamp: at, Actor: t.Actor}},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (r *RequestRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete request: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// TopRequested counts requests per snapshot asset name, most requested first.
func (r *RequestRepository) TopRequested(ctx context.Context, n int) ([]domain.NameCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$assetName"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: n}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate top requested: %w", err)
	}
	var rows []struct {
		Name  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode top requested: %w", err)
	}
	out := make([]domain.NameCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.NameCount{Name: row.Name, Count: row.Count})
	}
	return out, nil
}

func (r *RequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}
