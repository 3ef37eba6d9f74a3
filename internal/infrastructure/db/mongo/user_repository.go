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

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PhotoURL     string             `bson:"photoURL,omitempty"`
	Birthdate    string             `bson:"birthdate,omitempty"`
	Role         string             `bson:"role"`
	CompanyName  string             `bson:"companyName,omitempty"`
	CompanyLogo  string             `bson:"companyLogo,omitempty"`
	Package      string             `bson:"package,omitempty"`
	PackageLimit int                `bson:"packageLimit,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PhotoURL:     d.PhotoURL,
		Birthdate:    d.Birthdate,
		Role:         domain.Role(d.Role),
		CompanyName:  d.CompanyName,
		CompanyLogo:  d.CompanyLogo,
		Package:      d.Package,
		PackageLimit: d.PackageLimit,
		CreatedAt:    d.CreatedAt,
	}
}

// UserRepository implements ports.UserRepository on the users collection.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDocument{
		Name:         u.Name,
		Email:        domain.NormalizeEmail(u.Email),
		PhotoURL:     u.PhotoURL,
		Birthdate:    u.Birthdate,
		Role:         string(u.Role),
		CompanyName:  u.CompanyName,
		CompanyLogo:  u.CompanyLogo,
		Package:      u.Package,
		PackageLimit: u.PackageLimit,
		CreatedAt:    u.CreatedAt.UTC(),
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByIDs loads the users behind ids; unknown or malformed ids are skipped.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *UserRepository) List(ctx context.Context, f ports.UserListFilter) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Search != "" {
		filter["name"] = containsFold(f.Search)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	users, err := r.find(ctx, filter, pageOptions(f.Skip(), f.Limit, bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) ListHR(ctx context.Context) ([]*domain.User, error) {
	return r.find(ctx, bson.M{"role": string(domain.RoleHR)})
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, u ports.ProfileUpdate) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.PhotoURL != nil {
		set["photoURL"] = *u.PhotoURL
	}
	if u.Birthdate != nil {
		set["birthdate"] = *u.Birthdate
	}
	if u.CompanyName != nil {
		set["companyName"] = *u.CompanyName
	}
	if u.CompanyLogo != nil {
		set["companyLogo"] = *u.CompanyLogo
	}
	if len(set) == 0 {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, domain.ErrUserNotFound
	}
	return res.ModifiedCount > 0, nil
}

// UpdatePackage sets the package tier of an hr user.
func (r *UserRepository) UpdatePackage(ctx context.Context, email, packageName string, limit int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": domain.NormalizeEmail(email), "role": string(domain.RoleHR)},
		bson.M{"$set": bson.M{"package": packageName, "packageLimit": limit}},
	)
	if err != nil {
		return fmt.Errorf("update package: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	return err
}
