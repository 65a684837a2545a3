package store

import (
	"context"
	"errors"
	"time"

	"github.com/jjudge-oj/accounts/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"nombre"`
	LastName  string             `bson:"apellido"`
	Username  string             `bson:"usuario"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d userDocument) toUser() types.User {
	return types.User{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoUserRepository handles persistence for users in a MongoDB collection.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique indexes on username and email.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "usuario", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("usuario_unique"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
	})
	return err
}

func mapMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (types.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return types.User{}, mapMongoError(err)
	}
	return doc.toUser(), nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.User{}, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetByUsernameOrEmail returns the user whose username equals username or
// whose email equals email. Empty arguments never match. When both match
// different users the oldest one wins.
func (r *MongoUserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (types.User, error) {
	filter, ok := usernameOrEmailFilter(username, email)
	if !ok {
		return types.User{}, ErrNotFound
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.findOne(ctx, filter, opts)
}

func usernameOrEmailFilter(username, email string) (bson.M, bool) {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"usuario": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, false
	}
	return bson.M{"$or": or}, true
}

func (r *MongoUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return types.User{}, mapMongoError(err)
	}
	return doc.toUser(), nil
}

// Update overwrites only the fields set in patch. patch.Password must
// already be hashed.
func (r *MongoUserRepository) Update(ctx context.Context, id string, patch types.UserPatch) (types.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.User{}, ErrNotFound
	}

	set := patchSet(patch, time.Now().UTC().Truncate(time.Millisecond))
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return types.User{}, mapMongoError(err)
	}
	return doc.toUser(), nil
}

// patchSet builds the $set document for the fields present in patch.
func patchSet(patch types.UserPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if patch.FirstName != nil {
		set["nombre"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["apellido"] = *patch.LastName
	}
	if patch.Username != nil {
		set["usuario"] = *patch.Username
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Password != nil {
		set["password"] = *patch.Password
	}
	return set
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) (types.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.User{}, ErrNotFound
	}
	var doc userDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return types.User{}, mapMongoError(err)
	}
	return doc.toUser(), nil
}

// List returns users in insertion order. ObjectIDs grow monotonically per
// process, so sorting by _id approximates insertion order across writers.
func (r *MongoUserRepository) List(ctx context.Context, offset, limit int) ([]types.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []types.User{}
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, doc.toUser())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
