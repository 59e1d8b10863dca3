package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Maxbrain0/echo_blog/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names inside the app database.
const (
	UsersCollection    = "users"
	PostsCollection    = "posts"
	SessionsCollection = "sessions"
)

// Mongo holds references to the database collections backing the app.
type Mongo struct {
	Users *mongo.Collection
	Posts *mongo.Collection
	now   func() time.Time
}

// NewMongo wraps the users and posts collections of db.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		Users: db.Collection(UsersCollection),
		Posts: db.Collection(PostsCollection),
		now:   time.Now,
	}
}

// EnsureIndexes creates the unique and lookup indexes the store relies on.
// Provider and username indexes are sparse since each user carries only one.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	userIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	}
	for _, p := range model.Providers {
		field, _ := p.Field()
		userIndexes = append(userIndexes, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		})
	}
	if _, err := m.Users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	_, err := m.Posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userid", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create post indexes: %w", err)
	}
	return nil
}

func (m *Mongo) UserByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return m.findUser(ctx, bson.M{"_id": id})
}

func (m *Mongo) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.findUser(ctx, bson.M{"username": username})
}

func (m *Mongo) CreateUser(ctx context.Context, u *model.User) error {
	u.ID = primitive.ObjectID{}
	res, err := m.Users.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindOrCreateByProvider upserts on the provider field so concurrent first
// logins of the same subject still end up with one record.
func (m *Mongo) FindOrCreateByProvider(ctx context.Context, provider model.Provider, subject string) (*model.User, error) {
	field, err := provider.Field()
	if err != nil {
		return nil, err
	}
	if subject == "" {
		return nil, ErrEmptySubject
	}

	filter := bson.M{field: subject}
	update := bson.M{"$setOnInsert": bson.M{field: subject}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	u := &model.User{}
	err = m.Users.FindOneAndUpdate(ctx, filter, update, opts).Decode(u)
	if mongo.IsDuplicateKeyError(err) {
		// lost the upsert race, the winner's document is there now
		return m.findUser(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("find or create %s user: %w", provider, err)
	}
	return u, nil
}

func (m *Mongo) CreatePost(ctx context.Context, p *model.Post) error {
	p.ID = primitive.ObjectID{}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now().UTC()
	}
	res, err := m.Posts.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *Mongo) PostsByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := m.Posts.Find(ctx, bson.M{"userid": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	posts := []model.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (m *Mongo) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	u := &model.User{}
	err := m.Users.FindOne(ctx, filter).Decode(u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
