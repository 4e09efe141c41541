package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/quillspace/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPostNotFound is returned when a referenced post does not exist
var ErrPostNotFound = errors.New("post not found")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, cursor string, limit int64) ([]models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []string, cursor string, limit int64) ([]models.Post, error)
	ListRecent(ctx context.Context, limit int64) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
	SearchByTitle(ctx context.Context, term string, limit int64) ([]models.Post, error)
	SearchByBody(ctx context.Context, term string, limit int64) ([]models.Post, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListPosts retrieves posts newest-first. An empty cursor starts from the top;
// otherwise only posts older than the cursor's ObjectID are returned.
// ObjectIDs embed the creation timestamp, so _id order is creation order.
func (r *MongoPostRepository) ListPosts(ctx context.Context, cursor string, limit int64) ([]models.Post, error) {
	filter := bson.M{}
	if cursor != "" {
		objID, err := primitive.ObjectIDFromHex(cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor format: %w", err)
		}
		filter["_id"] = bson.M{"$lt": objID}
	}

	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "_id", Value: -1}})
	cur, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err = cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByAuthors retrieves posts by any of the given authors, newest first,
// with the same ObjectID cursor semantics as ListPosts. An empty author list
// yields an empty page rather than the whole collection.
func (r *MongoPostRepository) ListByAuthors(ctx context.Context, authorIDs []string, cursor string, limit int64) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{"author_id": bson.M{"$in": authorIDs}}
	if cursor != "" {
		objID, err := primitive.ObjectIDFromHex(cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor format: %w", err)
		}
		filter["_id"] = bson.M{"$lt": objID}
	}

	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "_id", Value: -1}})
	cur, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err = cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListRecent retrieves the newest posts without cursor filtering
func (r *MongoPostRepository) ListRecent(ctx context.Context, limit int64) ([]models.Post, error) {
	return r.ListPosts(ctx, "", limit)
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// SearchByTitle retrieves up to limit posts whose title matches term, newest first
func (r *MongoPostRepository) SearchByTitle(ctx context.Context, term string, limit int64) ([]models.Post, error) {
	return r.searchField(ctx, "title", term, limit)
}

// SearchByBody retrieves up to limit posts whose body matches term, newest first
func (r *MongoPostRepository) SearchByBody(ctx context.Context, term string, limit int64) ([]models.Post, error) {
	return r.searchField(ctx, "body", term, limit)
}

func (r *MongoPostRepository) searchField(ctx context.Context, field, term string, limit int64) ([]models.Post, error) {
	filter := bson.M{field: bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}}}
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "_id", Value: -1}})
	cur, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err = cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CountByAuthor counts the posts written by the given author
func (r *MongoPostRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"author_id": authorID})
}

// MergeSearchResults merges title-field and body-field search hits into a
// single result list. Title matches are semantically more relevant, so they
// come first in their own order; body matches follow, deduplicated by post ID,
// and the merge stops once limit unique posts are collected.
func MergeSearchResults(titleHits, bodyHits []models.Post, limit int) []models.Post {
	merged := make([]models.Post, 0, limit)
	seen := make(map[string]bool, limit)

	for _, batch := range [][]models.Post{titleHits, bodyHits} {
		for _, post := range batch {
			if len(merged) >= limit {
				return merged
			}
			id := post.ID.Hex()
			if seen[id] {
				continue
			}
			seen[id] = true
			merged = append(merged, post)
		}
	}
	return merged
}
