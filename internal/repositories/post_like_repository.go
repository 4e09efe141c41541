package repositories

import (
	"errors"

	"github.com/quillspace/backend/internal/models"
	"gorm.io/gorm"
)

// ErrLikeNotFound is returned when deleting a like row that does not exist
var ErrLikeNotFound = errors.New("like not found")

// PostLikeRepository defines the interface for post like data operations
type PostLikeRepository interface {
	CreateLike(like *models.PostLike) error
	DeleteLike(postID string, userID uint) error
	HasUserLikedPost(postID string, userID uint) (bool, error)
	GetLikesByPostID(postID string) ([]models.PostLike, error)
	GetLikesCountByPostID(postID string) (int64, error)
}

// PostgresPostLikeRepository implements PostLikeRepository for PostgreSQL
type PostgresPostLikeRepository struct {
	db *gorm.DB
}

// NewPostgresPostLikeRepository creates a new PostgresPostLikeRepository
func NewPostgresPostLikeRepository(db *gorm.DB) *PostgresPostLikeRepository {
	return &PostgresPostLikeRepository{db: db}
}

// CreateLike creates a new post like in PostgreSQL
func (r *PostgresPostLikeRepository) CreateLike(like *models.PostLike) error {
	return r.db.Create(like).Error
}

// DeleteLike deletes a post like from PostgreSQL
func (r *PostgresPostLikeRepository) DeleteLike(postID string, userID uint) error {
	res := r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLikeNotFound
	}
	return nil
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *PostgresPostLikeRepository) HasUserLikedPost(postID string, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.PostLike{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetLikesByPostID retrieves all likes for a specific post
func (r *PostgresPostLikeRepository) GetLikesByPostID(postID string) ([]models.PostLike, error) {
	var likes []models.PostLike
	if err := r.db.Where("post_id = ?", postID).Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

// GetLikesCountByPostID retrieves the count of likes for a specific post
func (r *PostgresPostLikeRepository) GetLikesCountByPostID(postID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
