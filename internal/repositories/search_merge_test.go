package repositories

import (
	"testing"

	"github.com/quillspace/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func postWithID(id primitive.ObjectID, title string) models.Post {
	return models.Post{ID: id, Title: title}
}

func TestMergeSearchResultsTitleHitsComeFirst(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	titleHits := []models.Post{postWithID(a, "T1"), postWithID(b, "T2")}
	bodyHits := []models.Post{postWithID(b, "T2"), postWithID(c, "T3")}

	merged := MergeSearchResults(titleHits, bodyHits, 3)
	assert.Equal(t, []string{"T1", "T2", "T3"}, titles(merged))
}

func TestMergeSearchResultsDedupesByID(t *testing.T) {
	a := primitive.NewObjectID()

	merged := MergeSearchResults(
		[]models.Post{postWithID(a, "same")},
		[]models.Post{postWithID(a, "same")},
		10,
	)
	assert.Len(t, merged, 1)
}

func TestMergeSearchResultsRespectsLimit(t *testing.T) {
	titleHits := []models.Post{
		postWithID(primitive.NewObjectID(), "T1"),
		postWithID(primitive.NewObjectID(), "T2"),
	}
	bodyHits := []models.Post{
		postWithID(primitive.NewObjectID(), "B1"),
		postWithID(primitive.NewObjectID(), "B2"),
	}

	merged := MergeSearchResults(titleHits, bodyHits, 3)
	assert.Equal(t, []string{"T1", "T2", "B1"}, titles(merged))
}

func TestMergeSearchResultsEmptyInputs(t *testing.T) {
	merged := MergeSearchResults(nil, nil, 5)
	assert.Empty(t, merged)
}

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}
