package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user profiles and discovery
type UserHandler struct {
	userRepository    repositories.UserRepository
	followRepository  repositories.FollowRepository
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	messageRepository repositories.MessageRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	messageRepo repositories.MessageRepository,
) *UserHandler {
	return &UserHandler{
		userRepository:    userRepo,
		followRepository:  followRepo,
		commentRepository: commentRepo,
		postRepository:    postRepo,
		messageRepository: messageRepo,
	}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.GET("/users/discover", h.DiscoverUsers)
	g.GET("/users/quick-search", h.QuickSearch)
	g.GET("/users/conversation-partners", h.GetConversationPartners)
	g.GET("/users/:id", h.GetUser)
}

// GetProfile returns the caller's own user record
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser retrieves a user's public profile with follow counts and the
// caller's relationship to them
func (h *UserHandler) GetUser(c echo.Context) error {
	viewer, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	followerIDs, err := h.followRepository.GetFollowerIDs(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	followingIDs, err := h.followRepository.GetFollowingIDs(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isFollowing, err := h.followRepository.IsFollowing(viewer.ID, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	postCount, err := h.postRepository.CountByAuthor(c.Request().Context(), user.FirebaseUID)
	if err != nil {
		logrus.Errorf("counting posts of user %d: %v", user.ID, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":            user.ToCompact(),
		"followers_count": len(followerIDs),
		"following_count": len(followingIDs),
		"post_count":      postCount,
		"is_following":    isFollowing,
	})
}

// DiscoveredUser is a discovery candidate annotated with the caller's
// relationship to them and their activity level.
type DiscoveredUser struct {
	models.UserCompact
	PostCount   int64 `json:"post_count"`
	IsFollowing bool  `json:"is_following"`
	IsFollower  bool  `json:"is_follower"`
	IsMutual    bool  `json:"is_mutual"`
}

// RankDiscoveredUsers orders discovery candidates: mutual connections first,
// then users who follow the caller, then users the caller follows, then
// everyone else; post count descending breaks ties within each band. The sort
// is stable so equally ranked users keep their candidate-pool order.
func RankDiscoveredUsers(users []DiscoveredUser) {
	band := func(u DiscoveredUser) int {
		switch {
		case u.IsMutual:
			return 0
		case u.IsFollower:
			return 1
		case u.IsFollowing:
			return 2
		default:
			return 3
		}
	}
	sort.SliceStable(users, func(i, j int) bool {
		bi, bj := band(users[i]), band(users[j])
		if bi != bj {
			return bi < bj
		}
		return users[i].PostCount > users[j].PostCount
	})
}

// matchesQuery reports whether a user's name or email contains term,
// case-insensitive. An empty term matches everyone.
func matchesQuery(user *models.User, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(user.Name), term) ||
		strings.Contains(strings.ToLower(user.Email), term)
}

// DiscoverUsers suggests users to connect with. The candidate pool is the
// caller's followers and following plus recent post and comment authors, minus
// the caller. An optional query of at least two characters narrows the pool by
// name or email before ranking.
func (h *UserHandler) DiscoverUsers(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = 20
	}
	term := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	if len(term) < 2 {
		term = ""
	}

	followerIDs, err := h.followRepository.GetFollowerIDs(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	followingIDs, err := h.followRepository.GetFollowingIDs(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	recentCommentAuthorIDs, err := h.commentRepository.RecentAuthorIDs(100)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Recent post authors are keyed by Firebase UID in the content store and
	// need resolving to local ids
	var recentPostAuthorIDs []uint
	recentPosts, err := h.postRepository.ListRecent(c.Request().Context(), 100)
	if err != nil {
		logrus.Errorf("listing recent posts for discovery: %v", err)
	}
	postAuthorSeen := make(map[string]bool)
	for _, post := range recentPosts {
		if postAuthorSeen[post.AuthorID] {
			continue
		}
		postAuthorSeen[post.AuthorID] = true
		if author, err := h.userRepository.GetUserByFirebaseUID(post.AuthorID); err == nil {
			recentPostAuthorIDs = append(recentPostAuthorIDs, author.ID)
		}
	}

	followerSet := make(map[uint]bool, len(followerIDs))
	for _, id := range followerIDs {
		followerSet[id] = true
	}
	followingSet := make(map[uint]bool, len(followingIDs))
	for _, id := range followingIDs {
		followingSet[id] = true
	}

	seen := map[uint]bool{user.ID: true}
	var candidateIDs []uint
	for _, pool := range [][]uint{followerIDs, followingIDs, recentPostAuthorIDs, recentCommentAuthorIDs} {
		for _, id := range pool {
			if !seen[id] {
				seen[id] = true
				candidateIDs = append(candidateIDs, id)
			}
		}
	}

	candidates, err := h.userRepository.GetUsersByIDs(candidateIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	discovered := make([]DiscoveredUser, 0, len(candidates))
	for _, candidate := range candidates {
		if !matchesQuery(&candidate, term) {
			continue
		}
		postCount, err := h.postRepository.CountByAuthor(c.Request().Context(), candidate.FirebaseUID)
		if err != nil {
			logrus.Errorf("counting posts of user %d: %v", candidate.ID, err)
		}
		d := DiscoveredUser{
			UserCompact: candidate.ToCompact(),
			PostCount:   postCount,
			IsFollowing: followingSet[candidate.ID],
			IsFollower:  followerSet[candidate.ID],
		}
		d.IsMutual = d.IsFollowing && d.IsFollower
		discovered = append(discovered, d)
	}

	RankDiscoveredUsers(discovered)
	if len(discovered) > limit {
		discovered = discovered[:limit]
	}

	return c.JSON(http.StatusOK, echo.Map{"items": discovered})
}

// QuickSearch matches the caller's followers and following by name or email
// substring, case-insensitive. Meant for the recipient picker, not global user
// search; queries under two characters return nothing.
func (h *UserHandler) QuickSearch(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	term := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	if len(term) < 2 {
		return c.JSON(http.StatusOK, echo.Map{"items": []models.UserCompact{}})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 25 {
		limit = 10
	}

	followers, err := h.followRepository.GetFollowers(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	following, err := h.followRepository.GetFollowing(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	seen := make(map[uint]bool)
	matches := []models.UserCompact{}
	for _, pool := range [][]models.User{followers, following} {
		for _, candidate := range pool {
			if seen[candidate.ID] {
				continue
			}
			seen[candidate.ID] = true
			if matchesQuery(&candidate, term) {
				matches = append(matches, candidate.ToCompact())
				if len(matches) >= limit {
					return c.JSON(http.StatusOK, echo.Map{"items": matches})
				}
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"items": matches})
}

// ConversationPartner is a user the caller has exchanged messages with,
// annotated with recency and the caller's unread count from them.
type ConversationPartner struct {
	models.UserCompact
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int64     `json:"unread_count"`
}

// GetConversationPartners lists the users the caller has messaged with, most
// recent conversation first. Recency comes from the first occurrence of each
// peer in the caller's newest-first message stream.
func (h *UserHandler) GetConversationPartners(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	messages, err := h.messageRepository.GetMessagesInvolving(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	seen := make(map[uint]bool)
	var peerIDs []uint
	lastMessageAt := make(map[uint]time.Time)
	for _, msg := range messages {
		peerID := msg.SenderID
		if peerID == user.ID {
			peerID = msg.ReceiverID
		}
		if !seen[peerID] {
			seen[peerID] = true
			peerIDs = append(peerIDs, peerID)
			lastMessageAt[peerID] = msg.CreatedAt
		}
	}

	peers, err := h.userRepository.GetUsersByIDs(peerIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	peersByID := make(map[uint]models.User, len(peers))
	for _, peer := range peers {
		peersByID[peer.ID] = peer
	}

	partners := make([]ConversationPartner, 0, len(peerIDs))
	for _, peerID := range peerIDs {
		peer, ok := peersByID[peerID]
		if !ok {
			continue
		}
		unread, err := h.messageRepository.CountUnreadFrom(peerID, user.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		partners = append(partners, ConversationPartner{
			UserCompact:   peer.ToCompact(),
			LastMessageAt: lastMessageAt[peerID],
			UnreadCount:   unread,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"items": partners})
}
