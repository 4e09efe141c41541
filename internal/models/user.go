package models

import "time"

// User is the local mirror of an identity-provider account. It is created and
// refreshed by the auth sync endpoint and treated as read-only everywhere else.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Email       string    `json:"email" gorm:"uniqueIndex"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	FirebaseUID string    `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCompact is the trimmed-down shape joined into posts, comments,
// notifications and conversation listings.
type UserCompact struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}
