package models

// UserProfile is the profile header returned alongside a user's posts.
type UserProfile struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	PostCount int    `json:"postCount"`
}
