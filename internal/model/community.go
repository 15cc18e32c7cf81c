package model

import (
	"net/url"
	"time"
)

// DefaultAuthorName is stored on a post when the author has no display name.
const DefaultAuthorName = "Anonymous"

// Post is a community post. Author fields are a snapshot taken at creation.
type Post struct {
	ID             string     `json:"id" bson:"_id"`
	Title          string     `json:"title" bson:"title"`
	Description    string     `json:"description" bson:"description"`
	AuthorID       string     `json:"author_id" bson:"author_id"`
	AuthorName     string     `json:"author_name" bson:"author_name"`
	AuthorPhotoURL string     `json:"author_photo_url" bson:"author_photo_url"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	Likes          int        `json:"likes" bson:"likes"`
	LikedBy        []string   `json:"liked_by" bson:"liked_by"`
	Comments       int        `json:"comments" bson:"comments"`
	Tags           []string   `json:"tags" bson:"tags"`
}

// IsLikedBy reports whether userID is in the post's like set.
func (p *Post) IsLikedBy(userID string) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	cp := *p
	cp.LikedBy = append([]string(nil), p.LikedBy...)
	cp.Tags = append([]string(nil), p.Tags...)
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}

type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	PostID    string    `json:"post_id" bson:"post_id"`
	AuthorID  string    `json:"author_id" bson:"author_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// AuthorDisplay is the author identity copied onto a new post.
type AuthorDisplay struct {
	Name     string
	PhotoURL string
}

// Resolve fills in the defaults for an author without a name or photo.
func (a AuthorDisplay) Resolve() AuthorDisplay {
	if a.PhotoURL == "" {
		a.PhotoURL = DefaultAvatarURL(a.Name)
	}
	if a.Name == "" {
		a.Name = DefaultAuthorName
	}
	return a
}

// DefaultAvatarURL builds the generated avatar used when a user has no photo.
func DefaultAvatarURL(name string) string {
	if name == "" {
		name = "A"
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=0D9488&color=fff"
}

// PostUpdate carries the editable fields of a post. Nil fields are left alone.
type PostUpdate struct {
	Title       *string
	Description *string
	Tags        []string
	UpdatedAt   time.Time
}
