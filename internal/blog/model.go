package blog

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content"`
	ImageURL    string     `json:"image_url,omitempty"`
	Published   bool       `json:"published"`
	AuthorID    string     `json:"author_id"`
	Author      string     `json:"author"`
	ReadTime    int        `json:"read_time,omitempty"`
	Categories  []Category `json:"categories,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilter narrows ListPosts. AuthorID empty means all authors.
type ListFilter struct {
	AuthorID      string
	PublishedOnly bool
}

type CreatePost struct {
	Title       string
	Slug        string
	Content     string
	Description string
	ImageURL    string
	Published   bool
	AuthorID    string
	Author      string
	CategoryIDs []uuid.UUID
}

// UpdatePost is a patch: nil fields are left unchanged. CategoryIDs is a
// pointer to a slice so that "replace with nothing" (non-nil empty slice) and
// "don't touch the links" (nil) stay distinguishable.
type UpdatePost struct {
	Title       *string
	Slug        *string
	Content     *string
	Description *string
	ImageURL    *string
	Published   *bool
	CategoryIDs *[]uuid.UUID
}
