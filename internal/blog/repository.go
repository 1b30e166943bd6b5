package blog

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence boundary. Multi-statement mutations (post
// plus its category links) run inside a single transaction so partial writes
// are never observable.
type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)

	List(ctx context.Context, filter ListFilter) ([]*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*Post, error)

	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, in CreatePost, readTime int) (*Post, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdatePost, readTime *int) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) (*Post, error)
}
