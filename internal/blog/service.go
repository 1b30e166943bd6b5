package blog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/inkwell-sh/inkwell/internal/events"
	"github.com/inkwell-sh/inkwell/internal/storage"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
	wordsPerMinute    = 200
)

type Service struct {
	repo      Repository
	store     storage.Storage
	publisher events.Publisher
	bucket    string
	region    string
	publicURL string
	logger    *slog.Logger
}

func NewService(repo Repository, store storage.Storage, publisher events.Publisher, bucket, region, publicURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		store:     store,
		publisher: publisher,
		bucket:    bucket,
		region:    region,
		publicURL: publicURL,
		logger:    logger,
	}
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) ListPosts(ctx context.Context, filter ListFilter) ([]*Post, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) GetPostsByAuthor(ctx context.Context, authorID string) ([]*Post, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

func (s *Service) CreatePost(ctx context.Context, in CreatePost) (*Post, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	// Friendly early conflict; the unique index catches the race.
	exists, err := s.repo.SlugExists(ctx, in.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSlugExists
	}

	if in.Author == "" {
		in.Author = "Admin"
	}
	post, err := s.repo.Create(ctx, in, estimateReadTime(in.Content))
	if err != nil {
		return nil, err
	}
	if post.Published {
		s.publishEvent(ctx, post)
	}
	return post, nil
}

func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, patch UpdatePost) (*Post, error) {
	if err := validateUpdate(patch); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var readTime *int
	if patch.Content != nil {
		rt := estimateReadTime(*patch.Content)
		readTime = &rt
	}
	post, err := s.repo.Update(ctx, id, patch, readTime)
	if err != nil {
		return nil, err
	}
	if !existing.Published && post.Published {
		s.publishEvent(ctx, post)
	}
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) (*Post, error) {
	post, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.deleteCoverImage(ctx, post)
	return post, nil
}

// deleteCoverImage is best-effort: the row is already gone, and an orphaned
// object is preferable to failing the delete.
func (s *Service) deleteCoverImage(ctx context.Context, post *Post) {
	if s.store == nil || post.ImageURL == "" {
		return
	}
	key := s.objectKey(post.ImageURL)
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("delete cover image failed",
			"post_id", post.ID, "key", key, "error", err)
	}
}

// objectKey maps a cover image URL back to its storage key. URLs pointing
// anywhere but this service's bucket (externally hosted images) yield "".
func (s *Service) objectKey(imageURL string) string {
	var prefixes []string
	if s.publicURL != "" {
		prefixes = append(prefixes, s.publicURL+"/")
	}
	if s.bucket != "" {
		prefixes = append(prefixes,
			fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region))
	}
	for _, p := range prefixes {
		if strings.HasPrefix(imageURL, p) {
			return strings.TrimPrefix(imageURL, p)
		}
	}
	return ""
}

// publishEvent is best-effort: a broker outage must not fail the mutation.
func (s *Service) publishEvent(ctx context.Context, post *Post) {
	e := events.NewPostPublished(post.ID, post.Slug, post.Title, post.AuthorID)
	if err := s.publisher.PublishPostPublished(ctx, e); err != nil {
		s.logger.Error("publish post.published event failed",
			"post_id", post.ID, "slug", post.Slug, "error", err)
	}
}

func validateCreate(in CreatePost) error {
	errs := make(map[string]string)
	if n := utf8.RuneCountInString(in.Title); n < 1 || n > maxTitleLen {
		errs["title"] = "must be 1-200 characters"
	}
	if in.Slug == "" {
		errs["slug"] = "required"
	}
	if in.Content == "" {
		errs["content"] = "required"
	}
	if in.AuthorID == "" {
		errs["author_id"] = "required"
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		errs["description"] = "must be at most 500 characters"
	}
	if msg, ok := checkImageURL(in.ImageURL); !ok {
		errs["image_url"] = msg
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// validateUpdate checks only the fields the patch carries. An empty patch is
// fine: it still bumps updated_at, like the upstream behavior it mirrors.
func validateUpdate(patch UpdatePost) error {
	errs := make(map[string]string)
	if patch.Title != nil {
		if n := utf8.RuneCountInString(*patch.Title); n < 1 || n > maxTitleLen {
			errs["title"] = "must be 1-200 characters"
		}
	}
	if patch.Slug != nil && *patch.Slug == "" {
		errs["slug"] = "must not be empty"
	}
	if patch.Content != nil && *patch.Content == "" {
		errs["content"] = "must not be empty"
	}
	if patch.Description != nil && utf8.RuneCountInString(*patch.Description) > maxDescriptionLen {
		errs["description"] = "must be at most 500 characters"
	}
	if patch.ImageURL != nil {
		if msg, ok := checkImageURL(*patch.ImageURL); !ok {
			errs["image_url"] = msg
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func checkImageURL(raw string) (string, bool) {
	if raw == "" {
		return "", true
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "must be an absolute URL", false
	}
	return "", true
}

func estimateReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
