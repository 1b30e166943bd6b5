package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var _ Repository = (*postgresRepository)(nil)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const postColumns = `id, title, slug, COALESCE(description, ''), content,
	COALESCE(image_url, ''), published, author_id, author,
	COALESCE(read_time, 0), created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.Content,
		&p.ImageURL, &p.Published, &p.AuthorID, &p.Author,
		&p.ReadTime, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, slug, COALESCE(description, ''), created_at
		 FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *postgresRepository) List(ctx context.Context, filter ListFilter) ([]*Post, error) {
	var (
		conds []string
		args  []any
	)
	if filter.PublishedOnly {
		conds = append(conds, "published = TRUE")
	}
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		conds = append(conds, fmt.Sprintf("author_id = $%d", len(args)))
	}
	query := `SELECT ` + postColumns + ` FROM posts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachCategories(ctx, r.db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	if err := r.attachCategories(ctx, r.db, []*Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post by id: %w", err)
	}
	if err := r.attachCategories(ctx, r.db, []*Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE author_id = $1 ORDER BY created_at DESC`,
		authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postgresRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) Create(ctx context.Context, in CreatePost, readTime int) (*Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id := uuid.New()
	row := tx.QueryRowContext(ctx,
		`INSERT INTO posts (id, title, slug, description, content, image_url,
			published, author_id, author, read_time)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9, $10)
		 RETURNING `+postColumns,
		id, in.Title, in.Slug, in.Description, in.Content, in.ImageURL,
		in.Published, in.AuthorID, in.Author, readTime)
	p, err := scanPost(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("insert post: %w", err)
	}

	if err := insertCategoryLinks(ctx, tx, id, in.CategoryIDs); err != nil {
		return nil, err
	}
	if err := r.attachCategories(ctx, tx, []*Post{p}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, patch UpdatePost, readTime *int) (*Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	sets := []string{"updated_at = now()"}
	args := []any{}
	set := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}
	if patch.Title != nil {
		set("title = $%d", *patch.Title)
	}
	if patch.Slug != nil {
		set("slug = $%d", *patch.Slug)
	}
	if patch.Content != nil {
		set("content = $%d", *patch.Content)
	}
	if patch.Description != nil {
		set("description = NULLIF($%d, '')", *patch.Description)
	}
	if patch.ImageURL != nil {
		set("image_url = NULLIF($%d, '')", *patch.ImageURL)
	}
	if patch.Published != nil {
		set("published = $%d", *patch.Published)
	}
	if readTime != nil {
		set("read_time = $%d", *readTime)
	}
	args = append(args, id)

	row := tx.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), postColumns),
		args...)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	if patch.CategoryIDs != nil {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM post_categories WHERE post_id = $1`, id); err != nil {
			return nil, fmt.Errorf("delete category links: %w", err)
		}
		if err := insertCategoryLinks(ctx, tx, id, *patch.CategoryIDs); err != nil {
			return nil, err
		}
	}
	if err := r.attachCategories(ctx, tx, []*Post{p}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (*Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Capture the row and its links before they go so the returned post
	// reflects its prior state.
	row := tx.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post for delete: %w", err)
	}
	if err := r.attachCategories(ctx, tx, []*Post{p}); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM post_categories WHERE post_id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete category links: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		// A concurrent delete won the race after our SELECT saw the row.
		return nil, ErrPostNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete: %w", err)
	}
	return p, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// attachCategories resolves category links for the given posts in one query.
func (r *postgresRepository) attachCategories(ctx context.Context, q querier, posts []*Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	byID := make(map[uuid.UUID]*Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID.String()
		byID[p.ID] = p
	}

	rows, err := q.QueryContext(ctx,
		`SELECT pc.post_id, c.id, c.name, c.slug, COALESCE(c.description, ''), c.created_at
		 FROM post_categories pc
		 JOIN categories c ON c.id = pc.category_id
		 WHERE pc.post_id = ANY($1::uuid[])
		 ORDER BY c.name ASC`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID uuid.UUID
			c      Category
		)
		if err := rows.Scan(&postID, &c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return fmt.Errorf("scan category link: %w", err)
		}
		if p, ok := byID[postID]; ok {
			p.Categories = append(p.Categories, c)
		}
	}
	return rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertCategoryLinks(ctx context.Context, tx execer, postID uuid.UUID, categoryIDs []uuid.UUID) error {
	for _, cid := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)`,
			postID, cid); err != nil {
			return fmt.Errorf("link category %s: %w", cid, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
