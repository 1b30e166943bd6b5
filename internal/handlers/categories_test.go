package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/inkwell-sh/inkwell/internal/blog"
)

func TestCategoriesHandler_List(t *testing.T) {
	repo, mux := testHandlers(t)
	repo.listCategories = func(context.Context) ([]blog.Category, error) {
		return []blog.Category{
			{ID: uuid.New(), Name: "Business", Slug: "business"},
			{ID: uuid.New(), Name: "Design", Slug: "design"},
		}, nil
	}

	rec := doJSON(mux, http.MethodGet, "/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("List: status %d", rec.Code)
	}
	var cats []blog.Category
	if err := json.NewDecoder(rec.Body).Decode(&cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Business" {
		t.Errorf("got %+v", cats)
	}
}

func TestCategoriesHandler_List_Empty(t *testing.T) {
	_, mux := testHandlers(t)
	rec := doJSON(mux, http.MethodGet, "/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("List: status %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty array", body)
	}
}

func TestCategoriesHandler_List_StorageError(t *testing.T) {
	repo, mux := testHandlers(t)
	repo.listCategories = func(context.Context) ([]blog.Category, error) {
		return nil, errors.New("connection reset")
	}

	rec := doJSON(mux, http.MethodGet, "/categories", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := rec.Body.String(); strings.Contains(body, "connection reset") {
		t.Errorf("raw storage error leaked to client: %s", body)
	}
}
