package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
)

type testMockStorage struct {
	upload func(ctx context.Context, key string, body io.Reader, contentType string) error
	delete func(ctx context.Context, key string) error
	exists func(ctx context.Context, key string) (bool, error)
}

func (m *testMockStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	if m.upload != nil {
		return m.upload(ctx, key, body, contentType)
	}
	return nil
}

func (m *testMockStorage) Delete(ctx context.Context, key string) error {
	if m.delete != nil {
		return m.delete(ctx, key)
	}
	return nil
}

func (m *testMockStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.exists != nil {
		return m.exists(ctx, key)
	}
	return false, nil
}

func multipartImage(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="cover.png"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func uploadsMux(st *testMockStorage, publicURL string) *http.ServeMux {
	h := NewUploadsHandler(st, "covers", "us-east-1", publicURL, slog.Default())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /uploads", h.Create())
	return mux
}

func TestUploadsHandler_Create(t *testing.T) {
	var uploadedKey, uploadedType string
	var uploadedBody []byte
	st := &testMockStorage{
		upload: func(_ context.Context, key string, body io.Reader, contentType string) error {
			uploadedKey = key
			uploadedType = contentType
			uploadedBody, _ = io.ReadAll(body)
			return nil
		},
	}

	body, contentType := multipartImage(t, "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	uploadsMux(st, "").ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Create: status %d, body %s", rec.Code, rec.Body.Bytes())
	}
	if !strings.HasPrefix(uploadedKey, "images/") || !strings.HasSuffix(uploadedKey, ".png") {
		t.Errorf("key = %q", uploadedKey)
	}
	if uploadedType != "image/png" || string(uploadedBody) != "png-bytes" {
		t.Errorf("contentType = %q body = %q", uploadedType, uploadedBody)
	}

	var resp uploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "https://covers.s3.us-east-1.amazonaws.com/" + uploadedKey
	if resp.URL != want {
		t.Errorf("url = %q, want %q", resp.URL, want)
	}
}

func TestUploadsHandler_Create_PublicURLOverride(t *testing.T) {
	var uploadedKey string
	st := &testMockStorage{
		upload: func(_ context.Context, key string, _ io.Reader, _ string) error {
			uploadedKey = key
			return nil
		},
	}

	body, contentType := multipartImage(t, "image/webp", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	uploadsMux(st, "https://cdn.example.com").ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Create: status %d", rec.Code)
	}
	var resp uploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.URL != "https://cdn.example.com/"+uploadedKey {
		t.Errorf("url = %q", resp.URL)
	}
}

func TestUploadsHandler_Create_UnsupportedType(t *testing.T) {
	st := &testMockStorage{
		upload: func(context.Context, string, io.Reader, string) error {
			t.Error("upload reached for unsupported type")
			return nil
		},
	}

	body, contentType := multipartImage(t, "image/svg+xml", []byte("<svg/>"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	uploadsMux(st, "").ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUploadsHandler_Create_MissingFile(t *testing.T) {
	st := &testMockStorage{}
	req := httptest.NewRequest(http.MethodPost, "/uploads", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=none")
	rec := httptest.NewRecorder()
	uploadsMux(st, "").ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUploadsHandler_Create_StorageError(t *testing.T) {
	st := &testMockStorage{
		upload: func(context.Context, string, io.Reader, string) error {
			return errors.New("bucket gone")
		},
	}

	body, contentType := multipartImage(t, "image/jpeg", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	uploadsMux(st, "").ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "bucket gone") {
		t.Errorf("raw storage error leaked: %s", rec.Body.String())
	}
}
