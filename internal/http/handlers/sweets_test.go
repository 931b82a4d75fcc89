package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sugarrush/sweetshop/internal/domain/sweet"
	"github.com/sugarrush/sweetshop/internal/http/handlers"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake store implementation of the handlers.SweetsStore interface

type fakeSweetsRepo struct {
	createFn   func(ctx context.Context, req sweet.CreateSweetRequest) (sweet.Sweet, error)
	listFn     func(ctx context.Context) ([]sweet.Sweet, error)
	searchFn   func(ctx context.Context, query string) ([]sweet.Sweet, error)
	updateFn   func(ctx context.Context, id int64, req sweet.UpdateSweetRequest) (sweet.Sweet, error)
	deleteFn   func(ctx context.Context, id int64) error
	purchaseFn func(ctx context.Context, id int64) (int, error)
	restockFn  func(ctx context.Context, id int64, delta int) (int, error)
}

func (f *fakeSweetsRepo) Create(ctx context.Context, req sweet.CreateSweetRequest) (sweet.Sweet, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}

	return sweet.Sweet{}, nil
}

func (f *fakeSweetsRepo) List(ctx context.Context) ([]sweet.Sweet, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}

	return []sweet.Sweet{}, nil
}

func (f *fakeSweetsRepo) Search(ctx context.Context, query string) ([]sweet.Sweet, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, query)
	}

	return []sweet.Sweet{}, nil
}

func (f *fakeSweetsRepo) Update(ctx context.Context, id int64, req sweet.UpdateSweetRequest) (sweet.Sweet, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}

	return sweet.Sweet{}, nil
}

func (f *fakeSweetsRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

func (f *fakeSweetsRepo) Purchase(ctx context.Context, id int64) (int, error) {
	if f.purchaseFn != nil {
		return f.purchaseFn(ctx, id)
	}

	return 0, nil
}

func (f *fakeSweetsRepo) Restock(ctx context.Context, id int64, delta int) (int, error) {
	if f.restockFn != nil {
		return f.restockFn(ctx, id, delta)
	}

	return 0, nil
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func TestCreateSweetHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeSweetsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"name": "Chocolate Fudge", "category": "Fudge", "price": 3.5, "quantity": 50}`,
			repoSetUp: func(f *fakeSweetsRepo) {
				f.createFn = func(ctx context.Context, req sweet.CreateSweetRequest) (sweet.Sweet, error) {
					return sweet.Sweet{
						ID:       1,
						Name:     req.Name,
						Category: req.Category,
						Price:    *req.Price,
						Quantity: *req.Quantity,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "zero_quantity_is_valid",
			body: `{"name": "Lollipop", "category": "Hard Candy", "price": 0.5, "quantity": 0}`,
			repoSetUp: func(f *fakeSweetsRepo) {
				f.createFn = func(ctx context.Context, req sweet.CreateSweetRequest) (sweet.Sweet, error) {
					return sweet.Sweet{ID: 2, Name: req.Name, Category: req.Category, Price: *req.Price}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "negative_quantity",
			body:           `{"name": "Lollipop", "category": "Hard Candy", "price": 0.5, "quantity": -1}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "zero_price",
			body:           `{"name": "Lollipop", "category": "Hard Candy", "price": 0, "quantity": 5}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "all_violations_itemized",
			// every field wrong: all four must come back in details.fields
			body:           `{"name": "", "category": "", "price": -1, "quantity": -2}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"name": "Chocolate Fudge", "category": "Fudge", "price": 3.5, "quantity": 50}`,
			repoSetUp: func(f *fakeSweetsRepo) {
				f.createFn = func(ctx context.Context, req sweet.CreateSweetRequest) (sweet.Sweet, error) {
					return sweet.Sweet{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeSweetsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewSweetsHandler(repo, nil)

			r := setupRouter(http.MethodPost, "/api/sweets", h.CreateSweet)

			req := httptest.NewRequest(http.MethodPost, "/api/sweets", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCreateSweetHandler_ItemizesEveryViolatedField(t *testing.T) {
	h := handlers.NewSweetsHandler(&fakeSweetsRepo{}, nil)
	r := setupRouter(http.MethodPost, "/api/sweets", h.CreateSweet)

	body := `{"name": "", "category": "", "price": -1, "quantity": -2}`

	req := httptest.NewRequest(http.MethodPost, "/api/sweets", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp struct {
		Error struct {
			Details struct {
				Fields []handlers.FieldError `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v, body=%s", err, w.Body.String())
	}

	got := make(map[string]bool)

	for _, fe := range resp.Error.Details.Fields {
		got[fe.Field] = true
	}

	for _, want := range []string{"name", "category", "price", "quantity"} {
		if !got[want] {
			t.Errorf("expected a field error for %q, got %v", want, resp.Error.Details.Fields)
		}
	}
}

func TestListSweetsHandler(t *testing.T) {
	repo := &fakeSweetsRepo{
		listFn: func(ctx context.Context) ([]sweet.Sweet, error) {
			return []sweet.Sweet{
				{ID: 1, Name: "Gummy Bears", Category: "Gummies", Price: 1.5, Quantity: 100},
				{ID: 2, Name: "Lollipop", Category: "Hard Candy", Price: 0.5, Quantity: 200},
			}, nil
		},
	}

	h := handlers.NewSweetsHandler(repo, nil)
	r := setupRouter(http.MethodGet, "/api/sweets", h.ListSweets)

	req := httptest.NewRequest(http.MethodGet, "/api/sweets", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	// response is a bare array
	var out []sweet.Sweet

	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v, body=%s", err, w.Body.String())
	}

	if len(out) != 2 {
		t.Fatalf("got %d sweets, want 2", len(out))
	}

	if w.Header().Get("ETag") == "" {
		t.Errorf("expected an ETag header on list responses")
	}
}

func TestSearchSweetsHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		repoSetUp      func(*fakeSweetsRepo)
		wantStatusCode int
		wantCount      int
	}{
		{
			name: "matches_by_substring",
			url:  "/api/sweets/search?q=choc",
			repoSetUp: func(f *fakeSweetsRepo) {
				f.searchFn = func(ctx context.Context, query string) ([]sweet.Sweet, error) {
					if query != "choc" {
						return nil, errors.New("unexpected query " + query)
					}
					return []sweet.Sweet{{ID: 1, Name: "Chocolate Fudge", Category: "Fudge"}}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name:           "missing_query",
			url:            "/api/sweets/search",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "blank_query",
			url:            "/api/sweets/search?q=%20%20",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "no_matches_is_ok",
			url:  "/api/sweets/search?q=nothing",
			repoSetUp: func(f *fakeSweetsRepo) {
				f.searchFn = func(ctx context.Context, query string) ([]sweet.Sweet, error) {
					return []sweet.Sweet{}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      0,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeSweetsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewSweetsHandler(repo, nil)
			r := setupRouter(http.MethodGet, "/api/sweets/search", h.SearchSweets)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var out []sweet.Sweet

				if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
					t.Fatalf("unmarshal: %v, body=%s", err, w.Body.String())
				}

				if len(out) != tt.wantCount {
					t.Fatalf("got %d sweets, want %d", len(out), tt.wantCount)
				}
			}
		})
	}
}

func TestUpdateSweetHandler(t *testing.T) {
	validBody := `{"name": "Gummy Bears", "category": "Gummies", "price": 1.75, "quantity": 80}`

	tests := []struct {
		name           string
		url            string
		body           string
		repoSetUp      func(*fakeSweetsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/api/sweets/7",
			body: validBody,
			repoSetUp: func(f *fakeSweetsRepo) {
				f.updateFn = func(ctx context.Context, id int64, req sweet.UpdateSweetRequest) (sweet.Sweet, error) {
					if id != 7 {
						return sweet.Sweet{}, errors.New("unexpected id")
					}
					return sweet.Sweet{ID: id, Name: req.Name, Category: req.Category, Price: *req.Price, Quantity: *req.Quantity}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/api/sweets/999",
			body: validBody,
			repoSetUp: func(f *fakeSweetsRepo) {
				f.updateFn = func(ctx context.Context, id int64, req sweet.UpdateSweetRequest) (sweet.Sweet, error) {
					return sweet.Sweet{}, sweet.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "non_numeric_id",
			url:            "/api/sweets/abc",
			body:           validBody,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "validation_error",
			url:            "/api/sweets/7",
			body:           `{"name": "Gummy Bears"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeSweetsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewSweetsHandler(repo, nil)
			r := setupRouter(http.MethodPut, "/api/sweets/:id", h.UpdateSweet)

			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteSweetHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		repoSetUp      func(*fakeSweetsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/api/sweets/3",
			repoSetUp: func(f *fakeSweetsRepo) {
				f.deleteFn = func(ctx context.Context, id int64) error {
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "not_found",
			url:  "/api/sweets/3",
			repoSetUp: func(f *fakeSweetsRepo) {
				f.deleteFn = func(ctx context.Context, id int64) error {
					return sweet.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "non_numeric_id",
			url:            "/api/sweets/abc",
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeSweetsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewSweetsHandler(repo, nil)
			r := setupRouter(http.MethodDelete, "/api/sweets/:id", h.DeleteSweet)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusNoContent && w.Body.Len() != 0 {
				t.Errorf("expected empty body on delete, got %s", w.Body.String())
			}
		})
	}
}

func TestPurchaseSweetHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		repoSetUp      func(*fakeSweetsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/api/sweets/5/purchase",
			repoSetUp: func(f *fakeSweetsRepo) {
				f.purchaseFn = func(ctx context.Context, id int64) (int, error) {
					return 4, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "out_of_stock",
			url:  "/api/sweets/5/purchase",
			repoSetUp: func(f *fakeSweetsRepo) {
				f.purchaseFn = func(ctx context.Context, id int64) (int, error) {
					return 0, sweet.ErrOutOfStock
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found",
			url:  "/api/sweets/999/purchase",
			repoSetUp: func(f *fakeSweetsRepo) {
				f.purchaseFn = func(ctx context.Context, id int64) (int, error) {
					return 0, sweet.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "non_numeric_id",
			url:            "/api/sweets/abc/purchase",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/api/sweets/5/purchase",
			repoSetUp: func(f *fakeSweetsRepo) {
				f.purchaseFn = func(ctx context.Context, id int64) (int, error) {
					return 0, errors.New("db down")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeSweetsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewSweetsHandler(repo, nil)
			r := setupRouter(http.MethodPost, "/api/sweets/:id/purchase", h.PurchaseSweet)

			req := httptest.NewRequest(http.MethodPost, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRestockSweetHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		body           string
		repoSetUp      func(*fakeSweetsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/api/sweets/5/restock",
			body: `{"quantity": 10}`,
			repoSetUp: func(f *fakeSweetsRepo) {
				f.restockFn = func(ctx context.Context, id int64, delta int) (int, error) {
					if delta != 10 {
						return 0, errors.New("unexpected delta")
					}
					return 15, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "zero_delta",
			url:            "/api/sweets/5/restock",
			body:           `{"quantity": 0}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "negative_delta",
			url:            "/api/sweets/5/restock",
			body:           `{"quantity": -1}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_delta",
			url:            "/api/sweets/5/restock",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found",
			url:  "/api/sweets/999/restock",
			body: `{"quantity": 10}`,
			repoSetUp: func(f *fakeSweetsRepo) {
				f.restockFn = func(ctx context.Context, id int64, delta int) (int, error) {
					return 0, sweet.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeSweetsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewSweetsHandler(repo, nil)
			r := setupRouter(http.MethodPost, "/api/sweets/:id/restock", h.RestockSweet)

			req := httptest.NewRequest(http.MethodPost, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
