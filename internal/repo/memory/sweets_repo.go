package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sugarrush/sweetshop/internal/domain/sweet"
)

// SweetsRepo is a mutex-guarded in-memory stand-in for the postgres
// repository. The single lock plays the role of the row lock: purchase and
// restock run their read-check-write under it.
type SweetsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]sweet.Sweet
}

func NewSweetsRepo() *SweetsRepo {
	return &SweetsRepo{
		nextID: 1,
		items:  make(map[int64]sweet.Sweet),
	}
}

func (r *SweetsRepo) Create(ctx context.Context, req sweet.CreateSweetRequest) (sweet.Sweet, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	s := sweet.Sweet{
		ID:        r.nextID,
		Name:      req.Name,
		Category:  req.Category,
		Price:     *req.Price,
		Quantity:  *req.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.items[s.ID] = s

	return s, nil
}

func (r *SweetsRepo) List(ctx context.Context) ([]sweet.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sweet.Sweet, 0, len(r.items))

	for _, s := range r.items {
		out = append(out, s)
	}

	// stable order to keep tests deterministic
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *SweetsRepo) Search(ctx context.Context, query string) ([]sweet.Sweet, error) {
	q := strings.ToLower(query)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sweet.Sweet, 0)

	for _, s := range r.items {
		if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Category), q) {
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *SweetsRepo) GetByID(ctx context.Context, id int64) (sweet.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[id]

	if !ok {
		return sweet.Sweet{}, sweet.ErrNotFound
	}

	return s, nil
}

func (r *SweetsRepo) Update(ctx context.Context, id int64, req sweet.UpdateSweetRequest) (sweet.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]

	if !ok {
		return sweet.Sweet{}, sweet.ErrNotFound
	}

	s.Name = req.Name
	s.Category = req.Category
	s.Price = *req.Price
	s.Quantity = *req.Quantity
	s.UpdatedAt = time.Now().UTC()

	r.items[id] = s

	return s, nil
}

func (r *SweetsRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[id]

	if !ok {
		return sweet.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *SweetsRepo) Purchase(ctx context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]

	if !ok {
		return 0, sweet.ErrNotFound
	}

	if s.Quantity < 1 {
		return 0, sweet.ErrOutOfStock
	}

	s.Quantity--
	s.UpdatedAt = time.Now().UTC()
	r.items[id] = s

	return s.Quantity, nil
}

func (r *SweetsRepo) Restock(ctx context.Context, id int64, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]

	if !ok {
		return 0, sweet.ErrNotFound
	}

	s.Quantity += delta
	s.UpdatedAt = time.Now().UTC()
	r.items[id] = s

	return s.Quantity, nil
}
