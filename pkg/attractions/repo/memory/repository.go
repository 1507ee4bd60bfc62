package memory

import (
	"context"
	"sync"

	"github.com/tendant/simple-attractions/pkg/attractions"
)

// Repository implements attractions.Repository using in-memory storage
type Repository struct {
	mu          sync.RWMutex
	attractions map[string]*attractions.Attraction
	order       []string // ids in creation order
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		attractions: make(map[string]*attractions.Attraction),
	}
}

func (r *Repository) ListAttractions(ctx context.Context) ([]*attractions.Attraction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*attractions.Attraction, 0, len(r.order))
	for _, id := range r.order {
		copied := *r.attractions[id]
		result = append(result, &copied)
	}
	return result, nil
}

func (r *Repository) GetAttraction(ctx context.Context, id string) (*attractions.Attraction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.attractions[id]
	if !exists {
		return nil, attractions.ErrAttractionNotFound
	}
	// Return a copy to prevent external modifications
	copied := *a
	return &copied, nil
}

func (r *Repository) CreateAttraction(ctx context.Context, attraction *attractions.Attraction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.attractions[attraction.ID]; exists {
		return attractions.ErrDuplicateID
	}

	copied := *attraction
	r.attractions[attraction.ID] = &copied
	r.order = append(r.order, attraction.ID)
	return nil
}

func (r *Repository) UpdateAttraction(ctx context.Context, id string, patch attractions.AttractionPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.attractions[id]
	if !exists {
		return false, nil
	}
	patch.Apply(a)
	return true, nil
}

func (r *Repository) DeleteAttraction(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.attractions[id]; !exists {
		return false, nil
	}
	delete(r.attractions, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}
