package cart

import (
	"context"
	"sync"
)

// MemoryRegistry is the process-local registry. Carts vanish on restart.
type MemoryRegistry struct {
	mu    sync.Mutex
	carts map[string]*userCart
}

type userCart struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{carts: make(map[string]*userCart)}
}

// cart returns the user's cart, creating it when create is set. Carts are never
// removed from the map, so a pointer handed out here stays the only one for the user.
func (r *MemoryRegistry) cart(userID string, create bool) *userCart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok && create {
		c = &userCart{}
		r.carts[userID] = c
	}
	return c
}

func (r *MemoryRegistry) Get(_ context.Context, userID string) ([]Entry, error) {
	c := r.cart(userID, false)
	if c == nil {
		return []Entry{}, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.entries), nil
}

func (r *MemoryRegistry) Add(_ context.Context, userID, productID string, quantity int) ([]Entry, error) {
	if err := validateAdd(productID, quantity); err != nil {
		return nil, err
	}
	c := r.cart(userID, true)
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, err := addEntry(c.entries, productID, quantity)
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return snapshot(c.entries), nil
}

func (r *MemoryRegistry) Remove(_ context.Context, userID, productID string) ([]Entry, error) {
	c := r.cart(userID, false)
	if c == nil {
		return []Entry{}, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = removeEntry(c.entries, productID)
	return snapshot(c.entries), nil
}

func (r *MemoryRegistry) Clear(_ context.Context, userID string) error {
	c := r.cart(userID, false)
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	return nil
}

func (r *MemoryRegistry) Drain(_ context.Context, userID string, fn func([]Entry) error) error {
	c := r.cart(userID, true)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(snapshot(c.entries)); err != nil {
		return err
	}
	c.entries = nil
	return nil
}
