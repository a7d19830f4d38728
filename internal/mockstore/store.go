// Package mockstore is a standalone store for running the marketplace
// without a database. Each collection (listings, favourites,
// notifications) lives under its own storage key and is rewritten on
// every mutation; every call waits for a simulated network latency first.
package mockstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/model"
)

// MaterialsKey is the storage key holding the serialized collection.
const MaterialsKey = "eco_market_materials"

// Default simulated latencies.
const (
	DefaultReadDelay  = 300 * time.Millisecond
	DefaultWriteDelay = 500 * time.Millisecond
)

// Store implements the material operations over a Storage.
type Store struct {
	mu         sync.Mutex
	storage    Storage
	readDelay  time.Duration
	writeDelay time.Duration
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLatency overrides the simulated read and write delays. Zero
// disables the delay.
func WithLatency(read, write time.Duration) Option {
	return func(s *Store) {
		s.readDelay = read
		s.writeDelay = write
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store over storage with the default latencies.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:    storage,
		readDelay:  DefaultReadDelay,
		writeDelay: DefaultWriteDelay,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every listing in insertion order.
func (s *Store) List(ctx context.Context) ([]Listing, error) {
	if err := wait(ctx, s.readDelay); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns one listing or an apperr.ErrNotFound error.
func (s *Store) Get(ctx context.Context, id string) (*Listing, error) {
	if err := wait(ctx, s.readDelay); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(all, id)
	if i < 0 {
		return nil, apperr.NotFound("material not found")
	}
	return &all[i], nil
}

// Create appends a listing with a fresh UUID and pending status.
func (s *Store) Create(ctx context.Context, in ListingInput) (*Listing, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := wait(ctx, s.writeDelay); err != nil {
		return nil, err
	}

	l := Listing{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Category:    in.Category,
		Description: in.Description,
		Price:       *in.Price,
		Quantity:    *in.Quantity,
		Unit:        in.Unit,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		UserID:      in.UserID,
		UserName:    in.UserName,
		DealType:    in.DealType,
		Status:      model.MaterialStatusPending,
		CreatedAt:   s.now().UTC(),
	}
	if l.Unit == "" {
		l.Unit = model.DefaultUnit
	}
	if l.DealType == "" {
		l.DealType = model.DealSell
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, append(all, l)); err != nil {
		return nil, err
	}
	return &l, nil
}

// Update applies the present patch fields and returns the new record.
func (s *Store) Update(ctx context.Context, id string, patch ListingPatch) (*Listing, error) {
	if patch.Empty() {
		return nil, apperr.ErrNoFields
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(l *Listing) { patch.apply(l) })
}

// SetStatus moves a listing to a moderation status.
func (s *Store) SetStatus(ctx context.Context, id, status string) (*Listing, error) {
	if !model.ValidMaterialStatus(status) {
		return nil, apperr.Validation("invalid status")
	}
	return s.mutate(ctx, id, func(l *Listing) { l.Status = status })
}

// Delete removes a listing and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if err := wait(ctx, s.writeDelay); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(all, id)
	if i < 0 {
		return false, nil
	}
	return true, s.save(ctx, append(all[:i], all[i+1:]...))
}

// ListByUser returns the listings of one seller.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Listing, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Listing
	for _, l := range all {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

// Search applies the same filters as the SQL repository: case-insensitive
// substring on name or description, exact category and status, price
// ascending or date descending, then offset and limit.
func (s *Store) Search(ctx context.Context, q model.MaterialQuery) ([]Listing, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(q.Query)
	var out []Listing
	for _, l := range all {
		if needle != "" &&
			!strings.Contains(strings.ToLower(l.Name), needle) &&
			!strings.Contains(strings.ToLower(l.Description), needle) {
			continue
		}
		if q.Category != "" && l.Category != q.Category {
			continue
		}
		if q.Status != "" && l.Status != q.Status {
			continue
		}
		out = append(out, l)
	}

	switch q.Sort {
	case model.SortPrice:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case model.SortDate:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) mutate(ctx context.Context, id string, fn func(*Listing)) (*Listing, error) {
	if err := wait(ctx, s.writeDelay); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(all, id)
	if i < 0 {
		return nil, apperr.NotFound("material not found")
	}
	fn(&all[i])
	now := s.now().UTC()
	all[i].UpdatedAt = &now
	if err := s.save(ctx, all); err != nil {
		return nil, err
	}
	updated := all[i]
	return &updated, nil
}

// load reads the collection, seeding it on first access. Callers hold mu.
func (s *Store) load(ctx context.Context) ([]Listing, error) {
	var all []Listing
	ok, err := s.read(ctx, MaterialsKey, "materials", &all)
	if err != nil {
		return nil, err
	}
	if !ok {
		seed := seedListings(s.now().UTC())
		if err := s.save(ctx, seed); err != nil {
			return nil, err
		}
		return seed, nil
	}
	return all, nil
}

// save replaces the whole collection. Callers hold mu.
func (s *Store) save(ctx context.Context, all []Listing) error {
	if all == nil {
		all = []Listing{}
	}
	return s.write(ctx, MaterialsKey, "materials", all)
}

// read decodes the value under key into v and reports whether the key
// existed. what names the collection in error messages.
func (s *Store) read(ctx context.Context, key, what string, v any) (bool, error) {
	raw, ok, err := s.storage.GetItem(ctx, key)
	if err != nil {
		return false, apperr.Persistence("failed to read "+what, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, apperr.Persistence("failed to decode "+what, err)
	}
	return true, nil
}

// write replaces the value under key with the JSON encoding of v.
func (s *Store) write(ctx context.Context, key, what string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperr.Persistence("failed to encode "+what, err)
	}
	if err := s.storage.SetItem(ctx, key, string(data)); err != nil {
		return apperr.Persistence("failed to write "+what, err)
	}
	return nil
}

func indexOf(all []Listing, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mock store: %w", ctx.Err())
	}
}
