package checkout

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DraftStore keeps checkout snapshots between requests.
type DraftStore interface {
	Load(ctx context.Context, id string) (*Snapshot, error)
	Save(ctx context.Context, id string, s *Snapshot) error
}

// Sessions runs checkout flows addressed by an opaque checkout id.
type Sessions struct {
	drafts   DraftStore
	products ProductReader
	orders   OrderWriter
	opts     []Option

	// Striped so concurrent requests on one checkout id apply in turn.
	locks [64]sync.Mutex
}

// NewSessions creates a session manager.
func NewSessions(drafts DraftStore, products ProductReader, orders OrderWriter, opts ...Option) *Sessions {
	return &Sessions{drafts: drafts, products: products, orders: orders, opts: opts}
}

// Start opens a new checkout in the Browsing state.
func (s *Sessions) Start(ctx context.Context) (FlowView, error) {
	id := uuid.NewString()
	f := NewFlow(s.products, s.orders, s.opts...)
	snap := f.Snapshot()
	if err := s.drafts.Save(ctx, id, snap); err != nil {
		return FlowView{}, err
	}
	return Render(id, snap), nil
}

// Get renders the checkout without changing it.
func (s *Sessions) Get(ctx context.Context, id string) (FlowView, error) {
	snap, err := s.drafts.Load(ctx, id)
	if err != nil {
		return FlowView{}, err
	}
	return Render(id, snap), nil
}

// Do loads the flow, applies fn and saves the result. The flow is saved
// even when fn fails, since a failed transition leaves it unchanged.
func (s *Sessions) Do(ctx context.Context, id string, fn func(*Flow) error) (FlowView, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	snap, err := s.drafts.Load(ctx, id)
	if err != nil {
		return FlowView{}, err
	}
	f := NewFlow(s.products, s.orders, s.opts...)
	f.Restore(snap)

	fnErr := fn(f)

	after := f.Snapshot()
	if err := s.drafts.Save(ctx, id, after); err != nil {
		// The order is already stored; a retry would only rewrite it.
		if fnErr == nil && after.State == Confirmed {
			log.Warn().Err(err).Str("checkout_id", id).Str("order_id", after.OrderID).Msg("Failed to save confirmed checkout draft")
			return Render(id, after), nil
		}
		return FlowView{}, err
	}
	return Render(id, after), fnErr
}

func (s *Sessions) lock(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}
