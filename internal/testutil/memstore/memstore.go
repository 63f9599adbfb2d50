// Package memstore holds mutex-guarded in-memory implementations of the
// repository and event ports for tests. They honour the same contracts as the
// Postgres repositories and the Mongo event log (unique emails, guarded status
// updates, ordering).
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/core/ports"
)

// Users is an in-memory ports.UserRepository.
type Users struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]*domain.User), byEmail: make(map[string]string)}
}

func (r *Users) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return nil, domain.ErrDuplicateAccount
	}
	stored := *user
	stored.Email = email
	r.byID[stored.ID] = &stored
	r.byEmail[email] = stored.ID

	out := stored
	return &out, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

func (r *Users) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// Delete removes a principal. Used to exercise tokens whose principal is gone.
func (r *Users) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, id)
	}
}

// Orders is an in-memory ports.OrderRepository and ports.DeliveryUpdateRepository.
type Orders struct {
	mu      sync.RWMutex
	orders  map[string]*domain.Order
	updates map[string][]*domain.DeliveryUpdate
}

func NewOrders() *Orders {
	return &Orders{orders: make(map[string]*domain.Order), updates: make(map[string][]*domain.DeliveryUpdate)}
}

func (r *Orders) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *Orders) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	out := *o
	return &out, nil
}

func (r *Orders) List(_ context.Context, filter ports.ListOrdersFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.OwnerID != "" && o.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		c := *o
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Orders) CountByStatus(_ context.Context) (map[domain.OrderStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.OrderStatus]int64)
	for _, o := range r.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (r *Orders) Apply(_ context.Context, update *domain.DeliveryUpdate) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[update.OrderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if o.Status != update.FromStatus {
		return nil, domain.ErrInvalidTransition
	}
	o.Status = update.Status
	o.UpdatedAt = update.CreatedAt

	u := *update
	r.updates[update.OrderID] = append(r.updates[update.OrderID], &u)

	out := *o
	return &out, nil
}

func (r *Orders) ListByOrder(_ context.Context, orderID string) ([]*domain.DeliveryUpdate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.updates[orderID]
	out := make([]*domain.DeliveryUpdate, 0, len(src))
	for _, u := range src {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

// Events is an in-memory event sink with the read side of the Mongo event log.
type Events struct {
	mu     sync.RWMutex
	events []domain.OrderEvent
}

func NewEvents() *Events {
	return &Events{}
}

func (r *Events) Name() string { return "memory" }

func (r *Events) Publish(_ context.Context, event domain.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Events) ListByOrder(_ context.Context, orderID string) ([]domain.OrderEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.OrderEvent, 0)
	for _, e := range r.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}
