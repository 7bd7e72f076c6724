package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
	"github.com/shopspring/decimal"
)

type memStore struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	orders   map[string]*domain.Order
	users    map[string]*domain.User
	seq      []string
	failNext error
}

func newMemStore(products ...domain.Product) *memStore {
	m := &memStore{
		products: map[string]*domain.Product{},
		orders:   map[string]*domain.Order{},
		users:    map[string]*domain.User{},
	}
	for _, p := range products {
		cp := p
		m.products[p.ID] = &cp
	}
	return m
}

func (m *memStore) GetByID(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) List(_ context.Context) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), nil
}

func (m *memStore) Create(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memStore) Update(_ context.Context, id string, patch domain.ProductPatch, at time.Time) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	patch.Apply(p)
	p.UpdatedAt = at
	cp := *p
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Quantity
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// memOrders shares memStore state so order commits see the same stock.
type memOrders struct{ *memStore }

func (o memOrders) Create(_ context.Context, ord *domain.Order) error {
	m := o.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	need := map[string]int{}
	for _, it := range ord.Items {
		need[it.ProductID] += it.Quantity
	}
	for id, q := range need {
		p, ok := m.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		if p.Quantity < q {
			return &domain.InsufficientStockError{ProductID: id, ProductName: p.Name, Requested: q, Available: p.Quantity}
		}
	}
	for id, q := range need {
		m.products[id].Quantity -= q
	}
	cp := *ord
	cp.Items = append([]domain.OrderItem(nil), ord.Items...)
	m.orders[ord.ID] = &cp
	m.seq = append(m.seq, ord.ID)
	return nil
}

func (o memOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	m := o.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	ord, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *ord
	return &cp, nil
}

func (o memOrders) List(_ context.Context) ([]*domain.Order, error) {
	m := o.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Order, 0, len(m.seq))
	for i := len(m.seq) - 1; i >= 0; i-- {
		cp := *m.orders[m.seq[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (o memOrders) UpdateStatus(_ context.Context, id string, s domain.Status) error {
	m := o.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	ord, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	ord.Status = s
	return nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*domain.User{}} }

func (u *memUsers) Create(_ context.Context, usr *domain.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.users[usr.Username]; ok {
		return domain.ErrUsernameTaken
	}
	cp := *usr
	u.users[usr.Username] = &cp
	return nil
}

func (u *memUsers) GetByUsername(_ context.Context, name string) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	usr, ok := u.users[name]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *usr
	return &cp, nil
}

type memIdem struct {
	mu          sync.Mutex
	locks       map[string]bool
	values      map[string]string
	rememberErr error
}

func newMemIdem() *memIdem {
	return &memIdem{locks: map[string]bool{}, values: map[string]string{}}
}

func (i *memIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	k := scope + ":" + key
	if i.locks[k] {
		return false, nil
	}
	i.locks[k] = true
	return true, nil
}

func (i *memIdem) Release(_ context.Context, scope, key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.locks, scope+":"+key)
	return nil
}

func (i *memIdem) Remember(_ context.Context, scope, key, value string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.rememberErr != nil {
		return i.rememberErr
	}
	i.values[scope+":"+key] = value
	return nil
}

func (i *memIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	v, ok := i.values[scope+":"+key]
	return v, ok, nil
}

type memStatusCache struct {
	mu            sync.Mutex
	values        map[string]string
	reads         int
	invalidateErr error
}

func (c *memStatusCache) SetStatus(_ context.Context, id, s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = map[string]string{}
	}
	c.values[id] = s
	return nil
}

func (c *memStatusCache) GetStatus(_ context.Context, id string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	v, ok := c.values[id]
	return v, ok, nil
}

func (c *memStatusCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	delete(c.values, id)
	return nil
}

func (c *memStatusCache) get(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[id]
	return v, ok
}

type recordedEvent struct {
	name    notifier.EventName
	payload any
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Notify(_ context.Context, name notifier.EventName, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name, payload})
}

func (r *recorder) all() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent(nil), r.events...)
}

// racingOrders runs during once, after GetByID has read the order and before
// it returns, to replay a write landing inside a read.
type racingOrders struct {
	memOrders
	during func()
	once   *sync.Once
}

func (r racingOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := r.memOrders.GetByID(ctx, id)
	r.once.Do(r.during)
	return o, err
}

func product(id, name, price string, qty int) domain.Product {
	return domain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Quantity: qty, Category: "bread"}
}
