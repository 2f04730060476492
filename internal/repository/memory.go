package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecomapi/internal/domain"
)

// MemoryStore объединённое in-memory хранилище и простой генератор ID.
// Используется в тестах сервисного и HTTP-слоя вместо внешней БД.
type MemoryStore struct {
	mu          sync.RWMutex
	nextUserID  int64
	nextProdID  int64
	nextOrderID int64
	usersByID   map[int64]domain.User
	prodsByID   map[int64]domain.Product
	ordersByID  map[int64]domain.Order
	// orderID -> product IDs в порядке добавления
	orderProducts map[int64][]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextUserID:    1,
		nextProdID:    1,
		nextOrderID:   1,
		usersByID:     make(map[int64]domain.User),
		prodsByID:     make(map[int64]domain.Product),
		ordersByID:    make(map[int64]domain.Order),
		orderProducts: make(map[int64][]int64),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p.ID = m.nextProdID
	m.nextProdID++
	p.CreatedAt = time.Now().UTC()
	m.prodsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.prodsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, p := range m.prodsByID {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.prodsByID[p.ID]; !ok {
		return ErrNotFound
	}
	m.prodsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.prodsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.prodsByID, id)
	return nil
}

func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	return int64(len(m.prodsByID)), nil
}

func (m *MemoryStore) AdjustStock(ctx context.Context, id int64, delta int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p, ok := m.prodsByID[id]
	if !ok {
		return ErrNotFound
	}
	if p.StockQuantity+delta < 0 {
		return ErrInsufficientStock
	}
	p.StockQuantity += delta
	m.prodsByID[id] = p
	return nil
}

// MemoryUsers репозиторий пользователей поверх общего хранилища
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (mu *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	// email уникален, как uniqueIndex в реальной схеме
	for _, other := range mu.store.usersByID {
		if other.Email == u.Email {
			return ErrDuplicateKey
		}
	}
	u.ID = mu.store.nextUserID
	mu.store.nextUserID++
	u.CreatedAt = time.Now().UTC()
	mu.store.usersByID[u.ID] = *u
	return nil
}

func (mu *MemoryUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	u, ok := mu.store.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (mu *MemoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	for _, u := range mu.store.usersByID {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (mu *MemoryUsers) List(ctx context.Context) ([]domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	out := make([]domain.User, 0, len(mu.store.usersByID))
	for _, u := range mu.store.usersByID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (mu *MemoryUsers) Update(ctx context.Context, u *domain.User) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	if _, ok := mu.store.usersByID[u.ID]; !ok {
		return ErrNotFound
	}
	for _, other := range mu.store.usersByID {
		if other.ID != u.ID && other.Email == u.Email {
			return ErrDuplicateKey
		}
	}
	mu.store.usersByID[u.ID] = *u
	return nil
}

func (mu *MemoryUsers) Delete(ctx context.Context, id int64) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	if _, ok := mu.store.usersByID[id]; !ok {
		return ErrNotFound
	}
	delete(mu.store.usersByID, id)
	return nil
}

func (mu *MemoryUsers) Count(ctx context.Context) (int64, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	return int64(len(mu.store.usersByID)), nil
}

// MemoryOrders репозиторий заказов и строк ассоциации поверх общего хранилища
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.ID = mo.store.nextOrderID
	mo.store.nextOrderID++
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	mo.store.ordersByID[o.ID] = *o
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[o.ID]; !ok {
		return ErrNotFound
	}
	mo.store.ordersByID[o.ID] = *o
	return nil
}

func (mo *MemoryOrders) Delete(ctx context.Context, id int64) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[id]; !ok {
		return ErrNotFound
	}
	delete(mo.store.ordersByID, id)
	delete(mo.store.orderProducts, id)
	return nil
}

func (mo *MemoryOrders) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for _, o := range mo.store.ordersByID {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	// новые первыми; при равных датах — по убыванию ID
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (mo *MemoryOrders) Count(ctx context.Context) (int64, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	return int64(len(mo.store.ordersByID)), nil
}

func (mo *MemoryOrders) SumTotals(ctx context.Context) (float64, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	var sum float64
	for _, o := range mo.store.ordersByID {
		sum += o.TotalAmount
	}
	return sum, nil
}

func (mo *MemoryOrders) HasProduct(ctx context.Context, orderID, productID int64) (bool, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	for _, pid := range mo.store.orderProducts[orderID] {
		if pid == productID {
			return true, nil
		}
	}
	return false, nil
}

func (mo *MemoryOrders) AttachProduct(ctx context.Context, orderID, productID int64) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	mo.store.orderProducts[orderID] = append(mo.store.orderProducts[orderID], productID)
	return nil
}

func (mo *MemoryOrders) DetachProduct(ctx context.Context, orderID, productID int64) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	ids := mo.store.orderProducts[orderID]
	for i, pid := range ids {
		if pid == productID {
			mo.store.orderProducts[orderID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (mo *MemoryOrders) ProductsOf(ctx context.Context, orderID int64) ([]domain.Product, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, pid := range mo.store.orderProducts[orderID] {
		if p, ok := mo.store.prodsByID[pid]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (mo *MemoryOrders) SumProductPrices(ctx context.Context, orderID int64) (float64, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	var sum float64
	for _, pid := range mo.store.orderProducts[orderID] {
		if p, ok := mo.store.prodsByID[pid]; ok {
			sum += p.Price
		}
	}
	return sum, nil
}

func (mo *MemoryOrders) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	var n int64
	for _, ids := range mo.store.orderProducts {
		for _, pid := range ids {
			if pid == productID {
				n++
			}
		}
	}
	return n, nil
}

// MemoryTx эмуляция границы транзакции через блокировку записи
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
