package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

var errDuplicateEmail = errors.New("duplicate email")

// テスト用のインメモリストア。
// WithinTxでスナップショットを取り、エラー時に巻き戻すことでrollbackを再現する。
type fakeStore struct {
	mu sync.Mutex

	products    map[int64]model.Product
	orders      map[int64]model.Order
	orderItems  map[int64][]model.OrderItem
	cartItems   map[int64]model.CartItem
	adjustments []model.InventoryAdjustment

	nextOrderID    int64
	nextCartItemID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:       map[int64]model.Product{},
		orders:         map[int64]model.Order{},
		orderItems:     map[int64][]model.OrderItem{},
		cartItems:      map[int64]model.CartItem{},
		nextOrderID:    1,
		nextCartItemID: 1,
	}
}

func (s *fakeStore) addProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *fakeStore) addCartItem(ci model.CartItem) model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci.ID = s.nextCartItemID
	s.nextCartItemID++
	s.cartItems[ci.ID] = ci
	return ci
}

func (s *fakeStore) stockOf(productID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Stock
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *fakeStore) snapshot() *fakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := newFakeStore()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.orderItems {
		items := make([]model.OrderItem, len(v))
		copy(items, v)
		c.orderItems[k] = items
	}
	for k, v := range s.cartItems {
		c.cartItems[k] = v
	}
	c.adjustments = append([]model.InventoryAdjustment(nil), s.adjustments...)
	c.nextOrderID = s.nextOrderID
	c.nextCartItemID = s.nextCartItemID
	return c
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.orders = snap.orders
	s.orderItems = snap.orderItems
	s.cartItems = snap.cartItems
	s.adjustments = snap.adjustments
	s.nextOrderID = snap.nextOrderID
	s.nextCartItemID = snap.nextCartItemID
}

// TransactionManager

type fakeTxManager struct {
	store *fakeStore
	txMu  sync.Mutex
}

func newFakeTxManager(store *fakeStore) *fakeTxManager {
	return &fakeTxManager{store: store}
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	//Txは直列化して、失敗時はスナップショットへ巻き戻す
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(&fakeTxRepos{store: m.store}); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeTxRepos struct {
	store *fakeStore
}

func (r *fakeTxRepos) Orders() repo.OrderRepository         { return &fakeOrderRepo{store: r.store} }
func (r *fakeTxRepos) OrderItems() repo.OrderItemRepository { return &fakeOrderItemRepo{store: r.store} }
func (r *fakeTxRepos) CartItems() repo.CartItemRepository   { return &fakeCartItemRepo{store: r.store} }
func (r *fakeTxRepos) Inventory() repo.InventoryRepository  { return &fakeInventoryRepo{store: r.store} }
func (r *fakeTxRepos) Products() repo.ProductRepository     { return &fakeProductRepo{store: r.store} }

// ProductRepository

type fakeProductRepo struct {
	store *fakeStore
}

func (f *fakeProductRepo) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var out []model.Product
	for _, p := range f.store.products {
		if !p.IsActive {
			continue
		}
		if q.Q != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Q)) {
			continue
		}
		if q.CategoryID != nil && p.CategoryID != *q.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProductRepo) ListAdmin(ctx context.Context, page int, limit int) ([]model.Product, int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var out []model.Product
	for _, p := range f.store.products {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if p.ID == 0 {
		p.ID = int64(len(f.store.products) + 1)
	}
	f.store.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, p model.Product) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if _, ok := f.store.products[p.ID]; !ok {
		return repo.ErrNotFound
	}
	f.store.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) SoftDelete(ctx context.Context, id int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if _, ok := f.store.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.store.products, id)
	return nil
}

// OrderRepository

type fakeOrderRepo struct {
	store *fakeStore
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	o, ok := f.store.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var out []model.Order
	for _, o := range f.store.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) Create(ctx context.Context, order model.Order) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	order.ID = f.store.nextOrderID
	f.store.nextOrderID++
	f.store.orders[order.ID] = order
	return order.ID, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	o, ok := f.store.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	f.store.orders[orderID] = o
	return nil
}

// OrderItemRepository

type fakeOrderItemRepo struct {
	store *fakeStore
}

func (f *fakeOrderItemRepo) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for i := range items {
		items[i].OrderID = orderID
	}
	f.store.orderItems[orderID] = append(f.store.orderItems[orderID], items...)
	return nil
}

func (f *fakeOrderItemRepo) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	items := make([]model.OrderItem, len(f.store.orderItems[orderID]))
	copy(items, f.store.orderItems[orderID])
	return items, nil
}

// CartItemRepository

type fakeCartItemRepo struct {
	store *fakeStore
}

func (f *fakeCartItemRepo) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var out []model.CartItem
	for _, ci := range f.store.cartItems {
		if ci.UserID == userID {
			out = append(out, ci)
		}
	}
	return out, nil
}

func (f *fakeCartItemRepo) FindByID(ctx context.Context, id int64) (model.CartItem, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	ci, ok := f.store.cartItems[id]
	if !ok {
		return model.CartItem{}, repo.ErrNotFound
	}
	return ci, nil
}

func (f *fakeCartItemRepo) UpsertByUserAndProduct(ctx context.Context, userID int64, productID int64, qty int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for id, ci := range f.store.cartItems {
		if ci.UserID == userID && ci.ProductID == productID {
			ci.Quantity += qty
			f.store.cartItems[id] = ci
			return nil
		}
	}

	ci := model.CartItem{
		ID:        f.store.nextCartItemID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	}
	f.store.nextCartItemID++
	f.store.cartItems[ci.ID] = ci
	return nil
}

func (f *fakeCartItemRepo) UpdateQuantity(ctx context.Context, id int64, qty int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	ci, ok := f.store.cartItems[id]
	if !ok {
		return repo.ErrNotFound
	}
	ci.Quantity = qty
	f.store.cartItems[id] = ci
	return nil
}

func (f *fakeCartItemRepo) DeleteByID(ctx context.Context, id int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if _, ok := f.store.cartItems[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.store.cartItems, id)
	return nil
}

func (f *fakeCartItemRepo) DeleteByUserAndProducts(ctx context.Context, userID int64, productIDs []int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	targets := map[int64]bool{}
	for _, id := range productIDs {
		targets[id] = true
	}
	for id, ci := range f.store.cartItems {
		if ci.UserID == userID && targets[ci.ProductID] {
			delete(f.store.cartItems, id)
		}
	}
	return nil
}

// InventoryRepository

type fakeInventoryRepo struct {
	store *fakeStore
}

func (f *fakeInventoryRepo) SetStock(ctx context.Context, productID int64, newStock int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock = newStock
	f.store.products[productID] = p
	return nil
}

// 本物と同じく「足りるときだけ減算」を1操作で行う。
func (f *fakeInventoryRepo) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[productID]
	if !ok {
		return false, nil
	}
	if p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	f.store.products[productID] = p
	return true, nil
}

func (f *fakeInventoryRepo) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock += qty
	f.store.products[productID] = p
	return nil
}

func (f *fakeInventoryRepo) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	f.store.adjustments = append(f.store.adjustments, adjustment)
	return nil
}

// UserRepository

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*model.User
	next  int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*model.User{}, next: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return errDuplicateEmail
		}
	}
	user.ID = f.next
	f.next++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

// AuditLogRepository

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Create(ctx context.Context, log model.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, log)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.AuditLog, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

// CategoryRepository

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[int64]model.Category
	next       int64
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[int64]model.Category{}, next: 1}
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Category
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) FindByID(ctx context.Context, id int64) (model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.categories[id]
	if !ok {
		return model.Category{}, repo.ErrNotFound
	}
	return c, nil
}

func (f *fakeCategoryRepo) Create(ctx context.Context, c model.Category) (model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.categories {
		if existing.Name == c.Name {
			return model.Category{}, repo.ErrDuplicateName
		}
	}
	c.ID = f.next
	f.next++
	f.categories[c.ID] = c
	return c, nil
}

// Mailer

type fakeMailer struct {
	mu    sync.Mutex
	sent  []OrderConfirmation
	tos   []string
	errOn bool
}

func (f *fakeMailer) SendOrderConfirmation(ctx context.Context, to string, conf OrderConfirmation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errOn {
		return context.DeadlineExceeded
	}
	f.sent = append(f.sent, conf)
	f.tos = append(f.tos, to)
	return nil
}
