package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	seq      int
	touchErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrDuplicateAccount
		}
	}
	r.seq++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, p ports.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	for oid, other := range r.users {
		if oid == id {
			continue
		}
		if (p.Username != nil && other.Username == *p.Username) || (p.Email != nil && other.Email == *p.Email) {
			return nil, domain.ErrDuplicateAccount
		}
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	u.UpdatedAt = p.UpdatedAt
	return cloneUser(u), nil
}

func (r *stubUserRepo) TouchLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.touchErr != nil {
		return r.touchErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	t := at
	u.LastLogin = &t
	u.UpdatedAt = at
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	mu           sync.Mutex
	products     map[string]*domain.Product
	seq          int
	incrementErr error
	increments   int
	// beforeIncrement runs ahead of every IncrementStock call.
	beforeIncrement func()
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*domain.Product)}
}

// seed stores a product with the given stock and returns its ID.
func (r *stubProductRepo) seed(stock int64) string {
	p, _ := r.Create(context.Background(), &domain.Product{Name: "widget", Category: "tools", Stock: stock})
	return p.ID
}

func (r *stubProductRepo) stock(id string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c := *p
	c.ID = fmt.Sprintf("product-%d", r.seq)
	c.CreatedAt = c.CreatedAt.Add(time.Duration(r.seq))
	r.products[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	c := *p
	return &c, nil
}

func (r *stubProductRepo) FindMany(_ context.Context, ids []string) (map[string]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			c := *p
			out[id] = &c
		}
	}
	return out, nil
}

func (r *stubProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, id string, patch ports.ProductPatch) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Supplier != nil {
		p.Supplier = *patch.Supplier
	}
	if patch.SKU != nil {
		p.SKU = *patch.SKU
	}
	p.UpdatedAt = patch.UpdatedAt
	c := *p
	return &c, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

// IncrementStock mirrors the store's atomic $inc: one locked step per call.
func (r *stubProductRepo) IncrementStock(ctx context.Context, id string, delta int64) error {
	if r.beforeIncrement != nil {
		r.beforeIncrement()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return r.incrementErr
	}
	p, ok := r.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock += delta
	r.increments++
	return nil
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

// The transaction and idempotency stubs fail on a done context, as the
// Mongo and Redis clients do.

type stubTransactionRepo struct {
	mu        sync.Mutex
	txs       map[string]*domain.Transaction
	seq       int
	createErr error
}

func newStubTransactionRepo() *stubTransactionRepo {
	return &stubTransactionRepo{txs: make(map[string]*domain.Transaction)}
}

func (r *stubTransactionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.txs)
}

func (r *stubTransactionRepo) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	c := *t
	if c.ID == "" {
		r.seq++
		c.ID = fmt.Sprintf("tx-%d", r.seq)
		c.CreatedAt = c.CreatedAt.Add(time.Duration(r.seq))
	}
	r.txs[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubTransactionRepo) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	c := *t
	return &c, nil
}

func (r *stubTransactionRepo) List(_ context.Context) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Transaction, 0, len(r.txs))
	for _, t := range r.txs {
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubTransactionRepo) Update(ctx context.Context, id string, patch ports.TransactionPatch) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	previous := *t
	updated := patch.Apply(*t)
	r.txs[id] = &updated
	return &previous, nil
}

func (r *stubTransactionRepo) Delete(ctx context.Context, id string) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	delete(r.txs, id)
	return t, nil
}

// ---------------------------------------------------------------------------
// Unit of work / idempotency
// ---------------------------------------------------------------------------

// directUnitOfWork runs fn without a store transaction, the same as the
// Mongo adapter on a standalone server.
type directUnitOfWork struct{}

func (directUnitOfWork) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubIdempotency struct {
	mu       sync.Mutex
	keys     map[string]string
	claimErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Claim(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimErr != nil {
		return false, s.claimErr
	}
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = ""
	return true, nil
}

func (s *stubIdempotency) Result(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *stubIdempotency) Complete(ctx context.Context, key, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = id
	return nil
}

func (s *stubIdempotency) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// ---------------------------------------------------------------------------
// Categories / suppliers
// ---------------------------------------------------------------------------

type stubCategoryRepo struct {
	cats map[string]*domain.Category
	seq  int
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{cats: make(map[string]*domain.Category)}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	for _, existing := range r.cats {
		if existing.Name == c.Name {
			return nil, domain.ErrCategoryExists
		}
	}
	r.seq++
	clone := *c
	clone.ID = fmt.Sprintf("cat-%d", r.seq)
	r.cats[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id string) (*domain.Category, error) {
	c, ok := r.cats[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	out := *c
	return &out, nil
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*domain.Category, error) {
	for _, c := range r.cats {
		if c.Name == name {
			out := *c
			return &out, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *stubCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(r.cats))
	for _, c := range r.cats {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, id string, p ports.CategoryPatch) (*domain.Category, error) {
	c, ok := r.cats[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	c.UpdatedAt = p.UpdatedAt
	out := *c
	return &out, nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.cats[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.cats, id)
	return nil
}

type stubSupplierRepo struct {
	sups map[string]*domain.Supplier
	seq  int
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{sups: make(map[string]*domain.Supplier)}
}

func (r *stubSupplierRepo) Create(_ context.Context, s *domain.Supplier) (*domain.Supplier, error) {
	r.seq++
	clone := *s
	clone.ID = fmt.Sprintf("sup-%d", r.seq)
	r.sups[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id string) (*domain.Supplier, error) {
	s, ok := r.sups[id]
	if !ok {
		return nil, domain.ErrSupplierNotFound
	}
	out := *s
	return &out, nil
}

func (r *stubSupplierRepo) List(_ context.Context) ([]*domain.Supplier, error) {
	out := make([]*domain.Supplier, 0, len(r.sups))
	for _, s := range r.sups {
		clone := *s
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubSupplierRepo) Update(_ context.Context, id string, p ports.SupplierPatch) (*domain.Supplier, error) {
	s, ok := r.sups[id]
	if !ok {
		return nil, domain.ErrSupplierNotFound
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	s.UpdatedAt = p.UpdatedAt
	out := *s
	return &out, nil
}

func (r *stubSupplierRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.sups[id]; !ok {
		return domain.ErrSupplierNotFound
	}
	delete(r.sups, id)
	return nil
}
