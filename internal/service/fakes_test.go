package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/inventory-pos/internal/model"
	"github.com/iliyamo/inventory-pos/internal/queue"
	"github.com/iliyamo/inventory-pos/internal/repository"
)

// memDB is an in-memory stand-in for the MySQL schema. Ledger
// transactions are serialized and work on copies that are swapped in on
// commit, which mirrors row locking plus rollback for these tests.
type memDB struct {
	mu   sync.Mutex
	txMu sync.Mutex

	nextID   uint64
	users    map[uint64]model.User
	products map[uint64]model.Product
	sales    map[uint64]model.Sale
	vendors  map[uint64]model.Vendor
	contacts map[uint64]model.Contact
	imports  map[uint64]model.ImportHistory

	lockOrder []uint64
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[uint64]model.User{},
		products: map[uint64]model.Product{},
		sales:    map[uint64]model.Sale{},
		vendors:  map[uint64]model.Vendor{},
		contacts: map[uint64]model.Contact{},
		imports:  map[uint64]model.ImportHistory{},
	}
}

func (db *memDB) id() uint64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) addProduct(name string, stock int, price string) model.Product {
	db.mu.Lock()
	defer db.mu.Unlock()
	p := model.Product{
		ID: db.id(), Name: name, StockQuantity: stock,
		Price: decimal.RequireFromString(price), SellingPrice: decimal.RequireFromString(price),
		ImageURL: model.DefaultProductImage, CreatedAt: time.Now(),
	}
	db.products[p.ID] = p
	return p
}

func (db *memDB) stock(id uint64) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.products[id].StockQuantity
}

func (db *memDB) saleCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.sales)
}

// users

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.users {
		if o.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.db.id()
	u.CreatedAt = time.Now()
	r.db.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r memUsers) List(context.Context) ([]model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]model.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memUsers) Update(_ context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.users[u.ID] = *u
	return nil
}

func (r memUsers) Delete(_ context.Context, id uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.users, id)
	return nil
}

func (r memUsers) EmailTaken(_ context.Context, email string, exceptID uint64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email && u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

// products

type memProducts struct {
	db         *memDB
	failUpsert string
}

func (r *memProducts) Create(_ context.Context, p *model.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p.ID = r.db.id()
	p.CreatedAt = time.Now()
	r.db.products[p.ID] = *p
	return nil
}

func (r *memProducts) GetByID(_ context.Context, id uint64) (model.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *memProducts) sorted(keep func(model.Product) bool) []model.Product {
	out := make([]model.Product, 0)
	for _, p := range r.db.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memProducts) List(context.Context) ([]model.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.sorted(func(model.Product) bool { return true }), nil
}

func (r *memProducts) ListByVendor(_ context.Context, vendorID uint64) ([]model.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.sorted(func(p model.Product) bool { return p.VendorID != nil && *p.VendorID == vendorID }), nil
}

func (r *memProducts) Recent(_ context.Context, limit int) ([]model.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := r.sorted(func(model.Product) bool { return true })
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memProducts) Count(context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.products), nil
}

func (r *memProducts) Update(_ context.Context, p *model.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.products[p.ID]
	if !ok {
		return nil
	}
	stored := *p
	stored.StockQuantity = cur.StockQuantity
	r.db.products[p.ID] = stored
	return nil
}

func (r *memProducts) SetStock(_ context.Context, id uint64, qty int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.StockQuantity = qty
	r.db.products[id] = p
	return nil
}

func (r *memProducts) Delete(_ context.Context, id uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.products, id)
	return nil
}

func (r *memProducts) NameTaken(_ context.Context, name string, exceptID uint64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.products {
		if strings.EqualFold(p.Name, name) && p.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memProducts) UpsertByName(_ context.Context, p *model.Product) (bool, error) {
	if r.failUpsert != "" && p.Name == r.failUpsert {
		return false, context.DeadlineExceeded
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, o := range r.db.products {
		if strings.EqualFold(o.Name, p.Name) {
			o.Price, o.SellingPrice, o.StockQuantity = p.Price, p.SellingPrice, p.StockQuantity
			if p.Description != nil {
				o.Description = p.Description
			}
			r.db.products[id] = o
			return false, nil
		}
	}
	p.ID = r.db.id()
	p.ImageURL = model.DefaultProductImage
	r.db.products[p.ID] = *p
	return true, nil
}

// sales (read side)

type memSales struct{ db *memDB }

func (r memSales) detail(s model.Sale) model.SaleDetail {
	d := model.SaleDetail{Sale: s}
	if u, ok := r.db.users[s.UserID]; ok {
		d.FirstName = &u.FirstName
	}
	if p, ok := r.db.products[s.ProductID]; ok {
		d.ProductName = &p.Name
		price := p.SellingPrice
		d.SellingPrice = &price
	}
	d.ComputeTotal()
	return d
}

func (r memSales) filter(keep func(model.Sale) bool) []model.SaleDetail {
	out := make([]model.SaleDetail, 0)
	for _, s := range r.db.sales {
		if keep(s) {
			out = append(out, r.detail(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memSales) List(context.Context) ([]model.SaleDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.filter(func(model.Sale) bool { return true }), nil
}

func (r memSales) GetByID(_ context.Context, id uint64) (model.SaleDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sales[id]
	if !ok {
		return model.SaleDetail{}, repository.ErrNotFound
	}
	return r.detail(s), nil
}

func (r memSales) ListByUser(_ context.Context, userID uint64) ([]model.SaleDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.filter(func(s model.Sale) bool { return s.UserID == userID }), nil
}

func (r memSales) RecentByUser(_ context.Context, userID uint64, since time.Time, limit int) ([]model.SaleDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := r.filter(func(s model.Sale) bool { return s.UserID == userID && !s.CreatedAt.Before(since) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memSales) StatsByUser(_ context.Context, userID uint64) (int, decimal.Decimal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	count, revenue := 0, decimal.Zero
	for _, d := range r.filter(func(s model.Sale) bool { return s.UserID == userID }) {
		count++
		revenue = revenue.Add(d.TotalAmount)
	}
	return count, revenue, nil
}

// ledger

type memLedger struct{ db *memDB }

func (l memLedger) InTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error {
	l.db.txMu.Lock()
	defer l.db.txMu.Unlock()

	l.db.mu.Lock()
	tx := &memTx{db: l.db, products: map[uint64]model.Product{}, sales: map[uint64]model.Sale{}}
	for k, v := range l.db.products {
		tx.products[k] = v
	}
	for k, v := range l.db.sales {
		tx.sales[k] = v
	}
	l.db.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	l.db.mu.Lock()
	defer l.db.mu.Unlock()
	l.db.products, l.db.sales = tx.products, tx.sales
	return nil
}

type memTx struct {
	db       *memDB
	products map[uint64]model.Product
	sales    map[uint64]model.Sale
}

func (t *memTx) LockProduct(_ context.Context, id uint64) (model.Product, error) {
	t.db.mu.Lock()
	t.db.lockOrder = append(t.db.lockOrder, id)
	t.db.mu.Unlock()
	p, ok := t.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (t *memTx) SetStock(_ context.Context, id uint64, qty int) error {
	if qty < 0 {
		panic("negative stock written")
	}
	p := t.products[id]
	p.StockQuantity = qty
	t.products[id] = p
	return nil
}

func (t *memTx) LockSale(_ context.Context, id uint64) (model.Sale, error) {
	s, ok := t.sales[id]
	if !ok {
		return model.Sale{}, repository.ErrNotFound
	}
	return s, nil
}

func (t *memTx) InsertSale(_ context.Context, s *model.Sale) error {
	t.db.mu.Lock()
	s.ID = t.db.id()
	t.db.mu.Unlock()
	s.CreatedAt = time.Now()
	t.sales[s.ID] = *s
	return nil
}

func (t *memTx) UpdateSale(_ context.Context, s *model.Sale) error {
	t.sales[s.ID] = *s
	return nil
}

func (t *memTx) DeleteSale(_ context.Context, id uint64) error {
	if _, ok := t.sales[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.sales, id)
	return nil
}

// vendors

type memVendors struct{ db *memDB }

func (r memVendors) Create(_ context.Context, v *model.Vendor) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v.ID = r.db.id()
	r.db.vendors[v.ID] = *v
	return nil
}

func (r memVendors) GetByID(_ context.Context, id uint64) (model.Vendor, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v, ok := r.db.vendors[id]
	if !ok {
		return model.Vendor{}, repository.ErrNotFound
	}
	return v, nil
}

func (r memVendors) List(context.Context) ([]model.Vendor, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]model.Vendor, 0)
	for _, v := range r.db.vendors {
		out = append(out, v)
	}
	return out, nil
}

func (r memVendors) Update(_ context.Context, v *model.Vendor) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.vendors[v.ID] = *v
	return nil
}

func (r memVendors) Delete(_ context.Context, id uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.vendors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.vendors, id)
	for pid, p := range r.db.products {
		if p.VendorID != nil && *p.VendorID == id {
			p.VendorID = nil
			r.db.products[pid] = p
		}
	}
	return nil
}

func (r memVendors) EmailTaken(_ context.Context, email string, exceptID uint64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, v := range r.db.vendors {
		if v.Email == email && v.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

// contacts

type memContacts struct{ db *memDB }

func (r memContacts) Create(_ context.Context, c *model.Contact) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c.ID = r.db.id()
	c.Status = model.ContactUnread
	c.CreatedAt = time.Now()
	r.db.contacts[c.ID] = *c
	return nil
}

func (r memContacts) GetByID(_ context.Context, id uint64) (model.Contact, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.contacts[id]
	if !ok {
		return model.Contact{}, repository.ErrNotFound
	}
	return c, nil
}

func (r memContacts) List(context.Context) ([]model.Contact, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]model.Contact, 0)
	for _, c := range r.db.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memContacts) update(id uint64, fn func(*model.Contact)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.contacts[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&c)
	now := time.Now()
	c.UpdatedAt = &now
	r.db.contacts[id] = c
	return nil
}

func (r memContacts) Reply(_ context.Context, id uint64, response string) error {
	return r.update(id, func(c *model.Contact) {
		c.Response = &response
		c.Status = model.ContactClosed
	})
}

func (r memContacts) SetStatus(_ context.Context, id uint64, status string) error {
	return r.update(id, func(c *model.Contact) { c.Status = status })
}

func (r memContacts) Delete(_ context.Context, id uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.contacts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.contacts, id)
	return nil
}

// import history

type memImports struct{ db *memDB }

func (r memImports) Create(_ context.Context, h *model.ImportHistory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	h.ID = r.db.id()
	h.CreatedAt = time.Now()
	r.db.imports[h.ID] = *h
	return nil
}

func (r memImports) Finish(_ context.Context, h *model.ImportHistory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	h.CompletedAt = &now
	r.db.imports[h.ID] = *h
	return nil
}

func (r memImports) GetByID(_ context.Context, id uint64) (model.ImportHistory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	h, ok := r.db.imports[id]
	if !ok {
		return model.ImportHistory{}, repository.ErrNotFound
	}
	return h, nil
}

func (r memImports) List(_ context.Context, skip, limit int) ([]model.ImportHistory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]model.ImportHistory, 0)
	for _, h := range r.db.imports {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if skip >= len(out) {
		return []model.ImportHistory{}, nil
	}
	out = out[skip:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// events

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}
