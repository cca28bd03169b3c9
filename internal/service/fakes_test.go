package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/IngCuriel/MariamPos-sub000/internal/model"
	"github.com/IngCuriel/MariamPos-sub000/internal/repository"
)

// In-memory repository fakes. DB() returns nil so runTx executes callbacks
// directly, letting the service logic run without a database.

type fakeClock struct{ t time.Time }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) next() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

// ── ShiftRepository ───────────────────────────────────────────────────────────

type fakeShiftRepo struct {
	clock     *fakeClock
	shifts    map[uuid.UUID]*model.Shift
	movements []*model.CashMovement
	// dupOnCreate simulates the partial unique index firing on insert.
	dupOnCreate bool
}

func newFakeShiftRepo(clock *fakeClock) *fakeShiftRepo {
	return &fakeShiftRepo{clock: clock, shifts: map[uuid.UUID]*model.Shift{}}
}

func (r *fakeShiftRepo) DB() *gorm.DB { return nil }

func (r *fakeShiftRepo) CreateShift(_ context.Context, _ *gorm.DB, s *model.Shift) error {
	if r.dupOnCreate {
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range r.shifts {
		if existing.Branch == s.Branch && existing.Register == s.Register && existing.Status == model.ShiftOpen {
			return gorm.ErrDuplicatedKey
		}
	}
	// Mirrors the real insert: only the generated id comes back from the
	// store; timestamps are the service's responsibility.
	s.ID = uuid.New()
	r.shifts[s.ID] = s
	return nil
}

func (r *fakeShiftRepo) NextShiftNumber(_ context.Context, _ *gorm.DB, branch string, register int) (int, error) {
	max := 0
	for _, s := range r.shifts {
		if s.Branch == branch && s.Register == register && s.Number > max {
			max = s.Number
		}
	}
	return max + 1, nil
}

func (r *fakeShiftRepo) FindShiftByID(_ context.Context, id uuid.UUID) (*model.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeShiftRepo) FindShiftByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Shift, error) {
	return r.FindShiftByID(context.Background(), id)
}

func (r *fakeShiftRepo) FindOpenShift(_ context.Context, branch string, register int) (*model.Shift, error) {
	for _, s := range r.shifts {
		if s.Branch == branch && s.Register == register && s.Status == model.ShiftOpen {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeShiftRepo) UpdateShiftTx(_ *gorm.DB, s *model.Shift) error {
	r.shifts[s.ID] = s
	return nil
}

func (r *fakeShiftRepo) ListShifts(_ context.Context, filter repository.ShiftFilter) ([]model.Shift, int64, error) {
	var out []model.Shift
	for _, s := range r.shifts {
		if filter.Branch != "" && s.Branch != filter.Branch {
			continue
		}
		if filter.Register > 0 && s.Register != filter.Register {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return out, int64(len(out)), nil
}

func (r *fakeShiftRepo) CreateCashMovementTx(_ *gorm.DB, m *model.CashMovement) error {
	m.ID = uuid.New()
	m.CreatedAt = r.clock.next()
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeShiftRepo) FindCashMovementByID(_ context.Context, id uuid.UUID) (*model.CashMovement, error) {
	for _, m := range r.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeShiftRepo) VoidCashMovementTx(_ *gorm.DB, id uuid.UUID) error {
	for _, m := range r.movements {
		if m.ID == id {
			m.Voided = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeShiftRepo) ListCashMovements(_ context.Context, shiftID uuid.UUID, includeVoided bool) ([]model.CashMovement, error) {
	var out []model.CashMovement
	for _, m := range r.movements {
		if m.ShiftID != shiftID {
			continue
		}
		if !includeVoided && m.Voided {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

// ── SaleRepository ────────────────────────────────────────────────────────────

type fakeSaleRepo struct {
	clock      *fakeClock
	sales      []*model.Sale
	nextNumber int
}

func newFakeSaleRepo(clock *fakeClock) *fakeSaleRepo {
	return &fakeSaleRepo{clock: clock}
}

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

func (r *fakeSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	s.ID = uuid.New()
	s.CreatedAt = r.clock.next()
	r.sales = append(r.sales, s)
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	for _, s := range r.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSaleRepo) NextSaleNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.nextNumber++
	return r.nextNumber, nil
}

func (r *fakeSaleRepo) ListByShift(_ context.Context, shiftID uuid.UUID) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.ShiftID == shiftID {
			out = append(out, *s)
		}
	}
	return out, nil
}

// ── CreditRepository ──────────────────────────────────────────────────────────

type fakeCreditRepo struct {
	clock    *fakeClock
	credits  map[uuid.UUID]*model.ClientCredit
	payments []*model.CreditPayment
}

func newFakeCreditRepo(clock *fakeClock) *fakeCreditRepo {
	return &fakeCreditRepo{clock: clock, credits: map[uuid.UUID]*model.ClientCredit{}}
}

func (r *fakeCreditRepo) DB() *gorm.DB { return nil }

func (r *fakeCreditRepo) CreateCreditTx(_ *gorm.DB, c *model.ClientCredit) error {
	c.ID = uuid.New()
	c.CreatedAt = r.clock.next()
	r.credits[c.ID] = c
	return nil
}

func (r *fakeCreditRepo) FindCreditByID(_ context.Context, id uuid.UUID) (*model.ClientCredit, error) {
	c, ok := r.credits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeCreditRepo) FindCreditByIDTx(_ *gorm.DB, id uuid.UUID) (*model.ClientCredit, error) {
	return r.FindCreditByID(context.Background(), id)
}

func (r *fakeCreditRepo) UpdateCreditTx(_ *gorm.DB, c *model.ClientCredit) error {
	r.credits[c.ID] = c
	return nil
}

func (r *fakeCreditRepo) ListOpenByClient(_ context.Context, clientID uuid.UUID) ([]model.ClientCredit, error) {
	var out []model.ClientCredit
	for _, c := range r.credits {
		if c.ClientID == clientID && c.Open() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCreditRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]model.ClientCredit, error) {
	var out []model.ClientCredit
	for _, c := range r.credits {
		if c.ClientID == clientID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCreditRepo) CreatePaymentTx(_ *gorm.DB, p *model.CreditPayment) error {
	p.ID = uuid.New()
	p.CreatedAt = r.clock.next()
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakeCreditRepo) ListPayments(_ context.Context, creditID uuid.UUID) ([]model.CreditPayment, error) {
	var out []model.CreditPayment
	for _, p := range r.payments {
		if p.CreditID == creditID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeCreditRepo) ListPaymentsByShift(_ context.Context, shiftID uuid.UUID) ([]model.CreditPayment, error) {
	var out []model.CreditPayment
	for _, p := range r.payments {
		if p.ShiftID == shiftID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// ── InventoryRepository ───────────────────────────────────────────────────────

type fakeInventoryRepo struct {
	clock     *fakeClock
	movements []*model.InventoryMovement
}

func newFakeInventoryRepo(clock *fakeClock) *fakeInventoryRepo {
	return &fakeInventoryRepo{clock: clock}
}

func (r *fakeInventoryRepo) DB() *gorm.DB { return nil }

func (r *fakeInventoryRepo) CreateMovementTx(_ *gorm.DB, m *model.InventoryMovement) error {
	m.ID = uuid.New()
	m.CreatedAt = r.clock.next()
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeInventoryRepo) FindMovementByID(_ context.Context, id uuid.UUID) (*model.InventoryMovement, error) {
	for _, m := range r.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInventoryRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.InventoryMovement, error) {
	var out []model.InventoryMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, *m)
		}
	}
	return out, nil
}

// ── ProductRepository ─────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uuid.UUID]*model.Product{}}
}

func (r *fakeProductRepo) DB() *gorm.DB { return nil }

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakeProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode && p.Active {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) List(_ context.Context, _, _ int) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.CurrentStock += delta
	return nil
}

func (r *fakeProductRepo) SetStockTx(_ *gorm.DB, id uuid.UUID, value int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.CurrentStock = value
	return nil
}
