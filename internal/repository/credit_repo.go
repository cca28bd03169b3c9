package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/IngCuriel/MariamPos-sub000/internal/model"
)

type CreditRepository interface {
	CreateCreditTx(tx *gorm.DB, c *model.ClientCredit) error
	FindCreditByID(ctx context.Context, id uuid.UUID) (*model.ClientCredit, error)
	// FindCreditByIDTx re-reads inside a transaction so that a concurrent
	// payment cannot overdraw the remaining amount.
	FindCreditByIDTx(tx *gorm.DB, id uuid.UUID) (*model.ClientCredit, error)
	UpdateCreditTx(tx *gorm.DB, c *model.ClientCredit) error
	// ListOpenByClient returns PENDING and PARTIALLY_PAID credits.
	ListOpenByClient(ctx context.Context, clientID uuid.UUID) ([]model.ClientCredit, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.ClientCredit, error)

	CreatePaymentTx(tx *gorm.DB, p *model.CreditPayment) error
	ListPayments(ctx context.Context, creditID uuid.UUID) ([]model.CreditPayment, error)
	// ListPaymentsByShift feeds shift total recomputation, replay order.
	ListPaymentsByShift(ctx context.Context, shiftID uuid.UUID) ([]model.CreditPayment, error)

	DB() *gorm.DB
}

type creditRepo struct{ db *gorm.DB }

func NewCreditRepository(db *gorm.DB) CreditRepository { return &creditRepo{db: db} }

func (r *creditRepo) DB() *gorm.DB { return r.db }

func (r *creditRepo) CreateCreditTx(tx *gorm.DB, c *model.ClientCredit) error {
	return tx.Create(c).Error
}

func (r *creditRepo) FindCreditByID(ctx context.Context, id uuid.UUID) (*model.ClientCredit, error) {
	var c model.ClientCredit
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *creditRepo) FindCreditByIDTx(tx *gorm.DB, id uuid.UUID) (*model.ClientCredit, error) {
	var c model.ClientCredit
	err := tx.Clauses(forUpdate()).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *creditRepo) UpdateCreditTx(tx *gorm.DB, c *model.ClientCredit) error {
	return tx.Save(c).Error
}

func (r *creditRepo) ListOpenByClient(ctx context.Context, clientID uuid.UUID) ([]model.ClientCredit, error) {
	var credits []model.ClientCredit
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND status IN ?", clientID, []string{model.CreditPending, model.CreditPartiallyPaid}).
		Order("created_at ASC, id ASC").
		Find(&credits).Error
	return credits, err
}

func (r *creditRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.ClientCredit, error) {
	var credits []model.ClientCredit
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at ASC, id ASC").
		Find(&credits).Error
	return credits, err
}

func (r *creditRepo) CreatePaymentTx(tx *gorm.DB, p *model.CreditPayment) error {
	return tx.Create(p).Error
}

func (r *creditRepo) ListPayments(ctx context.Context, creditID uuid.UUID) ([]model.CreditPayment, error) {
	var payments []model.CreditPayment
	err := r.db.WithContext(ctx).
		Where("credit_id = ?", creditID).
		Order("created_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *creditRepo) ListPaymentsByShift(ctx context.Context, shiftID uuid.UUID) ([]model.CreditPayment, error) {
	var payments []model.CreditPayment
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("created_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}
