package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/IngCuriel/MariamPos-sub000/internal/model"
)

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	NextSaleNumber(ctx context.Context, tx *gorm.DB) (int, error)
	// ListByShift returns the shift's sales in replay order (created_at, id).
	ListByShift(ctx context.Context, shiftID uuid.UUID) ([]model.Sale, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items.Product").Preload("Payments").First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) NextSaleNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// PostgreSQL sequence for atomic ticket numbering (created by the
	// schema patches in infra).
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('sales_number_seq')").Scan(&num).Error
	return num, err
}

func (r *saleRepo) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("shift_id = ?", shiftID).
		Order("created_at ASC, id ASC").
		Find(&sales).Error
	return sales, err
}
