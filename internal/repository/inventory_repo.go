package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/IngCuriel/MariamPos-sub000/internal/model"
)

// forUpdate is the row lock used when a read-modify-append sequence must
// serialize against concurrent writers.
func forUpdate() clause.Locking { return clause.Locking{Strength: "UPDATE"} }

type InventoryRepository interface {
	CreateMovementTx(tx *gorm.DB, m *model.InventoryMovement) error
	FindMovementByID(ctx context.Context, id uuid.UUID) (*model.InventoryMovement, error)
	// ListByProduct returns ALL of a product's movements in replay order
	// (created_at, id) ascending — the fold input for every balance
	// computation.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.InventoryMovement, error)
	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) CreateMovementTx(tx *gorm.DB, m *model.InventoryMovement) error {
	return tx.Create(m).Error
}

func (r *inventoryRepo) FindMovementByID(ctx context.Context, id uuid.UUID) (*model.InventoryMovement, error) {
	var m model.InventoryMovement
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *inventoryRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.InventoryMovement, error) {
	var movs []model.InventoryMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&movs).Error
	return movs, err
}
