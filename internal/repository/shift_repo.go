package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/IngCuriel/MariamPos-sub000/internal/model"
)

// ShiftFilter defines filters for listing shifts.
type ShiftFilter struct {
	Branch   string
	Register int
	Status   string
	Page     int
	Limit    int
}

type ShiftRepository interface {
	// CreateShift inserts a new OPEN shift. The partial unique index on
	// (branch, register) WHERE status = 'OPEN' makes the open-shift
	// check-and-create atomic across terminals; a violation surfaces as
	// gorm.ErrDuplicatedKey.
	CreateShift(ctx context.Context, tx *gorm.DB, s *model.Shift) error
	NextShiftNumber(ctx context.Context, tx *gorm.DB, branch string, register int) (int, error)
	FindShiftByID(ctx context.Context, id uuid.UUID) (*model.Shift, error)
	// FindShiftByIDTx re-reads with a row lock so concurrent folds into the
	// same shift serialize at the storage layer.
	FindShiftByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Shift, error)
	FindOpenShift(ctx context.Context, branch string, register int) (*model.Shift, error)
	UpdateShiftTx(tx *gorm.DB, s *model.Shift) error
	ListShifts(ctx context.Context, filter ShiftFilter) ([]model.Shift, int64, error)

	CreateCashMovementTx(tx *gorm.DB, m *model.CashMovement) error
	FindCashMovementByID(ctx context.Context, id uuid.UUID) (*model.CashMovement, error)
	VoidCashMovementTx(tx *gorm.DB, id uuid.UUID) error
	// ListCashMovements returns the shift's movement events in replay order
	// (created_at, id) ascending.
	ListCashMovements(ctx context.Context, shiftID uuid.UUID, includeVoided bool) ([]model.CashMovement, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type shiftRepo struct{ db *gorm.DB }

func NewShiftRepository(db *gorm.DB) ShiftRepository { return &shiftRepo{db: db} }

func (r *shiftRepo) DB() *gorm.DB { return r.db }

func (r *shiftRepo) CreateShift(ctx context.Context, tx *gorm.DB, s *model.Shift) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *shiftRepo) NextShiftNumber(ctx context.Context, tx *gorm.DB, branch string, register int) (int, error) {
	// MAX+1 scoped to the register. A concurrent open racing this read is
	// resolved by the partial unique index: one of the two inserts fails,
	// so a number is never handed out twice for committed rows.
	var num int
	err := tx.WithContext(ctx).Raw(
		"SELECT COALESCE(MAX(number), 0) + 1 FROM shifts WHERE branch = ? AND register = ?",
		branch, register,
	).Scan(&num).Error
	return num, err
}

func (r *shiftRepo) FindShiftByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shiftRepo) FindShiftByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := tx.Clauses(forUpdate()).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shiftRepo) FindOpenShift(ctx context.Context, branch string, register int) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).
		Where("branch = ? AND register = ? AND status = ?", branch, register, model.ShiftOpen).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shiftRepo) UpdateShiftTx(tx *gorm.DB, s *model.Shift) error {
	return tx.Save(s).Error
}

func (r *shiftRepo) ListShifts(ctx context.Context, filter ShiftFilter) ([]model.Shift, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Shift{})
	if filter.Branch != "" {
		q = q.Where("branch = ?", filter.Branch)
	}
	if filter.Register > 0 {
		q = q.Where("register = ?", filter.Register)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var shifts []model.Shift
	err := q.Order("opened_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&shifts).Error
	return shifts, total, err
}

func (r *shiftRepo) CreateCashMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *shiftRepo) FindCashMovementByID(ctx context.Context, id uuid.UUID) (*model.CashMovement, error) {
	var m model.CashMovement
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *shiftRepo) VoidCashMovementTx(tx *gorm.DB, id uuid.UUID) error {
	// Logical delete: the row stays in the ledger, flagged voided.
	return tx.Model(&model.CashMovement{}).Where("id = ?", id).Update("voided", true).Error
}

func (r *shiftRepo) ListCashMovements(ctx context.Context, shiftID uuid.UUID, includeVoided bool) ([]model.CashMovement, error) {
	q := r.db.WithContext(ctx).Where("shift_id = ?", shiftID)
	if !includeVoided {
		q = q.Where("voided = false")
	}
	var movs []model.CashMovement
	err := q.Order("created_at ASC, id ASC").Find(&movs).Error
	return movs, err
}
