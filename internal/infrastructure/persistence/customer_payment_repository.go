package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/dyehouse/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerPaymentRepository implements CustomerPaymentRepository using GORM
type GormCustomerPaymentRepository struct {
	db *gorm.DB
}

// NewGormCustomerPaymentRepository creates a new GormCustomerPaymentRepository
func NewGormCustomerPaymentRepository(db *gorm.DB) *GormCustomerPaymentRepository {
	return &GormCustomerPaymentRepository{db: db}
}

func preloadPaymentDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") })
}

func paymentsToDomain(list []models.CustomerPaymentModel) []settlement.CustomerPayment {
	out := make([]settlement.CustomerPayment, len(list))
	for i := range list {
		out[i] = *list[i].ToDomain()
	}
	return out
}

// FindByIDForTenant loads a payment with its details
func (r *GormCustomerPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*settlement.CustomerPayment, error) {
	var model models.CustomerPaymentModel
	if err := preloadPaymentDetails(conn(ctx, r.db)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists payments with filtering and paging
func (r *GormCustomerPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter settlement.PaymentFilter) ([]settlement.CustomerPayment, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.CustomerPaymentModel{}).Where("tenant_id = ?", tenantID), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, CustomerPaymentSortFields, "payment_date"))

	var list []models.CustomerPaymentModel
	if err := preloadPaymentDetails(query).Find(&list).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(list), nil
}

// CountForTenant counts payments matching the filter
func (r *GormCustomerPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter settlement.PaymentFilter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.CustomerPaymentModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByCustomerBetween lists a customer's recorded payments dated in [from, to]
func (r *GormCustomerPaymentRepository) FindByCustomerBetween(ctx context.Context, tenantID, customerID uuid.UUID, from, to *time.Time) ([]settlement.CustomerPayment, error) {
	query := conn(ctx, r.db).
		Where("tenant_id = ? AND customer_id = ? AND status = ?", tenantID, customerID, settlement.PaymentStatusRecorded)
	if from != nil {
		query = query.Where("payment_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("payment_date <= ?", *to)
	}

	var list []models.CustomerPaymentModel
	if err := preloadPaymentDetails(query).Order("payment_date ASC, created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(list), nil
}

// Save creates or updates a payment and replaces its details
func (r *GormCustomerPaymentRepository) Save(ctx context.Context, payment *settlement.CustomerPayment) error {
	model := models.CustomerPaymentModelFromDomain(payment)
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		return savePaymentDetails(tx, model)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCustomerPaymentRepository) SaveWithLock(ctx context.Context, payment *settlement.CustomerPayment) error {
	expected := payment.Version
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var current int
		res := tx.Model(&models.CustomerPaymentModel{}).
			Where("tenant_id = ? AND id = ?", payment.TenantID, payment.ID).
			Select("version").
			Scan(&current)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if current != expected {
			return shared.ErrConcurrencyConflict
		}

		payment.Version = expected + 1
		payment.UpdatedAt = time.Now()
		model := models.CustomerPaymentModelFromDomain(payment)

		result := tx.Model(model).
			Where("version = ?", expected).
			Select("*").
			Omit(clause.Associations, "created_at").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return savePaymentDetails(tx, model)
	})
	if err != nil {
		payment.Version = expected
	}
	return err
}

func savePaymentDetails(tx *gorm.DB, model *models.CustomerPaymentModel) error {
	invoiceIDs := make([]uuid.UUID, len(model.Details))
	for i, d := range model.Details {
		invoiceIDs[i] = d.InvoiceID
	}
	del := tx.Where("payment_id = ?", model.ID)
	if len(invoiceIDs) > 0 {
		del = del.Where("invoice_id NOT IN ?", invoiceIDs)
	}
	if err := del.Delete(&models.CustomerPaymentDetailModel{}).Error; err != nil {
		return err
	}
	if len(model.Details) == 0 {
		return nil
	}
	return tx.Save(&model.Details).Error
}

func (r *GormCustomerPaymentRepository) applyFilter(query *gorm.DB, filter settlement.PaymentFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(reference_no) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentType != nil {
		query = query.Where("payment_type = ?", *filter.PaymentType)
	}
	if filter.FromDate != nil {
		query = query.Where("payment_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("payment_date <= ?", *filter.ToDate)
	}
	return query
}

var _ settlement.CustomerPaymentRepository = (*GormCustomerPaymentRepository)(nil)
