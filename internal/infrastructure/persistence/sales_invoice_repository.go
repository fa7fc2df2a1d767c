package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/dyehouse/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSalesInvoiceRepository implements SalesInvoiceRepository using GORM
type GormSalesInvoiceRepository struct {
	db *gorm.DB
}

// NewGormSalesInvoiceRepository creates a new GormSalesInvoiceRepository
func NewGormSalesInvoiceRepository(db *gorm.DB) *GormSalesInvoiceRepository {
	return &GormSalesInvoiceRepository{db: db}
}

func preloadInvoiceLines(db *gorm.DB) *gorm.DB {
	byLine := func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }
	return db.Preload("Rows", byLine).Preload("Charges", byLine)
}

func invoicesToDomain(list []models.SalesInvoiceModel) []invoicing.SalesInvoice {
	out := make([]invoicing.SalesInvoice, len(list))
	for i := range list {
		out[i] = *list[i].ToDomain()
	}
	return out
}

// FindByIDForTenant loads an invoice with its rows and charges
func (r *GormSalesInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.SalesInvoice, error) {
	var model models.SalesInvoiceModel
	if err := preloadInvoiceLines(conn(ctx, r.db)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its number within a tenant
func (r *GormSalesInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*invoicing.SalesInvoice, error) {
	var model models.SalesInvoiceModel
	if err := preloadInvoiceLines(conn(ctx, r.db)).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, strings.TrimSpace(invoiceNumber)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists invoices with filtering and paging
func (r *GormSalesInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.SalesInvoice, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.SalesInvoiceModel{}).Where("tenant_id = ?", tenantID), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, SalesInvoiceSortFields, "invoice_date"))

	var list []models.SalesInvoiceModel
	if err := preloadInvoiceLines(query).Find(&list).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(list), nil
}

// CountForTenant counts invoices matching the filter
func (r *GormSalesInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.SalesInvoiceModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindOutstanding returns a customer's active invoices that still carry a
// balance, oldest first and same-day invoices in entry order. It reads the
// stored balance snapshot.
func (r *GormSalesInvoiceRepository) FindOutstanding(ctx context.Context, tenantID, customerID uuid.UUID) ([]invoicing.SalesInvoice, error) {
	var list []models.SalesInvoiceModel
	if err := preloadInvoiceLines(conn(ctx, r.db)).
		Where("tenant_id = ? AND customer_id = ? AND status = ? AND balance_amount > 0",
			tenantID, customerID, invoicing.InvoiceStatusActive).
		Order("invoice_date ASC, created_at ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(list), nil
}

// FindByIDs loads several invoices of one tenant; unknown IDs are skipped
func (r *GormSalesInvoiceRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]invoicing.SalesInvoice, error) {
	if len(ids) == 0 {
		return []invoicing.SalesInvoice{}, nil
	}
	var list []models.SalesInvoiceModel
	if err := preloadInvoiceLines(conn(ctx, r.db)).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("invoice_date ASC, created_at ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(list), nil
}

// FindByCustomerBetween lists a customer's active invoices dated in [from, to]
func (r *GormSalesInvoiceRepository) FindByCustomerBetween(ctx context.Context, tenantID, customerID uuid.UUID, from, to *time.Time) ([]invoicing.SalesInvoice, error) {
	query := conn(ctx, r.db).
		Where("tenant_id = ? AND customer_id = ? AND status = ?", tenantID, customerID, invoicing.InvoiceStatusActive)
	if from != nil {
		query = query.Where("invoice_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("invoice_date <= ?", *to)
	}

	var list []models.SalesInvoiceModel
	if err := preloadInvoiceLines(query).Order("invoice_date ASC, created_at ASC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(list), nil
}

// Save creates or updates an invoice and replaces its rows and charges
func (r *GormSalesInvoiceRepository) Save(ctx context.Context, invoice *invoicing.SalesInvoice) error {
	model := models.SalesInvoiceModelFromDomain(invoice)
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		return saveInvoiceLines(tx, model)
	})
}

// SaveWithLock saves with optimistic locking. The stored version must equal
// invoice.Version; on success the version is bumped on both sides.
func (r *GormSalesInvoiceRepository) SaveWithLock(ctx context.Context, invoice *invoicing.SalesInvoice) error {
	expected := invoice.Version
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var current int
		res := tx.Model(&models.SalesInvoiceModel{}).
			Where("tenant_id = ? AND id = ?", invoice.TenantID, invoice.ID).
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

		invoice.Version = expected + 1
		invoice.UpdatedAt = time.Now()
		model := models.SalesInvoiceModelFromDomain(invoice)

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
		return saveInvoiceLines(tx, model)
	})
	if err != nil {
		invoice.Version = expected
	}
	return err
}

// DeleteForTenant removes an invoice with its rows and charges
func (r *GormSalesInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.SalesInvoiceModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := tx.Delete(&models.SalesInvoiceRowModel{}, "invoice_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.SalesInvoiceChargeModel{}, "invoice_id = ?", id).Error
	})
}

// saveInvoiceLines drops rows and charges no longer on the invoice, then
// upserts the current ones
func saveInvoiceLines(tx *gorm.DB, model *models.SalesInvoiceModel) error {
	rowIDs := make([]uuid.UUID, len(model.Rows))
	for i, row := range model.Rows {
		rowIDs[i] = row.ID
	}
	del := tx.Where("invoice_id = ?", model.ID)
	if len(rowIDs) > 0 {
		del = del.Where("id NOT IN ?", rowIDs)
	}
	if err := del.Delete(&models.SalesInvoiceRowModel{}).Error; err != nil {
		return err
	}
	if len(model.Rows) > 0 {
		if err := tx.Save(&model.Rows).Error; err != nil {
			return err
		}
	}

	chargeIDs := make([]uuid.UUID, len(model.Charges))
	for i, charge := range model.Charges {
		chargeIDs[i] = charge.ID
	}
	del = tx.Where("invoice_id = ?", model.ID)
	if len(chargeIDs) > 0 {
		del = del.Where("id NOT IN ?", chargeIDs)
	}
	if err := del.Delete(&models.SalesInvoiceChargeModel{}).Error; err != nil {
		return err
	}
	if len(model.Charges) > 0 {
		return tx.Save(&model.Charges).Error
	}
	return nil
}

func (r *GormSalesInvoiceRepository) applyFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(invoice_number) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("invoice_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("invoice_date <= ?", *filter.ToDate)
	}
	if v, ok := filter.Filters["outstanding"]; ok && v == true {
		query = query.Where("balance_amount > 0")
	}
	return query
}

var _ invoicing.SalesInvoiceRepository = (*GormSalesInvoiceRepository)(nil)
