package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ScepterCode/Storemaster-sub000/localstore"
	"github.com/ScepterCode/Storemaster-sub000/models"
	"gorm.io/gorm"
)

// GormAdapter serves the authoritative store directly over MySQL. It is the
// deployment used when the sync service runs next to the backend database
// instead of going through the cloud API.
type GormAdapter struct {
	db *gorm.DB
}

func NewGormAdapter(db *gorm.DB) *GormAdapter {
	return &GormAdapter{db: db}
}

func (a *GormAdapter) FetchAll(ctx context.Context, kind models.EntityKind, userID string, orgID string) ([]json.RawMessage, error) {
	switch kind {
	case models.KindProduct:
		return gormFetchAll[models.Product](ctx, a.db, userID, orgID)
	case models.KindCategory:
		return gormFetchAll[models.ProductCategory](ctx, a.db, userID, orgID)
	case models.KindCustomer:
		return gormFetchAll[models.Customer](ctx, a.db, userID, orgID)
	case models.KindInvoice:
		return gormFetchAll[models.Invoice](ctx, a.db, userID, orgID)
	case models.KindTransaction:
		return gormFetchAll[models.Transaction](ctx, a.db, userID, orgID)
	}
	return nil, fmt.Errorf("unknown entity kind %q", kind)
}

func (a *GormAdapter) Create(ctx context.Context, kind models.EntityKind, record json.RawMessage, userID string) (json.RawMessage, error) {
	switch kind {
	case models.KindProduct:
		return gormCreate[models.Product](ctx, a.db, record)
	case models.KindCategory:
		return gormCreate[models.ProductCategory](ctx, a.db, record)
	case models.KindCustomer:
		return gormCreate[models.Customer](ctx, a.db, record)
	case models.KindInvoice:
		return gormCreate[models.Invoice](ctx, a.db, record)
	case models.KindTransaction:
		return gormCreate[models.Transaction](ctx, a.db, record)
	}
	return nil, fmt.Errorf("unknown entity kind %q", kind)
}

func (a *GormAdapter) Update(ctx context.Context, kind models.EntityKind, record json.RawMessage) (json.RawMessage, error) {
	switch kind {
	case models.KindProduct:
		return gormUpdate[models.Product](ctx, a.db, record)
	case models.KindCategory:
		return gormUpdate[models.ProductCategory](ctx, a.db, record)
	case models.KindCustomer:
		return gormUpdate[models.Customer](ctx, a.db, record)
	case models.KindInvoice:
		return gormUpdate[models.Invoice](ctx, a.db, record)
	case models.KindTransaction:
		return gormUpdate[models.Transaction](ctx, a.db, record)
	}
	return nil, fmt.Errorf("unknown entity kind %q", kind)
}

func (a *GormAdapter) Delete(ctx context.Context, kind models.EntityKind, id string) error {
	model, err := modelFor(kind)
	if err != nil {
		return err
	}
	return a.db.WithContext(ctx).Where("id = ?", id).Delete(model).Error
}

func (a *GormAdapter) BulkUpdate(ctx context.Context, filter BulkFilter, patch BulkPatch) (int64, error) {
	model, err := modelFor(filter.Kind)
	if err != nil {
		return 0, err
	}

	q := a.db.WithContext(ctx).Model(model).Where("user_id = ?", filter.UserId)
	if filter.OrganizationNull {
		q = q.Where("organization_id IS NULL")
	}

	updates := map[string]interface{}{}
	if patch.OrganizationId != nil {
		updates["organization_id"] = *patch.OrganizationId
	}
	if len(updates) == 0 {
		return 0, errors.New("bulk update patch is empty")
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (a *GormAdapter) FindMembership(ctx context.Context, userID string) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	err := a.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Take(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (a *GormAdapter) FindOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	err := a.db.WithContext(ctx).Where("id = ?", id).Take(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (a *GormAdapter) CreateOrganization(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	if err := a.db.WithContext(ctx).Create(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

func (a *GormAdapter) CreateMembership(ctx context.Context, member *models.OrganizationMember) (*models.OrganizationMember, error) {
	if err := a.db.WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func modelFor(kind models.EntityKind) (interface{}, error) {
	switch kind {
	case models.KindProduct:
		return &models.Product{}, nil
	case models.KindCategory:
		return &models.ProductCategory{}, nil
	case models.KindCustomer:
		return &models.Customer{}, nil
	case models.KindInvoice:
		return &models.Invoice{}, nil
	case models.KindTransaction:
		return &models.Transaction{}, nil
	}
	return nil, fmt.Errorf("unknown entity kind %q", kind)
}

func gormFetchAll[T any](ctx context.Context, db *gorm.DB, userID string, orgID string) ([]json.RawMessage, error) {
	var rows []T
	q := db.WithContext(ctx)
	if orgID != "" {
		q = q.Where("user_id = ? OR organization_id = ?", userID, orgID)
	} else {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	// Rows travel in the same wire shape the local store keeps.
	return localstore.EncodeRecords(rows)
}

func gormCreate[T any](ctx context.Context, db *gorm.DB, record json.RawMessage) (json.RawMessage, error) {
	var row T
	if err := json.Unmarshal(record, &row); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return json.Marshal(row)
}

func gormUpdate[T any](ctx context.Context, db *gorm.DB, record json.RawMessage) (json.RawMessage, error) {
	id, err := recordID(record)
	if err != nil {
		return nil, err
	}

	var existing T
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var row T
	if err := json.Unmarshal(record, &row); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, err
	}
	return json.Marshal(row)
}
