package store

import (
	"context"
	"strings"

	"sitecrew/apperr"
	"sitecrew/model"
)

func (s *Store) CreateMaterial(ctx context.Context, m *model.Material) error {
	m.SKU = strings.ToUpper(strings.TrimSpace(m.SKU))
	if m.UnitPriceCents < 0 {
		return apperr.Validationf("unit price cannot be negative")
	}
	var n int64
	if err := s.conn(ctx).Model(&model.Material{}).Where("sku = ?", m.SKU).Count(&n).Error; err != nil {
		return wrapRead("material", err)
	}
	if n > 0 {
		return apperr.Conflictf("material %s already exists", m.SKU)
	}
	m.Active = true
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return wrapWrite("material", err)
	}
	return nil
}

func (s *Store) GetMaterial(ctx context.Context, id string) (*model.Material, error) {
	var m model.Material
	if err := s.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, wrapRead("material", err)
	}
	return &m, nil
}

func (s *Store) ListMaterials(ctx context.Context, category string, includeInactive bool) ([]model.Material, error) {
	q := s.conn(ctx).Order("category, name")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var items []model.Material
	if err := q.Find(&items).Error; err != nil {
		return nil, wrapRead("materials", err)
	}
	return items, nil
}

func (s *Store) UpdateMaterial(ctx context.Context, id string, updates map[string]any) (*model.Material, error) {
	if price, ok := updates["unit_price_cents"].(int64); ok && price < 0 {
		return nil, apperr.Validationf("unit price cannot be negative")
	}
	res := s.conn(ctx).Model(&model.Material{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, wrapWrite("material", res.Error)
	}
	return s.GetMaterial(ctx, id)
}

// DeactivateMaterial hides a material from the catalog without deleting it.
func (s *Store) DeactivateMaterial(ctx context.Context, id string) error {
	_, err := s.UpdateMaterial(ctx, id, map[string]any{"active": false})
	return err
}
