package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"sitecrew/apperr"
	"sitecrew/model"
)

func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	p.Address = strings.TrimSpace(p.Address)
	if p.Status == "" {
		p.Status = model.ProjectPlanning
	}
	if !p.Status.Valid() {
		return apperr.Validationf("invalid project status %q", p.Status)
	}
	existing, err := s.ProjectByAddress(ctx, p.Address)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Conflictf("a project already exists at %s", p.Address)
	}
	if err := s.conn(ctx).Create(p).Error; err != nil {
		return wrapWrite("project", err)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	if p, ok := cacheGet[model.Project](s.readCache(), entityProject, id); ok {
		return &p, nil
	}
	var p model.Project
	if err := s.conn(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, wrapRead("project", err)
	}
	s.readCache().Set(entityProject, id, p)
	return &p, nil
}

// ProjectByAddress returns (nil, nil) when no project sits at address.
func (s *Store) ProjectByAddress(ctx context.Context, address string) (*model.Project, error) {
	var p model.Project
	err := s.conn(ctx).Where("address = ?", strings.TrimSpace(address)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapRead("project", err)
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, status model.ProjectStatus) ([]model.Project, error) {
	q := s.conn(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var projects []model.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, wrapRead("projects", err)
	}
	return projects, nil
}

// UpdateProject applies a column → value map. Callers validate the keys.
func (s *Store) UpdateProject(ctx context.Context, id string, updates map[string]any) (*model.Project, error) {
	if status, ok := updates["status"].(model.ProjectStatus); ok && !status.Valid() {
		return nil, apperr.Validationf("invalid project status %q", status)
	}
	s.invalidate(entityProject, id)

	res := s.conn(ctx).Model(&model.Project{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, wrapWrite("project", res.Error)
	}
	return s.GetProject(ctx, id)
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	defer s.invalidate(entityProject, id)

	res := s.conn(ctx).Where("id = ?", id).Delete(&model.Project{})
	if res.Error != nil {
		return wrapDelete("project", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("project not found")
	}
	return nil
}

func (s *Store) CreatePhase(ctx context.Context, ph *model.Phase) error {
	if ph.Status == "" {
		ph.Status = model.PhasePending
	}
	if !ph.Status.Valid() {
		return apperr.Validationf("invalid phase status %q", ph.Status)
	}
	if _, err := s.GetProject(ctx, ph.ProjectID); err != nil {
		return err
	}
	if ph.Position == 0 {
		var n int64
		if err := s.conn(ctx).Model(&model.Phase{}).Where("project_id = ?", ph.ProjectID).Count(&n).Error; err != nil {
			return wrapRead("phases", err)
		}
		ph.Position = int(n) + 1
	}
	if err := s.conn(ctx).Create(ph).Error; err != nil {
		return wrapWrite("phase", err)
	}
	return nil
}

func (s *Store) GetPhase(ctx context.Context, id string) (*model.Phase, error) {
	var ph model.Phase
	if err := s.conn(ctx).Where("id = ?", id).First(&ph).Error; err != nil {
		return nil, wrapRead("phase", err)
	}
	return &ph, nil
}

func (s *Store) ListPhases(ctx context.Context, projectID string) ([]model.Phase, error) {
	var phases []model.Phase
	if err := s.conn(ctx).Where("project_id = ?", projectID).Order("position").Find(&phases).Error; err != nil {
		return nil, wrapRead("phases", err)
	}
	return phases, nil
}

func (s *Store) UpdatePhase(ctx context.Context, id string, updates map[string]any) (*model.Phase, error) {
	if status, ok := updates["status"].(model.PhaseStatus); ok && !status.Valid() {
		return nil, apperr.Validationf("invalid phase status %q", status)
	}
	res := s.conn(ctx).Model(&model.Phase{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, wrapWrite("phase", res.Error)
	}
	return s.GetPhase(ctx, id)
}
