package store

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	"sitecrew/apperr"
	"sitecrew/model"
)

// AppendErrorLog writes one row to the error sink. detail is stored as JSON.
func (s *Store) AppendErrorLog(ctx context.Context, fn string, detail any) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return apperr.Persistencef(err, "failed to encode error log detail")
	}
	row := model.ErrorLog{Fn: fn, Detail: datatypes.JSON(raw)}
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return wrapWrite("error log", err)
	}
	return nil
}

func (s *Store) ListErrorLogs(ctx context.Context, fn string, limit int) ([]model.ErrorLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.conn(ctx).Order("created_at DESC").Limit(limit)
	if fn != "" {
		q = q.Where("fn = ?", fn)
	}
	var rows []model.ErrorLog
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrapRead("error logs", err)
	}
	return rows, nil
}
