package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"sitecrew/apperr"
	"sitecrew/model"
	"sitecrew/store"
)

const importFn = "import_schedule_bulk"

type ScheduleLine struct {
	Address   string   `json:"address" yaml:"address"`
	Category  string   `json:"category,omitempty" yaml:"category,omitempty"`
	StartTime string   `json:"startTime" yaml:"startTime"`
	EndTime   string   `json:"endTime" yaml:"endTime"`
	Workers   []string `json:"workers" yaml:"workers"`
}

type ImportRequest struct {
	WorkDate      string         `json:"workDate" yaml:"workDate" validate:"required"`
	ScheduleItems []ScheduleLine `json:"scheduleItems" yaml:"scheduleItems" validate:"required,min=1"`
}

// ImportResult is the envelope returned to callers whatever the outcome.
type ImportResult struct {
	Success         bool   `json:"success"`
	ScheduleID      string `json:"schedule_id,omitempty"`
	CreatedProjects *int   `json:"created_projects,omitempty"`
	CreatedWorkers  *int   `json:"created_workers,omitempty"`
	CreatedItems    *int   `json:"created_items,omitempty"`
	Message         string `json:"message,omitempty"`
	Detail          any    `json:"detail,omitempty"`
	SQLError        string `json:"sql_error,omitempty"`
}

func rejected(message string, detail any, sqlErr string) ImportResult {
	return ImportResult{Success: false, Message: message, Detail: detail, SQLError: sqlErr}
}

// ScheduleProcedure applies a whole schedule atomically. A returned error
// means the procedure could not be reached; business failures come back as
// a result with Success false.
type ScheduleProcedure interface {
	Run(ctx context.Context, req ImportRequest) (ImportResult, error)
}

// ErrorSink records workflow failures for later diagnosis.
type ErrorSink interface {
	AppendErrorLog(ctx context.Context, fn string, detail any) error
}

type ImportService struct {
	proc   ScheduleProcedure
	sink   ErrorSink
	logger *zap.Logger
}

func NewImportService(proc ScheduleProcedure, sink ErrorSink, logger *zap.Logger) *ImportService {
	return &ImportService{proc: proc, sink: sink, logger: logger}
}

// Import validates the envelope and hands the payload to the procedure.
// Validation failures return (nil, err). Rejections and transport failures
// return a populated result together with an ImportRejected or
// NetworkError, after the failure has been written to the error log.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	req.WorkDate = strings.TrimSpace(req.WorkDate)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	res, err := s.proc.Run(ctx, req)
	if err != nil {
		res = rejected("could not reach the schedule import procedure", err.Error(), "")
		s.record(ctx, req, res)
		return &res, apperr.New(apperr.Network, res.Message, err)
	}
	if !res.Success {
		if res.Message == "" {
			res.Message = "schedule import was rejected"
		}
		s.record(ctx, req, res)
		return &res, (&apperr.Error{Kind: apperr.ImportRejected, Msg: res.Message}).WithDetail(res.SQLError)
	}

	s.logger.Info("schedule imported",
		zap.String("work_date", req.WorkDate),
		zap.String("schedule_id", res.ScheduleID),
		zap.Int("lines", len(req.ScheduleItems)))
	return &res, nil
}

func (s *ImportService) record(ctx context.Context, req ImportRequest, res ImportResult) {
	s.logger.Warn("schedule import failed",
		zap.String("work_date", req.WorkDate),
		zap.String("message", res.Message),
		zap.String("sql_error", res.SQLError))

	detail := map[string]any{
		"payload": req,
		"message": res.Message,
	}
	if res.Detail != nil {
		detail["detail"] = res.Detail
	}
	if res.SQLError != "" {
		detail["sql_error"] = res.SQLError
	}
	if err := s.sink.AppendErrorLog(context.WithoutCancel(ctx), importFn, detail); err != nil {
		s.logger.Error("failed to write error log", zap.String("fn", importFn), zap.Error(err))
	}
}

// LineProblem points at one invalid schedule line.
type LineProblem struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// TxProcedure runs the import as one database transaction. Projects are
// keyed on address, workers on id or display name, and schedule items on
// (date, address, start, end), so re-running a payload creates nothing new.
type TxProcedure struct {
	store     *store.Store
	createdBy string
}

func NewTxProcedure(st *store.Store, createdBy string) *TxProcedure {
	return &TxProcedure{store: st, createdBy: createdBy}
}

type normalizedLine struct {
	address, category, start, end string
	workers                       []string
}

func (p *TxProcedure) Run(ctx context.Context, req ImportRequest) (ImportResult, error) {
	lines, problems := normalizeLines(req)
	if _, err := time.Parse(time.DateOnly, req.WorkDate); err != nil {
		problems = append([]LineProblem{{Index: -1, Field: "workDate", Message: "workDate must be YYYY-MM-DD"}}, problems...)
	}
	if len(problems) > 0 {
		msg := problems[0].Message
		if problems[0].Index >= 0 {
			msg = fmt.Sprintf("schedule item %d: %s", problems[0].Index+1, msg)
		}
		return rejected(msg, problems, ""), nil
	}

	tx, err := p.store.Begin(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("begin import transaction: %w", err)
	}
	res, err := p.apply(ctx, tx, req.WorkDate, lines)
	if err != nil {
		tx.Rollback()
		return rejected("failed to write schedule", nil, sqlErrorText(err)), nil
	}
	if err := tx.Commit(); err != nil {
		return rejected("failed to commit schedule", nil, err.Error()), nil
	}
	return res, nil
}

func (p *TxProcedure) apply(ctx context.Context, tx *store.Store, workDate string, lines []normalizedLine) (ImportResult, error) {
	sch, err := tx.FindOrCreateSchedule(ctx, workDate)
	if err != nil {
		return ImportResult{}, err
	}

	var projects, workers, items int
	for _, l := range lines {
		proj, created, err := tx.FindOrCreateProjectByAddress(ctx, l.address, p.createdBy)
		if err != nil {
			return ImportResult{}, err
		}
		if created {
			projects++
		}

		item := &model.ScheduleItem{
			ScheduleID: sch.ID,
			ProjectID:  proj.ID,
			Category:   l.category,
			StartTime:  l.start,
			EndTime:    l.end,
		}
		created, err = tx.FindOrCreateScheduleItem(ctx, item)
		if err != nil {
			return ImportResult{}, err
		}
		if created {
			items++
		}

		for _, entry := range l.workers {
			u, created, err := tx.FindOrCreateWorker(ctx, entry)
			if err != nil {
				return ImportResult{}, err
			}
			if created {
				workers++
			}
			if err := tx.LinkScheduleWorker(ctx, item.ID, u.ID); err != nil {
				return ImportResult{}, err
			}
		}
	}
	return ImportResult{
		Success:         true,
		ScheduleID:      sch.ID,
		CreatedProjects: &projects,
		CreatedWorkers:  &workers,
		CreatedItems:    &items,
	}, nil
}

func normalizeLines(req ImportRequest) ([]normalizedLine, []LineProblem) {
	var problems []LineProblem
	add := func(i int, field, format string, args ...any) {
		problems = append(problems, LineProblem{Index: i, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	lines := make([]normalizedLine, 0, len(req.ScheduleItems))
	seen := make(map[string]int, len(req.ScheduleItems))
	for i, it := range req.ScheduleItems {
		l := normalizedLine{
			address:  strings.TrimSpace(it.Address),
			category: strings.ToLower(strings.TrimSpace(it.Category)),
			start:    strings.TrimSpace(it.StartTime),
			end:      strings.TrimSpace(it.EndTime),
			workers:  uniqueIDs(it.Workers),
		}
		if l.category == "" {
			l.category = "general"
		}
		if l.address == "" {
			add(i, "address", "address is required")
		}
		if !model.ValidScheduleCategory(l.category) {
			add(i, "category", "invalid category %q", it.Category)
		}
		if _, err := ClockSpan(l.start, l.end); err != nil {
			add(i, "startTime", "%v", err)
		}
		if len(l.workers) == 0 {
			add(i, "workers", "at least one worker is required")
		}
		key := strings.ToLower(l.address) + "|" + l.start + "|" + l.end
		if first, dup := seen[key]; dup {
			add(i, "address", "duplicates schedule item %d", first+1)
		} else {
			seen[key] = i
		}
		lines = append(lines, l)
	}
	return lines, problems
}

// sqlErrorText digs out the database's own message when there is one.
func sqlErrorText(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code + ": " + pgErr.Message
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Detail != "" {
		return appErr.Detail
	}
	return err.Error()
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// FunctionProcedure calls a stored function fn(work_date text, items jsonb)
// that returns the result envelope as JSON.
type FunctionProcedure struct {
	store *store.Store
	fn    string
}

func NewFunctionProcedure(st *store.Store, fn string) (*FunctionProcedure, error) {
	if !identRe.MatchString(fn) {
		return nil, fmt.Errorf("invalid function name %q", fn)
	}
	return &FunctionProcedure{store: st, fn: fn}, nil
}

func (p *FunctionProcedure) Run(ctx context.Context, req ImportRequest) (ImportResult, error) {
	items, err := json.Marshal(req.ScheduleItems)
	if err != nil {
		return rejected("failed to encode schedule items", err.Error(), ""), nil
	}

	var raw string
	row := p.store.DB().WithContext(ctx).Raw("SELECT "+p.fn+"(?, ?)", req.WorkDate, string(items)).Row()
	if err := row.Scan(&raw); err != nil {
		return classifyProcedureError(err)
	}

	var res ImportResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return rejected("procedure returned a malformed response", raw, ""), nil
	}
	return res, nil
}

// classifyProcedureError separates errors raised by the database while the
// function ran from failures to reach it.
func classifyProcedureError(err error) (ImportResult, error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		var detail any
		if pgErr.Detail != "" {
			detail = pgErr.Detail
		}
		return rejected(pgErr.Message, detail, pgErr.Code+": "+pgErr.Message), nil
	}
	return ImportResult{}, err
}
