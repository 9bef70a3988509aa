package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitecrew/apperr"
	"sitecrew/model"
	"sitecrew/store"
	"sitecrew/store/storetest"
)

func newImportFixture(t *testing.T) (*store.Store, *ImportService) {
	t.Helper()
	st := store.New(storetest.Open(t), store.NewCache(64, time.Minute))
	return st, NewImportService(NewTxProcedure(st, "admin"), st, zap.NewNop())
}

func errorLogs(t *testing.T, st *store.Store) []model.ErrorLog {
	t.Helper()
	logs, err := st.ListErrorLogs(context.Background(), importFn, 10)
	require.NoError(t, err)
	return logs
}

func TestImportIntoEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	st, svc := newImportFixture(t)

	req := ImportRequest{
		WorkDate: "2024-07-15",
		ScheduleItems: []ScheduleLine{
			{Address: "1 Main St", StartTime: "09:00", EndTime: "17:00", Workers: []string{"Alice"}},
		},
	}
	res, err := svc.Import(ctx, req)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.NotEmpty(t, res.ScheduleID)
	assert.GreaterOrEqual(t, *res.CreatedProjects, 1)
	assert.GreaterOrEqual(t, *res.CreatedWorkers, 1)

	sch, err := st.GetScheduleByDate(ctx, "2024-07-15")
	require.NoError(t, err)
	require.Len(t, sch.Items, 1)
	assert.Equal(t, "general", sch.Items[0].Category)
	require.Len(t, sch.Items[0].Workers, 1)

	again, err := svc.Import(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, res.ScheduleID, again.ScheduleID)
	assert.Zero(t, *again.CreatedProjects)
	assert.Zero(t, *again.CreatedWorkers)
	assert.Zero(t, *again.CreatedItems)
	assert.Empty(t, errorLogs(t, st))
}

func TestImportSharesWorkersAcrossLines(t *testing.T) {
	_, svc := newImportFixture(t)

	res, err := svc.Import(context.Background(), ImportRequest{
		WorkDate: "2024-07-16",
		ScheduleItems: []ScheduleLine{
			{Address: "1 Main St", Category: "Roofing", StartTime: "07:00", EndTime: "12:00", Workers: []string{"Alice", "Bob"}},
			{Address: "2 Oak Ave", Category: "painting", StartTime: "13:00", EndTime: "16:30", Workers: []string{"alice"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, *res.CreatedProjects)
	assert.Equal(t, 2, *res.CreatedWorkers)
	assert.Equal(t, 2, *res.CreatedItems)
}

func TestImportRejectsInvalidCategory(t *testing.T) {
	ctx := context.Background()
	st, svc := newImportFixture(t)

	res, err := svc.Import(ctx, ImportRequest{
		WorkDate: "2024-07-15",
		ScheduleItems: []ScheduleLine{
			{Address: "1 Main St", StartTime: "09:00", EndTime: "17:00", Workers: []string{"Alice"}},
			{Address: "2 Oak Ave", Category: "landscaping", StartTime: "09:00", EndTime: "17:00", Workers: []string{"Bob"}},
		},
	})
	require.NotNil(t, res)
	assert.True(t, apperr.Is(err, apperr.ImportRejected))
	assert.False(t, res.Success)
	assert.Equal(t, `schedule item 2: invalid category "landscaping"`, res.Message)

	logs := errorLogs(t, st)
	require.Len(t, logs, 1)
	var detail map[string]any
	require.NoError(t, json.Unmarshal(logs[0].Detail, &detail))
	assert.Equal(t, res.Message, detail["message"])
	assert.Contains(t, detail, "payload")

	_, err = st.GetScheduleByDate(ctx, "2024-07-15")
	assert.True(t, apperr.Is(err, apperr.NotFound))
	p, err := st.ProjectByAddress(ctx, "1 Main St")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestImportLineRules(t *testing.T) {
	tests := []struct {
		name string
		line ScheduleLine
		want string
	}{
		{"end before start", ScheduleLine{Address: "a", StartTime: "17:00", EndTime: "09:00", Workers: []string{"A"}}, "end time 09:00 must be after start time 17:00"},
		{"bad clock", ScheduleLine{Address: "a", StartTime: "9am", EndTime: "17:00", Workers: []string{"A"}}, `invalid time "9am", want HH:MM`},
		{"no workers", ScheduleLine{Address: "a", StartTime: "09:00", EndTime: "10:00", Workers: []string{" "}}, "at least one worker is required"},
		{"no address", ScheduleLine{StartTime: "09:00", EndTime: "10:00", Workers: []string{"A"}}, "address is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, problems := normalizeLines(ImportRequest{WorkDate: "2024-07-15", ScheduleItems: []ScheduleLine{tt.line}})
			require.NotEmpty(t, problems)
			assert.Equal(t, tt.want, problems[0].Message)
		})
	}

	_, problems := normalizeLines(ImportRequest{ScheduleItems: []ScheduleLine{
		{Address: "1 Main St", StartTime: "09:00", EndTime: "10:00", Workers: []string{"A"}},
		{Address: "1 main st", StartTime: "09:00", EndTime: "10:00", Workers: []string{"B"}},
	}})
	require.Len(t, problems, 1)
	assert.Equal(t, "duplicates schedule item 1", problems[0].Message)
}

func TestImportValidation(t *testing.T) {
	st, svc := newImportFixture(t)

	_, err := svc.Import(context.Background(), ImportRequest{ScheduleItems: []ScheduleLine{{Address: "x"}}})
	assert.True(t, apperr.Is(err, apperr.Validation))
	assert.ErrorContains(t, err, "workDate is required")

	_, err = svc.Import(context.Background(), ImportRequest{WorkDate: "2024-07-15", ScheduleItems: []ScheduleLine{}})
	assert.True(t, apperr.Is(err, apperr.Validation))
	assert.ErrorContains(t, err, "scheduleItems")

	assert.Empty(t, errorLogs(t, st))
}

type failingProcedure struct{ err error }

func (p failingProcedure) Run(context.Context, ImportRequest) (ImportResult, error) {
	return ImportResult{}, p.err
}

type failingSink struct{ calls int }

func (s *failingSink) AppendErrorLog(context.Context, string, any) error {
	s.calls++
	return errors.New("sink offline")
}

func TestImportTransportFailure(t *testing.T) {
	st := store.New(storetest.Open(t), nil)
	svc := NewImportService(failingProcedure{err: errors.New("dial tcp: connection refused")}, st, zap.NewNop())

	res, err := svc.Import(context.Background(), ImportRequest{WorkDate: "2024-07-15", ScheduleItems: []ScheduleLine{{Address: "x"}}})
	require.NotNil(t, res)
	assert.True(t, apperr.Is(err, apperr.Network))
	assert.False(t, res.Success)
	assert.Equal(t, "dial tcp: connection refused", res.Detail)
	assert.Len(t, errorLogs(t, st), 1)

	sink := &failingSink{}
	svc = NewImportService(failingProcedure{err: errors.New("timeout")}, sink, zap.NewNop())
	res, err = svc.Import(context.Background(), ImportRequest{WorkDate: "2024-07-15", ScheduleItems: []ScheduleLine{{Address: "x"}}})
	require.NotNil(t, res)
	assert.True(t, apperr.Is(err, apperr.Network))
	assert.Equal(t, 1, sink.calls)
}

func TestFunctionProcedureErrors(t *testing.T) {
	_, err := NewFunctionProcedure(nil, "import; DROP TABLE users")
	assert.Error(t, err)

	st := store.New(storetest.Open(t), nil)
	proc, err := NewFunctionProcedure(st, "public.import_schedule_bulk")
	require.NoError(t, err)
	_, err = proc.Run(context.Background(), ImportRequest{WorkDate: "2024-07-15"})
	assert.Error(t, err, "a missing function is not a business rejection")

	pgErr := &pgconn.PgError{Code: "23514", Message: "invalid category", Detail: "landscaping"}
	res, err := classifyProcedureError(fmt.Errorf("scan: %w", pgErr))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "invalid category", res.Message)
	assert.Equal(t, "23514: invalid category", res.SQLError)
	assert.Equal(t, "landscaping", res.Detail)
}
