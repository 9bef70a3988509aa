package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadImportFile(t *testing.T) {
	tests := []struct {
		name, file, body string
	}{
		{"yaml", "day.yaml", `
workDate: "2024-07-15"
scheduleItems:
  - address: 1 Main St
    category: framing
    startTime: "09:00"
    endTime: "17:00"
    workers: [Alice, Bob]
`},
		{"json", "day.json", `{"workDate":"2024-07-15","scheduleItems":[{"address":"1 Main St","category":"framing","startTime":"09:00","endTime":"17:00","workers":["Alice","Bob"]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := readImportFile(writeFile(t, tt.file, tt.body))
			require.NoError(t, err)
			assert.Equal(t, "2024-07-15", req.WorkDate)
			require.Len(t, req.ScheduleItems, 1)
			line := req.ScheduleItems[0]
			assert.Equal(t, "1 Main St", line.Address)
			assert.Equal(t, "framing", line.Category)
			assert.Equal(t, "09:00", line.StartTime)
			assert.Equal(t, []string{"Alice", "Bob"}, line.Workers)
		})
	}
}

func TestReadImportFileErrors(t *testing.T) {
	_, err := readImportFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = readImportFile(writeFile(t, "bad.yaml", "workDate: [unterminated"))
	assert.Error(t, err)
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "scheduler", "migrate", "import"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
