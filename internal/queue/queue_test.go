package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-reservation/internal/model"
)

func sampleOrder() *model.Order {
	return &model.Order{
		ID:        12,
		UserID:    7,
		CreatedAt: time.Date(2025, 9, 23, 8, 30, 0, 0, time.UTC),
		Tickets: []model.Ticket{
			{ID: 30, Cargo: 1, Seat: 4, JourneyID: 5, OrderID: 12},
			{ID: 31, Cargo: 2, Seat: 1, JourneyID: 5, OrderID: 12},
		},
	}
}

func TestFormatLine(t *testing.T) {
	line := formatLine(NewOrderCreatedEvent(sampleOrder()))
	assert.Equal(t,
		"[2025-09-23T08:30:00Z] Order created | order_id=12 | user_id=7 | tickets=2 | seats=[5/1/4,5/2/1]\n",
		line)
}

func TestAppendEvent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	body, err := json.Marshal(NewOrderCreatedEvent(sampleOrder()))
	require.NoError(t, err)

	require.NoError(t, appendEvent(dir, body))
	require.NoError(t, appendEvent(dir, body))

	data, err := os.ReadFile(filepath.Join(dir, AuditLogName))
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(string(data)))

	assert.Error(t, appendEvent(dir, []byte("{not json")))
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
