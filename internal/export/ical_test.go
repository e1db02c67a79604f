package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdata/internal/models"
)

var stamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestEventUID(t *testing.T) {
	assert.Equal(t, "evt1@google.com", EventUID(&models.Event{ID: "evt1"}))

	a, b := EventUID(&models.Event{}), EventUID(&models.Event{})
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestWriteICS(t *testing.T) {
	warsaw := time.FixedZone("CEST", 2*60*60)
	events := []*models.Event{
		{
			ID:          "evt1",
			Summary:     "Standup",
			Description: "Daily",
			Status:      "confirmed",
			Visibility:  "private",
			Start:       models.EventTime{Time: time.Date(2024, 5, 1, 11, 0, 0, 0, warsaw)},
			End:         models.EventTime{Time: time.Date(2024, 5, 1, 11, 15, 0, 0, warsaw)},
		},
		{
			ID:         "evt2",
			Summary:    "Offsite",
			Visibility: "default",
			Start:      models.EventTime{Time: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), AllDay: true},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, events, stamp))
	out := buf.String()

	assert.Contains(t, out, "PRODID:"+ProductID)
	assert.Contains(t, out, "UID:evt1@google.com")
	assert.Contains(t, out, "DTSTART:20240501T090000Z")
	assert.Contains(t, out, "DTEND:20240501T091500Z")
	assert.Contains(t, out, "DTSTAMP:20240501T120000Z")
	assert.Contains(t, out, "STATUS:CONFIRMED")
	assert.Contains(t, out, "CLASS:PRIVATE")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240502")
	assert.Equal(t, 1, strings.Count(out, "CLASS:"))
	assert.NotContains(t, out, "DTEND;VALUE=DATE")

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	decoded := cal.Events()
	require.Len(t, decoded, 2)

	summary, err := decoded[1].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Offsite", summary)
}
