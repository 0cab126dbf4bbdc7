package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlRequest = `user:
  userId: 7
  focusTimeZone: MORNING
  dayEndTime: "23:00"
startArrange: "09:00"
schedules:
  - taskId: 1
    dayPlanId: 3
    title: Standup
    type: FIXED
    startAt: "10:00"
    endAt: "10:30"
  - taskId: 2
    dayPlanId: 3
    title: Write report
    type: FLEX
    estimatedTimeRange: HOUR_1_TO_2
    focusLevel: 8
    isUrgent: true
`

func TestParseRequest_YAML(t *testing.T) {
	req, err := ParseRequest([]byte(yamlRequest), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, int64(7), req.User.UserID)
	assert.Equal(t, domain.ZoneMorning, req.User.FocusTimeZone)
	require.Len(t, req.Schedules, 2)
	assert.Equal(t, "10:30", *req.Schedules[0].EndAt)
	assert.Equal(t, domain.RangeHour1To2, *req.Schedules[1].EstimatedTimeRange)
	assert.True(t, *req.Schedules[1].IsUrgent)
	assert.Empty(t, ValidateRequest(req))
}

func TestParseRequest_JSON(t *testing.T) {
	data := `{"user":{"userId":1,"focusTimeZone":"EVENING","dayEndTime":"22:00"},"startArrange":"18:00",
		"schedules":[{"taskId":5,"dayPlanId":1,"title":"Read","type":"FLEX","parentScheduleId":null}]}`
	req, err := ParseRequest([]byte(data), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, domain.ZoneEvening, req.User.FocusTimeZone)
	assert.Nil(t, req.Schedules[0].ParentScheduleID)
}

func TestParseRequest_RejectsUnknownFields(t *testing.T) {
	_, err := ParseRequest([]byte(`{"startArrange":"09:00","shedules":[]}`), FormatJSON)
	assert.Error(t, err)

	_, err = ParseRequest([]byte("startArrange: \"09:00\"\nfocus: MORNING\n"), FormatYAML)
	assert.Error(t, err)
}

func TestParseRequest_Empty(t *testing.T) {
	_, err := ParseRequest(nil, FormatYAML)
	assert.EqualError(t, err, "empty request")
}

func TestLoadRequest_ByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "today.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlRequest), 0o644))

	req, err := LoadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, "09:00", req.StartArrange)

	_, err = LoadRequest(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteRequest_RoundTripsThroughBothFormats(t *testing.T) {
	req, err := ParseRequest([]byte(yamlRequest), FormatYAML)
	require.NoError(t, err)

	for _, format := range []Format{FormatJSON, FormatYAML} {
		var buf bytes.Buffer
		require.NoError(t, WriteRequest(&buf, req, format))
		again, err := ParseRequest(buf.Bytes(), format)
		require.NoError(t, err, format)
		assert.Equal(t, req, again, format)
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a.YAML"))
	assert.Equal(t, FormatYAML, FormatFromPath("a.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("a.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("noext"))
}
