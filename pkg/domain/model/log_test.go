package model_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/domain/types"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{}},
		{name: "only separators", input: " , ,", want: []string{}},
		{name: "trims", input: " a , b ,, c ", want: []string{"a", "b", "c"}},
		{name: "single", input: "urgent", want: []string{"urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, model.ParseTags(tt.input)).Equal(tt.want)
		})
	}
}

func TestParseTagsEncodesAsEmptyArray(t *testing.T) {
	in := model.LogInput{Title: "x", Tags: model.ParseTags("")}
	data, err := json.Marshal(in)
	gt.NoError(t, err).Required()
	gt.String(t, string(data)).Contains(`"tags":[]`)
}

func TestLogInputValidate(t *testing.T) {
	valid := model.LogInput{
		Title:       "Roof inspection",
		Description: "North slope shingles",
		Status:      types.StatusPending,
		Priority:    types.PriorityMedium,
	}
	gt.NoError(t, valid.Validate())

	blank := valid
	blank.Title = "   "
	gt.Error(t, blank.Validate()).Is(model.ErrValidation)

	noDescription := valid
	noDescription.Description = " \n "
	gt.Error(t, noDescription.Validate()).Is(model.ErrValidation)

	badStatus := valid
	badStatus.Status = "done"
	gt.Error(t, badStatus.Validate()).Is(model.ErrValidation)

	badCategory := valid
	badCategory.Category = "gardening"
	gt.Error(t, badCategory.Validate()).Is(model.ErrValidation)
}

func TestLogMatches(t *testing.T) {
	log := &model.Log{Title: "Roof Inspection", Description: "Checked FLASHING on north side"}

	gt.Bool(t, log.Matches("")).True()
	gt.Bool(t, log.Matches("roof")).True()
	gt.Bool(t, log.Matches("flashing")).True()
	gt.Bool(t, log.Matches("ROOF INSP")).True()
	gt.Bool(t, log.Matches("plumbing")).False()
}

func TestLogIsSafetyAlert(t *testing.T) {
	gt.Bool(t, (&model.Log{Priority: types.PriorityCritical}).IsSafetyAlert()).True()
	gt.Bool(t, (&model.Log{Priority: types.PriorityLow, Category: types.CategorySafety}).IsSafetyAlert()).True()
	gt.Bool(t, (&model.Log{Priority: types.PriorityHigh, Category: types.CategoryRoofing}).IsSafetyAlert()).False()
}

func TestLogDecodesLenientTimestamps(t *testing.T) {
	raw := `{
		"id": "7",
		"title": "Panel install",
		"description": "",
		"status": "in-progress",
		"priority": "high",
		"createdAt": "2024-03-01T09:30:00.000Z",
		"updatedAt": null,
		"attachments": [{"id": "a1", "filename": "f.png", "originalName": "photo.png", "mimeType": "image/png", "size": 2048}]
	}`

	var log model.Log
	gt.NoError(t, json.Unmarshal([]byte(raw), &log)).Required()
	gt.String(t, log.CreatedAt.Date()).Equal("2024-03-01")
	gt.Bool(t, log.UpdatedAt.IsZero()).True()
	gt.Number(t, log.AttachmentCount()).Equal(1)
	gt.Bool(t, log.Attachments[0].IsImage()).True()

	var odd model.Log
	gt.NoError(t, json.Unmarshal([]byte(`{"id": "8", "createdAt": "yesterday"}`), &odd)).Required()
	gt.String(t, odd.ID).Equal("8")
	gt.Bool(t, odd.CreatedAt.IsZero()).True()

	var wrongType model.Log
	gt.Error(t, json.Unmarshal([]byte(`{"createdAt": 12}`), &wrongType))
}

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "rfc3339", input: "2024-03-01T10:00:00.123Z", want: time.Date(2024, 3, 1, 10, 0, 0, 123000000, time.UTC)},
		{name: "offset", input: "2024-03-01T10:00:00+09:00", want: time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)},
		{name: "no zone", input: "2024-03-01T10:00:00.123", want: time.Date(2024, 3, 1, 10, 0, 0, 123000000, time.UTC)},
		{name: "sql style", input: "2024-03-01 10:00:00", want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{name: "sql style with zone", input: "2024-03-01 10:00:00+00:00", want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{name: "date only", input: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := model.ParseTimestamp(tc.input)
			gt.NoError(t, err).Required()
			gt.Bool(t, got.Equal(tc.want)).True()
		})
	}

	_, err := model.ParseTimestamp("yesterday")
	gt.Error(t, err)
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := model.NewTimestamp(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	data, err := json.Marshal(ts)
	gt.NoError(t, err).Required()
	gt.String(t, string(data)).Equal(`"2024-05-06T07:08:09Z"`)

	zero, err := json.Marshal(model.Timestamp{})
	gt.NoError(t, err)
	gt.String(t, string(zero)).Equal("null")
}

func TestDatePart(t *testing.T) {
	gt.String(t, model.DatePart("2024-03-01T10:00:00Z")).Equal("2024-03-01")
	gt.String(t, model.DatePart("2024-03-01")).Equal("2024-03-01")
	gt.String(t, model.DatePart("")).Equal("")
}

func TestJoinTags(t *testing.T) {
	tags := []string{"roof", "north"}
	gt.String(t, model.JoinTags(tags)).Equal("roof, north")
	gt.Value(t, model.ParseTags(model.JoinTags(tags))).Equal(tags)
	gt.Bool(t, strings.Contains(model.JoinTags(nil), ",")).False()
}
