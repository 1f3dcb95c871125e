package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/tracker"
)

// TimetableEntry is one extracted timetable cell.
type TimetableEntry struct {
	Day         string `json:"day"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	SubjectName string `json:"subjectName"`
}

// Question is one extracted question-paper entry.
type Question struct {
	QuestionNumber int     `json:"questionNumber"`
	QuestionText   string  `json:"questionText"`
	Marks          float64 `json:"marks"`
}

// Debrief is the weekly summary produced from a WeekReport. The percentage
// is echoed back from the input, never recomputed on the AI side.
type Debrief struct {
	Headline             string  `json:"headline"`
	Summary              string  `json:"summary"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

// Client calls the AI extraction service. With Skip set it returns canned
// data so the rest of the system works without the service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. Extraction can be slow, hence the generous timeout.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ExtractTimetable parses an encoded timetable image into rows.
func (c *Client) ExtractTimetable(ctx context.Context, image string) ([]TimetableEntry, error) {
	if c.Skip {
		return []TimetableEntry{
			{Day: "Mon", StartTime: "09:00", EndTime: "10:00", SubjectName: "Sample Subject"},
		}, nil
	}
	if image == "" {
		return nil, fmt.Errorf("image required")
	}

	var out struct {
		Entries []TimetableEntry `json:"entries"`
	}
	if err := c.post(ctx, "/extract/timetable", map[string]string{"image": image}, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// ExtractQuestions parses an encoded question paper into questions.
func (c *Client) ExtractQuestions(ctx context.Context, document string) ([]Question, error) {
	if c.Skip {
		return []Question{
			{QuestionNumber: 1, QuestionText: "Sample question", Marks: 5},
		}, nil
	}
	if document == "" {
		return nil, fmt.Errorf("document required")
	}

	var out struct {
		Questions []Question `json:"questions"`
	}
	if err := c.post(ctx, "/extract/questions", map[string]string{"document": document}, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// WeeklyDebrief turns a week report into a short narrative. The returned
// percentage is forced to the report's value whatever the service sent
// back.
func (c *Client) WeeklyDebrief(ctx context.Context, report tracker.WeekReport) (Debrief, error) {
	if c.Skip {
		return Debrief{
			Headline:             "Week of " + report.WeekStart,
			Summary:              fmt.Sprintf("%d attended, %d missed, %d cancelled.", len(report.Attended), len(report.Missed), len(report.Cancelled)),
			AttendancePercentage: report.AttendancePercentage,
		}, nil
	}

	var out Debrief
	if err := c.post(ctx, "/debrief", report, &out); err != nil {
		return Debrief{}, err
	}
	out.AttendancePercentage = report.AttendancePercentage
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("ai service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ai service error %s: %s", resp.Status, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
