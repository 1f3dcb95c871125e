package tracker

import (
	"math"
	"sort"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

// Stats aggregates the ledger and historical totals into credit counts.
type Stats struct {
	AttendedCredits      int        `json:"attendedCredits"`
	ConductedCredits     int        `json:"conductedCredits"`
	CancelledCount       int        `json:"cancelledCount"`
	AttendancePercentage float64    `json:"attendancePercentage"`
	SafeToMiss           Projection `json:"safeToMiss"`
}

// Projection is the credit-weighted safe-to-miss estimate. When MustAttend
// is set, Credits is the attendance still required to reach the threshold;
// otherwise it is the amount that may still be missed. Achievable=false
// means a 100% threshold was already lost; Unbounded means a 0% threshold
// can never be violated.
type Projection struct {
	Credits    int  `json:"credits"`
	MustAttend bool `json:"mustAttend"`
	Achievable bool `json:"achievable"`
	Unbounded  bool `json:"unbounded"`
}

// ComputeStats walks historical aggregates and daily records. Records on
// Sundays or holidays contribute nothing, whatever the timetable says, and
// records before the tracking start date are ignored in favour of the
// historical totals.
func ComputeStats(s State) Stats {
	var attended, conducted, cancelled int

	for subjectID, hist := range s.Historical {
		subject, ok := s.subject(subjectID)
		if !ok {
			continue
		}
		conducted += hist.Conducted * subject.Credits
		attended += hist.Attended * subject.Credits
	}

	for key, rec := range s.Attendance {
		if s.TrackingStartDate != "" && key.Date < s.TrackingStartDate {
			continue
		}
		if !s.countable(key.Date) {
			continue
		}
		switch rec.Status {
		case model.StatusAttended:
			attended += rec.Credits
			conducted += rec.Credits
		case model.StatusAbsent:
			conducted += rec.Credits
		case model.StatusCancelled:
			cancelled++
		}
	}

	pct := 100.0
	if conducted > 0 {
		pct = float64(attended) / float64(conducted) * 100
	}

	return Stats{
		AttendedCredits:      attended,
		ConductedCredits:     conducted,
		CancelledCount:       cancelled,
		AttendancePercentage: pct,
		SafeToMiss:           safeToMiss(attended, conducted, pct, s.MinAttendancePercentage),
	}
}

func safeToMiss(attended, conducted int, pct, threshold float64) Projection {
	r := threshold / 100

	if pct < threshold {
		if r >= 1 {
			// 100% can never be recovered once a class is missed.
			return Projection{MustAttend: true}
		}
		x := math.Ceil((r*float64(conducted) - float64(attended)) / (1 - r))
		return Projection{Credits: int(x), MustAttend: true, Achievable: true}
	}

	if r <= 0 {
		return Projection{Achievable: true, Unbounded: true}
	}
	y := math.Floor((float64(attended) - r*float64(conducted)) / r)
	return Projection{Credits: int(y), Achievable: true}
}

// WeekReport is the plain-data input for the AI weekly debrief. The
// percentage is the overall figure from ComputeStats; the debrief
// collaborator must echo it back unchanged.
type WeekReport struct {
	WeekStart            string   `json:"weekStart"`
	WeekEnd              string   `json:"weekEnd"`
	Attended             []string `json:"attended"`
	Missed               []string `json:"missed"`
	Cancelled            []string `json:"cancelled"`
	AttendancePercentage float64  `json:"attendancePercentage"`
}

// BuildWeekReport collects the week's logged classes starting at weekStart.
func BuildWeekReport(s State, weekStart string) (WeekReport, error) {
	start, err := parseDate(weekStart)
	if err != nil {
		return WeekReport{}, ErrInvalidInput
	}
	end := start.AddDate(0, 0, 6).Format(DateLayout)

	report := WeekReport{
		WeekStart:            weekStart,
		WeekEnd:              end,
		AttendancePercentage: ComputeStats(s).AttendancePercentage,
	}

	var keys []RecordKey
	for key := range s.Attendance {
		if key.Date >= weekStart && key.Date <= end && s.countable(key.Date) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		return keys[i].SlotID < keys[j].SlotID
	})

	for _, key := range keys {
		rec := s.Attendance[key]
		name := "Unknown"
		if subjectID, ok := s.slotSubjectID(key.SlotID); ok {
			if subject, found := s.subject(subjectID); found {
				name = subject.Name
			}
		}
		entry := key.Date + " " + name
		switch rec.Status {
		case model.StatusAttended:
			report.Attended = append(report.Attended, entry)
		case model.StatusAbsent:
			report.Missed = append(report.Missed, entry)
		case model.StatusCancelled:
			report.Cancelled = append(report.Cancelled, entry)
		}
	}
	return report, nil
}
