package tracker

import (
	"math"
	"testing"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

func TestComputeStatsScenario(t *testing.T) {
	// Subject worth 3 credits, 10 conducted Monday classes: 7 attended,
	// 3 absent, threshold 75%.
	s := physicsState()
	s.MinAttendancePercentage = 75
	for i, date := range mondays2024 {
		status := model.StatusAttended
		if i >= 7 {
			status = model.StatusAbsent
		}
		s = logAttendance(s, "slot-phy", date, status)
	}

	stats := ComputeStats(s)
	if stats.ConductedCredits != 30 || stats.AttendedCredits != 21 {
		t.Fatalf("credits: got %d/%d, want 21/30", stats.AttendedCredits, stats.ConductedCredits)
	}
	if math.Abs(stats.AttendancePercentage-70) > 1e-9 {
		t.Fatalf("percentage: got %v, want 70", stats.AttendancePercentage)
	}
	p := stats.SafeToMiss
	if !p.MustAttend || !p.Achievable || p.Credits != 6 {
		t.Fatalf("safe-to-miss: got %+v, want 6 required credits", p)
	}
}

func TestComputeStatsExcludesSundaysAndHolidays(t *testing.T) {
	s := physicsState()
	s.Holidays["2024-02-05"] = struct{}{}
	// Records on a Sunday and on a holiday must not accrue even when the
	// ledger somehow holds them.
	s.Attendance[RecordKey{Date: sunday, SlotID: "slot-phy"}] = model.AttendanceRecord{
		ID: recordID(sunday, "slot-phy"), SlotID: "slot-phy", Date: sunday, Status: model.StatusAttended, Credits: 3,
	}
	s.Attendance[RecordKey{Date: "2024-02-05", SlotID: "slot-phy"}] = model.AttendanceRecord{
		ID: recordID("2024-02-05", "slot-phy"), SlotID: "slot-phy", Date: "2024-02-05", Status: model.StatusAbsent, Credits: 3,
	}

	stats := ComputeStats(s)
	if stats.ConductedCredits != 0 || stats.AttendedCredits != 0 {
		t.Fatalf("non-countable dates accrued credits: %+v", stats)
	}
	if stats.AttendancePercentage != 100 {
		t.Fatalf("empty ledger must default to 100, got %v", stats.AttendancePercentage)
	}
}

func TestComputeStatsStatuses(t *testing.T) {
	s := physicsState()
	s = logAttendance(s, "slot-phy", "2024-01-01", model.StatusAttended)
	s = logAttendance(s, "slot-phy", "2024-01-08", model.StatusCancelled)
	s = logAttendance(s, "slot-phy", "2024-01-15", model.StatusPostponed)
	s = logAttendance(s, "slot-phy", "2024-01-22", model.StatusAbsent)

	stats := ComputeStats(s)
	if stats.ConductedCredits != 6 || stats.AttendedCredits != 3 {
		t.Fatalf("cancelled/postponed must not count: %+v", stats)
	}
	if stats.CancelledCount != 1 {
		t.Fatalf("cancelled tally: got %d, want 1", stats.CancelledCount)
	}
}

func TestComputeStatsHistorical(t *testing.T) {
	s := physicsState()
	s.TrackingStartDate = "2024-02-01"
	s.Historical["sub-phy"] = model.HistoricalRecord{SubjectID: "sub-phy", Conducted: 10, Attended: 8}
	// Pre-boundary records in the ledger are ignored; the aggregate rules.
	s.Attendance[RecordKey{Date: "2024-01-08", SlotID: "slot-phy"}] = model.AttendanceRecord{
		ID: recordID("2024-01-08", "slot-phy"), SlotID: "slot-phy", Date: "2024-01-08", Status: model.StatusAbsent, Credits: 3,
	}
	s = logAttendance(s, "slot-phy", "2024-02-05", model.StatusAttended)

	stats := ComputeStats(s)
	if stats.ConductedCredits != 33 || stats.AttendedCredits != 27 {
		t.Fatalf("historical accounting wrong: %+v", stats)
	}
	// Historical aggregate of a deleted subject contributes nothing.
	s.Subjects = nil
	stats = ComputeStats(s)
	if stats.ConductedCredits != 0 {
		t.Fatalf("orphan historical must be skipped: %+v", stats)
	}
}

func TestCreditConservation(t *testing.T) {
	s := physicsState()
	s.Historical["sub-phy"] = model.HistoricalRecord{SubjectID: "sub-phy", Conducted: 5, Attended: 5}
	statuses := []string{model.StatusAttended, model.StatusAbsent, model.StatusCancelled, model.StatusAttended}
	for i, status := range statuses {
		s = logAttendance(s, "slot-phy", mondays2024[i], status)
	}

	stats := ComputeStats(s)
	if stats.AttendedCredits > stats.ConductedCredits {
		t.Fatalf("attended %d exceeds conducted %d", stats.AttendedCredits, stats.ConductedCredits)
	}
}

func TestSafeToMiss(t *testing.T) {
	cases := []struct {
		name               string
		attended, conducted int
		threshold          float64
		want               Projection
	}{
		{"above threshold floor", 9, 10, 75, Projection{Credits: 2, Achievable: true}},
		{"exactly at threshold", 3, 4, 75, Projection{Credits: 0, Achievable: true}},
		{"below threshold ceil", 21, 30, 75, Projection{Credits: 6, MustAttend: true, Achievable: true}},
		{"hundred percent lost", 9, 10, 100, Projection{MustAttend: true}},
		{"hundred percent kept", 10, 10, 100, Projection{Credits: 0, Achievable: true}},
		{"zero threshold", 0, 10, 0, Projection{Achievable: true, Unbounded: true}},
		{"nothing conducted", 0, 0, 75, Projection{Credits: 0, Achievable: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pct := 100.0
			if tc.conducted > 0 {
				pct = float64(tc.attended) / float64(tc.conducted) * 100
			}
			got := safeToMiss(tc.attended, tc.conducted, pct, tc.threshold)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestBuildWeekReport(t *testing.T) {
	s := withChemistry(physicsState())
	s = logAttendance(s, "slot-phy", monday, model.StatusAttended)
	s = logAttendance(s, "slot-chem", monday, model.StatusAbsent)
	s = logAttendance(s, "slot-phy", "2024-03-11", model.StatusAttended) // next week

	report, err := BuildWeekReport(s, monday)
	if err != nil {
		t.Fatal(err)
	}
	if report.WeekEnd != "2024-03-10" {
		t.Fatalf("week end: got %s", report.WeekEnd)
	}
	if len(report.Attended) != 1 || report.Attended[0] != monday+" Physics" {
		t.Fatalf("attended: %v", report.Attended)
	}
	if len(report.Missed) != 1 || report.Missed[0] != monday+" Chemistry" {
		t.Fatalf("missed: %v", report.Missed)
	}
	want := ComputeStats(s).AttendancePercentage
	if report.AttendancePercentage != want {
		t.Fatalf("percentage must match ComputeStats exactly: %v vs %v", report.AttendancePercentage, want)
	}

	if _, err := BuildWeekReport(s, "bogus"); err == nil {
		t.Fatal("malformed week start must error")
	}
}
