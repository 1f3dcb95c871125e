package tracker

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

func populatedState(t *testing.T) State {
	t.Helper()
	s := withChemistry(physicsState())
	s.Holidays["2024-03-08"] = struct{}{}
	s.Historical["sub-phy"] = model.HistoricalRecord{SubjectID: "sub-phy", Conducted: 12, Attended: 10}
	s.MinAttendancePercentage = 80
	s.TrackingStartDate = "2024-01-01"
	s = logAttendance(s, "slot-phy", monday, model.StatusAttended)
	s = logAttendance(s, "slot-chem", monday, model.StatusCancelled)
	var err error
	s, err = rescheduleClass(s, "slot-phy", "2024-03-11", "2024-03-12", "09:00", "10:00", "oo-res")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := populatedState(t)

	data, err := json.Marshal(ExportSnapshot(s))
	if err != nil {
		t.Fatal(err)
	}
	snap, err := ParseSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := StateFromSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(ExportSnapshot(s), ExportSnapshot(restored)) {
		t.Fatal("snapshot round-trip is lossy")
	}
}

func TestParseSnapshotRejectsBadShapes(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not an object", `[1,2,3]`},
		{"missing version", `{"subjects":[]}`},
		{"string version", `{"version":"1","subjects":[]}`},
		{"object in array field", `{"version":1,"subjects":{"a":1}}`},
		{"string in array field", `{"version":1,"holidays":"2024-01-01"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseSnapshot([]byte(tc.data)); err == nil {
				t.Fatal("expected rejection")
			}
		})
	}

	// Null and absent collection fields are fine.
	if _, err := ParseSnapshot([]byte(`{"version":1,"subjects":null}`)); err != nil {
		t.Fatalf("null array field must pass: %v", err)
	}
}

func TestStateFromSnapshotValidates(t *testing.T) {
	snap := ExportSnapshot(physicsState())

	bad := snap
	bad.Version = 99
	if _, err := StateFromSnapshot(bad); err == nil || !strings.Contains(err.Error(), "version") {
		t.Fatalf("unsupported version must be rejected, got %v", err)
	}

	bad = snap
	bad.HistoricalData = []model.HistoricalRecord{{SubjectID: "sub-phy", Conducted: 3, Attended: 5}}
	if _, err := StateFromSnapshot(bad); err == nil {
		t.Fatal("attended > conducted must be rejected")
	}

	bad = snap
	bad.Attendance = []model.AttendanceRecord{
		{ID: "a", SlotID: "slot-phy", Date: monday, Status: model.StatusAttended, Credits: 3},
		{ID: "b", SlotID: "slot-phy", Date: monday, Status: model.StatusAbsent, Credits: 3},
	}
	if _, err := StateFromSnapshot(bad); err == nil {
		t.Fatal("duplicate (date, slot) records must be rejected")
	}
}
