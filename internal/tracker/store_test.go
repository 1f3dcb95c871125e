package tracker

import (
	"testing"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

func newPopulatedStore(t *testing.T) (*Store, model.Subject, model.TimeSlot) {
	t.Helper()
	st := NewStore()
	sub, err := st.AddSubject("Physics", model.TypeLecture, 3)
	if err != nil {
		t.Fatal(err)
	}
	slot, err := st.AddTimeSlot("Mon", "09:00", "10:00", sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	return st, sub, slot
}

func TestStoreSubjectValidation(t *testing.T) {
	st := NewStore()
	cases := []struct {
		name        string
		subjectName string
		subjectType string
		credits     int
	}{
		{"empty name", "", model.TypeLecture, 3},
		{"zero credits", "Maths", model.TypeLecture, 0},
		{"negative credits", "Maths", model.TypeLab, -1},
		{"unknown type", "Maths", "Seminar", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := st.AddSubject(tc.subjectName, tc.subjectType, tc.credits); err != ErrInvalidInput {
				t.Fatalf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestStoreDeleteSubjectCascades(t *testing.T) {
	st, sub, slot := newPopulatedStore(t)
	oneOff, err := st.AddOneOffSlot(tuesday, "10:00", "11:00", sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	st.LogAttendance(slot.ID, monday, model.StatusAttended)
	st.LogAttendance(oneOff.ID, tuesday, model.StatusAbsent)
	if err := st.SetHistorical(model.HistoricalRecord{SubjectID: sub.ID, Conducted: 4, Attended: 4}); err != nil {
		t.Fatal(err)
	}

	keep, err := st.AddSubject("Chemistry", model.TypeLab, 2)
	if err != nil {
		t.Fatal(err)
	}
	keepSlot, err := st.AddTimeSlot("Tue", "09:00", "10:00", keep.ID)
	if err != nil {
		t.Fatal(err)
	}
	st.LogAttendance(keepSlot.ID, tuesday, model.StatusAttended)

	if err := st.DeleteSubject(sub.ID); err != nil {
		t.Fatal(err)
	}

	if len(st.Subjects()) != 1 || st.Subjects()[0].ID != keep.ID {
		t.Fatalf("subjects after cascade: %v", st.Subjects())
	}
	if len(st.Timetable()) != 1 || st.Timetable()[0].ID != keepSlot.ID {
		t.Fatalf("timetable after cascade: %v", st.Timetable())
	}
	if len(st.OneOffSlots()) != 0 {
		t.Fatalf("one-offs after cascade: %v", st.OneOffSlots())
	}
	recs := st.Records()
	if len(recs) != 1 || recs[0].SlotID != keepSlot.ID {
		t.Fatalf("records after cascade: %v", recs)
	}
	if stats := st.Stats(); stats.ConductedCredits != 2 {
		t.Fatalf("historical aggregate must cascade too: %+v", stats)
	}
}

func TestStoreDeleteTimeSlotDetachesOneOffs(t *testing.T) {
	st, _, slot := newPopulatedStore(t)
	moved, err := st.Reschedule(slot.ID, monday, tuesday, "14:00", "15:00")
	if err != nil {
		t.Fatal(err)
	}

	if err := st.DeleteTimeSlot(slot.ID); err != nil {
		t.Fatal(err)
	}
	if len(st.Records()) != 0 {
		t.Fatalf("slot records must be removed: %v", st.Records())
	}
	oneOffs := st.OneOffSlots()
	if len(oneOffs) != 1 || oneOffs[0].ID != moved.ID {
		t.Fatalf("one-off should survive: %v", oneOffs)
	}
	if oneOffs[0].OriginalSlotID != "" || oneOffs[0].OriginalDate != "" {
		t.Fatalf("one-off must be detached from deleted slot: %+v", oneOffs[0])
	}
}

func TestStoreRescheduleReturnsCreatedSlot(t *testing.T) {
	st, sub, slot := newPopulatedStore(t)

	moved, err := st.Reschedule(slot.ID, monday, tuesday, "14:00", "15:00")
	if err != nil {
		t.Fatal(err)
	}
	// The returned value comes from the transition itself, not a later read,
	// so it is fully populated even if the slot is deleted right after.
	if moved.ID == "" || moved.Date != tuesday || moved.SubjectID != sub.ID {
		t.Fatalf("returned slot incomplete: %+v", moved)
	}
	if moved.OriginalSlotID != slot.ID || moved.OriginalDate != monday {
		t.Fatalf("returned slot missing origin link: %+v", moved)
	}

	oneOffs := st.OneOffSlots()
	if len(oneOffs) != 1 || oneOffs[0] != moved {
		t.Fatalf("returned slot differs from stored one: %+v vs %v", moved, oneOffs)
	}
}

func TestStoreUpsertThroughAPI(t *testing.T) {
	st, _, slot := newPopulatedStore(t)
	st.LogAttendance(slot.ID, monday, model.StatusAttended)
	st.LogAttendance(slot.ID, monday, model.StatusCancelled)

	recs := st.Records()
	if len(recs) != 1 || recs[0].Status != model.StatusCancelled {
		t.Fatalf("upsert through store failed: %v", recs)
	}
}

func TestStoreChangesNotify(t *testing.T) {
	st, _, slot := newPopulatedStore(t)
	// Drain whatever setup left behind.
	select {
	case <-st.Changes():
	default:
	}

	st.LogAttendance(slot.ID, monday, model.StatusAttended)
	st.LogAttendance(slot.ID, monday, model.StatusAbsent)

	select {
	case snap := <-st.Changes():
		if len(snap.Attendance) != 1 || snap.Attendance[0].Status != model.StatusAbsent {
			t.Fatalf("change channel must carry the latest snapshot: %+v", snap.Attendance)
		}
	default:
		t.Fatal("expected a pending snapshot")
	}
}

func TestStoreRejectedMutationDoesNotNotify(t *testing.T) {
	st := NewStore()
	if _, err := st.AddTimeSlot("Mon", "10:00", "09:00", "nope"); err == nil {
		t.Fatal("expected validation error")
	}
	select {
	case <-st.Changes():
		t.Fatal("rejected mutation must not publish a snapshot")
	default:
	}
}

func TestStoreRestoreRoundTrip(t *testing.T) {
	st, _, slot := newPopulatedStore(t)
	st.LogAttendance(slot.ID, monday, model.StatusAttended)
	if err := st.AddHoliday("2024-03-08"); err != nil {
		t.Fatal(err)
	}
	before := st.Snapshot()

	other := NewStore()
	if err := other.RestoreSnapshot(before); err != nil {
		t.Fatal(err)
	}
	after := other.Snapshot()
	if len(after.Subjects) != len(before.Subjects) || len(after.Attendance) != len(before.Attendance) {
		t.Fatalf("restore mismatch: %+v vs %+v", after, before)
	}

	if err := other.RestoreJSON([]byte(`{"version":7}`)); err == nil {
		t.Fatal("unsupported version must be rejected")
	}
}

func TestStoreImportTimetable(t *testing.T) {
	st, sub, _ := newPopulatedStore(t)
	rows := []TimetableImportRow{
		{Day: "Tue", StartTime: "09:00", EndTime: "10:00", SubjectName: "Physics"},
		{Day: "Wed", StartTime: "10:00", EndTime: "11:00", SubjectName: "Biology"},
		{Day: "Sun", StartTime: "09:00", EndTime: "10:00", SubjectName: "Physics"}, // invalid day
		{Day: "Thu", StartTime: "11:00", EndTime: "10:00", SubjectName: "Physics"}, // inverted
		{Day: "Fri", StartTime: "09:00", EndTime: "10:00", SubjectName: ""},        // no name
	}

	if added := st.ImportTimetable(rows); added != 2 {
		t.Fatalf("added %d rows, want 2", added)
	}
	if len(st.Subjects()) != 2 {
		t.Fatalf("Biology should be auto-created once: %v", st.Subjects())
	}
	for _, ts := range st.Timetable() {
		if ts.Day == "Tue" && ts.SubjectID != sub.ID {
			t.Fatal("existing subject must be reused by name")
		}
	}
}
