package tracker

import (
	"errors"
	"time"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// DateLayout is the calendar-date format used everywhere in the tracker.
// Lexicographic comparison of dates in this layout matches chronological
// order, which the tracking-start-date policy relies on.
const DateLayout = "2006-01-02"

// RecordKey identifies at most one attendance record per (date, slot) pair.
type RecordKey struct {
	Date   string
	SlotID string
}

// State is the whole tracked world. Transitions clone it and return a new
// value; nothing mutates a State shared with callers.
type State struct {
	Subjects                []model.Subject
	Timetable               []model.TimeSlot
	OneOffSlots             []model.OneOffSlot
	Attendance              map[RecordKey]model.AttendanceRecord
	Holidays                map[string]struct{}
	Historical              map[string]model.HistoricalRecord
	MinAttendancePercentage float64
	TrackingStartDate       string
}

// NewState returns an empty state with the default 75% threshold.
func NewState() State {
	return State{
		Attendance:              make(map[RecordKey]model.AttendanceRecord),
		Holidays:                make(map[string]struct{}),
		Historical:              make(map[string]model.HistoricalRecord),
		MinAttendancePercentage: 75,
	}
}

func cloneState(s State) State {
	out := s
	out.Subjects = append([]model.Subject(nil), s.Subjects...)
	out.Timetable = append([]model.TimeSlot(nil), s.Timetable...)
	out.OneOffSlots = append([]model.OneOffSlot(nil), s.OneOffSlots...)
	out.Attendance = make(map[RecordKey]model.AttendanceRecord, len(s.Attendance))
	for k, v := range s.Attendance {
		out.Attendance[k] = v
	}
	out.Holidays = make(map[string]struct{}, len(s.Holidays))
	for d := range s.Holidays {
		out.Holidays[d] = struct{}{}
	}
	out.Historical = make(map[string]model.HistoricalRecord, len(s.Historical))
	for k, v := range s.Historical {
		out.Historical[k] = v
	}
	return out
}

func parseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

func (s State) subject(id string) (model.Subject, bool) {
	for _, sub := range s.Subjects {
		if sub.ID == id {
			return sub, true
		}
	}
	return model.Subject{}, false
}

func (s State) timeSlot(id string) (model.TimeSlot, bool) {
	for _, slot := range s.Timetable {
		if slot.ID == id {
			return slot, true
		}
	}
	return model.TimeSlot{}, false
}

func (s State) oneOffSlot(id string) (model.OneOffSlot, bool) {
	for _, slot := range s.OneOffSlots {
		if slot.ID == id {
			return slot, true
		}
	}
	return model.OneOffSlot{}, false
}

// slotSubjectID resolves the subject of a recurring or one-off slot.
func (s State) slotSubjectID(slotID string) (string, bool) {
	if slot, ok := s.timeSlot(slotID); ok {
		return slot.SubjectID, true
	}
	if slot, ok := s.oneOffSlot(slotID); ok {
		return slot.SubjectID, true
	}
	return "", false
}

func addSubject(s State, sub model.Subject) State {
	next := cloneState(s)
	next.Subjects = append(next.Subjects, sub)
	return next
}

func updateSubject(s State, sub model.Subject) (State, error) {
	next := cloneState(s)
	for i := range next.Subjects {
		if next.Subjects[i].ID == sub.ID {
			next.Subjects[i] = sub
			return next, nil
		}
	}
	return s, ErrNotFound
}

// deleteSubject cascades: the subject's recurring and one-off slots go with
// it, along with every attendance record referencing any of those slots and
// its historical aggregate. Kept as one explicit function so the cascade is
// testable on its own.
func deleteSubject(s State, subjectID string) (State, error) {
	if _, ok := s.subject(subjectID); !ok {
		return s, ErrNotFound
	}
	next := cloneState(s)

	kept := next.Subjects[:0]
	for _, sub := range next.Subjects {
		if sub.ID != subjectID {
			kept = append(kept, sub)
		}
	}
	next.Subjects = kept

	removed := make(map[string]struct{})
	slots := next.Timetable[:0]
	for _, slot := range next.Timetable {
		if slot.SubjectID == subjectID {
			removed[slot.ID] = struct{}{}
			continue
		}
		slots = append(slots, slot)
	}
	next.Timetable = slots

	oneOffs := next.OneOffSlots[:0]
	for _, slot := range next.OneOffSlots {
		if slot.SubjectID == subjectID {
			removed[slot.ID] = struct{}{}
			continue
		}
		oneOffs = append(oneOffs, slot)
	}
	next.OneOffSlots = oneOffs

	for key := range next.Attendance {
		if _, gone := removed[key.SlotID]; gone {
			delete(next.Attendance, key)
		}
	}
	delete(next.Historical, subjectID)
	return next, nil
}

func addTimeSlot(s State, slot model.TimeSlot) (State, error) {
	if !model.ValidWeekday(slot.Day) || slot.StartTime >= slot.EndTime {
		return s, ErrInvalidInput
	}
	if _, ok := s.subject(slot.SubjectID); !ok {
		return s, ErrNotFound
	}
	next := cloneState(s)
	next.Timetable = append(next.Timetable, slot)
	return next, nil
}

// deleteTimeSlot removes the slot and its attendance records. One-off slots
// created by rescheduling this slot are detached rather than deleted: they
// become freestanding occurrences with no undo target.
func deleteTimeSlot(s State, slotID string) (State, error) {
	if _, ok := s.timeSlot(slotID); !ok {
		return s, ErrNotFound
	}
	next := cloneState(s)
	kept := next.Timetable[:0]
	for _, slot := range next.Timetable {
		if slot.ID != slotID {
			kept = append(kept, slot)
		}
	}
	next.Timetable = kept
	for key := range next.Attendance {
		if key.SlotID == slotID {
			delete(next.Attendance, key)
		}
	}
	for i := range next.OneOffSlots {
		if next.OneOffSlots[i].OriginalSlotID == slotID {
			next.OneOffSlots[i].OriginalSlotID = ""
			next.OneOffSlots[i].OriginalDate = ""
		}
	}
	return next, nil
}

func addOneOffSlot(s State, slot model.OneOffSlot) (State, error) {
	if slot.StartTime >= slot.EndTime {
		return s, ErrInvalidInput
	}
	if _, err := parseDate(slot.Date); err != nil {
		return s, ErrInvalidInput
	}
	if _, ok := s.subject(slot.SubjectID); !ok {
		return s, ErrNotFound
	}
	next := cloneState(s)
	next.OneOffSlots = append(next.OneOffSlots, slot)
	return next, nil
}

func addHoliday(s State, date string) (State, error) {
	if _, err := parseDate(date); err != nil {
		return s, ErrInvalidInput
	}
	next := cloneState(s)
	next.Holidays[date] = struct{}{}
	return next, nil
}

func removeHoliday(s State, date string) State {
	next := cloneState(s)
	delete(next.Holidays, date)
	return next
}

func setMinAttendance(s State, pct float64) (State, error) {
	if pct < 0 || pct > 100 {
		return s, ErrInvalidInput
	}
	next := cloneState(s)
	next.MinAttendancePercentage = pct
	return next, nil
}

func setTrackingStartDate(s State, date string) (State, error) {
	if date != "" {
		if _, err := parseDate(date); err != nil {
			return s, ErrInvalidInput
		}
	}
	next := cloneState(s)
	next.TrackingStartDate = date
	return next, nil
}

func setHistorical(s State, rec model.HistoricalRecord) (State, error) {
	if rec.Conducted < 0 || rec.Attended < 0 || rec.Attended > rec.Conducted {
		return s, ErrInvalidInput
	}
	if _, ok := s.subject(rec.SubjectID); !ok {
		return s, ErrNotFound
	}
	next := cloneState(s)
	next.Historical[rec.SubjectID] = rec
	return next, nil
}
