package tracker

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

// Store owns the current State and serializes transitions. The domain is
// single-user, but the HTTP surface is not single-threaded, so every
// operation takes the lock, applies a pure transition, and swaps the whole
// state in one step. Accepted mutations push a snapshot onto the change
// channel for the sync collaborator; the push never blocks and newer
// snapshots replace stale undelivered ones.
type Store struct {
	mu      sync.RWMutex
	state   State
	changes chan model.Snapshot
}

// NewStore returns a store with empty default state.
func NewStore() *Store {
	return &Store{
		state:   NewState(),
		changes: make(chan model.Snapshot, 1),
	}
}

// Changes delivers the latest snapshot after each accepted mutation.
func (st *Store) Changes() <-chan model.Snapshot {
	return st.changes
}

func (st *Store) apply(transition func(State) (State, error)) error {
	st.mu.Lock()
	next, err := transition(st.state)
	if err != nil {
		st.mu.Unlock()
		return err
	}
	st.state = next
	snap := ExportSnapshot(st.state)
	st.mu.Unlock()

	select {
	case st.changes <- snap:
	default:
		select {
		case <-st.changes:
		default:
		}
		select {
		case st.changes <- snap:
		default:
		}
	}
	return nil
}

// AddSubject creates a subject with a fresh id.
func (st *Store) AddSubject(name, subjectType string, credits int) (model.Subject, error) {
	if name == "" || credits <= 0 {
		return model.Subject{}, ErrInvalidInput
	}
	if subjectType != model.TypeLecture && subjectType != model.TypeLab {
		return model.Subject{}, ErrInvalidInput
	}
	sub := model.Subject{ID: uuid.NewString(), Name: name, Type: subjectType, Credits: credits}
	err := st.apply(func(s State) (State, error) {
		return addSubject(s, sub), nil
	})
	return sub, err
}

// UpdateSubject replaces an existing subject's fields.
func (st *Store) UpdateSubject(sub model.Subject) error {
	if sub.Name == "" || sub.Credits <= 0 {
		return ErrInvalidInput
	}
	if sub.Type != model.TypeLecture && sub.Type != model.TypeLab {
		return ErrInvalidInput
	}
	return st.apply(func(s State) (State, error) {
		return updateSubject(s, sub)
	})
}

// DeleteSubject removes a subject and cascades to its slots and records.
func (st *Store) DeleteSubject(id string) error {
	return st.apply(func(s State) (State, error) {
		return deleteSubject(s, id)
	})
}

// Subjects returns a copy of the subject list.
func (st *Store) Subjects() []model.Subject {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]model.Subject{}, st.state.Subjects...)
}

// AddTimeSlot creates a weekly-recurring slot.
func (st *Store) AddTimeSlot(day, startTime, endTime, subjectID string) (model.TimeSlot, error) {
	slot := model.TimeSlot{ID: uuid.NewString(), Day: day, StartTime: startTime, EndTime: endTime, SubjectID: subjectID}
	err := st.apply(func(s State) (State, error) {
		return addTimeSlot(s, slot)
	})
	if err != nil {
		return model.TimeSlot{}, err
	}
	return slot, nil
}

// DeleteTimeSlot removes a recurring slot and its records.
func (st *Store) DeleteTimeSlot(id string) error {
	return st.apply(func(s State) (State, error) {
		return deleteTimeSlot(s, id)
	})
}

// Timetable returns a copy of the recurring slots.
func (st *Store) Timetable() []model.TimeSlot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]model.TimeSlot{}, st.state.Timetable...)
}

// AddOneOffSlot creates a freestanding single-occurrence class.
func (st *Store) AddOneOffSlot(date, startTime, endTime, subjectID string) (model.OneOffSlot, error) {
	slot := model.OneOffSlot{ID: uuid.NewString(), Date: date, StartTime: startTime, EndTime: endTime, SubjectID: subjectID}
	err := st.apply(func(s State) (State, error) {
		return addOneOffSlot(s, slot)
	})
	if err != nil {
		return model.OneOffSlot{}, err
	}
	return slot, nil
}

// DeleteOneOffSlot removes a one-off; rescheduled ones restore their origin.
func (st *Store) DeleteOneOffSlot(id string) error {
	return st.apply(func(s State) (State, error) {
		return deleteOneOffSlot(s, id)
	})
}

// OneOffSlots returns a copy of the one-off slots.
func (st *Store) OneOffSlots() []model.OneOffSlot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]model.OneOffSlot{}, st.state.OneOffSlots...)
}

// LogAttendance upserts a record for (date, slot). Policy violations are
// silent no-ops by design; see the ledger transition.
func (st *Store) LogAttendance(slotID, date, status string) {
	_ = st.apply(func(s State) (State, error) {
		return logAttendance(s, slotID, date, status), nil
	})
}

// ClearAttendance removes the record for (date, slot) if present.
func (st *Store) ClearAttendance(slotID, date string) {
	_ = st.apply(func(s State) (State, error) {
		return clearAttendanceRecord(s, slotID, date), nil
	})
}

// Records returns a copy of all attendance records.
func (st *Store) Records() []model.AttendanceRecord {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]model.AttendanceRecord, 0, len(st.state.Attendance))
	for _, rec := range st.state.Attendance {
		out = append(out, rec)
	}
	return out
}

// AddHoliday marks a date as fully non-counting.
func (st *Store) AddHoliday(date string) error {
	return st.apply(func(s State) (State, error) {
		return addHoliday(s, date)
	})
}

// RemoveHoliday unmarks a holiday.
func (st *Store) RemoveHoliday(date string) {
	_ = st.apply(func(s State) (State, error) {
		return removeHoliday(s, date), nil
	})
}

// SetMinAttendance updates the threshold used by the safe-to-miss projection.
func (st *Store) SetMinAttendance(pct float64) error {
	return st.apply(func(s State) (State, error) {
		return setMinAttendance(s, pct)
	})
}

// SetTrackingStartDate sets the boundary before which daily records are
// rejected. Empty clears it.
func (st *Store) SetTrackingStartDate(date string) error {
	return st.apply(func(s State) (State, error) {
		return setTrackingStartDate(s, date)
	})
}

// SetHistorical upserts a subject's pre-tracking aggregate.
func (st *Store) SetHistorical(rec model.HistoricalRecord) error {
	return st.apply(func(s State) (State, error) {
		return setHistorical(s, rec)
	})
}

// ScheduleForDate resolves the effective class list for a date.
func (st *Store) ScheduleForDate(date string) []Occurrence {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return ResolveSchedule(st.state, date)
}

// Stats computes the aggregate attendance statistics.
func (st *Store) Stats() Stats {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return ComputeStats(st.state)
}

// WeekReport builds the debrief input for the week starting at weekStart.
func (st *Store) WeekReport(weekStart string) (WeekReport, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return BuildWeekReport(st.state, weekStart)
}

// Reschedule moves one occurrence to a new date/time and returns the
// created one-off slot.
func (st *Store) Reschedule(slotID, originalDate, newDate, newStart, newEnd string) (model.OneOffSlot, error) {
	newID := uuid.NewString()
	var created model.OneOffSlot
	err := st.apply(func(s State) (State, error) {
		next, err := rescheduleClass(s, slotID, originalDate, newDate, newStart, newEnd, newID)
		if err != nil {
			return s, err
		}
		created, _ = next.oneOffSlot(newID)
		return next, nil
	})
	if err != nil {
		return model.OneOffSlot{}, err
	}
	return created, nil
}

// UndoPostpone reverses a reschedule by one-off slot id.
func (st *Store) UndoPostpone(oneOffID string) error {
	return st.apply(func(s State) (State, error) {
		return undoPostpone(s, oneOffID)
	})
}

// Snapshot exports the current state as the versioned backup shape.
func (st *Store) Snapshot() model.Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return ExportSnapshot(st.state)
}

// RestoreSnapshot replaces the whole state from a validated backup.
func (st *Store) RestoreSnapshot(snap model.Snapshot) error {
	return st.apply(func(State) (State, error) {
		return StateFromSnapshot(snap)
	})
}

// RestoreJSON validates and applies a raw backup payload.
func (st *Store) RestoreJSON(data []byte) error {
	snap, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	return st.RestoreSnapshot(snap)
}

// TimetableImportRow is one extracted timetable entry.
type TimetableImportRow struct {
	Day         string `json:"day"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	SubjectName string `json:"subjectName"`
}

// ImportTimetable bulk-adds extracted rows, creating subjects by name as
// needed (Lecture, 1 credit; the user adjusts afterwards). Invalid rows are
// skipped. Returns the number of slots added.
func (st *Store) ImportTimetable(rows []TimetableImportRow) int {
	added := 0
	for _, row := range rows {
		if row.SubjectName == "" || !model.ValidWeekday(row.Day) || row.StartTime >= row.EndTime {
			continue
		}
		var subjectID string
		for _, sub := range st.Subjects() {
			if sub.Name == row.SubjectName {
				subjectID = sub.ID
				break
			}
		}
		if subjectID == "" {
			sub, err := st.AddSubject(row.SubjectName, model.TypeLecture, 1)
			if err != nil {
				continue
			}
			subjectID = sub.ID
		}
		if _, err := st.AddTimeSlot(row.Day, row.StartTime, row.EndTime, subjectID); err != nil {
			continue
		}
		added++
	}
	return added
}
