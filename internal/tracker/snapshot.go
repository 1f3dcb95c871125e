package tracker

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

// ExportSnapshot flattens state into the versioned backup shape. Map-backed
// collections come out sorted so exports are deterministic.
func ExportSnapshot(s State) model.Snapshot {
	snap := model.Snapshot{
		Version:                 model.SnapshotVersion,
		Subjects:                append([]model.Subject{}, s.Subjects...),
		Timetable:               append([]model.TimeSlot{}, s.Timetable...),
		OneOffSlots:             append([]model.OneOffSlot{}, s.OneOffSlots...),
		Attendance:              []model.AttendanceRecord{},
		Holidays:                []string{},
		MinAttendancePercentage: s.MinAttendancePercentage,
		HistoricalData:          []model.HistoricalRecord{},
		TrackingStartDate:       s.TrackingStartDate,
	}

	for _, rec := range s.Attendance {
		snap.Attendance = append(snap.Attendance, rec)
	}
	sort.Slice(snap.Attendance, func(i, j int) bool {
		if snap.Attendance[i].Date != snap.Attendance[j].Date {
			return snap.Attendance[i].Date < snap.Attendance[j].Date
		}
		return snap.Attendance[i].SlotID < snap.Attendance[j].SlotID
	})

	for date := range s.Holidays {
		snap.Holidays = append(snap.Holidays, date)
	}
	sort.Strings(snap.Holidays)

	for _, rec := range s.Historical {
		snap.HistoricalData = append(snap.HistoricalData, rec)
	}
	sort.Slice(snap.HistoricalData, func(i, j int) bool {
		return snap.HistoricalData[i].SubjectID < snap.HistoricalData[j].SubjectID
	})

	return snap
}

// StateFromSnapshot rebuilds state from a backup, enforcing the snapshot
// invariants (version tag, one record per key, attended <= conducted).
func StateFromSnapshot(snap model.Snapshot) (State, error) {
	if snap.Version != model.SnapshotVersion {
		return State{}, fmt.Errorf("%w: unsupported snapshot version %d", ErrInvalidInput, snap.Version)
	}

	s := NewState()
	s.Subjects = append(s.Subjects, snap.Subjects...)
	s.Timetable = append(s.Timetable, snap.Timetable...)
	s.OneOffSlots = append(s.OneOffSlots, snap.OneOffSlots...)
	if snap.MinAttendancePercentage >= 0 && snap.MinAttendancePercentage <= 100 {
		s.MinAttendancePercentage = snap.MinAttendancePercentage
	}
	s.TrackingStartDate = snap.TrackingStartDate

	for _, rec := range snap.Attendance {
		key := RecordKey{Date: rec.Date, SlotID: rec.SlotID}
		if _, dup := s.Attendance[key]; dup {
			return State{}, fmt.Errorf("%w: duplicate attendance record for %s/%s", ErrInvalidInput, rec.Date, rec.SlotID)
		}
		s.Attendance[key] = rec
	}
	for _, date := range snap.Holidays {
		s.Holidays[date] = struct{}{}
	}
	for _, rec := range snap.HistoricalData {
		if rec.Attended > rec.Conducted {
			return State{}, fmt.Errorf("%w: historical attended exceeds conducted for %s", ErrInvalidInput, rec.SubjectID)
		}
		s.Historical[rec.SubjectID] = rec
	}
	return s, nil
}

// arrayFields are the snapshot members that must decode as JSON arrays.
var arrayFields = []string{"subjects", "timetable", "oneOffSlots", "attendance", "holidays", "historicalData"}

// ParseSnapshot validates an imported backup's shape before accepting it:
// the version tag must be present and supported, and every collection field
// must be an array (or absent). Anything else is rejected up front so a
// truncated or hand-edited file cannot half-replace state.
func ParseSnapshot(data []byte) (model.Snapshot, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: not a JSON object", ErrInvalidInput)
	}
	raw, ok := probe["version"]
	if !ok {
		return model.Snapshot{}, fmt.Errorf("%w: missing version tag", ErrInvalidInput)
	}
	var version int
	if err := json.Unmarshal(raw, &version); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: version is not an integer", ErrInvalidInput)
	}
	for _, field := range arrayFields {
		raw, ok := probe[field]
		if !ok {
			continue
		}
		trimmed := string(raw)
		if trimmed == "null" {
			continue
		}
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return model.Snapshot{}, fmt.Errorf("%w: field %q is not an array", ErrInvalidInput, field)
		}
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return snap, nil
}
