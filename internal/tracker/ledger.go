package tracker

import (
	"github.com/rs/zerolog/log"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

func recordID(date, slotID string) string {
	return date + ":" + slotID
}

// logAttendance upserts the record for (date, slotID), last write wins.
// Policy violations degrade to a logged no-op rather than an error: dates
// before the tracking start date are governed by historical aggregates, and
// a slot whose subject has gone missing is a referential leftover, not a
// reason to crash.
func logAttendance(s State, slotID, date, status string) State {
	if !model.ValidStatus(status) {
		log.Warn().Str("status", status).Msg("ignoring attendance log with unknown status")
		return s
	}
	if _, err := parseDate(date); err != nil {
		log.Warn().Str("date", date).Msg("ignoring attendance log with malformed date")
		return s
	}
	if s.TrackingStartDate != "" && date < s.TrackingStartDate {
		log.Warn().
			Str("date", date).
			Str("tracking_start", s.TrackingStartDate).
			Msg("ignoring attendance log before tracking start date")
		return s
	}
	subjectID, ok := s.slotSubjectID(slotID)
	if !ok {
		log.Warn().Str("slot_id", slotID).Msg("ignoring attendance log for unknown slot")
		return s
	}
	subject, ok := s.subject(subjectID)
	if !ok {
		log.Warn().Str("slot_id", slotID).Msg("ignoring attendance log for slot with deleted subject")
		return s
	}

	next := cloneState(s)
	key := RecordKey{Date: date, SlotID: slotID}
	next.Attendance[key] = model.AttendanceRecord{
		ID:      recordID(date, slotID),
		SlotID:  slotID,
		Date:    date,
		Status:  status,
		Credits: subject.Credits,
	}
	return next
}

// clearAttendanceRecord drops the record for (date, slotID) if present.
func clearAttendanceRecord(s State, slotID, date string) State {
	key := RecordKey{Date: date, SlotID: slotID}
	if _, ok := s.Attendance[key]; !ok {
		return s
	}
	next := cloneState(s)
	delete(next.Attendance, key)
	return next
}
