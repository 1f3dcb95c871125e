package tracker

import (
	"sort"
	"time"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

// Occurrence is one resolved class on a concrete date.
type Occurrence struct {
	SlotID    string `json:"slotId"`
	SubjectID string `json:"subjectId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	OneOff    bool   `json:"oneOff"`
}

// ResolveSchedule returns the ordered occurrences for a calendar date.
// Sundays and holidays resolve to nothing regardless of stored slots, so
// legacy rows with Day="Sun" can never surface. Occurrences whose (date,
// slot) record is Postponed are excluded; this covers one-off slots too,
// since rescheduling a freestanding one-off marks it Postponed in place.
// Pure function of state + date, no side effects.
func ResolveSchedule(s State, date string) []Occurrence {
	day, err := parseDate(date)
	if err != nil {
		return nil
	}
	if day.Weekday() == time.Sunday {
		return nil
	}
	if _, holiday := s.Holidays[date]; holiday {
		return nil
	}

	weekday := day.Weekday().String()[:3]
	var out []Occurrence
	for _, slot := range s.Timetable {
		if slot.Day != weekday {
			continue
		}
		if rec, ok := s.Attendance[RecordKey{Date: date, SlotID: slot.ID}]; ok && rec.Status == model.StatusPostponed {
			continue
		}
		out = append(out, Occurrence{
			SlotID:    slot.ID,
			SubjectID: slot.SubjectID,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	for _, slot := range s.OneOffSlots {
		if slot.Date != date {
			continue
		}
		if rec, ok := s.Attendance[RecordKey{Date: date, SlotID: slot.ID}]; ok && rec.Status == model.StatusPostponed {
			continue
		}
		out = append(out, Occurrence{
			SlotID:    slot.ID,
			SubjectID: slot.SubjectID,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			OneOff:    true,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// countable reports whether attendance may accrue on a date at all.
func (s State) countable(date string) bool {
	day, err := parseDate(date)
	if err != nil {
		return false
	}
	if day.Weekday() == time.Sunday {
		return false
	}
	_, holiday := s.Holidays[date]
	return !holiday
}
