package model

// Attendance statuses for a single class occurrence.
const (
	StatusAttended  = "Attended"
	StatusAbsent    = "Absent"
	StatusCancelled = "Cancelled"
	StatusPostponed = "Postponed"
)

// Subject types.
const (
	TypeLecture = "Lecture"
	TypeLab     = "Lab"
)

// Weekdays on which recurring classes may be scheduled. Sunday is absent;
// the resolver also rejects Sundays by date so that legacy rows with
// Day="Sun" never produce occurrences.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Subject is a course the user tracks attendance for.
type Subject struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Credits int    `json:"credits"`
}

// TimeSlot is a weekly-recurring class occurrence.
type TimeSlot struct {
	ID        string `json:"id"`
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	SubjectID string `json:"subjectId"`
}

// OneOffSlot is a single-occurrence class, either freestanding or created
// by rescheduling. OriginalSlotID/OriginalDate are set only for the latter
// and always point at the deepest origin of a reschedule chain.
type OneOffSlot struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	SubjectID      string `json:"subjectId"`
	OriginalSlotID string `json:"originalSlotId,omitempty"`
	OriginalDate   string `json:"originalDate,omitempty"`
}

// AttendanceRecord is the logged status of one (date, slot) occurrence.
// Credits snapshots the subject's credit value at log time.
type AttendanceRecord struct {
	ID      string `json:"id"`
	SlotID  string `json:"slotId"`
	Date    string `json:"date"`
	Status  string `json:"status"`
	Credits int    `json:"credits"`
}

// HistoricalRecord aggregates attendance accrued before daily tracking
// began. Counts are class occurrences, not credits.
type HistoricalRecord struct {
	SubjectID string `json:"subjectId"`
	Conducted int    `json:"conducted"`
	Attended  int    `json:"attended"`
}

// SnapshotVersion tags the backup format.
const SnapshotVersion = 1

// Snapshot is the single serializable backup/sync shape.
type Snapshot struct {
	Version                 int                `json:"version"`
	Subjects                []Subject          `json:"subjects"`
	Timetable               []TimeSlot         `json:"timetable"`
	OneOffSlots             []OneOffSlot       `json:"oneOffSlots"`
	Attendance              []AttendanceRecord `json:"attendance"`
	Holidays                []string           `json:"holidays"`
	MinAttendancePercentage float64            `json:"minAttendancePercentage"`
	HistoricalData          []HistoricalRecord `json:"historicalData"`
	TrackingStartDate       string             `json:"trackingStartDate,omitempty"`
}

// ValidWeekday reports whether day is one of Mon..Sat.
func ValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known attendance status.
func ValidStatus(s string) bool {
	switch s {
	case StatusAttended, StatusAbsent, StatusCancelled, StatusPostponed:
		return true
	default:
		return false
	}
}
