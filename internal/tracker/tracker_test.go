package tracker

import (
	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

// Fixture dates: 2024-03-04 is a Monday, 2024-03-03 and 2024-03-10 are
// Sundays.
const (
	monday  = "2024-03-04"
	tuesday = "2024-03-05"
	sunday  = "2024-03-03"
)

var mondays2024 = []string{
	"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29",
	"2024-02-05", "2024-02-12", "2024-02-19", "2024-02-26", "2024-03-04",
}

func physicsState() State {
	s := NewState()
	s.Subjects = append(s.Subjects, model.Subject{ID: "sub-phy", Name: "Physics", Type: model.TypeLecture, Credits: 3})
	s.Timetable = append(s.Timetable, model.TimeSlot{ID: "slot-phy", Day: "Mon", StartTime: "09:00", EndTime: "10:00", SubjectID: "sub-phy"})
	return s
}

func withChemistry(s State) State {
	s.Subjects = append(s.Subjects, model.Subject{ID: "sub-chem", Name: "Chemistry", Type: model.TypeLab, Credits: 2})
	s.Timetable = append(s.Timetable, model.TimeSlot{ID: "slot-chem", Day: "Mon", StartTime: "11:00", EndTime: "13:00", SubjectID: "sub-chem"})
	return s
}
