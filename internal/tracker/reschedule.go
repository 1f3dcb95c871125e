package tracker

import (
	"github.com/Karthikeyadusa/Attendly-sub000/internal/model"
)

// rescheduleClass moves one occurrence of a slot to a new date/time. The
// original occurrence is marked Postponed and a one-off slot is created at
// the target. When the slot being moved is itself a rescheduled one-off,
// the new one-off carries the deepest origin and the intermediate one-off
// is dropped. Rescheduling an occurrence that is already postponed replaces
// its earlier move, so an origin keeps exactly one one-off pointing at it
// and undo restores that occurrence.
func rescheduleClass(s State, slotID, originalDate, newDate, newStart, newEnd, newID string) (State, error) {
	if newStart >= newEnd {
		return s, ErrInvalidInput
	}
	if _, err := parseDate(newDate); err != nil {
		return s, ErrInvalidInput
	}
	if _, err := parseDate(originalDate); err != nil {
		return s, ErrInvalidInput
	}

	var (
		subjectID    string
		originSlotID string
		originDate   string
		dropOneOff   string
	)

	if slot, ok := s.timeSlot(slotID); ok {
		subjectID = slot.SubjectID
		originSlotID = slotID
		originDate = originalDate
	} else if oneOff, ok := s.oneOffSlot(slotID); ok {
		subjectID = oneOff.SubjectID
		if oneOff.OriginalSlotID != "" {
			originSlotID = oneOff.OriginalSlotID
			originDate = oneOff.OriginalDate
			dropOneOff = oneOff.ID
		} else {
			originSlotID = oneOff.ID
			originDate = oneOff.Date
		}
	} else {
		return s, ErrNotFound
	}

	subject, ok := s.subject(subjectID)
	if !ok {
		return s, ErrNotFound
	}

	drop := map[string]bool{}
	if dropOneOff != "" {
		drop[dropOneOff] = true
	}
	// Any one-off already pointing at the origin belongs to an earlier move
	// of the same occurrence; the new move replaces it.
	for _, slot := range s.OneOffSlots {
		if slot.OriginalSlotID == originSlotID && slot.OriginalDate == originDate {
			drop[slot.ID] = true
		}
	}

	next := cloneState(s)
	if len(drop) > 0 {
		kept := next.OneOffSlots[:0]
		for _, slot := range next.OneOffSlots {
			if !drop[slot.ID] {
				kept = append(kept, slot)
			}
		}
		next.OneOffSlots = kept
		for key := range next.Attendance {
			if drop[key.SlotID] {
				delete(next.Attendance, key)
			}
		}
	}

	originKey := RecordKey{Date: originDate, SlotID: originSlotID}
	next.Attendance[originKey] = model.AttendanceRecord{
		ID:      recordID(originDate, originSlotID),
		SlotID:  originSlotID,
		Date:    originDate,
		Status:  model.StatusPostponed,
		Credits: subject.Credits,
	}

	next.OneOffSlots = append(next.OneOffSlots, model.OneOffSlot{
		ID:             newID,
		Date:           newDate,
		StartTime:      newStart,
		EndTime:        newEnd,
		SubjectID:      subjectID,
		OriginalSlotID: originSlotID,
		OriginalDate:   originDate,
	})
	return next, nil
}

// undoPostpone removes a reschedule: the one-off goes away together with
// the Postponed marker on its origin, leaving the original occurrence
// unlogged again.
func undoPostpone(s State, oneOffID string) (State, error) {
	oneOff, ok := s.oneOffSlot(oneOffID)
	if !ok {
		return s, ErrNotFound
	}
	if oneOff.OriginalSlotID == "" {
		return s, ErrInvalidInput
	}

	next := cloneState(s)
	kept := next.OneOffSlots[:0]
	for _, slot := range next.OneOffSlots {
		if slot.ID != oneOffID {
			kept = append(kept, slot)
		}
	}
	next.OneOffSlots = kept
	delete(next.Attendance, RecordKey{Date: oneOff.OriginalDate, SlotID: oneOff.OriginalSlotID})
	for key := range next.Attendance {
		if key.SlotID == oneOffID {
			delete(next.Attendance, key)
		}
	}
	return next, nil
}

// deleteOneOffSlot removes a one-off permanently. For rescheduled one-offs
// the end state matches undoPostpone; the original occurrence is restored.
// A one-off serving as the origin of a later reschedule detaches the moved
// slot instead of deleting it, mirroring deleteTimeSlot.
func deleteOneOffSlot(s State, oneOffID string) (State, error) {
	oneOff, ok := s.oneOffSlot(oneOffID)
	if !ok {
		return s, ErrNotFound
	}

	next := cloneState(s)
	kept := next.OneOffSlots[:0]
	for _, slot := range next.OneOffSlots {
		if slot.ID != oneOffID {
			kept = append(kept, slot)
		}
	}
	next.OneOffSlots = kept
	for key := range next.Attendance {
		if key.SlotID == oneOffID {
			delete(next.Attendance, key)
		}
	}
	if oneOff.OriginalSlotID != "" {
		delete(next.Attendance, RecordKey{Date: oneOff.OriginalDate, SlotID: oneOff.OriginalSlotID})
	}
	for i := range next.OneOffSlots {
		if next.OneOffSlots[i].OriginalSlotID == oneOffID {
			next.OneOffSlots[i].OriginalSlotID = ""
			next.OneOffSlots[i].OriginalDate = ""
		}
	}
	return next, nil
}
