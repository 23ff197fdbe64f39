package alarm

import "time"

// WeekdayTime describes one recurring weekly trigger: a weekday plus the
// alarm's time-of-day.
type WeekdayTime struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// NextOneShotFiring computes the next firing instant for a one-shot alarm.
// The candidate is built on now's calendar date at the alarm's stored
// hour/minute (zero seconds, in now's location). The hour/minute is read as
// a wall-clock component, never converted between locations, so one-shot and
// weekly alarms agree on the time of day. If the candidate is not strictly
// after now it is advanced by one calendar day, which stays correct across
// daylight-saving transitions. Pure; never fails for a valid alarm.
func NextOneShotFiring(a *Alarm, now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), a.Time.Hour(), a.Time.Minute(), 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// WeeklyFirings emits one recurring-trigger descriptor per repeat weekday,
// each carrying the alarm's hour/minute. An empty repeat set yields nil;
// callers treat that as one-shot. Order follows RepeatDays.
func WeeklyFirings(a *Alarm) []WeekdayTime {
	if !a.Repeats() {
		return nil
	}
	descriptors := make([]WeekdayTime, 0, len(a.RepeatDays))
	for _, d := range a.RepeatDays {
		descriptors = append(descriptors, WeekdayTime{
			Weekday: time.Weekday(d),
			Hour:    a.Time.Hour(),
			Minute:  a.Time.Minute(),
		})
	}
	return descriptors
}

// NextWeekdayOccurrence resolves a weekly descriptor to its next concrete
// instant after now: the coming occurrence of the descriptor's weekday at its
// hour/minute, in now's location. If that instant on today's date is not
// after now, it moves a full week ahead day by calendar day.
func NextWeekdayOccurrence(w WeekdayTime, now time.Time) time.Time {
	daysAhead := (int(w.Weekday) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day(), w.Hour, w.Minute, 0, 0, now.Location())
	candidate = candidate.AddDate(0, 0, daysAhead)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
