package calendar

import (
	"sync"
	"time"
	_ "time/tzdata" // Europe/Vilnius must resolve on hosts without zoneinfo
)

// SlotDuration is the length of every appointment slot.
const SlotDuration = time.Hour

// WindowDays is the length of the default availability window.
const WindowDays = 14

// BusinessHours are the local start hours offered each business day.
var BusinessHours = []int{10, 11, 12, 13, 14, 15, 16, 17}

var lithuanianWeekdays = map[time.Weekday]string{
	time.Monday:    "Pirmadienis",
	time.Tuesday:   "Antradienis",
	time.Wednesday: "Trečiadienis",
	time.Thursday:  "Ketvirtadienis",
	time.Friday:    "Penktadienis",
	time.Saturday:  "Šeštadienis",
	time.Sunday:    "Sekmadienis",
}

var (
	referenceOnce sync.Once
	referenceLoc  *time.Location
)

// ReferenceLocation returns the Europe/Vilnius location.
func ReferenceLocation() *time.Location {
	referenceOnce.Do(func() {
		loc, err := time.LoadLocation(ReferenceTimezone)
		if err != nil {
			// unreachable with time/tzdata linked in
			panic("calendar: load " + ReferenceTimezone + ": " + err.Error())
		}
		referenceLoc = loc
	})
	return referenceLoc
}

// DayName returns the Lithuanian weekday name.
func DayName(d time.Weekday) string {
	return lithuanianWeekdays[d]
}

// LocalDate truncates t to midnight of its calendar date in the reference zone.
func LocalDate(t time.Time) time.Time {
	loc := ReferenceLocation()
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DefaultWindow returns [tomorrow, tomorrow+14d) in the reference zone.
func DefaultWindow(now time.Time) (start, end time.Time) {
	start = LocalDate(now).AddDate(0, 0, 1)
	end = start.AddDate(0, 0, WindowDays)
	return start, end
}

// GenerateSlotGrid produces one DayAvailability skeleton per weekday in
// [start, end). Weekends contribute nothing. Slots are not yet resolved.
func GenerateSlotGrid(start, end time.Time) []DayAvailability {
	loc := ReferenceLocation()
	day := LocalDate(start)
	last := LocalDate(end)

	days := make([]DayAvailability, 0, WindowDays)
	for ; day.Before(last); day = day.AddDate(0, 0, 1) {
		weekday := day.Weekday()
		if weekday == time.Saturday || weekday == time.Sunday {
			continue
		}

		slots := make([]TimeSlot, 0, len(BusinessHours))
		for _, hour := range BusinessHours {
			slotStart := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc)
			slots = append(slots, TimeSlot{
				Datetime: slotStart.UTC().Format(SlotTimeFormat),
				start:    slotStart,
			})
		}

		days = append(days, DayAvailability{
			Date:    day.Format(DateFormat),
			DayName: DayName(weekday),
			Slots:   slots,
		})
	}
	return days
}
