package model

import "time"

const dueDateLayout = "2006-01-02"

// ParseDueDate parses a task due date. The date is interpreted as midnight
// UTC, matching how the web client reads ISO dates.
func ParseDueDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(dueDateLayout, s)
	if err != nil {
		// Some endpoints serialize full timestamps.
		d, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, false
		}
	}
	return d, true
}

// ActiveTasks returns the tasks shown in the default task view: every task
// that is not complete, plus complete tasks whose due date is still strictly
// in the future. Input order is preserved.
//
// A complete task with a future due date counting as active is a product
// policy awaiting confirmation; keep it as is.
func ActiveTasks(tasks []Task, now time.Time) []Task {
	active := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status != TaskComplete {
			active = append(active, t)
			continue
		}
		if due, ok := ParseDueDate(t.DueDate); ok && due.After(now) {
			active = append(active, t)
		}
	}
	return active
}

// TasksForTeam keeps the tasks whose team is teamID, in input order.
func TasksForTeam(tasks []Task, teamID int) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.BelongsTo(teamID) {
			out = append(out, t)
		}
	}
	return out
}

// IsPastDue reports whether an unfinished task's due day is before today.
// Days are compared on the calendar of now's location.
func IsPastDue(t Task, now time.Time) bool {
	if t.Status == TaskComplete {
		return false
	}
	due, ok := ParseDueDate(t.DueDate)
	if !ok {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
	return dueDay.Before(today)
}
