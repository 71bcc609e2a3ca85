package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Board is a named collection of tasks.
type Board struct {
	ID        string
	Title     string
	OwnerID   string
	CreatedAt time.Time
}

// TaskStatus is the kanban column of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is a known column.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

// Task is a kanban card. Duration is the free-form declared duration ("2h", "30m").
type Task struct {
	ID          string
	BoardID     string
	Title       string
	Description string
	Duration    string
	Status      TaskStatus
	Position    int
	Backlog     bool
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParseTaskDuration parses a declared duration. Go duration syntax is accepted
// ("1h30m"), as are numbers followed by an hour or minute unit ("1 hour",
// "90 minutes", "3hrs") and fractional hours ("1.5h").
// Unparseable or non-positive values yield zero, which disables backlog tracking.
func ParseTaskDuration(raw string) time.Duration {
	raw = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	if raw == "" {
		return 0
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d < 0 {
			return 0
		}
		return d
	}

	split := strings.IndexFunc(raw, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	if split <= 0 {
		return 0
	}
	unit, ok := durationUnits[raw[split:]]
	if !ok {
		return 0
	}
	value, err := strconv.ParseFloat(raw[:split], 64)
	if err != nil || value <= 0 || math.IsInf(value, 0) {
		return 0
	}
	return time.Duration(value * float64(unit))
}

var durationUnits = map[string]time.Duration{
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
}

// BacklogDue reports whether the task's declared duration elapsed at now while it
// is still incomplete and not yet marked.
func (t *Task) BacklogDue(now time.Time) bool {
	if t.Completed || t.Backlog {
		return false
	}
	d := ParseTaskDuration(t.Duration)
	if d <= 0 {
		return false
	}
	return t.CreatedAt.Add(d).Before(now)
}

// BoardSummary aggregates the three kanban buckets of a board.
type BoardSummary struct {
	Total             int `json:"total"`
	Active            int `json:"active"`
	Backlog           int `json:"backlog"`
	Completed         int `json:"completed"`
	CompletionPercent int `json:"completion_percent"`
}

// SummarizeTasks splits tasks into active, backlog and completed counts.
func SummarizeTasks(tasks []Task) BoardSummary {
	summary := BoardSummary{Total: len(tasks)}
	for _, t := range tasks {
		switch {
		case t.Completed:
			summary.Completed++
		case t.Backlog:
			summary.Backlog++
		default:
			summary.Active++
		}
	}
	if summary.Total > 0 {
		summary.CompletionPercent = int(math.Round(float64(summary.Completed) / float64(summary.Total) * 100))
	}
	return summary
}
