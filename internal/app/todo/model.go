package todo

import (
	"fmt"
	"strings"
)

const DefaultCategory = "General"

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority accepts any casing of Low, Medium or High. An empty value
// yields PriorityMedium.
func ParsePriority(value string) (Priority, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return PriorityMedium, nil
	}

	for _, p := range Priorities {
		if strings.EqualFold(value, string(p)) {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, value)
}

type Todo struct {
	ID       uint64   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Task     string   `json:"task"`
	Done     bool     `json:"done"`
	Category string   `json:"category"`
	DueDate  string   `json:"due_date"`
	Priority Priority `json:"priority"`
}
