package models

// PriorityLevel is the importance of a todo item.
type PriorityLevel int

// Priority levels.
const (
	PriorityNone PriorityLevel = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// PriorityLevels returns all priority levels in ascending order.
func PriorityLevels() []PriorityLevel {
	return []PriorityLevel{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh}
}

func (p PriorityLevel) String() string {
	switch p {
	case PriorityNone:
		return "None"
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// Valid returns true if p is a known priority level.
func (p PriorityLevel) Valid() bool {
	return p >= PriorityNone && p <= PriorityHigh
}
