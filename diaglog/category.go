// Package diaglog implements the client diagnostic logging subsystem.
// It provides a leveled logging facade over pluggable sinks, best-effort
// payload sanitization, and a subscriber channel that keeps UI state in
// step with whatever the active sink accepted.
package diaglog

// Category classifies a log entry. The set is closed; severity semantics
// are fixed per category and custom categories are not supported.
type Category string

const (
	CategoryInfo    Category = "info"
	CategorySuccess Category = "success"
	CategoryWarning Category = "warning"
	CategoryError   Category = "error"
	CategoryDebug   Category = "debug"
)

// Categories returns every valid category in severity-neutral order.
func Categories() []Category {
	return []Category{
		CategoryInfo,
		CategorySuccess,
		CategoryWarning,
		CategoryError,
		CategoryDebug,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryInfo, CategorySuccess, CategoryWarning, CategoryError, CategoryDebug:
		return true
	default:
		return false
	}
}
