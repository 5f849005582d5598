package domain

// Category identifies a component mapping table
type Category string

const (
	CategoryCPU     Category = "cpu"
	CategoryGPU     Category = "gpu"
	CategoryRAM     Category = "ram"
	CategoryStorage Category = "storage"
	CategoryDisplay Category = "display"
	CategoryColor   Category = "color"
)

// ComponentCategories lists the categories in metafield emission order
var ComponentCategories = []Category{
	CategoryCPU,
	CategoryGPU,
	CategoryRAM,
	CategoryStorage,
	CategoryDisplay,
	CategoryColor,
}

// IsValid checks if the category is a known component table
func (c Category) IsValid() bool {
	switch c {
	case CategoryCPU, CategoryGPU, CategoryRAM,
		CategoryStorage, CategoryDisplay, CategoryColor:
		return true
	default:
		return false
	}
}

// RunStatus represents the status of an import run
type RunStatus string

const (
	RunStatusRunning             RunStatus = "RUNNING"
	RunStatusCompleted           RunStatus = "COMPLETED"
	RunStatusCompletedWithErrors RunStatus = "COMPLETED_WITH_ERRORS"
	RunStatusFailed              RunStatus = "FAILED"
)

// IsValid checks if the run status is valid
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusRunning, RunStatusCompleted,
		RunStatusCompletedWithErrors, RunStatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s RunStatus) CanTransitionTo(newStatus RunStatus) bool {
	switch s {
	case RunStatusRunning:
		return newStatus == RunStatusCompleted ||
			newStatus == RunStatusCompletedWithErrors ||
			newStatus == RunStatusFailed
	default:
		return false // Terminal states
	}
}

// ResultStatus represents the per-product outcome
type ResultStatus string

const (
	ResultStatusCreated ResultStatus = "CREATED"
	ResultStatusFailed  ResultStatus = "FAILED"
	ResultStatusSkipped ResultStatus = "SKIPPED"
)

// IsValid checks if the result status is valid
func (s ResultStatus) IsValid() bool {
	switch s {
	case ResultStatusCreated, ResultStatusFailed, ResultStatusSkipped:
		return true
	default:
		return false
	}
}
