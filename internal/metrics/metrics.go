// Package metrics records assignment activity.
package metrics

// Outcomes recorded for every operation.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Collector records operation metrics. Implementations must be safe for
// concurrent use.
type Collector interface {
	// RecordAssignment records one assignment request by role, assignee kind
	// and outcome.
	RecordAssignment(role, kind, outcome string, seconds float64)
	// RecordOperation records any other service operation (create_student,
	// create_mentor, reset) by outcome.
	RecordOperation(op, outcome string, seconds float64)
	// RecordStudentsMoved records how many students changed mentor in one
	// operation.
	RecordStudentsMoved(n int)
}
