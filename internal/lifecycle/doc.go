// Package lifecycle is the pure segment state machine.
//
// It validates whether a requested status transition is legal given the
// current status and the stated preconditions. It performs no I/O: the
// orchestrator does the actual work and asks this package whether the
// resulting transition may be recorded.
package lifecycle
