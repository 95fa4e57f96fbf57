// Package distributed schedules a quantum circuit across D=2^k logical
// devices, each holding a contiguous piece of the 2^N-amplitude state
// vector, inserting global/local qubit swaps so every gate executes as a
// local-only operation within its device.
package distributed

import "errors"

// Sentinel error kinds, mirroring the style of qc/dag/errors.go.
var (
	// ErrInvalidPartition is returned when a qubit partition's global set
	// is malformed: wrong size, duplicate ids, or out of circuit range.
	ErrInvalidPartition = errors.New("distributed: invalid qubit partition")

	// ErrInvalidGlobalSwap is returned when the Queue Transformer or
	// Global-Swap Engine is asked to perform a swap between two global
	// qubits (or a gate targets more than one global qubit), when a swap
	// names a qubit that does not hold the expected role, when no local
	// qubit is available to swap with, or when the swap-undo tail does not
	// restore the initial global set (an internal invariant violation that
	// indicates a transform bug).
	ErrInvalidGlobalSwap = errors.New("distributed: invalid global-global swap or unresolved transform")

	// ErrInsufficientQubits is returned when a gate's target span would
	// need more local qubits than the partition leaves available.
	ErrInsufficientQubits = errors.New("distributed: insufficient local qubits for gate")

	// ErrInvalidConfig is returned for malformed accelerator/device
	// configuration (e.g. a non power-of-two device count).
	ErrInvalidConfig = errors.New("distributed: invalid configuration")

	// ErrPlanEmpty is returned when Execute is called with no queued
	// operations.
	ErrPlanEmpty = errors.New("distributed: execution plan is empty")

	// ErrResourceExhausted is returned when the pieces or the amplitude
	// vector handed to the Global-Swap Engine, Merge or Split do not match
	// the partition's piece count, piece size or state size. Allocation
	// failures and deadlines are not detected.
	ErrResourceExhausted = errors.New("distributed: resource exhausted")

	// ErrUnsupportedFeature is returned for a special gate the
	// Special-Gate Bridge has no handler for. Swaps between two global
	// qubits are rejected with ErrInvalidGlobalSwap instead.
	ErrUnsupportedFeature = errors.New("distributed: unsupported feature")
)
