package distributed

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/00mjk/qibo/qc/circuit"
)

// Commuter is an optional capability interface an operation's gate can
// implement to report exact commutation with another operation. When a
// gate does not implement it, the Queue Transformer falls back to the
// conservative defaultCommutes rule.
type Commuter interface {
	CommutesWith(other circuit.Operation) bool
}

// currentDevice tracks the currently "entered" device name, the Go analogue
// of the original's `with tf.device(name): ...` context manager. There is
// no defer-free equivalent, so callers do:
//
//	leave := distributed.WithDevice("device0")
//	defer leave()
//
// The Parallel Dispatcher enters a scope per goroutine purely to bracket
// its own work (logging, diagnostics); nothing reads another goroutine's
// scope mid-dispatch, so the single shared slot never needs to represent
// more than one "current" device at a time for correctness. The mutex
// exists only to keep concurrent enter/leave calls memory-safe.
var currentDevice struct {
	mu   sync.Mutex
	name string
}

// WithDevice enters a named device scope and returns a function that
// leaves it. Used by the Parallel Dispatcher to scope per-device work the
// way the original scopes TensorFlow ops to a device string.
func WithDevice(name string) func() {
	currentDevice.mu.Lock()
	prev := currentDevice.name
	currentDevice.name = name
	currentDevice.mu.Unlock()

	return func() {
		currentDevice.mu.Lock()
		currentDevice.name = prev
		currentDevice.mu.Unlock()
	}
}

// CurrentDevice returns the name of the innermost entered device scope, or
// "" if none is active.
func CurrentDevice() string {
	currentDevice.mu.Lock()
	defer currentDevice.mu.Unlock()
	return currentDevice.name
}

// DeviceName returns the canonical name for device index i, e.g. "device0".
func DeviceName(i int) string { return fmt.Sprintf("device%d", i) }

// Sample draws nshots computational-basis measurements from a full
// amplitude vector, grounded on qc/simulator/qsim/state.go's probability-
// from-amplitude Measure logic generalized to the whole register.
func Sample(full []complex128, nqubits, nshots int) map[string]int {
	probs := make([]float64, len(full))
	var total float64
	for i, amp := range full {
		p := real(amp)*real(amp) + imag(amp)*imag(amp)
		probs[i] = p
		total += p
	}
	if total == 0 {
		total = 1
	}

	hist := make(map[string]int)
	for s := 0; s < nshots; s++ {
		r := rand.Float64() * total
		var acc float64
		idx := len(probs) - 1
		for i, p := range probs {
			acc += p
			if r <= acc {
				idx = i
				break
			}
		}
		hist[fmt.Sprintf("%0*b", nqubits, idx)]++
	}
	return hist
}

// Probabilities returns the full computational-basis probability
// distribution without sampling, for property-based tests.
func Probabilities(full []complex128) []float64 {
	out := make([]float64, len(full))
	for i, amp := range full {
		out[i] = real(amp)*real(amp) + imag(amp)*imag(amp)
	}
	return out
}

// Normalize rescales amplitudes so probabilities sum to 1. A zero vector
// is left unchanged.
func Normalize(full []complex128) {
	var total float64
	for _, amp := range full {
		total += real(amp)*real(amp) + imag(amp)*imag(amp)
	}
	if total == 0 {
		return
	}
	norm := 1 / math.Sqrt(total)
	for i := range full {
		full[i] *= complex(norm, 0)
	}
}
