package distributed

import (
	"fmt"
	"image"

	"github.com/00mjk/qibo/internal/logger"
	"github.com/00mjk/qibo/qc/circuit"
	"github.com/00mjk/qibo/qc/gate"
	"github.com/00mjk/qibo/qc/renderer"
)

// Result is the outcome of an Executor.Execute call.
type Result struct {
	Histogram  map[string]int
	FinalState []complex128
}

// Executor is the Executor Frontend: it accumulates operations, then on
// Execute runs Partition -> Transform -> BuildWaves -> Dispatch/Bridge,
// and exposes the resulting histogram and final amplitude vector.
// Grounded on TensorflowDistributedCircuit's _execute/.execute/
// .final_state lifecycle in original_source/distcircuit.py.
type Executor struct {
	nqubits int
	layout  *DeviceLayout
	log     *logger.Logger

	ops        []circuit.Operation
	finalState []complex128
	source     circuit.Circuit
}

// NewExecutor builds an Executor for an nqubits-qubit circuit dispatched
// across layout.NGlobal-selected global qubits (2^NGlobal devices).
func NewExecutor(nqubits int, layout *DeviceLayout, log *logger.Logger) *Executor {
	if log == nil {
		log = logger.NewLogger(logger.LoggerOptions{})
	}
	return &Executor{
		nqubits: nqubits,
		layout:  layout,
		log:     log.SpawnForService("distributed"),
	}
}

// Add appends an operation to the pending circuit, rejecting gates whose
// target span would leave fewer local qubits than the partition needs
// (spec's InsufficientQubits check), except special (zero-span) gates
// which are always allowed.
func (e *Executor) Add(op circuit.Operation) error {
	if !gate.IsSpecial(op.G) {
		targets, _ := absoluteTargetsControls(op)
		if e.nqubits-len(targets) < e.layout.NGlobal {
			return fmt.Errorf("%w: gate %s spans %d qubits, leaving fewer than %d local qubits available",
				ErrInsufficientQubits, op.G.Name(), len(targets), e.layout.NGlobal)
		}
	}
	e.ops = append(e.ops, op)
	return nil
}

// Execute runs the accumulated circuit starting from initial (or |0...0>
// if nil), returning a shot histogram and the final amplitude vector.
func (e *Executor) Execute(initial []complex128, nshots int) (*Result, error) {
	if len(e.ops) == 0 {
		return nil, ErrPlanEmpty
	}

	allQubits := make([][]int, len(e.ops))
	for i, op := range e.ops {
		allQubits[i] = op.Qubits
	}
	counter := GateQubitCounter(e.nqubits, allQubits)
	global := ChooseInitialGlobal(counter, e.layout.NGlobal)

	partition, err := NewPartition(e.nqubits, global)
	if err != nil {
		return nil, err
	}
	e.log.Info().Ints("global", partition.Global).Msg("partition chosen")

	tr, err := Transform(e.ops, partition)
	if err != nil {
		return nil, err
	}
	e.log.Info().Int("steps", len(tr.Steps)).Msg("queue transformed")

	plan, err := BuildWaves(tr, partition, e.layout.Devices)
	if err != nil {
		return nil, err
	}
	e.log.Info().Int("waves", len(plan.Waves)).Msg("waves built")

	var pieces []Piece
	if initial == nil {
		pieces = NewPieces(partition)
	} else {
		pieces, err = Split(initial, partition)
		if err != nil {
			return nil, err
		}
	}

	dispatcher := Dispatcher{}
	bridge := Bridge{}
	for i, w := range plan.Waves {
		switch w.Kind {
		case WaveGates:
			if err := dispatcher.RunWave(w, pieces, plan.Devices); err != nil {
				return nil, fmt.Errorf("wave %d: %w", i, err)
			}
		case WaveSwap:
			if err := bridge.RunSwap(w, pieces, partition); err != nil {
				return nil, fmt.Errorf("wave %d: %w", i, err)
			}
		case WaveSpecial:
			pieces, err = bridge.RunSpecial(w, pieces, partition)
			if err != nil {
				return nil, fmt.Errorf("wave %d: %w", i, err)
			}
		}
	}

	full, err := Merge(pieces, partition)
	if err != nil {
		return nil, err
	}
	e.finalState = full

	if nshots <= 0 {
		nshots = 1024
	}
	return &Result{
		Histogram:  Sample(full, e.nqubits, nshots),
		FinalState: full,
	}, nil
}

// FinalState returns the amplitude vector from the last Execute call, or
// nil if Execute has not run.
func (e *Executor) FinalState() []complex128 { return e.finalState }

// SetSourceCircuit attaches the pre-transform circuit this executor's
// operations were taken from, enabling Diagram. Purely informational: it
// plays no role in Execute.
func (e *Executor) SetSourceCircuit(c circuit.Circuit) { e.source = c }

// Diagram renders the pre-transform circuit this executor is scheduling,
// the way internal/app's single-device handler renders its circuit image.
func (e *Executor) Diagram() (image.Image, error) {
	if e.source == nil {
		return nil, fmt.Errorf("distributed: no source circuit attached, call SetSourceCircuit first")
	}
	r := renderer.NewRenderer(60)
	return r.Render(e.source)
}
