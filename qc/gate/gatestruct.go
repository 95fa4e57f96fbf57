package gate

// GateStruct is the mutable counterpart to the immutable singleton gates in
// builtin.go: its target/control qubits are settable fields rather than
// fixed return values, which the distributed reduced-gate representation
// needs when it remaps qubit ids after a swap or strips global controls
// into an activation mask. It satisfies the Gate interface so it can be
// dispatched through the same code paths as the builtin gates.
type (
	// gateType is the type of a quantum gate.
	gateType string
	// GateStruct is a quantum gate with settable target/control qubits.
	GateStruct struct {
		Type          gateType `json:"name"`
		TargetQubits  []int    `json:"targets"`
		ControlQubits []int    `json:"controls"`
	}
)

const (
	HGate       gateType = "H"
	XGate       gateType = "X"
	YGate       gateType = "Y"
	SGate       gateType = "S"
	CNotGate    gateType = "CNOT"
	ToffoliGate gateType = "Toffoli"
	ZGate       gateType = "Z"
	CZGate      gateType = "CZ"
	Measurement gateType = "M"
	SwapGate    gateType = "SWAP"
	FredkinGate gateType = "Fredkin"
)

// NewXGate returns a new XGate.
func NewXGate(target int) *GateStruct {
	return &GateStruct{Type: XGate, TargetQubits: []int{target}}
}

// NewHGate returns a new HGate.
func NewHGate(target int) *GateStruct {
	return &GateStruct{Type: HGate, TargetQubits: []int{target}}
}

// NewZGate returns a new ZGate.
func NewZGate(target int) *GateStruct {
	return &GateStruct{Type: ZGate, TargetQubits: []int{target}}
}

// NewMeasurement returns a new Measurement.
func NewMeasurement(target int) *GateStruct {
	return &GateStruct{Type: Measurement, TargetQubits: []int{target}}
}

// NewCNotGate returns a new CNotGate.
func NewCNotGate(control int, target int) *GateStruct {
	return &GateStruct{Type: CNotGate, TargetQubits: []int{target}, ControlQubits: []int{control}}
}

// NewCZGate returns a new CZGate.
func NewCZGate(control int, target int) *GateStruct {
	return &GateStruct{Type: CZGate, TargetQubits: []int{target}, ControlQubits: []int{control}}
}

// NewToffoliGate returns a new TofoliGate.
func NewToffoliGate(control0 int, control1 int, target int) *GateStruct {
	return &GateStruct{Type: ToffoliGate, TargetQubits: []int{target}, ControlQubits: []int{control0, control1}}
}

// NewSwapGate returns a new SwapGate.
func NewSwapGate(target0 int, target1 int) *GateStruct {
	return &GateStruct{Type: SwapGate, TargetQubits: []int{target0, target1}}
}

// NewFredkinGate returns a new FredkinGate.
func NewFredkinGate(control int, target0 int, target1 int) *GateStruct {
	return &GateStruct{Type: FredkinGate, TargetQubits: []int{target0, target1}, ControlQubits: []int{control}}
}

// NewGateStruct builds a GateStruct from a canonical gate name plus
// explicit target/control qubit lists, for callers (the reduced-gate
// builder) that remap qubit ids generically rather than per gate kind.
func NewGateStruct(name string, targets, controls []int) *GateStruct {
	return &GateStruct{Type: gateType(name), TargetQubits: targets, ControlQubits: controls}
}

var gateSymbols = map[gateType]string{
	HGate:       "H",
	XGate:       "X",
	YGate:       "Y",
	SGate:       "S",
	CNotGate:    "⊕",
	ToffoliGate: "T",
	ZGate:       "Z",
	CZGate:      "●",
	Measurement: "M",
	SwapGate:    "×",
	FredkinGate: "F",
}

// Name returns the gate's type as a string, matching the Gate interface.
func (g *GateStruct) Name() string { return string(g.Type) }

// QubitSpan returns the number of distinct qubits this gate acts on.
func (g *GateStruct) QubitSpan() int { return len(g.TargetQubits) + len(g.ControlQubits) }

// DrawSymbol returns a renderer symbol, falling back to the type name.
func (g *GateStruct) DrawSymbol() string {
	if s, ok := gateSymbols[g.Type]; ok {
		return s
	}
	return string(g.Type)
}

// Targets returns target qubit indices, satisfying the Gate interface.
func (g *GateStruct) Targets() []int { return g.TargetQubits }

// Controls returns control qubit indices, satisfying the Gate interface.
func (g *GateStruct) Controls() []int { return g.ControlQubits }
