package imk

import (
	"fmt"
	"math"
	"strings"
)

// Material is a uniaxial IMK hysteretic material with pinching. It keeps one
// committed and one trial state; every trial evaluation starts from the
// committed state, so repeated SetTrialStrain calls within a step do not
// accumulate.
//
// A Material is not safe for concurrent use. Distinct instances share nothing.
type Material struct {
	Tag int

	law       *Law
	committed State
	trial     State
}

// New creates a material in its virgin state
func New(tag int, p Params) (*Material, error) {
	law, err := NewLaw(p)
	if err != nil {
		return nil, err
	}
	m := &Material{Tag: tag, law: law}
	m.committed = law.Start()
	m.trial = m.committed
	return m, nil
}

// SetTrialStrain evaluates the trial state at deformation u from the
// committed state. A non-finite u is rejected and leaves the trial state at
// the committed state.
func (m *Material) SetTrialStrain(u float64) error {
	m.trial = m.committed
	if math.IsNaN(u) || math.IsInf(u, 0) {
		return ErrInvalidStrain
	}
	m.trial = m.law.Update(m.committed, u)
	return nil
}

// CommitState accepts the trial state
func (m *Material) CommitState() { m.committed = m.trial }

// RevertToLastCommit discards the trial state
func (m *Material) RevertToLastCommit() { m.trial = m.committed }

// RevertToStart returns the material to its virgin state, deriving the
// initial values again from the parameters
func (m *Material) RevertToStart() {
	m.law = &Law{P: m.law.P, Ini: NewInitial(m.law.P)}
	m.committed = m.law.Start()
	m.trial = m.committed
}

// Clone returns an independent copy with identical state
func (m *Material) Clone() *Material {
	c := *m
	law := *m.law
	c.law = &law
	return &c
}

// Stress returns the trial force
func (m *Material) Stress() float64 { return m.trial.F }

// Tangent returns the trial tangent; never exactly zero
func (m *Material) Tangent() float64 { return m.trial.Kreport }

// InitialTangent returns the elastic stiffness
func (m *Material) InitialTangent() float64 { return m.law.P.Ke }

// Strain returns the trial deformation
func (m *Material) Strain() float64 { return m.trial.U }

// Failed tells whether the trial state has failed
func (m *Material) Failed() bool { return m.trial.Failed }

// Branch returns the trial branch
func (m *Material) Branch() Branch { return m.trial.Branch }

// Energy returns the cumulative dissipated energy of the trial state
func (m *Material) Energy() float64 { return m.trial.EngAcml }

// Trial returns a copy of the trial state
func (m *Material) Trial() State { return m.trial }

// Committed returns a copy of the committed state
func (m *Material) Committed() State { return m.committed }

// Params returns the input parameters
func (m *Material) Params() Params { return m.law.P }

// Initial returns the quantities derived at construction
func (m *Material) Initial() Initial { return m.law.Ini }

func (m *Material) String() string {
	p, s := m.law.P, m.trial
	var b strings.Builder
	fmt.Fprintf(&b, "IMKPinching tag: %d\n", m.Tag)
	fmt.Fprintf(&b, "  Ke: %g\n", p.Ke)
	fmt.Fprintf(&b, "  pos: Up0=%g Upc0=%g Uu0=%g Fy0=%g FcapFy0=%g FresFy0=%g\n",
		p.Pos.Up0, p.Pos.Upc0, p.Pos.Uu0, p.Pos.Fy0, p.Pos.FcapFy0, p.Pos.FresFy0)
	fmt.Fprintf(&b, "  neg: Up0=%g Upc0=%g Uu0=%g Fy0=%g FcapFy0=%g FresFy0=%g\n",
		p.Neg.Up0, p.Neg.Upc0, p.Neg.Uu0, p.Neg.Fy0, p.Neg.FcapFy0, p.Neg.FresFy0)
	fmt.Fprintf(&b, "  lambda: S=%g C=%g A=%g K=%g  c: S=%g C=%g A=%g K=%g\n",
		p.LambdaS, p.LambdaC, p.LambdaA, p.LambdaK, p.CS, p.CC, p.CA, p.CK)
	fmt.Fprintf(&b, "  D: pos=%g neg=%g  kappa: F=%g D=%g\n", p.DPos, p.DNeg, p.KappaF, p.KappaD)
	fmt.Fprintf(&b, "  state: u=%g f=%g k=%g branch=%s failed=%t", s.U, s.F, s.Kreport, s.Branch, s.Failed)
	return b.String()
}

// Snapshot is the named record of a material used for persistence
type Snapshot struct {
	Tag       int     `json:"tag"`
	Params    Params  `json:"params"`
	Initial   Initial `json:"initial"`
	Trial     State   `json:"trial"`
	Committed State   `json:"committed"`
}

// Snapshot returns the complete record of the material
func (m *Material) Snapshot() Snapshot {
	return Snapshot{
		Tag:       m.Tag,
		Params:    m.law.P,
		Initial:   m.law.Ini,
		Trial:     m.trial,
		Committed: m.committed,
	}
}

// Restore rebuilds a material from a snapshot. The parameters are validated
// again; the initial values are taken from the record.
func Restore(s Snapshot) (*Material, error) {
	if err := s.Params.Validate(); err != nil {
		return nil, err
	}
	return &Material{
		Tag:       s.Tag,
		law:       &Law{P: s.Params, Ini: s.Initial},
		committed: s.Committed,
		trial:     s.Trial,
	}, nil
}
