package imk

import (
	"fmt"
	"math"
)

// VectorSize is the length of the flat transport vector
const VectorSize = 137

// slots of the flat vector
const (
	slotTag       = 0
	slotParams    = 1  // 25 parameters in argument order
	slotInitial   = 31 // 14 derived values
	slotTrial     = 50 // base of the trial state group
	slotCommitted = 100
)

// offsets within a state group
const (
	offPos      = 1 // 12 positive backbone values
	offU        = 13
	offUi       = 14
	offF        = 15
	offKtangent = 16
	offKunload  = 17
	offEngAcml  = 18
	offEngDspt  = 19
	offNeg      = 21 // 12 negative backbone values
	offFpinch   = 33
	offUpinch   = 34
	offFailed   = 35
	offBranch   = 36
)

// SendSelf encodes the material into the flat vector used for transport
// between processes. The reported tangent is not part of the layout.
func (m *Material) SendSelf() []float64 {
	v := make([]float64, VectorSize)
	v[slotTag] = float64(m.Tag)
	copy(v[slotParams:], m.law.P.Slice())
	copy(v[slotInitial:], m.law.Ini.slice())
	putState(v[slotTrial:], &m.trial)
	putState(v[slotCommitted:], &m.committed)
	return v
}

// RecvSelf decodes a vector produced by SendSelf. On error the tag is reset
// to 0 and the error wraps ErrTransport.
func (m *Material) RecvSelf(v []float64) (err error) {
	defer func() {
		if err != nil {
			m.Tag = 0
			err = fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}()
	if len(v) != VectorSize {
		return fmt.Errorf("vector has %d slots, want %d", len(v), VectorSize)
	}
	p, err := ParamsFromSlice(v[slotParams : slotParams+NumParams])
	if err != nil {
		return err
	}
	var trial, committed State
	if err = getState(v[slotTrial:], &trial); err != nil {
		return err
	}
	if err = getState(v[slotCommitted:], &committed); err != nil {
		return err
	}
	m.Tag = int(v[slotTag])
	m.law = &Law{P: p, Ini: initialFromSlice(v[slotInitial:])}
	m.trial = trial
	m.committed = committed
	return nil
}

func (ini Initial) slice() []float64 {
	return []float64{
		ini.PosUy0, ini.PosUcap0, ini.PosFcap0, ini.PosKp0, ini.PosKpc0,
		ini.NegUy0, ini.NegUcap0, ini.NegFcap0, ini.NegKp0, ini.NegKpc0,
		ini.EngRefS, ini.EngRefC, ini.EngRefA, ini.EngRefK,
	}
}

func initialFromSlice(v []float64) Initial {
	return Initial{
		PosUy0: v[0], PosUcap0: v[1], PosFcap0: v[2], PosKp0: v[3], PosKpc0: v[4],
		NegUy0: v[5], NegUcap0: v[6], NegFcap0: v[7], NegKp0: v[8], NegKpc0: v[9],
		EngRefS: v[10], EngRefC: v[11], EngRefA: v[12], EngRefK: v[13],
	}
}

func (b *Backbone) slice() []float64 {
	return []float64{b.Uy, b.Fy, b.Ucap, b.Fcap, b.Ulocal, b.Flocal, b.Uglobal, b.Fglobal, b.Ures, b.Fres, b.Kp, b.Kpc}
}

func backboneFromSlice(v []float64) Backbone {
	return Backbone{
		Uy: v[0], Fy: v[1], Ucap: v[2], Fcap: v[3],
		Ulocal: v[4], Flocal: v[5], Uglobal: v[6], Fglobal: v[7],
		Ures: v[8], Fres: v[9], Kp: v[10], Kpc: v[11],
	}
}

// putState writes one state group starting at g[0]
func putState(g []float64, s *State) {
	copy(g[offPos:], s.Pos.slice())
	copy(g[offNeg:], s.Neg.slice())
	g[offU] = s.U
	g[offUi] = s.U
	g[offF] = s.F
	g[offKtangent] = s.Ktangent
	g[offKunload] = s.Kunload
	g[offEngAcml] = s.EngAcml
	g[offEngDspt] = s.EngDspt
	g[offFpinch] = s.Fpinch
	g[offUpinch] = s.Upinch
	if s.Failed {
		g[offFailed] = 1
	}
	g[offBranch] = float64(s.Branch.Code())
}

// getState reads one state group starting at g[0]
func getState(g []float64, s *State) error {
	code := g[offBranch]
	if code != math.Trunc(code) {
		return fmt.Errorf("branch code %g is not an integer", code)
	}
	br, err := BranchFromCode(int(code))
	if err != nil {
		return err
	}
	*s = State{
		Pos:      backboneFromSlice(g[offPos : offPos+12]),
		Neg:      backboneFromSlice(g[offNeg : offNeg+12]),
		Upinch:   g[offUpinch],
		Fpinch:   g[offFpinch],
		U:        g[offU],
		F:        g[offF],
		Ktangent: g[offKtangent],
		Kunload:  g[offKunload],
		Kreport:  floorTangent(g[offKtangent]),
		EngAcml:  g[offEngAcml],
		EngDspt:  g[offEngDspt],
		Failed:   g[offFailed] != 0,
		Branch:   br,
	}
	if s.Failed {
		s.Kreport = TangentFloor
	}
	return nil
}
