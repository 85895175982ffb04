package imk

import (
	"errors"
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func newSimple(tst *testing.T) *Material {
	m, err := New(1, simpleParams())
	if err != nil {
		tst.Fatalf("New failed: %v\n", err)
	}
	return m
}

// step sets the trial strain and commits it
func step(tst *testing.T, m *Material, u float64) {
	if err := m.SetTrialStrain(u); err != nil {
		tst.Fatalf("SetTrialStrain(%g) failed: %v\n", u, err)
	}
	m.CommitState()
}

func checkBranch(tst *testing.T, m *Material, want Branch) {
	if got := m.Branch(); got != want {
		tst.Errorf("branch: got %v, want %v\n", got, want)
	}
}

// cyclic builds a symmetric history with one cycle per amplitude
func cyclic(amps []float64, dx float64) (h []float64) {
	u := 0.0
	for _, a := range amps {
		for _, t := range []float64{a, -a} {
			n := int(math.Ceil(math.Abs(t-u) / dx))
			for i := 1; i <= n; i++ {
				h = append(h, u+(t-u)*float64(i)/float64(n))
			}
			u = t
		}
	}
	return
}

func Test_material01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("material01. elastic and yielding")

	m := newSimple(tst)
	chk.Float64(tst, "K0", 1e-17, m.InitialTangent(), 1000)
	chk.Float64(tst, "K start", 1e-17, m.Tangent(), 1000)

	m.SetTrialStrain(0.05)
	chk.Float64(tst, "F", 1e-12, m.Stress(), 50)
	chk.Float64(tst, "K", 1e-12, m.Tangent(), 1000)
	chk.Float64(tst, "U", 1e-17, m.Strain(), 0.05)
	checkBranch(tst, m, BranchElastic)
	m.CommitState()

	m.SetTrialStrain(0.12)
	chk.Float64(tst, "F", 1e-10, m.Stress(), 108)
	chk.Float64(tst, "K secant", 1e-8, m.Tangent(), 58/0.07)
	checkBranch(tst, m, Directed(PostYield, 1))

	// repeated trials never accumulate
	m.SetTrialStrain(0.3)
	m.SetTrialStrain(0.12)
	chk.Float64(tst, "F again", 1e-10, m.Stress(), 108)

	m.RevertToLastCommit()
	chk.Float64(tst, "F reverted", 1e-12, m.Stress(), 50)
	chk.Float64(tst, "U reverted", 1e-17, m.Strain(), 0.05)
}

func Test_material02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("material02. backbone to failure")

	m := newSimple(tst)

	step(tst, m, 0.12)
	chk.Float64(tst, "F", 1e-10, m.Stress(), 108)
	chk.Float64(tst, "K", 1e-8, m.Tangent(), 900)
	chk.Float64(tst, "E", 1e-10, m.Energy(), 0.5*108*0.12)

	step(tst, m, 0.13)
	chk.Float64(tst, "F", 1e-10, m.Stress(), 112)
	chk.Float64(tst, "K", 1e-8, m.Tangent(), 400)

	step(tst, m, 0.2)
	chk.Float64(tst, "F", 1e-10, m.Stress(), 90)
	checkBranch(tst, m, Directed(PostCapping, 1))

	step(tst, m, 0.4)
	chk.Float64(tst, "F", 1e-10, m.Stress(), 20)
	chk.Float64(tst, "K", 1e-8, m.Tangent(), -350)
	checkBranch(tst, m, Directed(Residual, 1))

	step(tst, m, 0.45)
	chk.Float64(tst, "F", 1e-10, m.Stress(), 20)
	chk.Float64(tst, "K floor", 1e-17, m.Tangent(), TangentFloor)

	step(tst, m, 0.55)
	chk.Float64(tst, "F failed", 1e-17, m.Stress(), 0)
	if !m.Failed() {
		tst.Errorf("material should have failed beyond the ultimate deformation\n")
		return
	}

	// failure is permanent
	m.SetTrialStrain(0.1)
	chk.Float64(tst, "F after failure", 1e-17, m.Stress(), 0)
	chk.Float64(tst, "K after failure", 1e-17, m.Tangent(), TangentFloor)
	if !m.Failed() {
		tst.Errorf("failure must persist\n")
	}

	m.RevertToStart()
	if m.Failed() || m.Stress() != 0 || m.Energy() != 0 {
		tst.Errorf("revert to start should restore the virgin state\n")
	}
	law, _ := NewLaw(simpleParams())
	if m.Committed() != law.Start() || m.Trial() != law.Start() {
		tst.Errorf("states differ from the start state\n")
	}
}

func Test_material03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("material03. unloading and excursion")

	m := newSimple(tst)
	step(tst, m, 0.13)
	chk.Float64(tst, "F", 1e-10, m.Stress(), 112)
	chk.Float64(tst, "E", 1e-10, m.Energy(), 7.28)

	// partial unloading
	m.SetTrialStrain(0.12)
	chk.Float64(tst, "F", 1e-10, m.Stress(), 102)
	chk.Float64(tst, "K", 1e-8, m.Tangent(), 1000)
	checkBranch(tst, m, BranchUnloading)
	s := m.Trial()
	chk.Float64(tst, "Ulocal", 1e-15, s.Pos.Ulocal, 0.13)
	chk.Float64(tst, "Flocal", 1e-10, s.Pos.Flocal, 112)
	chk.Float64(tst, "Uglobal", 1e-15, s.Pos.Uglobal, 0.13)
	chk.Float64(tst, "Fglobal", 1e-10, s.Pos.Fglobal, 112)

	// reloading past the reversal point returns to the backbone
	m.CommitState()
	m.SetTrialStrain(0.14)
	chk.Float64(tst, "F reloaded", 1e-10, m.Stress(), 116)
	checkBranch(tst, m, Directed(PostYield, 1))

	// unloading through zero force within one increment
	m.RevertToLastCommit()
	m.SetTrialStrain(0.0)
	chk.Float64(tst, "F", 1e-10, m.Stress(), 0)
	checkBranch(tst, m, Directed(TowardPinch, -1))
	s = m.Trial()
	io.Pforan("s = %+v\n", s)
	chk.Float64(tst, "Upinch", 1e-12, s.Upinch, 0)
	chk.Float64(tst, "Fpinch", 1e-10, s.Fpinch, 0)
	chk.Float64(tst, "EngDspt", 1e-10, s.EngDspt, 7.28-0.5*(112+102)*0.01)
	m.CommitState()

	m.SetTrialStrain(-0.05)
	chk.Float64(tst, "F", 1e-10, m.Stress(), -50)
	chk.Float64(tst, "K", 1e-8, m.Tangent(), 1000)
	checkBranch(tst, m, Directed(TowardGlobal, -1))
	m.CommitState()

	m.SetTrialStrain(-0.12)
	chk.Float64(tst, "F", 1e-10, m.Stress(), -108)
	checkBranch(tst, m, Directed(PostYield, -1))
}

func Test_material04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("material04. single increment through zero force")

	m := newSimple(tst)
	step(tst, m, 0.13)
	step(tst, m, 0.0)
	chk.Float64(tst, "F", 1e-10, m.Stress(), 0)
	chk.Float64(tst, "E", 1e-10, m.Energy(), 0)
	s := m.Committed()
	chk.Float64(tst, "Upinch", 1e-12, s.Upinch, 0)
	chk.Float64(tst, "Kunload", 1e-12, s.Kunload, 1000)
	chk.Float64(tst, "EngDspt", 1e-10, s.EngDspt, 7.28)
	checkBranch(tst, m, Directed(TowardPinch, -1))
}

func Test_material05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("material05. zero increment and invalid strain")

	m := newSimple(tst)
	step(tst, m, 0.12)
	step(tst, m, 0.13)
	before := m.Committed()

	m.SetTrialStrain(0.13)
	chk.Float64(tst, "F", 1e-10, m.Stress(), 112)
	chk.Float64(tst, "K", 1e-8, m.Tangent(), 400)
	if m.Trial() != before {
		tst.Errorf("zero increment must not change the state\n")
	}

	for _, u := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := m.SetTrialStrain(u)
		if !errors.Is(err, ErrInvalidStrain) {
			tst.Errorf("strain %v should be rejected: %v\n", u, err)
		}
		if m.Trial() != before {
			tst.Errorf("rejected strain must leave the committed state\n")
		}
	}
}

func Test_material06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("material06. clone and snapshot")

	m := newSimple(tst)
	step(tst, m, 0.13)
	m.SetTrialStrain(0.12)

	c := m.Clone()
	if c.Trial() != m.Trial() || c.Committed() != m.Committed() || c.Tag != m.Tag {
		tst.Errorf("clone differs from the original\n")
	}
	c.CommitState()
	c.SetTrialStrain(-0.2)
	chk.Float64(tst, "original F", 1e-10, m.Stress(), 102)
	chk.Float64(tst, "original committed F", 1e-10, m.Committed().F, 112)

	r, err := Restore(m.Snapshot())
	if err != nil {
		tst.Errorf("Restore failed: %v\n", err)
		return
	}
	if r.Trial() != m.Trial() || r.Committed() != m.Committed() || r.Initial() != m.Initial() {
		tst.Errorf("restored material differs\n")
	}
	r.SetTrialStrain(0.14)
	m.SetTrialStrain(0.14)
	chk.Float64(tst, "restored F", 1e-15, r.Stress(), m.Stress())

	snap := m.Snapshot()
	snap.Params.Ke = -1
	if _, err := Restore(snap); !errors.Is(err, ErrInvalidParams) {
		tst.Errorf("invalid snapshot parameters should be rejected: %v\n", err)
	}
}

func Test_material07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("material07. cyclic deterioration")

	m, err := New(7, ExampleParams())
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	prev := m.Committed()
	failed := false
	for _, u := range cyclic([]float64{0.01, 0.02, 0.04, 0.08, 0.16, 0.32, 0.45}, 0.001) {
		step(tst, m, u)
		s := m.Committed()
		if math.IsNaN(s.F) || math.IsNaN(s.Kreport) {
			tst.Errorf("u=%g: NaN in state %+v\n", u, s)
			return
		}
		if s.Kreport == 0 {
			tst.Errorf("u=%g: zero tangent\n", u)
		}
		if s.Pos.Fy > prev.Pos.Fy+1e-12 || s.Neg.Fy < prev.Neg.Fy-1e-12 {
			tst.Errorf("u=%g: yield force increased\n", u)
		}
		if s.Kunload > prev.Kunload+1e-12 {
			tst.Errorf("u=%g: unloading stiffness increased\n", u)
		}
		if prev.Failed && (!s.Failed || s.F != 0) {
			tst.Errorf("u=%g: failure was lost\n", u)
		}
		failed = failed || s.Failed
		prev = s
	}
	if !failed {
		tst.Errorf("history beyond the ultimate deformation must fail\n")
	}
	io.Pforan("final = %+v\n", prev)
}

func Test_material08(tst *testing.T) {

	//verbose()
	chk.PrintTitle("material08. pinched reloading")

	p := simpleParams()
	p.KappaF, p.KappaD = 0.5, 0.5
	m, err := New(8, p)
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}

	// large cycle sets both global peaks at 0.13
	step(tst, m, 0.13)
	step(tst, m, 0.08)
	step(tst, m, -0.13)
	chk.Float64(tst, "F(-0.13)", 1e-10, m.Stress(), -112)
	step(tst, m, -0.08)
	chk.Float64(tst, "F(-0.08)", 1e-10, m.Stress(), -62)

	// unloading crosses zero at u0 = -0.018 and aims at the pinching point
	step(tst, m, 0)
	checkBranch(tst, m, Directed(TowardPinch, 1))
	s := m.Committed()
	chk.Float64(tst, "Upinch", 1e-12, s.Upinch, 0.009)
	chk.Float64(tst, "Fpinch", 1e-10, s.Fpinch, 56*0.027/0.148)
	chk.Float64(tst, "F(0)", 1e-10, m.Stress(), 56*0.018/0.148)

	// small reversal, then reloading past the local peak re-enters the pinch line
	step(tst, m, -0.001)
	checkBranch(tst, m, BranchUnloading)
	chk.Float64(tst, "F(-0.001)", 1e-10, m.Stress(), 56*0.018/0.148-1)
	step(tst, m, 0.004)
	checkBranch(tst, m, Directed(TowardPinch, 1))
	chk.Float64(tst, "F(0.004)", 1e-10, m.Stress(), 56*0.022/0.148)

	// past the pinching point the local peak lies behind, so the global peak is aimed at
	fp := 56 * 0.027 / 0.148
	f8 := fp + (112-fp)/0.121*0.091
	step(tst, m, 0.1)
	checkBranch(tst, m, Directed(TowardGlobal, 1))
	chk.Float64(tst, "F(0.1)", 1e-10, m.Stress(), f8)
	chk.Float64(tst, "F(0.1) value", 1e-8, f8, 86.76435113)

	// reversal completed within one increment lands on the negative pinch line
	u0 := 0.1 - f8/1000
	fpn := -56 * (0.009 + u0) / (0.13 + u0)
	f9 := fpn / (-0.009 - u0) * (0 - u0)
	step(tst, m, 0)
	checkBranch(tst, m, Directed(TowardPinch, -1))
	chk.Float64(tst, "F(0) second", 1e-10, m.Stress(), f9)
	chk.Float64(tst, "F(0) second value", 1e-8, f9, -5.17466387)

	// small cycle: passing the pinching point with a steeper line to the local peak
	u0 = -f9 / 1000
	fpp := 56 * (0.009 - u0) / (0.13 - u0)
	f10 := fpp + (f8-fpp)/0.091*0.011
	step(tst, m, 0.02)
	checkBranch(tst, m, Directed(TowardLocal, 1))
	s = m.Committed()
	chk.Float64(tst, "Fpinch second", 1e-10, s.Fpinch, fpp)
	chk.Float64(tst, "F(0.02)", 1e-10, m.Stress(), f10)
	chk.Float64(tst, "F(0.02) value", 1e-8, f10, 11.99670054)

	// local peak to global peak, then back onto the backbone
	f11 := f8 + (112-f8)/0.03*0.01
	step(tst, m, 0.11)
	checkBranch(tst, m, Directed(TowardGlobal, 1))
	chk.Float64(tst, "F(0.11)", 1e-10, m.Stress(), f11)
	step(tst, m, 0.14)
	checkBranch(tst, m, Directed(PostYield, 1))
	chk.Float64(tst, "F(0.14)", 1e-10, m.Stress(), 116)
	io.Pforan("final = %+v\n", m.Committed())
}

func Test_material09(tst *testing.T) {

	//verbose()
	chk.PrintTitle("material09. dissipated energy")

	m, err := New(9, ExampleParams())
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	sum, u1, f1 := 0.0, 0.0, 0.0
	for _, u := range cyclic([]float64{0.02, 0.05, 0.1}, 0.002) {
		step(tst, m, u)
		f := m.Stress()
		sum += 0.5 * (f + f1) * (u - u1)
		u1, f1 = u, f
		if math.Abs(m.Energy()-sum) > 1e-9 {
			tst.Errorf("u=%g: energy %g, trapezoidal sum %g\n", u, m.Energy(), sum)
			return
		}
	}
	if sum <= 0 {
		tst.Errorf("cycles must dissipate energy: %g\n", sum)
	}
	chk.Float64(tst, "energy", 1e-9, m.Energy(), sum)
}
