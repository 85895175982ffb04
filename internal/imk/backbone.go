package imk

// Backbone holds the current (deteriorated) envelope of one loading direction
// together with its peak trackers. Negative-side points carry negative values.
type Backbone struct {
	Uy      float64 `json:"uy"`      // yield deformation
	Fy      float64 `json:"fy"`      // yield force
	Ucap    float64 `json:"ucap"`    // capping deformation
	Fcap    float64 `json:"fcap"`    // capping force
	Ulocal  float64 `json:"ulocal"`  // most recent reversal deformation
	Flocal  float64 `json:"flocal"`  // most recent reversal force
	Uglobal float64 `json:"uglobal"` // largest deformation reached
	Fglobal float64 `json:"fglobal"` // force at the global peak
	Ures    float64 `json:"ures"`    // deformation where the residual plateau starts
	Fres    float64 `json:"fres"`    // residual force
	Kp      float64 `json:"kp"`      // post-yield stiffness
	Kpc     float64 `json:"kpc"`     // post-capping stiffness (softening)
}

// Initial holds the values derived once from Params. Stiffnesses are magnitudes.
type Initial struct {
	PosUy0   float64 `json:"pos_uy0"`
	PosUcap0 float64 `json:"pos_ucap0"`
	PosFcap0 float64 `json:"pos_fcap0"`
	PosKp0   float64 `json:"pos_kp0"`
	PosKpc0  float64 `json:"pos_kpc0"`
	NegUy0   float64 `json:"neg_uy0"`
	NegUcap0 float64 `json:"neg_ucap0"`
	NegFcap0 float64 `json:"neg_fcap0"`
	NegKp0   float64 `json:"neg_kp0"`
	NegKpc0  float64 `json:"neg_kpc0"`

	// reference energy capacities
	EngRefS float64 `json:"eng_ref_s"`
	EngRefC float64 `json:"eng_ref_c"`
	EngRefA float64 `json:"eng_ref_a"`
	EngRefK float64 `json:"eng_ref_k"`
}

// NewInitial computes the initial backbone quantities and energy capacities
func NewInitial(p Params) Initial {
	var ini Initial
	ini.PosUy0, ini.PosUcap0, ini.PosFcap0, ini.PosKp0, ini.PosKpc0 = p.Pos.derived(p.Ke)
	ini.NegUy0, ini.NegUcap0, ini.NegFcap0, ini.NegKp0, ini.NegKpc0 = p.Neg.derived(p.Ke)
	ini.EngRefS = p.LambdaS * p.Pos.Fy0
	ini.EngRefC = p.LambdaC * p.Pos.Fy0
	ini.EngRefA = p.LambdaA * p.Pos.Fy0
	ini.EngRefK = p.LambdaK * p.Pos.Fy0
	return ini
}

// derived returns Uy0, Ucap0, Fcap0, Kp0 and Kpc0 (all magnitudes)
func (s SideParams) derived(ke float64) (uy, ucap, fcap, kp, kpc float64) {
	uy = s.Fy0 / ke
	ucap = uy + s.Up0
	fcap = s.FcapFy0 * s.Fy0
	kp = (fcap - s.Fy0) / s.Up0
	kpc = fcap / s.Upc0
	return
}

// newBackbone builds the undamaged envelope of one side; sign is +1 or -1
func newBackbone(ke float64, s SideParams, sign float64) Backbone {
	uy, ucap, fcap, kp, kpc := s.derived(ke)
	b := Backbone{
		Uy:      sign * uy,
		Fy:      sign * s.Fy0,
		Ucap:    sign * ucap,
		Fcap:    sign * fcap,
		Ulocal:  sign * uy,
		Flocal:  sign * s.Fy0,
		Uglobal: sign * uy,
		Fglobal: sign * s.Fy0,
		Fres:    sign * s.Fy0 * s.FresFy0,
		Kp:      kp,
		Kpc:     -kpc,
	}
	b.Ures = b.residualStart()
	return b
}

// residualStart returns the deformation where the capping line reaches Fres
func (b *Backbone) residualStart() float64 {
	if b.Kpc == 0 {
		return b.Ucap
	}
	return (b.Fres-b.Fcap)/b.Kpc + b.Ucap
}

// collapsed tells whether the envelope has degraded to a residual plateau
func (b *Backbone) collapsed() bool {
	return b.Kp == 0 && b.Kpc == 0
}

// forceAt evaluates the envelope at deformation u, clipped to the residual plateau
func (b *Backbone) forceAt(u, ke, sign float64) (f float64) {
	switch {
	case sign*u < sign*b.Uy:
		f = ke * u
	case sign*u < sign*b.Ucap:
		f = b.Fy + b.Kp*(u-b.Uy)
	default:
		f = b.Fcap + b.Kpc*(u-b.Ucap)
	}
	if sign*f < sign*b.Fres {
		f = b.Fres
	}
	return
}

// deteriorate applies the excursion damage of one side. Yield force, capping
// line and global peak deformation are scaled first; the capping point and
// the residual deformation are then refitted and the global peak force is
// re-evaluated on the updated envelope.
func (b *Backbone) deteriorate(ke, sign, betaS, betaC, betaA, d float64) {
	fcapProj := b.Fcap - b.Kpc*b.Ucap // force intercept of the capping line
	b.Fy *= 1 - betaS*d
	b.Kp *= 1 - betaS*d
	fcapProj *= 1 - betaC*d
	b.Uglobal *= 1 + betaA*d
	if sign*b.Fy < sign*b.Fres || b.collapsed() {
		b.Fy = b.Fres
		b.Fcap = b.Fres
		b.Kp = 0
		b.Kpc = 0
		b.Uy = b.Fy / ke
		b.Ucap = b.Uy
	} else {
		b.Uy = b.Fy / ke
		fyProj := b.Fy - b.Kp*b.Uy // force intercept of the post-yield line
		b.Ucap = (fcapProj - fyProj) / (b.Kp - b.Kpc)
		b.Fcap = fyProj + b.Kp*b.Ucap
	}
	b.Fglobal = b.forceAt(b.Uglobal, ke, sign)
	b.Ures = b.residualStart()
}

// Envelope samples the undamaged backbone of p at n points per side, from
// -umax to umax. The elastic range is not clipped by the residual force;
// points beyond the residual deformation lie on the plateau.
func Envelope(p Params, umax float64, n int) (u, f []float64) {
	if n < 1 {
		n = 1
	}
	pos := newBackbone(p.Ke, p.Pos, 1)
	neg := newBackbone(p.Ke, p.Neg, -1)
	at := func(b *Backbone, x, sign float64) float64 {
		if sign*x < sign*b.Uy {
			return p.Ke * x
		}
		return b.forceAt(x, p.Ke, sign)
	}
	for i := n; i >= 1; i-- {
		x := -umax * float64(i) / float64(n)
		u = append(u, x)
		f = append(f, at(&neg, x, -1))
	}
	u = append(u, 0)
	f = append(f, 0)
	for i := 1; i <= n; i++ {
		x := umax * float64(i) / float64(n)
		u = append(u, x)
		f = append(f, at(&pos, x, 1))
	}
	return
}
