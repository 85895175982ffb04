package imk

// Law is the immutable part of the material: the input parameters and the
// quantities derived from them. Update is a pure function of its arguments.
type Law struct {
	P   Params
	Ini Initial
}

// NewLaw validates p and derives the initial quantities
func NewLaw(p Params) (*Law, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Law{P: p, Ini: NewInitial(p)}, nil
}

// Start returns the deformation-free, energy-free state on the elastic branch
func (l *Law) Start() State {
	return State{
		Pos:      newBackbone(l.P.Ke, l.P.Pos, 1),
		Neg:      newBackbone(l.P.Ke, l.P.Neg, -1),
		Ktangent: l.P.Ke,
		Kunload:  l.P.Ke,
		Kreport:  l.P.Ke,
		Branch:   BranchElastic,
	}
}

// Update returns the state reached from the committed state prev when the
// deformation is set to u. prev is not modified.
func (l *Law) Update(prev State, u float64) State {
	s := prev
	s.U = u
	s.Kreport = floorTangent(prev.Ktangent)
	switch {
	case prev.Failed:
		s.F = 0
		s.Kreport = TangentFloor
		return s
	case u == prev.U:
		return s
	}
	o := increment{
		law: l,
		s:   &s,
		u1:  prev.U,
		f1:  prev.F,
		u:   u,
		du:  u - prev.U,
		k1:  prev.Ktangent,
		ex:  prev.Branch,
	}
	o.classify()
	o.onReversal()
	o.onExcursion()
	o.promote()
	o.force()
	o.checkFailure()
	o.finish()
	return s
}

// increment holds the scratch data of one Update
type increment struct {
	law *Law
	s   *State

	u1, f1 float64 // committed deformation and force
	u, du  float64 // trial deformation and its increment
	k1     float64 // governing stiffness at the start of the increment
	ex     Branch  // branch before the last transition of this increment
	u0     float64 // zero-force intercept of the unloading line (excursion only)

	reversal  bool
	excursion bool
	dmg       damage
}

// beyond tells whether u lies past x in direction dir (false for NaN)
func beyond(u, x, dir float64) bool {
	return dir*u > dir*x
}

// crossesZero tells whether the unloading line reaches zero force within the increment
func (o *increment) crossesZero() bool {
	return o.f1*(o.f1+o.du*o.s.Kunload) <= 0
}

// classify raises the reversal/excursion flags and applies the transitions
// out of the elastic and unloading branches
func (o *increment) classify() {
	s := o.s
	switch s.Branch.Seg {
	case Elastic:
		if o.u > s.Pos.Uy {
			s.Branch = Directed(PostYield, 1)
		} else if o.u < s.Neg.Uy {
			s.Branch = Directed(PostYield, -1)
		}
	case Unloading:
		switch {
		case o.crossesZero():
			o.excursion = true
		case o.f1 > 0 && o.u > s.Pos.Ulocal:
			s.Branch = o.reenter(1)
		case o.f1 < 0 && o.u < s.Neg.Ulocal:
			s.Branch = o.reenter(-1)
		}
	default:
		if o.f1*o.du < 0 {
			o.reversal = true
			s.Branch = BranchUnloading
		}
	}
}

// reenter selects the reloading branch when the unloading line is traversed
// back past the local peak of side dir
func (o *increment) reenter(dir float64) Branch {
	s := o.s
	b := s.side(dir)
	kpinch := (s.Fpinch - b.Flocal) / (s.Upinch - b.Ulocal)
	kglobal := (b.Fglobal - b.Flocal) / (b.Uglobal - b.Ulocal)
	if dir*b.Ulocal < dir*s.Upinch && dir*b.Flocal < dir*s.Fpinch &&
		dir*s.Upinch < dir*b.Uglobal && dir*s.Fpinch < dir*b.Fglobal && kpinch < kglobal {
		return Directed(TowardPinch, dir)
	}
	return Directed(TowardGlobal, dir)
}

// onReversal registers the peak points, deteriorates the unloading stiffness
// and detects an unloading completed within the same increment
func (o *increment) onReversal() {
	if !o.reversal {
		return
	}
	s := o.s
	dir := 1.0
	if o.f1 <= 0 {
		dir = -1
	}
	b := s.side(dir)
	b.Ulocal, b.Flocal = o.u1, o.f1
	if beyond(o.u1, b.Uglobal, dir) {
		b.Uglobal, b.Fglobal = o.u1, o.f1
	}
	betaK, fail := o.law.reversalDamage(s, o.f1)
	o.dmg.betaK = betaK
	o.dmg.failed = o.dmg.failed || fail
	s.Kunload *= 1 - betaK
	s.Ktangent = s.Kunload
	if o.crossesZero() {
		o.ex = BranchUnloading
		o.excursion = true
		o.reversal = false
	}
}

// onExcursion deteriorates the backbone being reloaded, computes the
// pinching point and selects the reloading target
func (o *increment) onExcursion() {
	if !o.excursion {
		return
	}
	s, l := o.s, o.law
	dir, d := 1.0, l.P.DPos
	if o.du < 0 {
		dir, d = -1, l.P.DNeg
	}
	dmg := l.excursionDamage(s)
	o.dmg.betaS, o.dmg.betaC, o.dmg.betaA = dmg.betaS, dmg.betaC, dmg.betaA
	o.dmg.failed = o.dmg.failed || dmg.failed

	b := s.side(dir)
	b.deteriorate(l.P.Ke, dir, dmg.betaS, dmg.betaC, dmg.betaA, d)

	o.u0 = o.u1 - o.f1/s.Kunload
	s.Upinch, s.Fpinch = pinchTarget(o.u0, b.Uglobal, b.Fglobal, s.Kunload, l.P.KappaF, l.P.KappaD)
	kpinch := s.Fpinch / (s.Upinch - o.u0)
	kglobal := b.Fglobal / (b.Uglobal - o.u0)
	klocal := b.Flocal / (b.Ulocal - o.u0)
	switch {
	case dir*o.u0 < dir*s.Upinch:
		s.Branch, s.Ktangent = Directed(TowardPinch, dir), kpinch
	case dir*o.u0 < dir*b.Ulocal && dir*b.Flocal < dir*b.Fglobal && klocal > kglobal:
		s.Branch, s.Ktangent = Directed(TowardLocal, dir), klocal
	default:
		s.Branch, s.Ktangent = Directed(TowardGlobal, dir), kglobal
	}
}

// promote moves the branch forward along pinch, local, global, post-yield,
// post-capping, residual while the deformation has passed the segment end.
// Promotions never regress.
func (o *increment) promote() {
	s := o.s
	for {
		cur := s.Branch
		if cur.Seg <= Unloading {
			return
		}
		dir := cur.sign()
		b := s.side(dir)
		var next Branch
		switch cur.Seg {
		case TowardPinch:
			if !beyond(o.u, s.Upinch, dir) {
				return
			}
			next = o.pastPinch(dir)
		case TowardLocal:
			if !beyond(o.u, b.Ulocal, dir) {
				return
			}
			next = Directed(TowardGlobal, dir)
		case TowardGlobal:
			if !beyond(o.u, b.Uglobal, dir) {
				return
			}
			next = Directed(PostYield, dir)
		case PostYield:
			if !beyond(o.u, b.Ucap, dir) {
				return
			}
			next = Directed(PostCapping, dir)
		case PostCapping:
			if !beyond(o.u, b.Ures, dir) {
				return
			}
			next = Directed(Residual, dir)
		default:
			return
		}
		o.ex = cur
		s.Branch = next
	}
}

// pastPinch chooses between the local and the global peak once the
// pinching point has been passed. The local peak wins only when it lies
// strictly between the pinching point and the global peak and its line is
// steeper than the direct line to the global peak.
func (o *increment) pastPinch(dir float64) Branch {
	s := o.s
	b := s.side(dir)
	kglobal := (b.Fglobal - s.Fpinch) / (b.Uglobal - s.Upinch)
	klocal := (b.Flocal - s.Fpinch) / (b.Ulocal - s.Upinch)
	if dir*s.Upinch < dir*b.Ulocal && dir*s.Fpinch < dir*b.Flocal &&
		dir*b.Flocal < dir*b.Fglobal && klocal > kglobal {
		return Directed(TowardLocal, dir)
	}
	return Directed(TowardGlobal, dir)
}

// force computes the new force. Without a branch change the force follows
// the current stiffness; otherwise it is extrapolated from the anchor point
// of the new segment so that it stays continuous across promotions.
func (o *increment) force() {
	s := o.s
	cur := s.Branch
	var df float64
	switch {
	case cur == o.ex || cur.Seg == Unloading:
		df = o.du * s.Ktangent
	case o.ex.Seg == Unloading && o.excursion:
		df = -o.f1 + s.Ktangent*(o.u-o.u0)
	default:
		ua, fa, k := o.anchor(cur)
		s.Ktangent = k
		df = fa - o.f1 + k*(o.u-ua)
	}
	s.F = o.f1 + df
}

// anchor returns the start point and stiffness of the segment of branch cur
func (o *increment) anchor(cur Branch) (ua, fa, k float64) {
	s := o.s
	b := s.side(cur.sign())
	switch cur.Seg {
	case TowardPinch:
		return b.Ulocal, b.Flocal, (s.Fpinch - b.Flocal) / (s.Upinch - b.Ulocal)
	case TowardLocal:
		return s.Upinch, s.Fpinch, (b.Flocal - s.Fpinch) / (b.Ulocal - s.Upinch)
	case TowardGlobal:
		if o.ex.Seg == TowardPinch {
			return s.Upinch, s.Fpinch, (b.Fglobal - s.Fpinch) / (b.Uglobal - s.Upinch)
		}
		return b.Ulocal, b.Flocal, (b.Fglobal - b.Flocal) / (b.Uglobal - b.Ulocal)
	case PostYield:
		if o.ex.Seg == Elastic {
			return b.Uy, b.Fy, b.Kp
		}
		return b.Uglobal, b.Fglobal, b.Kp
	case PostCapping:
		if o.ex.Seg == PostYield {
			return b.Ucap, b.Fcap, b.Kpc
		}
		return b.Uglobal, b.Fglobal, b.Kpc
	case Residual:
		return o.u, b.Fres, 0
	}
	return o.u1, o.f1, s.Ktangent
}

// checkFailure declares failure when a deterioration ratio exceeded unity,
// a global peak force vanished, the ultimate deformation was exceeded or a
// zero residual plateau was reached
func (o *increment) checkFailure() {
	s, p := o.s, o.law.P
	fail := o.dmg.failed ||
		s.Pos.Fglobal == 0 || s.Neg.Fglobal == 0 ||
		o.u > p.Pos.Uu0 || o.u < -p.Neg.Uu0 ||
		(s.Branch == Directed(Residual, 1) && s.Pos.Fres == 0) ||
		(s.Branch == Directed(Residual, -1) && s.Neg.Fres == 0)
	if fail {
		s.F = 0
		s.Failed = true
	}
}

// finish accumulates the dissipated energy and sets the reported tangent
func (o *increment) finish() {
	s := o.s
	s.EngAcml += 0.5 * (s.F + o.f1) * o.du
	if s.Ktangent != o.k1 {
		s.Kreport = (s.F - o.f1) / o.du
	} else {
		s.Kreport = s.Ktangent
	}
	s.Kreport = floorTangent(s.Kreport)
}
