package imk

import "math"

// damage holds the ratios computed at one event and whether any of them
// exceeded unity before clamping
type damage struct {
	betaS, betaC, betaA, betaK float64
	failed                     bool
}

// damageRatio returns ((demand/(ref-consumed))^c) clamped to [0,1] and
// whether the unclamped value exceeded 1. A zero reference capacity disables
// the mode; a non-positive remaining capacity with positive demand means the
// capacity is exhausted.
func damageRatio(demand, ref, consumed, c float64) (beta float64, fail bool) {
	if ref <= 0 || demand <= 0 {
		return 0, false
	}
	remaining := ref - consumed
	if remaining <= 0 {
		return 1, true
	}
	beta = math.Pow(demand/remaining, c)
	switch {
	case math.IsNaN(beta) || beta < 0:
		return 0, false
	case beta > 1:
		return 1, true
	}
	return beta, false
}

// reversalDamage computes the unloading stiffness ratio when unloading starts
// from force f. The elastic energy stored at the reversal point is excluded
// from both the demand and the consumed energy.
func (l *Law) reversalDamage(s *State, f float64) (betaK float64, fail bool) {
	stored := 0.5 * (f / s.Kunload) * f
	consumed := s.EngAcml - stored
	demand := s.EngAcml - s.EngDspt - stored
	return damageRatio(demand, l.Ini.EngRefK, consumed, l.P.CK)
}

// excursionDamage computes the strength, post-capping and accelerated
// reloading ratios from the energy dissipated since the previous excursion
// and advances the watermark
func (l *Law) excursionDamage(s *State) (dmg damage) {
	ei := math.Max(0, s.EngAcml-s.EngDspt)
	var fs, fc, fa bool
	dmg.betaS, fs = damageRatio(ei, l.Ini.EngRefS, s.EngAcml, l.P.CS)
	dmg.betaC, fc = damageRatio(ei, l.Ini.EngRefC, s.EngAcml, l.P.CC)
	dmg.betaA, fa = damageRatio(ei, l.Ini.EngRefA, s.EngAcml, l.P.CA)
	dmg.failed = fs || fc || fa
	s.EngDspt = s.EngAcml
	return
}
