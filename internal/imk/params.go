package imk

import (
	"fmt"
	"math"
)

// NumParams is the number of fixed input parameters of the material
const NumParams = 25

// SideParams holds the backbone input of one loading direction.
// Negative-side values are given as magnitudes.
type SideParams struct {
	Up0     float64 `json:"up0" yaml:"up0"`           // plastic deformation capacity (yield to capping)
	Upc0    float64 `json:"upc0" yaml:"upc0"`         // post-capping deformation capacity (capping to zero force)
	Uu0     float64 `json:"uu0" yaml:"uu0"`           // ultimate deformation capacity
	Fy0     float64 `json:"fy0" yaml:"fy0"`           // yield force
	FcapFy0 float64 `json:"fcap_fy0" yaml:"fcap_fy0"` // capping to yield force ratio
	FresFy0 float64 `json:"fres_fy0" yaml:"fres_fy0"` // residual to yield force ratio
}

// Params holds the immutable input of the material
type Params struct {
	Ke float64 `json:"ke" yaml:"ke"` // elastic stiffness

	Pos SideParams `json:"pos" yaml:"pos"`
	Neg SideParams `json:"neg" yaml:"neg"`

	// Reference energy multipliers (energy capacity = Lambda * Pos.Fy0)
	LambdaS float64 `json:"lambda_s" yaml:"lambda_s"` // basic strength
	LambdaC float64 `json:"lambda_c" yaml:"lambda_c"` // post-capping strength
	LambdaA float64 `json:"lambda_a" yaml:"lambda_a"` // accelerated reloading stiffness
	LambdaK float64 `json:"lambda_k" yaml:"lambda_k"` // unloading stiffness

	// Deterioration rate exponents
	CS float64 `json:"c_s" yaml:"c_s"`
	CC float64 `json:"c_c" yaml:"c_c"`
	CA float64 `json:"c_a" yaml:"c_a"`
	CK float64 `json:"c_k" yaml:"c_k"`

	// Damage rate constants
	DPos float64 `json:"d_pos" yaml:"d_pos"`
	DNeg float64 `json:"d_neg" yaml:"d_neg"`

	// Pinching
	KappaF float64 `json:"kappa_f" yaml:"kappa_f"` // force fraction of the pinching point
	KappaD float64 `json:"kappa_d" yaml:"kappa_d"` // deformation fraction of the pinching point
}

// ParamsFromSlice builds Params from the 25 values in argument order:
//
//	Ke, posUp0, posUpc0, posUu0, posFy0, posFcapFy0, posFresFy0,
//	negUp0, negUpc0, negUu0, negFy0, negFcapFy0, negFresFy0,
//	LambdaS, LambdaC, LambdaA, LambdaK, cS, cC, cA, cK, Dpos, Dneg, kappaF, kappaD
func ParamsFromSlice(v []float64) (Params, error) {
	if len(v) != NumParams {
		return Params{}, &ValidationError{Field: "args", msg: fmt.Sprintf("want %d parameters, got %d", NumParams, len(v))}
	}
	side := func(w []float64) SideParams {
		return SideParams{Up0: w[0], Upc0: w[1], Uu0: w[2], Fy0: w[3], FcapFy0: w[4], FresFy0: w[5]}
	}
	p := Params{
		Ke:      v[0],
		Pos:     side(v[1:7]),
		Neg:     side(v[7:13]),
		LambdaS: v[13], LambdaC: v[14], LambdaA: v[15], LambdaK: v[16],
		CS: v[17], CC: v[18], CA: v[19], CK: v[20],
		DPos: v[21], DNeg: v[22],
		KappaF: v[23], KappaD: v[24],
	}
	return p, p.Validate()
}

// Slice returns the parameters in argument order (see ParamsFromSlice)
func (p Params) Slice() []float64 {
	return []float64{
		p.Ke,
		p.Pos.Up0, p.Pos.Upc0, p.Pos.Uu0, p.Pos.Fy0, p.Pos.FcapFy0, p.Pos.FresFy0,
		p.Neg.Up0, p.Neg.Upc0, p.Neg.Uu0, p.Neg.Fy0, p.Neg.FcapFy0, p.Neg.FresFy0,
		p.LambdaS, p.LambdaC, p.LambdaA, p.LambdaK,
		p.CS, p.CC, p.CA, p.CK,
		p.DPos, p.DNeg,
		p.KappaF, p.KappaD,
	}
}

// Validate checks if the parameter set defines a usable material
func (p Params) Validate() error {
	for i, v := range p.Slice() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{Field: paramNames[i], msg: "must be finite"}
		}
	}
	if p.Ke <= 0 {
		return &ValidationError{Field: "ke", msg: "elastic stiffness must be positive"}
	}
	if err := p.Pos.validate("pos"); err != nil {
		return err
	}
	if err := p.Neg.validate("neg"); err != nil {
		return err
	}
	nonneg := []struct {
		name string
		val  float64
	}{
		{"lambda_s", p.LambdaS}, {"lambda_c", p.LambdaC}, {"lambda_a", p.LambdaA}, {"lambda_k", p.LambdaK},
		{"c_s", p.CS}, {"c_c", p.CC}, {"c_a", p.CA}, {"c_k", p.CK},
	}
	for _, q := range nonneg {
		if q.val < 0 {
			return &ValidationError{Field: q.name, msg: "must not be negative"}
		}
	}
	unit := []struct {
		name string
		val  float64
	}{
		{"d_pos", p.DPos}, {"d_neg", p.DNeg}, {"kappa_f", p.KappaF}, {"kappa_d", p.KappaD},
	}
	for _, q := range unit {
		if q.val < 0 || q.val > 1 {
			return &ValidationError{Field: q.name, msg: "must lie in [0, 1]"}
		}
	}
	return nil
}

func (s SideParams) validate(prefix string) error {
	switch {
	case s.Up0 <= 0:
		return &ValidationError{Field: prefix + ".up0", msg: "plastic deformation capacity must be positive"}
	case s.Upc0 <= 0:
		return &ValidationError{Field: prefix + ".upc0", msg: "post-capping deformation capacity must be positive"}
	case s.Uu0 <= 0:
		return &ValidationError{Field: prefix + ".uu0", msg: "ultimate deformation capacity must be positive"}
	case s.Fy0 <= 0:
		return &ValidationError{Field: prefix + ".fy0", msg: "yield force must be positive"}
	case s.FcapFy0 < 1:
		return &ValidationError{Field: prefix + ".fcap_fy0", msg: "capping force cannot be lower than yield force"}
	case s.FresFy0 < 0 || s.FresFy0 > s.FcapFy0:
		return &ValidationError{Field: prefix + ".fres_fy0", msg: "residual ratio must lie in [0, fcap_fy0]"}
	}
	return nil
}

// paramNames follows the order of Slice
var paramNames = []string{
	"ke",
	"pos.up0", "pos.upc0", "pos.uu0", "pos.fy0", "pos.fcap_fy0", "pos.fres_fy0",
	"neg.up0", "neg.upc0", "neg.uu0", "neg.fy0", "neg.fcap_fy0", "neg.fres_fy0",
	"lambda_s", "lambda_c", "lambda_a", "lambda_k",
	"c_s", "c_c", "c_a", "c_k",
	"d_pos", "d_neg",
	"kappa_f", "kappa_d",
}

// ParamNames returns the parameter names in argument order
func ParamNames() []string {
	return append([]string(nil), paramNames...)
}

// ExampleParams returns a symmetric parameter set of a deteriorating
// steel-like component (units: kN, m)
func ExampleParams() Params {
	side := SideParams{Up0: 0.025, Upc0: 0.15, Uu0: 0.4, Fy0: 250, FcapFy0: 1.15, FresFy0: 0.25}
	return Params{
		Ke:      25000,
		Pos:     side,
		Neg:     side,
		LambdaS: 1.0, LambdaC: 1.0, LambdaA: 1.0, LambdaK: 1.0,
		CS: 1, CC: 1, CA: 1, CK: 1,
		DPos: 1, DNeg: 1,
		KappaF: 0.4, KappaD: 0.6,
	}
}
