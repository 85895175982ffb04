package imk

// TangentFloor replaces a zero tangent so that the host never assembles a
// singular system
const TangentFloor = 1e-6

// State holds every path-dependent quantity of the material. The material
// keeps one committed and one trial copy; commit and revert are plain
// assignments.
type State struct {
	Pos Backbone `json:"pos"`
	Neg Backbone `json:"neg"`

	Upinch float64 `json:"upinch"` // pinching point of the current excursion
	Fpinch float64 `json:"fpinch"`

	U float64 `json:"u"` // deformation
	F float64 `json:"f"` // force

	Ktangent float64 `json:"ktangent"` // stiffness of the governing segment
	Kunload  float64 `json:"kunload"`  // unloading stiffness
	Kreport  float64 `json:"kreport"`  // tangent reported to the host for the last evaluation

	EngAcml float64 `json:"eng_acml"` // cumulative dissipated energy
	EngDspt float64 `json:"eng_dspt"` // dissipated energy at the last excursion

	Failed bool   `json:"failed"`
	Branch Branch `json:"branch"`
}

// side returns the envelope on the side of sign dir
func (s *State) side(dir float64) *Backbone {
	if dir < 0 {
		return &s.Neg
	}
	return &s.Pos
}

// floorTangent applies TangentFloor to a reported tangent
func floorTangent(k float64) float64 {
	if k == 0 {
		return TangentFloor
	}
	return k
}
