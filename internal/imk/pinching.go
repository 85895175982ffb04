package imk

// pinchTarget returns the pinching point of a new excursion.
//
//	u0       -- zero-force intercept of the unloading line
//	ug, fg   -- global peak of the side being reloaded
//	kunload  -- unloading stiffness
//	kf, kd   -- pinching force and deformation factors
//
// The point lies at (1-kd) of the plastic offset ug - fg/kunload and carries
// kf of the force that the straight line from u0 to the global peak would
// give at that deformation.
func pinchTarget(u0, ug, fg, kunload, kf, kd float64) (upinch, fpinch float64) {
	uplstc := ug - fg/kunload
	upinch = (1 - kd) * uplstc
	fpinch = kf * fg * (upinch - u0) / (ug - u0)
	return
}
