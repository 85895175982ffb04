package imk

import (
	"encoding/json"
	"fmt"
)

// Segment identifies the piecewise-linear path governing an increment
type Segment uint8

const (
	Elastic      Segment = iota // initial elastic range
	Unloading                   // unloading stiffness line
	TowardPinch                 // reloading towards the pinching point
	TowardLocal                 // reloading towards the last local peak
	TowardGlobal                // reloading towards the global peak
	PostYield                   // backbone, yield to capping
	PostCapping                 // backbone, capping to residual
	Residual                    // residual plateau
)

var segmentNames = [...]string{"elastic", "unloading", "pinch", "local", "global", "post-yield", "post-capping", "residual"}

func (s Segment) String() string {
	if int(s) < len(segmentNames) {
		return segmentNames[s]
	}
	return fmt.Sprintf("segment(%d)", uint8(s))
}

// Branch is the active segment together with its loading direction.
// Elastic and Unloading carry no direction.
type Branch struct {
	Seg Segment
	Dir int8 // +1 positive, -1 negative, 0 when undirected
}

// Directed returns the branch of segment seg on the side of sign dir
func Directed(seg Segment, dir float64) Branch {
	if dir < 0 {
		return Branch{Seg: seg, Dir: -1}
	}
	return Branch{Seg: seg, Dir: 1}
}

var (
	BranchElastic   = Branch{Seg: Elastic}
	BranchUnloading = Branch{Seg: Unloading}
)

// Code returns the legacy integer code: 0 elastic, 1 unloading,
// 2..7 positive reloading/backbone, 12..17 negative reloading/backbone
func (b Branch) Code() int {
	if b.Seg <= Unloading {
		return int(b.Seg)
	}
	if b.Dir < 0 {
		return int(b.Seg) + 10
	}
	return int(b.Seg)
}

// BranchFromCode is the inverse of Code
func BranchFromCode(code int) (Branch, error) {
	switch {
	case code == 0 || code == 1:
		return Branch{Seg: Segment(code)}, nil
	case code >= 2 && code <= 7:
		return Branch{Seg: Segment(code), Dir: 1}, nil
	case code >= 12 && code <= 17:
		return Branch{Seg: Segment(code - 10), Dir: -1}, nil
	}
	return Branch{}, fmt.Errorf("unknown branch code %d", code)
}

// sign returns the direction as a float multiplier
func (b Branch) sign() float64 {
	if b.Dir < 0 {
		return -1
	}
	return 1
}

func (b Branch) String() string {
	switch {
	case b.Seg <= Unloading:
		return b.Seg.String()
	case b.Dir < 0:
		return "-" + b.Seg.String()
	}
	return "+" + b.Seg.String()
}

// MarshalJSON stores the branch as its legacy code
func (b Branch) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Code())
}

// UnmarshalJSON reads a legacy branch code
func (b *Branch) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	br, err := BranchFromCode(code)
	if err != nil {
		return err
	}
	*b = br
	return nil
}
