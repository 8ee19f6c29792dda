// Package shadertype enumerates the programmable pipeline stages and provides
// small fixed-size containers indexed by stage.
package shadertype

import (
	"fmt"
	"math/bits"
	"strings"
)

// Type identifies a shader stage.
type Type uint8

const (
	Vertex Type = iota
	TessControl
	TessEvaluation
	Geometry
	Fragment
	Compute

	// InvalidEnum is never a valid stage. It is returned by lookups that fail.
	InvalidEnum
)

// Count is the number of concrete stages.
const Count = int(InvalidEnum)

var typeNames = [Count]string{
	Vertex:         "vertex",
	TessControl:    "tess_control",
	TessEvaluation: "tess_evaluation",
	Geometry:       "geometry",
	Fragment:       "fragment",
	Compute:        "compute",
}

var allTypes = [Count]Type{Vertex, TessControl, TessEvaluation, Geometry, Fragment, Compute}

// AllTypes returns every concrete stage in pipeline order.
func AllTypes() []Type {
	out := allTypes
	return out[:]
}

// Valid reports whether t names a concrete stage.
func (t Type) Valid() bool {
	return t < InvalidEnum
}

func (t Type) String() string {
	if !t.Valid() {
		return "invalid"
	}
	return typeNames[t]
}

// ParseType maps a stage name to its Type. Both the canonical names and a few
// common short forms ("vert", "frag", "comp", "tesc", "tese", "geom") are
// accepted.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vertex", "vert", "vs":
		return Vertex, nil
	case "tess_control", "tess-control", "tesc", "hull":
		return TessControl, nil
	case "tess_evaluation", "tess-evaluation", "tess_eval", "tess-eval", "tese", "domain":
		return TessEvaluation, nil
	case "geometry", "geom", "gs":
		return Geometry, nil
	case "fragment", "frag", "fs", "pixel":
		return Fragment, nil
	case "compute", "comp", "cs":
		return Compute, nil
	}
	return InvalidEnum, fmt.Errorf("unknown shader stage %q", name)
}

// Set is a set of stages.
type Set uint8

// SetOf builds a Set containing the given stages.
func SetOf(types ...Type) Set {
	var s Set
	for _, t := range types {
		s.Set(t, true)
	}
	return s
}

// Set adds or removes t.
func (s *Set) Set(t Type, v bool) {
	if !t.Valid() {
		return
	}
	if v {
		*s |= 1 << t
	} else {
		*s &^= 1 << t
	}
}

// Test reports whether t is in the set.
func (s Set) Test(t Type) bool {
	return t.Valid() && s&(1<<t) != 0
}

// Union returns the stages in either set.
func (s Set) Union(o Set) Set {
	return s | o
}

// Any reports whether the set is non-empty.
func (s Set) Any() bool {
	return s != 0
}

// Count returns the number of stages in the set.
func (s Set) Count() int {
	return bits.OnesCount8(uint8(s))
}

// First returns the earliest stage in pipeline order, or InvalidEnum when the
// set is empty.
func (s Set) First() Type {
	if s == 0 {
		return InvalidEnum
	}
	return Type(bits.TrailingZeros8(uint8(s)))
}

// Types lists the members in pipeline order.
func (s Set) Types() []Type {
	var out []Type
	for _, t := range allTypes {
		if s.Test(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s Set) String() string {
	types := s.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Map holds one value per concrete stage.
type Map[T any] [Count]T
