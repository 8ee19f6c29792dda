// Package uniform holds the reflection entities of a linked program: linked
// uniforms, buffer variables, and the buffers and interface blocks that own
// them, together with the per-stage usage each of them carries.
//
// Entities are plain values. They are built and merged while a program links
// and are read-only afterwards, so concurrent readers need no locking.
package uniform

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/richinsley/goshaderlink/shadertype"
)

// ActiveVariable records which stages use a variable and the identifier each
// stage's compiled code gave it. An identifier of 0 means unassigned.
type ActiveVariable struct {
	activeStages shadertype.Set
	ids          shadertype.Map[uint32]
}

// SetActive sets whether stage uses the variable and records id for it. The id
// is stored even when used is false. stage must be a concrete stage.
func (a *ActiveVariable) SetActive(stage shadertype.Type, used bool, id uint32) {
	if !stage.Valid() {
		panic(fmt.Sprintf("uniform: SetActive called with invalid shader stage %d", stage))
	}
	a.activeStages.Set(stage, used)
	a.ids[stage] = id
}

// UnionReferencesWith merges other's usage into a. Active stages are OR-ed
// together; for every stage where a has no identifier yet, other's identifier
// is adopted.
//
// If both carry different non-zero identifiers for some stage the two cannot
// describe the same variable: a *StageIDConflictError is returned and a is
// left unchanged.
func (a *ActiveVariable) UnionReferencesWith(other *ActiveVariable) error {
	for _, stage := range shadertype.AllTypes() {
		mine, theirs := a.ids[stage], other.ids[stage]
		if mine != 0 && theirs != 0 && mine != theirs {
			return &StageIDConflictError{Stage: stage, ID: mine, OtherID: theirs}
		}
	}
	a.activeStages = a.activeStages.Union(other.activeStages)
	for _, stage := range shadertype.AllTypes() {
		if a.ids[stage] == 0 {
			a.ids[stage] = other.ids[stage]
		}
	}
	return nil
}

// IsActive reports whether stage uses the variable.
func (a *ActiveVariable) IsActive(stage shadertype.Type) bool {
	return a.activeStages.Test(stage)
}

// ActiveStages returns the set of stages using the variable.
func (a *ActiveVariable) ActiveStages() shadertype.Set {
	return a.activeStages
}

// FirstActiveStage returns the earliest stage using the variable, or
// shadertype.InvalidEnum when no stage does.
func (a *ActiveVariable) FirstActiveStage() shadertype.Type {
	return a.activeStages.First()
}

// ActiveStageCount returns the number of stages using the variable.
func (a *ActiveVariable) ActiveStageCount() int {
	return a.activeStages.Count()
}

// StageID returns the identifier recorded for stage, 0 if none.
func (a *ActiveVariable) StageID(stage shadertype.Type) uint32 {
	if !stage.Valid() {
		return 0
	}
	return a.ids[stage]
}

// HasStageID reports whether an identifier was recorded for stage.
func (a *ActiveVariable) HasStageID(stage shadertype.Type) bool {
	return a.StageID(stage) != 0
}

// activeVariableWire is the encoded form of an ActiveVariable.
type activeVariableWire struct {
	Stages []string          `json:"stages" msgpack:"stages"`
	IDs    map[string]uint32 `json:"ids,omitempty" msgpack:"ids,omitempty"`
}

func (a ActiveVariable) wire() activeVariableWire {
	w := activeVariableWire{Stages: []string{}}
	for _, stage := range a.activeStages.Types() {
		w.Stages = append(w.Stages, stage.String())
	}
	for _, stage := range shadertype.AllTypes() {
		if id := a.ids[stage]; id != 0 {
			if w.IDs == nil {
				w.IDs = make(map[string]uint32)
			}
			w.IDs[stage.String()] = id
		}
	}
	return w
}

func (a *ActiveVariable) fromWire(w activeVariableWire) error {
	var out ActiveVariable
	for _, name := range w.Stages {
		stage, err := shadertype.ParseType(name)
		if err != nil {
			return err
		}
		out.activeStages.Set(stage, true)
	}
	for name, id := range w.IDs {
		stage, err := shadertype.ParseType(name)
		if err != nil {
			return err
		}
		out.ids[stage] = id
	}
	*a = out
	return nil
}

func (a ActiveVariable) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.wire())
}

func (a *ActiveVariable) UnmarshalJSON(data []byte) error {
	var w activeVariableWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return a.fromWire(w)
}

var (
	_ msgpack.CustomEncoder = ActiveVariable{}
	_ msgpack.CustomDecoder = (*ActiveVariable)(nil)
)

func (a ActiveVariable) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(a.wire())
}

func (a *ActiveVariable) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w activeVariableWire
	if err := dec.Decode(&w); err != nil {
		return err
	}
	return a.fromWire(w)
}
