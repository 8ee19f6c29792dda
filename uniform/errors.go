package uniform

import (
	"errors"
	"fmt"

	"github.com/richinsley/goshaderlink/shadertype"
)

var (
	// ErrConflictingStageID is wrapped by StageIDConflictError.
	ErrConflictingStageID = errors.New("conflicting stage identifiers")

	// ErrArrayOfArrays is returned for a linked uniform whose own type is an
	// array of arrays. Outer dimensions must be expanded before linking.
	ErrArrayOfArrays = errors.New("linked uniform is an array of arrays")

	// ErrArrayOfStructs is returned for a linked uniform that is both an
	// array and a struct. Struct arrays are recorded in OuterArraySizes.
	ErrArrayOfStructs = errors.New("linked uniform is both an array and a struct")
)

// StageIDConflictError reports two usages of one variable that disagree on
// the identifier a stage assigned it.
type StageIDConflictError struct {
	Stage   shadertype.Type
	ID      uint32
	OtherID uint32
}

func (e *StageIDConflictError) Error() string {
	return fmt.Sprintf("%s stage: identifier %d conflicts with %d", e.Stage, e.ID, e.OtherID)
}

func (e *StageIDConflictError) Unwrap() error {
	return ErrConflictingStageID
}
