package program

import (
	"errors"
	"fmt"

	"github.com/richinsley/goshaderlink/shadertype"
)

var (
	ErrNoStages              = errors.New("no stages to link")
	ErrInvalidStage          = errors.New("invalid shader stage")
	ErrDuplicateStage        = errors.New("stage linked more than once")
	ErrTypeMismatch          = errors.New("type differs between stages")
	ErrPrecisionMismatch     = errors.New("precision differs between stages")
	ErrArraySizeMismatch     = errors.New("array size differs between stages")
	ErrBindingMismatch       = errors.New("binding differs between stages")
	ErrLocationMismatch      = errors.New("location differs between stages")
	ErrBlockMismatch         = errors.New("block declaration differs between stages")
	ErrTooManyBlocks         = errors.New("too many blocks")
	ErrTooManyCounterBuffers = errors.New("too many atomic counter buffers")
	ErrCounterOffsetAlign    = errors.New("atomic counter offset is not a multiple of 4")
)

// LinkError reports why a program failed to link.
type LinkError struct {
	// Stage is the stage being merged when the failure was found, or
	// shadertype.InvalidEnum when it is not specific to one stage.
	Stage shadertype.Type
	Name  string
	Err   error
}

func (e *LinkError) Error() string {
	switch {
	case e.Stage.Valid() && e.Name != "":
		return fmt.Sprintf("link: %s stage: %s: %v", e.Stage, e.Name, e.Err)
	case e.Stage.Valid():
		return fmt.Sprintf("link: %s stage: %v", e.Stage, e.Err)
	case e.Name != "":
		return fmt.Sprintf("link: %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("link: %v", e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

func linkErr(stage shadertype.Type, name string, err error) error {
	return &LinkError{Stage: stage, Name: name, Err: err}
}
