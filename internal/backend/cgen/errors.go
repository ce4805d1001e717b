package cgen

import (
	"fmt"
	"strings"
)

// UnsupportedTypeError reports a type variant with no C mapping.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type %s", e.Type)
}

// UnsupportedOperationError reports an instruction kind or operand type
// combination with no lowering rule.
type UnsupportedOperationError struct {
	Op    string
	Types []string
}

func (e *UnsupportedOperationError) Error() string {
	if len(e.Types) == 0 {
		return fmt.Sprintf("unsupported operation %s", e.Op)
	}
	return fmt.Sprintf("unsupported operation %s on (%s)", e.Op, strings.Join(e.Types, ", "))
}

// MalformedIRError reports a structural invariant violation inside a
// function body, located by block and instruction index.
type MalformedIRError struct {
	Block int
	Instr int
	Msg   string
}

func (e *MalformedIRError) Error() string {
	if e.Block < 0 {
		return fmt.Sprintf("malformed IR: %s", e.Msg)
	}
	return fmt.Sprintf("malformed IR at block %d instr %d: %s", e.Block, e.Instr, e.Msg)
}

// FuncFailure records one function the emitter had to skip. The unit keeps
// lowering its remaining functions, so one pass surfaces every failure.
type FuncFailure struct {
	Func string
	Err  error
}
