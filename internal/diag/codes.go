package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// IR-level problems (structure, decoding)
	IrInfo          Code = 1000
	IrDecodeFailed  Code = 1001
	IrMalformed     Code = 1002
	IrUnknownSchema Code = 1003

	// Code generation
	CgenInfo          Code = 4000
	CgenUnsupported   Code = 4001
	CgenUnsupportedOp Code = 4002
	CgenFuncSkipped   Code = 4003

	// Driver
	DrvInfo        Code = 5000
	DrvReadFailed  Code = 5001
	DrvWriteFailed Code = 5002
)

// ID returns the stable textual form used in CLI output and golden files.
func (c Code) ID() string {
	switch {
	case c >= 5000:
		return fmt.Sprintf("DRV%04d", c)
	case c >= 4000:
		return fmt.Sprintf("CGN%04d", c)
	case c >= 1000:
		return fmt.Sprintf("IR%04d", c)
	default:
		return fmt.Sprintf("UNK%04d", c)
	}
}
