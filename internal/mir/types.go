package mir

import "ferroc/internal/types"

type FuncID int32
type BlockID int32
type LocalID int32

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
)

// Local is one slot in a function frame. The first NumParams locals of a
// function are its parameters, in declaration order; the rest are
// temporaries introduced by the front end. Lowered C names are positional
// (_0, _1, ...), so Name is advisory and may be empty.
type Local struct {
	Name string
	Type types.TypeID
}
