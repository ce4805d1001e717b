package mir

import "ferroc/internal/types"

// Func is one already-typed, already-monomorphized function. The backend
// consumes it read-only; the front end never mutates it after construction.
type Func struct {
	ID   FuncID
	Name string

	Result types.TypeID

	// Locals[0:NumParams] are the parameters.
	NumParams int
	Locals    []Local

	Blocks []Block
	Entry  BlockID
}

// Local returns the local slot for an ID.
func (f *Func) Local(id LocalID) (Local, bool) {
	if f == nil || id < 0 || int(id) >= len(f.Locals) {
		return Local{}, false
	}
	return f.Locals[id], true
}

// Block returns the block for an ID.
func (f *Func) Block(id BlockID) (*Block, bool) {
	if f == nil || id < 0 || int(id) >= len(f.Blocks) {
		return nil, false
	}
	return &f.Blocks[id], true
}
