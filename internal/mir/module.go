package mir

// Module is one compilation unit's worth of functions. Function order is
// the front end's order and is preserved all the way to the emitted C, so
// a module lowers to byte-identical text on every run.
type Module struct {
	Name  string
	Funcs []*Func
}

// FuncByName returns the first function with the given name.
func (m *Module) FuncByName(name string) (*Func, bool) {
	if m == nil {
		return nil, false
	}
	for _, f := range m.Funcs {
		if f != nil && f.Name == name {
			return f, true
		}
	}
	return nil, false
}
