package value

// Scope is an insertion-ordered set of bindings.
type Scope struct {
	names []string
	vals  map[string]Value
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{vals: make(map[string]Value)}
}

// Define binds name, replacing an earlier binding.
func (s *Scope) Define(name string, v Value) {
	if _, ok := s.vals[name]; !ok {
		s.names = append(s.names, name)
	}
	s.vals[name] = v
}

// Get returns an owned copy of the binding.
func (s *Scope) Get(name string) (Value, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.vals[name]
	if !ok {
		return nil, false
	}
	return Clone(v), true
}

// Names returns the bound names in definition order.
func (s *Scope) Names() []string {
	if s == nil {
		return nil
	}
	return s.names
}

// Module is an evaluated file: its top-level bindings and its content.
type Module struct {
	Name    string
	Scope   *Scope
	Content Content
}

func (*Module) Type() Type { return TypeModule }

// Field looks up an exported binding.
func (m *Module) Field(name string) (Value, error) {
	if v, ok := m.Scope.Get(name); ok {
		return v, nil
	}
	return nil, errorf("module `%s` does not contain `%s`", m.Name, name)
}
