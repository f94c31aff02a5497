package parser

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/leapjpql/pkg/ast"
)

// VarKind indicates how an identification variable was declared.
type VarKind int

const (
	// VarRange is declared over an entity: FROM Employee e.
	VarRange VarKind = iota
	// VarJoin is declared by a join: JOIN e.projects p.
	VarJoin
	// VarCollectionMember is declared by IN (e.projects) p.
	VarCollectionMember
	// VarDerived is declared in a subquery over an outer variable's path.
	VarDerived
)

func (k VarKind) String() string {
	switch k {
	case VarRange:
		return "range"
	case VarJoin:
		return "join"
	case VarCollectionMember:
		return "collection member"
	case VarDerived:
		return "derived"
	}
	return "unknown"
}

// Variable is an identification variable in scope.
type Variable struct {
	Name   string          // as written
	Kind   VarKind
	Source string          // entity name or path text it ranges over
	Decl   *ast.Identifier // declaring identifier
}

// Scope tracks identification variables within a query. Each subquery gets
// a child scope so correlated references can be told apart from new
// declarations.
type Scope struct {
	parent *Scope
	vars   map[string]*Variable // lowercase name -> variable
	order  []*Variable
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: make(map[string]*Variable)}
}

// Parent returns the enclosing scope, or nil at the top level.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// declare registers a variable. A later declaration of the same name in
// the same scope wins.
func (s *Scope) declare(id *ast.Identifier, kind VarKind, source string) {
	if id == nil {
		return
	}
	v := &Variable{Name: id.Name, Kind: kind, Source: source, Decl: id}
	key := strings.ToLower(id.Name)
	if _, ok := s.vars[key]; !ok {
		s.order = append(s.order, v)
	} else {
		for i, old := range s.order {
			if strings.EqualFold(old.Name, id.Name) {
				s.order[i] = v
			}
		}
	}
	s.vars[key] = v
}

// Lookup finds a variable by name, case-insensitively. Searches this scope
// first, then enclosing ones.
func (s *Scope) Lookup(name string) (*Variable, bool) {
	if v, ok := s.vars[strings.ToLower(name)]; ok {
		return v, true
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil, false
}

// LookupEnclosing finds a variable declared by an enclosing query only.
func (s *Scope) LookupEnclosing(name string) (*Variable, bool) {
	if s.parent == nil {
		return nil, false
	}
	return s.parent.Lookup(name)
}

// Variables returns this scope's variables in declaration order.
func (s *Scope) Variables() []*Variable {
	out := make([]*Variable, len(s.order))
	copy(out, s.order)
	return out
}

// Names returns the names visible from this scope, sorted.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for sc := s; sc != nil; sc = sc.parent {
		for _, v := range sc.order {
			key := strings.ToLower(v.Name)
			if !seen[key] {
				seen[key] = true
				names = append(names, v.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}
