package schema

import (
	"fmt"

	"github.com/rowanvale/liveset"
)

// Type is a property base type.
type Type string

const (
	TypeInt       Type = "int"
	TypeFloat     Type = "float"
	TypeBool      Type = "bool"
	TypeString    Type = "string"
	TypeTimestamp Type = "timestamp"
	TypeDecimal   Type = "decimal"
)

// ValidType reports whether t is a known base type.
func ValidType(t Type) bool {
	switch t {
	case TypeInt, TypeFloat, TypeBool, TypeString, TypeTimestamp, TypeDecimal:
		return true
	}
	return false
}

// Property is one declared column of a record class.
type Property struct {
	Name     string
	Type     Type
	Optional bool
}

// Class is one declared element type. For a primitive class, Properties
// holds the single synthetic "value" column.
type Class struct {
	Name       string
	Primitive  bool
	Properties []Property
}

// PrimitiveValueColumn is the synthetic column name backing the elements
// of a primitive class.
const PrimitiveValueColumn = "value"

// Property returns the declared property with the given name, its column
// index, and whether it exists.
func (c *Class) Property(name string) (Property, int, bool) {
	for i, p := range c.Properties {
		if p.Name == name {
			return p, i, true
		}
	}
	return Property{}, -1, false
}

// ElementType returns the base type of a primitive class's elements.
func (c *Class) ElementType() Type {
	return c.Properties[0].Type
}

// ElementTypeName returns the name reported by result sets over this
// class: the class name for records, "" for primitives.
func (c *Class) ElementTypeName() string {
	if c.Primitive {
		return ""
	}
	return c.Name
}

// ColumnTypes returns the column name → base type mapping, used by the
// query compiler for cast decisions.
func (c *Class) ColumnTypes() map[string]string {
	out := make(map[string]string, len(c.Properties))
	for _, p := range c.Properties {
		out[p.Name] = string(p.Type)
	}
	return out
}

// Set is a loaded schema: all declared classes, in declaration order.
type Set struct {
	Classes []*Class
	byName  map[string]*Class
}

// NewSet builds a Set from classes, rejecting duplicates.
func NewSet(classes []*Class) (*Set, error) {
	s := &Set{byName: make(map[string]*Class, len(classes))}
	for _, c := range classes {
		if _, dup := s.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate class %q", c.Name)
		}
		s.Classes = append(s.Classes, c)
		s.byName[c.Name] = c
	}
	return s, nil
}

// Class returns the named class and whether it exists.
func (s *Set) Class(name string) (*Class, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// Meta adapts a record class to the collection layer's column-metadata
// contract. Primitive classes have no Meta: their collections carry no
// column context.
type Meta struct {
	class *Class
}

// NewMeta creates the column metadata for a record class.
func NewMeta(c *Class) *Meta {
	return &Meta{class: c}
}

// ResolveColumn implements liveset.ColumnMeta.
func (m *Meta) ResolveColumn(name string) (liveset.Column, error) {
	_, index, ok := m.class.Property(name)
	if !ok {
		return liveset.Column{}, liveset.NewPropertyResolutionError(name,
			fmt.Sprintf("class %s has no such property", m.class.Name))
	}
	return liveset.NewColumn(name, index), nil
}

// DefaultColumn implements liveset.ColumnMeta. Structured records have no
// well-defined default aggregation column.
func (m *Meta) DefaultColumn() (liveset.Column, bool) {
	return liveset.Column{}, false
}

// KeyPaths implements liveset.ColumnMeta. Property names map one-to-one
// onto engine columns.
func (m *Meta) KeyPaths() map[string]string {
	out := make(map[string]string, len(m.class.Properties))
	for _, p := range m.class.Properties {
		out[p.Name] = p.Name
	}
	return out
}
