package state

import (
	"fmt"
	"reflect"
)

// Catalog lists every state type the application knows about, in the order
// they were added. Controllers that follow every state build their interests
// from it.
type Catalog struct {
	types  []reflect.Type
	names  []string
	byName map[string]reflect.Type
}

func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]reflect.Type)}
}

// Add records S under its StateName. S must be a pointer to a struct and
// names must be unique; both are programming errors.
func Add[S State](c *Catalog) {
	t := reflect.TypeFor[S]()
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("state: %s must be a pointer to a struct", t))
	}
	name := reflect.New(t.Elem()).Interface().(State).StateName()
	if prev, ok := c.byName[name]; ok {
		panic(fmt.Sprintf("state: name %q used by %s and %s", name, prev, t))
	}
	c.byName[name] = t
	c.types = append(c.types, t)
	c.names = append(c.names, name)
}

// Types returns the catalogued state types in insertion order.
func (c *Catalog) Types() []reflect.Type {
	out := make([]reflect.Type, len(c.types))
	copy(out, c.types)
	return out
}

// ByName resolves a state name to its type.
func (c *Catalog) ByName(name string) (reflect.Type, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Name returns the StateName recorded for t.
func (c *Catalog) Name(t reflect.Type) string {
	for i, cur := range c.types {
		if cur == t {
			return c.names[i]
		}
	}
	return t.String()
}

func (c *Catalog) Len() int { return len(c.types) }
