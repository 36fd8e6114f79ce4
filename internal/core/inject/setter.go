package inject

import (
	"reflect"
	"strings"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/system"
)

// Struct tag marking a controller field for system injection.
const (
	Tag       = "dep"
	TagSystem = "system"
)

// setterFor builds the cached setter for field f of c. Settable fields are
// assigned in place; otherwise an exported Set<Field>(T) method is used.
func setterFor(c controller.Controller, f reflect.StructField) (Setter, error) {
	t := controller.TypeOf(c)
	idx := f.Index
	ft := f.Type

	fv, err := reflect.ValueOf(c).Elem().FieldByIndexErr(idx)
	if err == nil && fv.CanSet() {
		return func(c controller.Controller, s system.System) {
			v := reflect.ValueOf(c).Elem().FieldByIndex(idx)
			if s == nil {
				v.Set(reflect.Zero(ft))
				return
			}
			v.Set(reflect.ValueOf(s))
		}, nil
	}

	name := "Set" + strings.ToUpper(f.Name[:1]) + f.Name[1:]
	m, ok := t.MethodByName(name)
	if !ok || m.Type.NumIn() != 2 || m.Type.NumOut() != 0 || !ft.AssignableTo(m.Type.In(1)) {
		return nil, controller.Defect(t, controller.ErrUnsettableField, f.Name)
	}
	fn := m.Func
	param := m.Type.In(1)
	return func(c controller.Controller, s system.System) {
		arg := reflect.Zero(param)
		if s != nil {
			arg = reflect.ValueOf(s)
		}
		fn.Call([]reflect.Value{reflect.ValueOf(c), arg})
	}, nil
}
