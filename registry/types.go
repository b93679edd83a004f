package registry

import (
	"reflect"
	"strings"

	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/marshal"
)

// Constructor creates a fresh instance of a registered type.
type Constructor func() (any, error)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Method describes one invocable method of a registered type.
type Method struct {
	fn           reflect.Value
	Result       reflect.Type // nil for void
	Owner        string
	Name         string
	Params       []marshal.ParamType
	ParamGoTypes []reflect.Type
	Index        int // declaration order within the type
	ReturnsError bool
}

func (m *Method) Arity() int {
	return len(m.Params)
}

// Func returns the method expression. The receiver is its first argument.
func (m *Method) Func() reflect.Value {
	return m.fn
}

// Receiver returns the receiver type the method expects.
func (m *Method) Receiver() reflect.Type {
	return m.fn.Type().In(0)
}

// Supported returns an unsupported_parameter_type error for the first
// parameter outside the marshalable set.
func (m *Method) Supported() error {
	if pos := marshal.FirstUnsupported(m.Params); pos != 0 {
		return errors.UnsupportedParam(m.Owner, m.Name, pos, m.ParamGoTypes[pos-1].String())
	}
	return nil
}

// Signature renders the method as Name(type, ...) result.
func (m *Method) Signature() string {
	var sb strings.Builder
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for i, t := range m.ParamGoTypes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	sb.WriteByte(')')
	if m.Result != nil {
		sb.WriteByte(' ')
		sb.WriteString(m.Result.String())
	}
	return sb.String()
}

// TypeDescriptor is the registry's record of an instantiable type.
type TypeDescriptor struct {
	GoType  reflect.Type // nil when the type declares no methods
	New     Constructor
	Name    string
	Methods []*Method
	ID      uint32
}

// MethodsNamed returns the methods called name, in declaration order.
func (d *TypeDescriptor) MethodsNamed(name string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

func newMethod(owner, name string, index int, fn any) (*Method, error) {
	if name == "" {
		return nil, errors.Registration(owner, "method name cannot be empty")
	}

	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(owner).
			Method(name).
			Detail("handler must be a method expression, got %T", fn).
			Build()
	}

	ft := rv.Type()
	if ft.NumIn() == 0 {
		return nil, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(owner).
			Method(name).
			Detail("method expression has no receiver").
			Build()
	}
	if ft.IsVariadic() {
		return nil, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(owner).
			Method(name).
			Detail("variadic methods are not invocable").
			Build()
	}

	m := &Method{
		fn:    rv,
		Owner: owner,
		Name:  name,
		Index: index,
	}

	for i := 1; i < ft.NumIn(); i++ {
		pt := ft.In(i)
		m.ParamGoTypes = append(m.ParamGoTypes, pt)
		m.Params = append(m.Params, marshal.ParamTypeOf(pt))
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			m.ReturnsError = true
		} else {
			m.Result = ft.Out(0)
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, errors.New(errors.PhaseRegister, errors.KindRegistration).
				Type(owner).
				Method(name).
				Detail("second result must be error, got %s", ft.Out(1)).
				Build()
		}
		m.Result = ft.Out(0)
		m.ReturnsError = true
	default:
		return nil, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Type(owner).
			Method(name).
			Detail("methods may return at most a value and an error").
			Build()
	}

	return m, nil
}
