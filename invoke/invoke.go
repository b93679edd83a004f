package invoke

import (
	"fmt"
	"reflect"

	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/registry"
)

// RegisterFunc issues a handle for an object returned by a method.
type RegisterFunc func(obj any) (uint64, error)

// Call invokes m on recv. A returned error or a panic is reported as an
// invocation failure; nothing escapes the call.
func Call(recv any, m *registry.Method, args []reflect.Value) (ret reflect.Value, err error) {
	rv, err := receiver(recv, m)
	if err != nil {
		return reflect.Value{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			ret = reflect.Value{}
			err = panicError(m, r)
		}
	}()

	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, rv)
	in = append(in, args...)
	out := m.Func().Call(in)

	if m.ReturnsError {
		if last := out[len(out)-1]; !last.IsNil() {
			return reflect.Value{}, errors.InvocationFailure(m.Owner, m.Name, last.Interface().(error))
		}
	}
	if m.Result != nil {
		return out[0], nil
	}
	return reflect.Value{}, nil
}

func receiver(recv any, m *registry.Method) (reflect.Value, error) {
	want := m.Receiver()
	rv := reflect.ValueOf(recv)

	switch {
	case !rv.IsValid():
		return reflect.Value{}, errors.New(errors.PhaseInvoke, errors.KindNilPointer).
			Type(m.Owner).
			Method(m.Name).
			Detail("nil receiver").
			Build()
	case rv.Type().AssignableTo(want):
		return rv, nil
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type().AssignableTo(want):
		return rv.Elem(), nil
	default:
		return reflect.Value{}, errors.New(errors.PhaseInvoke, errors.KindInvocationFailure).
			Type(m.Owner).
			Method(m.Name).
			Value(rv.Type().String()).
			Detail("receiver %s does not implement %s", rv.Type(), want).
			Build()
	}
}

func panicError(m *registry.Method, r any) *errors.Error {
	cause, ok := r.(error)
	if !ok {
		cause = fmt.Errorf("%v", r)
	}
	return errors.New(errors.PhaseInvoke, errors.KindInvocationFailure).
		Type(m.Owner).
		Method(m.Name).
		Value(r).
		Cause(cause).
		Detail("method panicked").
		Build()
}

// Package converts the value returned by Call into a tagged Result.
// Non-nil objects are handed to register and come back as handles.
func Package(ret reflect.Value, m *registry.Method, register RegisterFunc) Result {
	if m.Result == nil || !ret.IsValid() {
		return VoidResult()
	}

	// Package the dynamic value behind interface results.
	for ret.Kind() == reflect.Interface && !ret.IsNil() {
		ret = ret.Elem()
	}

	switch ret.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return Int32Result(int32(ret.Int()))
	case reflect.Uint8, reflect.Uint16:
		return Int32Result(int32(ret.Uint()))
	case reflect.Int, reflect.Int64:
		return Int64Result(ret.Int())
	case reflect.Uint, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Int64Result(int64(ret.Uint()))
	case reflect.Float32:
		return FloatResult(float32(ret.Float()))
	case reflect.Float64:
		return DoubleResult(ret.Float())
	case reflect.Bool:
		return BoolResult(ret.Bool())
	case reflect.String:
		return StringResult(ret.String())
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if ret.IsNil() {
			return NoneResult()
		}
	}

	if register == nil {
		return ErrorResult(errors.New(errors.PhaseInvoke, errors.KindInvocationFailure).
			Type(m.Owner).
			Method(m.Name).
			Detail("cannot return %s without a handle table", ret.Type()).
			Build())
	}

	h, err := register(ret.Interface())
	if err != nil {
		return ErrorResult(errors.New(errors.PhaseInvoke, errors.KindInvocationFailure).
			Type(m.Owner).
			Method(m.Name).
			Cause(err).
			Detail("could not issue a handle for the result").
			Build())
	}
	return HandleResult(h)
}
