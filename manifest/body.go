package manifest

import (
	"errors"
	"fmt"

	"github.com/chazu/mirrorcore/program"
)

// compileBody turns a declarative body into executable code for fn.
func compileBody(sc scope, fn *program.Function, body Body) (program.Body, error) {
	implicit := fn.NumImplicitParameters()
	arg := func(args []program.Value, i int) program.Value {
		if implicit+i < len(args) {
			return args[implicit+i]
		}
		return nil
	}

	switch {
	case body.Fail != "":
		msg := body.Fail
		return func([]program.Value) (program.Value, error) {
			return nil, errors.New(msg)
		}, nil

	case body.Param != nil:
		i := *body.Param
		if i < 0 || i >= len(fn.Params) {
			return nil, fmt.Errorf("body returns parameter %d of %d", i, len(fn.Params))
		}
		return func(args []program.Value) (program.Value, error) {
			return arg(args, i), nil
		}, nil

	case body.Field != "":
		name := body.Field
		if implicit == 1 {
			return func(args []program.Value) (program.Value, error) {
				inst, f, err := instanceField(args, name)
				if err != nil {
					return nil, err
				}
				return inst.Get(f), nil
			}, nil
		}
		return func([]program.Value) (program.Value, error) {
			f := staticField(sc, name)
			if f == nil {
				return nil, fmt.Errorf("no static field '%s'", name)
			}
			return f.Read()
		}, nil

	case len(body.Assign) > 0:
		if len(body.Assign) > len(fn.Params) {
			return nil, fmt.Errorf("body assigns %d fields from %d parameters", len(body.Assign), len(fn.Params))
		}
		names := body.Assign
		if fn.IsFactory() {
			cls := sc.cls
			return func(args []program.Value) (program.Value, error) {
				inst := program.NewInstance(cls)
				if err := assign(inst, names, args, arg); err != nil {
					return nil, err
				}
				return inst, nil
			}, nil
		}
		if implicit == 1 {
			return func(args []program.Value) (program.Value, error) {
				inst, ok := args[0].(*program.Instance)
				if !ok {
					return nil, fmt.Errorf("receiver %s is not an instance", program.FormatValue(args[0]))
				}
				return nil, assign(inst, names, args, arg)
			}, nil
		}
		return func(args []program.Value) (program.Value, error) {
			for i, name := range names {
				f := staticField(sc, name)
				if f == nil {
					return nil, fmt.Errorf("no static field '%s'", name)
				}
				f.SetStaticValue(arg(args, i))
			}
			return nil, nil
		}, nil
	}

	value := body.Return
	return func([]program.Value) (program.Value, error) {
		return value, nil
	}, nil
}

func assign(inst *program.Instance, names []string, args []program.Value, arg func([]program.Value, int) program.Value) error {
	for i, name := range names {
		f := lookupInstanceField(inst.Class, name)
		if f == nil {
			return fmt.Errorf("no field '%s' in %s", name, inst.Class.Name())
		}
		inst.Set(f, arg(args, i))
	}
	return nil
}

func instanceField(args []program.Value, name string) (*program.Instance, *program.Field, error) {
	inst, ok := args[0].(*program.Instance)
	if !ok {
		return nil, nil, fmt.Errorf("receiver %s is not an instance", program.FormatValue(args[0]))
	}
	f := lookupInstanceField(inst.Class, name)
	if f == nil {
		return nil, nil, fmt.Errorf("no field '%s' in %s", name, inst.Class.Name())
	}
	return inst, f, nil
}

// lookupInstanceField searches cls and its superclasses.
func lookupInstanceField(cls *program.Class, name string) *program.Field {
	for c := cls; c != nil; c = c.SuperClass() {
		if f := c.LookupInstanceField(name); f != nil {
			return f
		}
	}
	return nil
}

func staticField(sc scope, name string) *program.Field {
	if sc.cls != nil {
		return sc.cls.LookupStaticField(name)
	}
	f, _ := sc.lib.LookupField(name)
	return f
}
