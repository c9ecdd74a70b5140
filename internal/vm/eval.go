package vm

import (
	"cmp"

	"vmdb/internal/lang"
)

func (vm *VM) eval(e *lang.Expr) (Value, *VMError) {
	if e == nil {
		return Value{}, nil
	}
	switch e.Kind {
	case lang.ExprLit:
		return literalValue(e.Lit), nil
	case lang.ExprGlobal:
		return vm.Globals[e.Name], nil
	case lang.ExprUnary:
		x, vmErr := vm.eval(e.X)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return vm.evalUnary(e.Op, x)
	case lang.ExprBinary:
		return vm.evalBinary(e)
	default:
		return Value{}, vm.eb.unimplemented("expression")
	}
}

func literalValue(lit lang.Literal) Value {
	switch lit.Kind {
	case lang.LitInt:
		return MakeInt(lit.Int)
	case lang.LitBool:
		return MakeBool(lit.Bool)
	case lang.LitString:
		return MakeString(lit.Str)
	default:
		return Value{}
	}
}

func (vm *VM) evalUnary(op string, x Value) (Value, *VMError) {
	switch op {
	case "-":
		if x.Kind != VKInt {
			return Value{}, vm.eb.unaryMismatch(op, x)
		}
		return MakeInt(-x.Int), nil
	case "!":
		return MakeBool(!x.Truthy()), nil
	default:
		return Value{}, vm.eb.unimplemented("unary " + op)
	}
}

func (vm *VM) evalBinary(e *lang.Expr) (Value, *VMError) {
	x, vmErr := vm.eval(e.X)
	if vmErr != nil {
		return Value{}, vmErr
	}

	// short-circuit
	switch e.Op {
	case "&&":
		if !x.Truthy() {
			return MakeBool(false), nil
		}
		y, vmErr := vm.eval(e.Y)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return MakeBool(y.Truthy()), nil
	case "||":
		if x.Truthy() {
			return MakeBool(true), nil
		}
		y, vmErr := vm.eval(e.Y)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return MakeBool(y.Truthy()), nil
	}

	y, vmErr := vm.eval(e.Y)
	if vmErr != nil {
		return Value{}, vmErr
	}

	switch e.Op {
	case "==":
		return MakeBool(x.Equal(y)), nil
	case "!=":
		return MakeBool(!x.Equal(y)), nil
	case "+":
		if x.Kind == VKString || y.Kind == VKString {
			return MakeString(x.String() + y.String()), nil
		}
	case "<", "<=", ">", ">=":
		return vm.compare(e.Op, x, y)
	}

	if x.Kind != VKInt || y.Kind != VKInt {
		return Value{}, vm.eb.typeMismatch(e.Op, x, y)
	}
	return vm.arith(e.Op, x.Int, y.Int)
}

func (vm *VM) arith(op string, a, b int64) (Value, *VMError) {
	switch op {
	case "+":
		return MakeInt(a + b), nil
	case "-":
		return MakeInt(a - b), nil
	case "*":
		return MakeInt(a * b), nil
	case "/", "%":
		if b == 0 {
			return Value{}, vm.eb.divideByZero(op)
		}
		if op == "/" {
			return MakeInt(a / b), nil
		}
		return MakeInt(a % b), nil
	default:
		return Value{}, vm.eb.unimplemented("operator " + op)
	}
}

func (vm *VM) compare(op string, x, y Value) (Value, *VMError) {
	var c int
	switch {
	case x.Kind == VKInt && y.Kind == VKInt:
		c = cmp.Compare(x.Int, y.Int)
	case x.Kind == VKString && y.Kind == VKString:
		c = cmp.Compare(x.Str, y.Str)
	default:
		return Value{}, vm.eb.typeMismatch(op, x, y)
	}
	switch op {
	case "<":
		return MakeBool(c < 0), nil
	case "<=":
		return MakeBool(c <= 0), nil
	case ">":
		return MakeBool(c > 0), nil
	default:
		return MakeBool(c >= 0), nil
	}
}
