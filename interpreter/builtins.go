package interpreter

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oarkflow/convert"
	"github.com/oarkflow/json"
)

// NewGlobalEnvironment builds a root scope holding every native as a
// constant.
func (in *Interpreter) NewGlobalEnvironment() *Environment {
	env := NewEnvironment()

	args := make([]Object, len(in.args))
	for i, a := range in.args {
		args[i] = &String{Value: a}
	}

	declare := func(name string, val Object) {
		env.Declare(name, val, true)
	}
	native := func(name string, fn BuiltinFunction) {
		declare(name, &Builtin{Name: name, Fn: fn})
	}

	declare("asTrueAsTheLightOfDay", TRUE)
	declare("asFalseAsAFlimsyFabric", FALSE)
	declare("asHollowAsAFoolsHead", NULL)
	declare("proclaimedArguments", &Array{Elements: args})

	native("printethThouWordsForAllToSee", in.builtinPrint)
	native("revealThyTime", func(args []Object, env *Environment) (Object, error) {
		return &Number{Value: float64(time.Now().UnixMilli())}, nil
	})
	native("readethThineStringInput", func(args []Object, env *Environment) (Object, error) {
		line, err := in.readLine()
		if err != nil {
			return nil, err
		}
		return &String{Value: line}, nil
	})
	native("readethThineNumInput", func(args []Object, env *Environment) (Object, error) {
		line, err := in.readLine()
		if err != nil {
			return nil, err
		}
		n, ok := convert.ToFloat64(strings.TrimSpace(line))
		if !ok || strings.TrimSpace(line) == "" {
			return nil, runtimeError("input %q is not a number", line)
		}
		return &Number{Value: n}, nil
	})
	native("import", in.builtinImport)
	declare("calculationShenanigans", in.mathHash())

	return env
}

func (in *Interpreter) builtinPrint(args []Object, env *Environment) (Object, error) {
	var out strings.Builder
	for _, arg := range args {
		switch a := arg.(type) {
		case *Null:
			out.WriteString("AsHollowAsAFoolsHead")
		case *Boolean:
			if a.Value {
				out.WriteString("AsTrueAsTheLightOfDay")
			} else {
				out.WriteString("AsFalseAsAFlimsyFabric")
			}
		case *Hash:
			for _, k := range a.Keys {
				line, err := json.Marshal([]any{k, ToNative(a.Pairs[k])})
				if err != nil {
					return nil, runtimeError("cannot print property %s: %v", k, err)
				}
				out.Write(line)
				out.WriteByte('\n')
			}
		default:
			out.WriteString(arg.Inspect())
		}
	}
	if _, err := io.WriteString(in.stdout, out.String()); err != nil {
		return nil, runtimeError("write failed: %v", err)
	}
	return NULL, nil
}

func (in *Interpreter) readLine() (string, error) {
	line, err := in.stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", runtimeError("cannot read input: %v", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// builtinImport evaluates a .spp file from the import root in the root
// scope and yields its last value.
func (in *Interpreter) builtinImport(args []Object, env *Environment) (Object, error) {
	if len(args) != 1 {
		return nil, runtimeError("import expects 1 argument, got %d", len(args))
	}
	arg, ok := args[0].(*String)
	if !ok {
		return nil, runtimeError("import expects a string path, got %s", args[0].Type())
	}
	if filepath.Ext(arg.Value) != ".spp" {
		return nil, importError(arg.Value, fmt.Errorf("only .spp files can be imported"))
	}
	path, err := resolveImportPath(in.importRoot, arg.Value)
	if err != nil {
		return nil, importError(arg.Value, err)
	}
	if in.importing[path] {
		return nil, importError(arg.Value, fmt.Errorf("import cycle: %s is already being imported", arg.Value))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, importError(arg.Value, err)
	}
	program, err := Parse(string(content))
	if err != nil {
		return nil, importError(arg.Value, err)
	}

	if in.importing == nil {
		in.importing = make(map[string]bool)
	}
	in.importing[path] = true
	defer delete(in.importing, path)

	if ev := in.active; ev != nil {
		leave, err := ev.enter("import " + arg.Value)
		if err != nil {
			return nil, err
		}
		defer leave()
		return ev.eval(program, in.globals)
	}
	return in.RunProgram(context.Background(), program)
}

// resolveImportPath joins userPath onto root and rejects results that land
// outside root once symlinks are resolved.
func resolveImportPath(root, userPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if realRoot, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = realRoot
	}
	candidate := userPath
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(absRoot, candidate)
	}
	realPath, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", err
	}
	cleanPath := filepath.Clean(realPath)

	rootPrefix := filepath.Clean(absRoot)
	if !strings.HasSuffix(rootPrefix, string(os.PathSeparator)) {
		rootPrefix += string(os.PathSeparator)
	}
	if !strings.HasPrefix(cleanPath, rootPrefix) {
		return "", fmt.Errorf("access denied: path %q is outside the import root", userPath)
	}
	return cleanPath, nil
}

func (in *Interpreter) mathHash() *Hash {
	h := NewHash()
	h.Set("pi", &Number{Value: math.Pi})
	h.Set("e", &Number{Value: math.E})

	unary := func(name string, fn func(float64) float64) {
		h.Set(name, &Builtin{Name: name, Fn: func(args []Object, env *Environment) (Object, error) {
			nums, err := numberArgs(name, args, 1)
			if err != nil {
				return nil, err
			}
			return &Number{Value: fn(nums[0])}, nil
		}})
	}
	unary("unveilThyAbsoluteWorth", math.Abs)
	unary("revealThouRootsWhimsy", math.Sqrt)
	unary("logOfTwosMeasure", math.Log2)
	unary("logOfTenFold", math.Log10)

	h.Set("witnessThisErrantDigit", &Builtin{Name: "witnessThisErrantDigit", Fn: func(args []Object, env *Environment) (Object, error) {
		nums, err := numberArgs("witnessThisErrantDigit", args, 2)
		if err != nil {
			return nil, err
		}
		lo, hi := math.Ceil(nums[0]), math.Floor(nums[1])
		if hi < lo {
			return nil, runtimeError("witnessThisErrantDigit: max %s is below min %s", formatNumber(nums[1]), formatNumber(nums[0]))
		}
		return &Number{Value: lo + math.Floor(in.rand.Float64()*(hi-lo+1))}, nil
	}})

	extreme := func(name string, pick func(a, b float64) float64) {
		h.Set(name, &Builtin{Name: name, Fn: func(args []Object, env *Environment) (Object, error) {
			if len(args) == 0 {
				return nil, runtimeError("%s expects at least 1 argument", name)
			}
			nums, err := numberArgs(name, args, len(args))
			if err != nil {
				return nil, err
			}
			result := nums[0]
			for _, n := range nums[1:] {
				result = pick(result, n)
			}
			return &Number{Value: result}, nil
		}})
	}
	extreme("greatestOfThemAll", math.Max)
	extreme("littlestOfThemAll", math.Min)

	return h
}

func numberArgs(name string, args []Object, want int) ([]float64, error) {
	if len(args) != want {
		return nil, runtimeError("%s expects %d arguments, got %d", name, want, len(args))
	}
	nums := make([]float64, len(args))
	for i, a := range args {
		n, ok := a.(*Number)
		if !ok {
			return nil, runtimeError("%s expects number arguments, got %s", name, a.Type())
		}
		nums[i] = n.Value
	}
	return nums, nil
}
