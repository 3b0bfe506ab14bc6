package value

import (
	"fmt"

	"github.com/lcn2/calc-sub001/internal/kernel"
)

// Config is the "config" value arm: an atomic snapshot of every named
// calculator parameter from §6. GetConfig copies one out of the engine's
// live settings; SetConfig validates and writes one parameter at a time,
// rejecting writes to the read-only group.
type Config struct {
	Mode      string // default output base/style: "real", "hex", "exp", ...
	Mode2     string // default base for config("mode2")
	Display   int64  // digits displayed for non-exact real output
	Epsilon   kernel.Q
	Trace     int64
	MaxPrint  int64
	Mul2      int64 // bit-length threshold for switching multiply algorithm
	Sq2       int64
	Pow2      int64
	Redc2     int64
	Tilde     bool
	Tab       bool
	LeadZero  bool
	FullZero  bool
	Quomod    int64 // packed RoundMode for quomod()
	Quo       int64 // packed RoundMode for quo()/'/' operator
	Mod       int64 // packed RoundMode for mod()/'%' operator
	Sqrt      int64 // packed RoundMode for sqrt()
	Appr      int64 // packed RoundMode for appr()
	Cfappr    int64
	Cfsim     int64
	Outround  int64
	Round     int64
	MaxScan   int64
	Prompt    string
	More      string
	BlkMaxPrint int64
	BlkVerbose  bool
	BlkBase     int64
	BlkFmt      string
	CalcDebug     int64
	ResourceDebug int64
	UserDebug     int64
	VerboseQuit   bool
	CtrlD         bool

	// Read-only group: set once at startup, rejected by SetConfig.
	Program       string
	Basename      string
	Windows       bool
	Cygwin        bool
	CompileCustom bool
	AllowCustom   bool
	Version       string
	Baseb         int64
	Hz            int64
}

// DefaultConfig returns the engine's startup configuration, matching
// calc's documented defaults for each named parameter.
func DefaultConfig(program, version string) Config {
	return Config{
		Mode:      "real",
		Mode2:     "fraction",
		Display:   20,
		Epsilon:   kernel.QMustFromString("1e-20"),
		MaxPrint:  16,
		Mul2:      252,
		Sq2:       392,
		Pow2:      64,
		Redc2:     48,
		LeadZero:  false,
		Quomod:    int64(kernel.RoundTrunc),
		Quo:       int64(kernel.RoundTrunc),
		Mod:       int64(kernel.RoundTrunc),
		Sqrt:      int64(kernel.RoundTrunc),
		Appr:      int64(kernel.RoundTrunc),
		MaxScan:   20,
		Prompt:    "> ",
		More:      ">> ",
		BlkMaxPrint: 256,
		BlkBase:     16,
		BlkFmt:      "line",
		Program:       program,
		Basename:      program,
		Version:       version,
		AllowCustom:   true,
		Baseb:         1 << 32,
	}
}

// readOnlyParams names every config("name") parameter SetConfig refuses to
// write, per §6's read-only group.
var readOnlyParams = map[string]bool{
	"program": true, "basename": true, "windows": true, "cygwin": true,
	"compile_custom": true, "allow_custom": true, "version": true,
	"baseb": true, "hz": true,
}

// GetConfig reads one named parameter out of a snapshot as a Value.
func GetConfig(c *Config, name string) (Value, error) {
	switch name {
	case "mode":
		return NewStr(c.Mode), nil
	case "mode2":
		return NewStr(c.Mode2), nil
	case "display":
		return NewInt(c.Display), nil
	case "epsilon":
		return NewNum(c.Epsilon), nil
	case "trace":
		return NewInt(c.Trace), nil
	case "maxprint":
		return NewInt(c.MaxPrint), nil
	case "mul2":
		return NewInt(c.Mul2), nil
	case "sq2":
		return NewInt(c.Sq2), nil
	case "pow2":
		return NewInt(c.Pow2), nil
	case "redc2":
		return NewInt(c.Redc2), nil
	case "tilde":
		return NewBool(c.Tilde), nil
	case "tab":
		return NewBool(c.Tab), nil
	case "leadzero":
		return NewBool(c.LeadZero), nil
	case "fullzero":
		return NewBool(c.FullZero), nil
	case "quomod":
		return NewInt(c.Quomod), nil
	case "quo":
		return NewInt(c.Quo), nil
	case "mod":
		return NewInt(c.Mod), nil
	case "sqrt":
		return NewInt(c.Sqrt), nil
	case "appr":
		return NewInt(c.Appr), nil
	case "cfappr":
		return NewInt(c.Cfappr), nil
	case "cfsim":
		return NewInt(c.Cfsim), nil
	case "outround":
		return NewInt(c.Outround), nil
	case "round":
		return NewInt(c.Round), nil
	case "maxscan":
		return NewInt(c.MaxScan), nil
	case "prompt":
		return NewStr(c.Prompt), nil
	case "more":
		return NewStr(c.More), nil
	case "blkmaxprint":
		return NewInt(c.BlkMaxPrint), nil
	case "blkverbose":
		return NewBool(c.BlkVerbose), nil
	case "blkbase":
		return NewInt(c.BlkBase), nil
	case "blkfmt":
		return NewStr(c.BlkFmt), nil
	case "calc_debug":
		return NewInt(c.CalcDebug), nil
	case "resource_debug":
		return NewInt(c.ResourceDebug), nil
	case "user_debug":
		return NewInt(c.UserDebug), nil
	case "verbose_quit":
		return NewBool(c.VerboseQuit), nil
	case "ctrl_d":
		return NewBool(c.CtrlD), nil
	case "program":
		return NewStr(c.Program), nil
	case "basename":
		return NewStr(c.Basename), nil
	case "windows":
		return NewBool(c.Windows), nil
	case "cygwin":
		return NewBool(c.Cygwin), nil
	case "compile_custom":
		return NewBool(c.CompileCustom), nil
	case "allow_custom":
		return NewBool(c.AllowCustom), nil
	case "version":
		return NewStr(c.Version), nil
	case "baseb":
		return NewInt(c.Baseb), nil
	case "hz":
		return NewInt(c.Hz), nil
	default:
		return Value{}, fmt.Errorf("value: unknown config parameter %q", name)
	}
}

// SetConfig writes one named parameter, rejecting the read-only group and
// unknown names. Only mode, mode2, display, epsilon and trace reject a value
// of the wrong type; every other parameter accepts any Value and stores the
// zero value (0, false or "") when the Value has the wrong type.
func SetConfig(c *Config, name string, v Value) error {
	if readOnlyParams[name] {
		return fmt.Errorf("value: config parameter %q is read-only", name)
	}
	switch name {
	case "mode":
		s, ok := asStrParam(v)
		if !ok {
			return fmt.Errorf("value: config(\"mode\") requires a string")
		}
		c.Mode = s
	case "mode2":
		s, ok := asStrParam(v)
		if !ok {
			return fmt.Errorf("value: config(\"mode2\") requires a string")
		}
		c.Mode2 = s
	case "display":
		n, ok := asIntParam(v)
		if !ok {
			return fmt.Errorf("value: config(\"display\") requires an integer")
		}
		c.Display = n
	case "epsilon":
		q, ok := v.AsQ()
		if !ok {
			return fmt.Errorf("value: config(\"epsilon\") requires a number")
		}
		c.Epsilon = q
	case "trace":
		n, ok := asIntParam(v)
		if !ok {
			return fmt.Errorf("value: config(\"trace\") requires an integer")
		}
		c.Trace = n
	case "maxprint":
		n, _ := asIntParam(v)
		c.MaxPrint = n
	case "mul2":
		n, _ := asIntParam(v)
		c.Mul2 = n
	case "sq2":
		n, _ := asIntParam(v)
		c.Sq2 = n
	case "pow2":
		n, _ := asIntParam(v)
		c.Pow2 = n
	case "redc2":
		n, _ := asIntParam(v)
		c.Redc2 = n
	case "tilde":
		c.Tilde = asBoolParam(v)
	case "tab":
		c.Tab = asBoolParam(v)
	case "leadzero":
		c.LeadZero = asBoolParam(v)
	case "fullzero":
		c.FullZero = asBoolParam(v)
	case "quomod":
		n, _ := asIntParam(v)
		c.Quomod = n
	case "quo":
		n, _ := asIntParam(v)
		c.Quo = n
	case "mod":
		n, _ := asIntParam(v)
		c.Mod = n
	case "sqrt":
		n, _ := asIntParam(v)
		c.Sqrt = n
	case "appr":
		n, _ := asIntParam(v)
		c.Appr = n
	case "cfappr":
		n, _ := asIntParam(v)
		c.Cfappr = n
	case "cfsim":
		n, _ := asIntParam(v)
		c.Cfsim = n
	case "outround":
		n, _ := asIntParam(v)
		c.Outround = n
	case "round":
		n, _ := asIntParam(v)
		c.Round = n
	case "maxscan":
		n, _ := asIntParam(v)
		c.MaxScan = n
	case "prompt":
		s, _ := asStrParam(v)
		c.Prompt = s
	case "more":
		s, _ := asStrParam(v)
		c.More = s
	case "blkmaxprint":
		n, _ := asIntParam(v)
		c.BlkMaxPrint = n
	case "blkverbose":
		c.BlkVerbose = asBoolParam(v)
	case "blkbase":
		n, _ := asIntParam(v)
		c.BlkBase = n
	case "blkfmt":
		s, _ := asStrParam(v)
		c.BlkFmt = s
	case "calc_debug":
		n, _ := asIntParam(v)
		c.CalcDebug = n
	case "resource_debug":
		n, _ := asIntParam(v)
		c.ResourceDebug = n
	case "user_debug":
		n, _ := asIntParam(v)
		c.UserDebug = n
	case "verbose_quit":
		c.VerboseQuit = asBoolParam(v)
	case "ctrl_d":
		c.CtrlD = asBoolParam(v)
	default:
		return fmt.Errorf("value: unknown config parameter %q", name)
	}
	return nil
}

// NewBool wraps a boolean as the Int fast-path 0/1, matching calc's
// convention that there is no distinct boolean arm.
func NewBool(b bool) Value {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

func asBoolParam(v Value) bool {
	if v.Tag == Int {
		return v.Body.(int64) != 0
	}
	return false
}

// AsInt is the exported form of asIntParam, for callers outside this
// package (the VM's ARGVALUE/immediate-coercion opcodes) that need the
// same Int/Num-truncates-exactly rule GetConfig/SetConfig use.
func AsInt(v Value) (int64, bool) { return asIntParam(v) }

func asIntParam(v Value) (int64, bool) {
	if v.Tag == Int {
		return v.Body.(int64), true
	}
	if q, ok := v.AsQ(); ok {
		n, exact := q.Int64()
		return n, exact
	}
	return 0, false
}

func asStrParam(v Value) (string, bool) {
	if v.Tag != Str {
		return "", false
	}
	return v.String(), true
}
