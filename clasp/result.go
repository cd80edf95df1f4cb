package clasp

import "github.com/cockroachdb/apd/v3"

// ParseResult carries the outcome of one parse run: converted values by
// option, occurrence counts, the values left over after option consumption,
// and every problem met along the way. Accessors accept any declared name or
// alias of an option.
type ParseResult struct {
	m *Manager

	errs        ErrorList
	rest        []string
	execPath    string
	occurrences map[string]int

	bools    map[string]bool
	ints     map[string]int64
	uints    map[string]uint64
	floats   map[string]float64
	decimals map[string]*apd.Decimal
	chars    map[string]rune
	strs     map[string]string

	boolLists    map[string][]bool
	intLists     map[string][]int64
	uintLists    map[string][]uint64
	floatLists   map[string][]float64
	decimalLists map[string][]*apd.Decimal
	charLists    map[string][]rune
	strLists     map[string][]string
}

func newParseResult(m *Manager) *ParseResult {
	return &ParseResult{m: m, occurrences: make(map[string]int)}
}

// store records one committed occurrence: scalars keep the latest value,
// repeated options additionally append to their collection.
func (r *ParseResult) store(opt *OptionSpec, v value) {
	name := opt.Name
	switch {
	case v.t == TypeBool:
		if r.bools == nil {
			r.bools = make(map[string]bool)
		}
		r.bools[name] = v.b
		if opt.Repeated {
			if r.boolLists == nil {
				r.boolLists = make(map[string][]bool)
			}
			r.boolLists[name] = append(r.boolLists[name], v.b)
		}
	case v.t.isSigned():
		if r.ints == nil {
			r.ints = make(map[string]int64)
		}
		r.ints[name] = v.i
		if opt.Repeated {
			if r.intLists == nil {
				r.intLists = make(map[string][]int64)
			}
			r.intLists[name] = append(r.intLists[name], v.i)
		}
	case v.t.isUnsigned():
		if r.uints == nil {
			r.uints = make(map[string]uint64)
		}
		r.uints[name] = v.u
		if opt.Repeated {
			if r.uintLists == nil {
				r.uintLists = make(map[string][]uint64)
			}
			r.uintLists[name] = append(r.uintLists[name], v.u)
		}
	case v.t.isFloat():
		if r.floats == nil {
			r.floats = make(map[string]float64)
		}
		r.floats[name] = v.f
		if opt.Repeated {
			if r.floatLists == nil {
				r.floatLists = make(map[string][]float64)
			}
			r.floatLists[name] = append(r.floatLists[name], v.f)
		}
	case v.t == TypeDecimal:
		if r.decimals == nil {
			r.decimals = make(map[string]*apd.Decimal)
		}
		r.decimals[name] = v.d
		if opt.Repeated {
			if r.decimalLists == nil {
				r.decimalLists = make(map[string][]*apd.Decimal)
			}
			r.decimalLists[name] = append(r.decimalLists[name], v.d)
		}
	case v.t == TypeChar:
		if r.chars == nil {
			r.chars = make(map[string]rune)
		}
		r.chars[name] = v.r
		if opt.Repeated {
			if r.charLists == nil {
				r.charLists = make(map[string][]rune)
			}
			r.charLists[name] = append(r.charLists[name], v.r)
		}
	default:
		if r.strs == nil {
			r.strs = make(map[string]string)
		}
		r.strs[name] = v.s
		if opt.Repeated {
			if r.strLists == nil {
				r.strLists = make(map[string][]string)
			}
			r.strLists[name] = append(r.strLists[name], v.s)
		}
	}
}

// key resolves a name or alias to the canonical map key.
func (r *ParseResult) key(name string) (string, bool) {
	opt := r.m.find(name)
	if opt == nil {
		return "", false
	}
	return opt.Name, true
}

// HasErrors reports whether the run met any problem.
func (r *ParseResult) HasErrors() bool {
	return len(r.errs) > 0
}

// Ok reports whether the run completed without problems.
func (r *ParseResult) Ok() bool {
	return len(r.errs) == 0
}

// Errors returns the accumulated problems in the order they were found.
func (r *ParseResult) Errors() []*ErrorInfo {
	return r.errs
}

// Err returns the accumulated problems as a single error, or nil.
func (r *ParseResult) Err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs
}

// Rest returns the values that did not belong to any option, in input order.
func (r *ParseResult) Rest() []string {
	return r.rest
}

// ExecutablePath returns the program path from argv-style input, or "".
func (r *ParseResult) ExecutablePath() string {
	return r.execPath
}

// Occurrences returns how many times the option occurred this run.
func (r *ParseResult) Occurrences(name string) int {
	k, ok := r.key(name)
	if !ok {
		return 0
	}
	return r.occurrences[k]
}

// GetBool returns the boolean value of an option and whether it was set.
func (r *ParseResult) GetBool(name string) (bool, bool) {
	k, ok := r.key(name)
	if !ok {
		return false, false
	}
	v, set := r.bools[k]
	return v, set
}

// GetString returns the string or enum value of an option and whether it was
// set. Enum options always hold their declared spelling.
func (r *ParseResult) GetString(name string) (string, bool) {
	k, ok := r.key(name)
	if !ok {
		return "", false
	}
	v, set := r.strs[k]
	return v, set
}

// GetChar returns the character value of an option and whether it was set.
func (r *ParseResult) GetChar(name string) (rune, bool) {
	k, ok := r.key(name)
	if !ok {
		return 0, false
	}
	v, set := r.chars[k]
	return v, set
}

// GetInt returns the signed integer value of an option widened to 64 bits,
// and whether it was set.
func (r *ParseResult) GetInt(name string) (int64, bool) {
	k, ok := r.key(name)
	if !ok {
		return 0, false
	}
	v, set := r.ints[k]
	return v, set
}

// GetUint returns the unsigned integer value of an option widened to 64
// bits, and whether it was set.
func (r *ParseResult) GetUint(name string) (uint64, bool) {
	k, ok := r.key(name)
	if !ok {
		return 0, false
	}
	v, set := r.uints[k]
	return v, set
}

// GetFloat returns the floating point value of an option widened to 64 bits,
// and whether it was set.
func (r *ParseResult) GetFloat(name string) (float64, bool) {
	k, ok := r.key(name)
	if !ok {
		return 0, false
	}
	v, set := r.floats[k]
	return v, set
}

// GetDecimal returns the decimal value of an option and whether it was set.
func (r *ParseResult) GetDecimal(name string) (*apd.Decimal, bool) {
	k, ok := r.key(name)
	if !ok {
		return nil, false
	}
	v, set := r.decimals[k]
	return v, set
}

// Collection accessors for repeated options, one occurrence per element.

// GetBools returns all boolean occurrences of a repeated option.
func (r *ParseResult) GetBools(name string) ([]bool, bool) {
	k, ok := r.key(name)
	if !ok {
		return nil, false
	}
	v, set := r.boolLists[k]
	return v, set
}

// GetStrings returns all string or enum occurrences of a repeated option.
func (r *ParseResult) GetStrings(name string) ([]string, bool) {
	k, ok := r.key(name)
	if !ok {
		return nil, false
	}
	v, set := r.strLists[k]
	return v, set
}

// GetChars returns all character occurrences of a repeated option.
func (r *ParseResult) GetChars(name string) ([]rune, bool) {
	k, ok := r.key(name)
	if !ok {
		return nil, false
	}
	v, set := r.charLists[k]
	return v, set
}

// GetInts returns all signed integer occurrences of a repeated option.
func (r *ParseResult) GetInts(name string) ([]int64, bool) {
	k, ok := r.key(name)
	if !ok {
		return nil, false
	}
	v, set := r.intLists[k]
	return v, set
}

// GetUints returns all unsigned integer occurrences of a repeated option.
func (r *ParseResult) GetUints(name string) ([]uint64, bool) {
	k, ok := r.key(name)
	if !ok {
		return nil, false
	}
	v, set := r.uintLists[k]
	return v, set
}

// GetFloats returns all floating point occurrences of a repeated option.
func (r *ParseResult) GetFloats(name string) ([]float64, bool) {
	k, ok := r.key(name)
	if !ok {
		return nil, false
	}
	v, set := r.floatLists[k]
	return v, set
}

// GetDecimals returns all decimal occurrences of a repeated option.
func (r *ParseResult) GetDecimals(name string) ([]*apd.Decimal, bool) {
	k, ok := r.key(name)
	if !ok {
		return nil, false
	}
	v, set := r.decimalLists[k]
	return v, set
}

// Must accessors return the value or the given default when unset.

// MustGetBool returns the boolean value or def when unset.
func (r *ParseResult) MustGetBool(name string, def bool) bool {
	if v, ok := r.GetBool(name); ok {
		return v
	}
	return def
}

// MustGetString returns the string value or def when unset.
func (r *ParseResult) MustGetString(name, def string) string {
	if v, ok := r.GetString(name); ok {
		return v
	}
	return def
}

// MustGetChar returns the character value or def when unset.
func (r *ParseResult) MustGetChar(name string, def rune) rune {
	if v, ok := r.GetChar(name); ok {
		return v
	}
	return def
}

// MustGetInt returns the signed integer value or def when unset.
func (r *ParseResult) MustGetInt(name string, def int64) int64 {
	if v, ok := r.GetInt(name); ok {
		return v
	}
	return def
}

// MustGetUint returns the unsigned integer value or def when unset.
func (r *ParseResult) MustGetUint(name string, def uint64) uint64 {
	if v, ok := r.GetUint(name); ok {
		return v
	}
	return def
}

// MustGetFloat returns the floating point value or def when unset.
func (r *ParseResult) MustGetFloat(name string, def float64) float64 {
	if v, ok := r.GetFloat(name); ok {
		return v
	}
	return def
}

// MustGetDecimal returns the decimal value or def when unset.
func (r *ParseResult) MustGetDecimal(name string, def *apd.Decimal) *apd.Decimal {
	if v, ok := r.GetDecimal(name); ok {
		return v
	}
	return def
}
