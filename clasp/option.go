package clasp

import (
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// ValueType identifies the domain an option's raw text converts into.
type ValueType string

const (
	TypeBool    ValueType = "bool"
	TypeInt8    ValueType = "int8"
	TypeInt16   ValueType = "int16"
	TypeInt32   ValueType = "int32"
	TypeInt64   ValueType = "int64"
	TypeUint8   ValueType = "uint8"
	TypeUint16  ValueType = "uint16"
	TypeUint32  ValueType = "uint32"
	TypeUint64  ValueType = "uint64"
	TypeFloat32 ValueType = "float32"
	TypeFloat64 ValueType = "float64"
	TypeDecimal ValueType = "decimal"
	TypeChar    ValueType = "char"
	TypeString  ValueType = "string"
	TypeEnum    ValueType = "enum"
)

func (t ValueType) isSigned() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	}
	return false
}

func (t ValueType) isUnsigned() bool {
	switch t {
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return true
	}
	return false
}

func (t ValueType) isFloat() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

func (t ValueType) isNumeric() bool {
	return t.isSigned() || t.isUnsigned() || t.isFloat() || t == TypeDecimal
}

// bits returns the width of an integral type, 0 for everything else.
func (t ValueType) bits() int {
	switch t {
	case TypeInt8, TypeUint8:
		return 8
	case TypeInt16, TypeUint16:
		return 16
	case TypeInt32, TypeUint32:
		return 32
	case TypeInt64, TypeUint64:
		return 64
	}
	return 0
}

// BoolMode controls how a boolean option derives its value.
type BoolMode int

const (
	// BoolTrueIfPresent sets the option to true on bare presence. This is
	// the default for boolean options.
	BoolTrueIfPresent BoolMode = iota
	// BoolFalseIfPresent sets the option to false on bare presence.
	BoolFalseIfPresent
	// BoolUsePrefix derives the value from the switch character: plus sets
	// true, minus sets false. Requires the sign style.
	BoolUsePrefix
	// BoolExplicit makes the option value-accepting: the value is spelled
	// out as one of the canonical literals.
	BoolExplicit
)

func (m BoolMode) String() string {
	switch m {
	case BoolTrueIfPresent:
		return "true-if-present"
	case BoolFalseIfPresent:
		return "false-if-present"
	case BoolUsePrefix:
		return "use-prefix"
	case BoolExplicit:
		return "explicit"
	default:
		return "invalid"
	}
}

// assignMode is the tri-state explicit-assignment setting. Unset options
// inherit from their group, and unset groups from the manager.
type assignMode int8

const (
	assignUnset assignMode = iota
	assignRequired
	assignOptional
)

// OptionSpec is the declared shape of one option: its names, value domain,
// cardinality, and the constraints checked during and after a parse run.
type OptionSpec struct {
	Name        string
	Description string
	Type        ValueType
	Aliases     []string
	Repeated    bool
	Mode        BoolMode
	MinOccurs   int
	MaxOccurs   int // 0 means unbounded
	EnumValues  []string
	EnvVars     []string
	Hidden      bool
	GroupID     string

	occursSet      bool
	assign         assignMode
	bareDefault    string
	hasBareDefault bool
	bareValue      value
	hasMin, hasMax bool
	minVal, maxVal value
	prohibitNames  []string
	validators     []func(value) error
	binds          []func(value)

	// resolved by finalize
	group          *OptionGroup
	prohibits      []*OptionSpec
	assignResolved bool

	// per-run state
	occurrences int
}

// valueAccepting reports whether an occurrence of the option consumes a value
// token. Boolean options consume one only in explicit mode.
func (o *OptionSpec) valueAccepting() bool {
	return o.Type != TypeBool || o.Mode == BoolExplicit
}

// setAt reports whether the option occurred at least once this run.
func (o *OptionSpec) setAt() bool {
	return o.occurrences > 0
}

// displayName renders the option the way users write it, preferring the most
// specific enabled style.
func (o *OptionSpec) displayName(styles Style) string {
	switch {
	case styles.Has(StyleLong):
		return "--" + o.Name
	case styles.Has(StyleShort):
		return "-" + o.Name
	case styles.Has(StyleWindows):
		return "/" + o.Name
	default:
		return o.Name
	}
}

// optionParent is satisfied by the types option builders hang off of.
type optionParent interface {
	manager() *Manager
}

// OptionBuilder provides the fluent configuration surface for one option.
// T is the bound Go type, P the parent builder Back returns to.
type OptionBuilder[T any, P optionParent] struct {
	opt    *OptionSpec
	parent P
	get    func(value) T
}

func newOptionBuilder[T any, P optionParent](parent P, name, description string, vt ValueType, get func(value) T) *OptionBuilder[T, P] {
	m := parent.manager()
	opt := m.addOption(name, description, vt)
	return &OptionBuilder[T, P]{opt: opt, parent: parent, get: get}
}

// Alias registers alternative names. Each argument may carry several names
// separated by spaces, commas or semicolons.
func (b *OptionBuilder[T, P]) Alias(names ...string) *OptionBuilder[T, P] {
	for _, n := range names {
		parts := splitNameList(n)
		if len(parts) == 0 {
			configPanic(b.opt.Name, "empty alias")
		}
		b.opt.Aliases = append(b.opt.Aliases, parts...)
	}
	b.touch()
	return b
}

// Required marks the option as mandatory, leaving the upper bound alone.
func (b *OptionBuilder[T, P]) Required() *OptionBuilder[T, P] {
	if b.opt.MinOccurs < 1 {
		b.opt.MinOccurs = 1
	}
	b.touch()
	return b
}

// Occurs sets the occurrence bounds for the option. A max of zero means
// unbounded. Scalar options only admit a max of one.
func (b *OptionBuilder[T, P]) Occurs(min, max int) *OptionBuilder[T, P] {
	if min < 0 || max < 0 {
		configPanic(b.opt.Name, "negative occurrence bound %d..%d", min, max)
	}
	if max != 0 && min > max {
		configPanic(b.opt.Name, "impossible occurrence bounds %d..%d", min, max)
	}
	b.opt.MinOccurs = min
	b.opt.MaxOccurs = max
	b.opt.occursSet = true
	b.touch()
	return b
}

// Repeated switches the option to collection semantics: each occurrence
// appends instead of replacing, and the occurrence cap defaults to unbounded.
func (b *OptionBuilder[T, P]) Repeated() *OptionBuilder[T, P] {
	b.opt.Repeated = true
	if !b.opt.occursSet {
		b.opt.MaxOccurs = 0
	}
	b.touch()
	return b
}

// Group places the option into the identified option group.
func (b *OptionBuilder[T, P]) Group(id string) *OptionBuilder[T, P] {
	b.opt.GroupID = id
	b.touch()
	return b
}

// Prohibits declares options that cannot appear together with this one. The
// relation is symmetric regardless of which side declares it.
func (b *OptionBuilder[T, P]) Prohibits(names ...string) *OptionBuilder[T, P] {
	for _, n := range names {
		parts := splitNameList(n)
		if len(parts) == 0 {
			configPanic(b.opt.Name, "empty prohibition target")
		}
		b.opt.prohibitNames = append(b.opt.prohibitNames, parts...)
	}
	b.touch()
	return b
}

// Hidden excludes the option from usage listings.
func (b *OptionBuilder[T, P]) Hidden() *OptionBuilder[T, P] {
	b.opt.Hidden = true
	return b
}

// FromEnv names environment variables consulted, in order, when the option
// never occurs on the command line.
func (b *OptionBuilder[T, P]) FromEnv(envVars ...string) *OptionBuilder[T, P] {
	b.opt.EnvVars = append(b.opt.EnvVars, envVars...)
	return b
}

// AssignmentRequired demands the explicit assignment syntax for values of
// this option, overriding the group and manager settings.
func (b *OptionBuilder[T, P]) AssignmentRequired() *OptionBuilder[T, P] {
	b.opt.assign = assignRequired
	b.touch()
	return b
}

// AssignmentOptional allows values without assignment syntax for this option,
// overriding the group and manager settings.
func (b *OptionBuilder[T, P]) AssignmentOptional() *OptionBuilder[T, P] {
	b.opt.assign = assignOptional
	b.touch()
	return b
}

// BareDefault sets the value committed when the option appears without an
// explicit assignment. Only legal when explicit assignment is required; the
// text runs through the option's normal conversion pipeline.
func (b *OptionBuilder[T, P]) BareDefault(text string) *OptionBuilder[T, P] {
	b.opt.bareDefault = text
	b.opt.hasBareDefault = true
	b.touch()
	return b
}

// TrueIfPresent makes bare presence set the boolean to true.
func (b *OptionBuilder[T, P]) TrueIfPresent() *OptionBuilder[T, P] {
	return b.boolMode(BoolTrueIfPresent)
}

// FalseIfPresent makes bare presence set the boolean to false.
func (b *OptionBuilder[T, P]) FalseIfPresent() *OptionBuilder[T, P] {
	return b.boolMode(BoolFalseIfPresent)
}

// UsePrefix derives the boolean from the switch character: +name sets true,
// -name sets false. Requires the sign style to be enabled.
func (b *OptionBuilder[T, P]) UsePrefix() *OptionBuilder[T, P] {
	return b.boolMode(BoolUsePrefix)
}

// ExplicitValue makes the boolean value-accepting so the value must be
// spelled out as a literal.
func (b *OptionBuilder[T, P]) ExplicitValue() *OptionBuilder[T, P] {
	return b.boolMode(BoolExplicit)
}

func (b *OptionBuilder[T, P]) boolMode(mode BoolMode) *OptionBuilder[T, P] {
	if b.opt.Type != TypeBool {
		configPanic(b.opt.Name, "%s mode requires a boolean option, not %s", mode, b.opt.Type)
	}
	b.opt.Mode = mode
	b.touch()
	return b
}

// Validate adds a custom hook run after conversion. The occurrence is
// rejected with an invalid-value error when the hook returns one.
func (b *OptionBuilder[T, P]) Validate(fn func(T) error) *OptionBuilder[T, P] {
	get := b.get
	b.opt.validators = append(b.opt.validators, func(v value) error {
		return fn(get(v))
	})
	return b
}

// Bind writes each committed value to ptr, so after the run ptr holds the
// last occurrence. An absent option leaves the target untouched.
func (b *OptionBuilder[T, P]) Bind(ptr *T) *OptionBuilder[T, P] {
	get := b.get
	b.opt.binds = append(b.opt.binds, func(v value) {
		*ptr = get(v)
	})
	return b
}

// BindSlice appends each committed value to the slice at ptr.
func (b *OptionBuilder[T, P]) BindSlice(ptr *[]T) *OptionBuilder[T, P] {
	get := b.get
	b.opt.binds = append(b.opt.binds, func(v value) {
		*ptr = append(*ptr, get(v))
	})
	return b
}

// BindFunc invokes fn with each committed value.
func (b *OptionBuilder[T, P]) BindFunc(fn func(T)) *OptionBuilder[T, P] {
	get := b.get
	b.opt.binds = append(b.opt.binds, func(v value) {
		fn(get(v))
	})
	return b
}

// Back returns to the parent builder.
func (b *OptionBuilder[T, P]) Back() P {
	return b.parent
}

func (b *OptionBuilder[T, P]) touch() {
	b.parent.manager().touch()
}

// Numeric is the constraint for Range bounds: every integral and floating
// domain an option can declare.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Range constrains a numeric option to an inclusive interval. Out-of-range
// values report overflow errors during parsing.
func Range[T Numeric, P optionParent](b *OptionBuilder[T, P], min, max T) *OptionBuilder[T, P] {
	if min > max {
		configPanic(b.opt.Name, "impossible range %v..%v", min, max)
	}
	b.opt.minVal = numericBound(b.opt.Type, any(min))
	b.opt.maxVal = numericBound(b.opt.Type, any(max))
	b.opt.hasMin = true
	b.opt.hasMax = true
	b.touch()
	return b
}

// DecimalRange constrains a decimal option to an inclusive interval given as
// decimal literals.
func DecimalRange[P optionParent](b *OptionBuilder[*apd.Decimal, P], min, max string) *OptionBuilder[*apd.Decimal, P] {
	lo, _, err := apd.NewFromString(min)
	if err != nil {
		configPanic(b.opt.Name, "invalid decimal range bound %q", min)
	}
	hi, _, err := apd.NewFromString(max)
	if err != nil {
		configPanic(b.opt.Name, "invalid decimal range bound %q", max)
	}
	if lo.Cmp(hi) > 0 {
		configPanic(b.opt.Name, "impossible range %s..%s", min, max)
	}
	b.opt.minVal = value{t: TypeDecimal, d: lo}
	b.opt.maxVal = value{t: TypeDecimal, d: hi}
	b.opt.hasMin = true
	b.opt.hasMax = true
	b.touch()
	return b
}

// numericBound converts a declared bound into the canonical representation
// for the option's domain.
func numericBound(t ValueType, bound interface{}) value {
	v := value{t: t}
	switch n := bound.(type) {
	case int8:
		v.i = int64(n)
	case int16:
		v.i = int64(n)
	case int32:
		v.i = int64(n)
	case int64:
		v.i = n
	case uint8:
		v.u = uint64(n)
	case uint16:
		v.u = uint64(n)
	case uint32:
		v.u = uint64(n)
	case uint64:
		v.u = n
	case float32:
		v.f = float64(n)
	case float64:
		v.f = n
	default:
		panic(&InternalError{Message: "unhandled numeric bound type"})
	}
	return v
}

// splitNameList breaks a declarative name list on spaces, commas and
// semicolons.
func splitNameList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '\t'
	})
}
