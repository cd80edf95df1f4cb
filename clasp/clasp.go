// Package clasp builds command-line option parsers from declarative
// specifications: typed options with aliases and occurrence bounds, option
// groups with cardinality policies, mutual prohibition, several prefix
// styles, quoted values with customizable escape tables, and option-file
// inclusion. User mistakes never abort a parse run; they accumulate on the
// result as typed errors. Mistakes in the specification itself are
// programming bugs and panic with a ConfigError instead.
package clasp

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	claspio "github.com/dzonerzy/go-clasp/io"
	"github.com/dzonerzy/go-clasp/internal/pool"
)

// ErrParseInProgress is returned by lexical table mutations attempted while a
// parse run is active.
var ErrParseInProgress = errors.New("clasp: lexical tables cannot change during a parse")

// Manager owns the option model and the lexical configuration, and runs
// parses against them. Build one with New, declare options and groups through
// the fluent builders, then call one of the Parse methods.
//
// A Manager is not safe for concurrent mutation; run one parse at a time and
// finish declaring the model before parsing.
type Manager struct {
	name        string
	description string
	version     string
	copyright   string

	caseSensitive bool
	styles        Style
	requireAssign bool

	specs     []*OptionSpec
	groups    []*OptionGroup
	groupByID map[string]*OptionGroup
	lookup    map[string]*OptionSpec

	tab     *tables
	dirty   bool
	parsing bool

	io    *claspio.IOManager
	exits *ExitCodeManager
}

// New creates a manager for the named program. The description heads the
// usage output.
func New(name, description string) *Manager {
	return &Manager{
		name:          name,
		description:   description,
		caseSensitive: true,
		styles:        StyleUnix,
		groupByID:     make(map[string]*OptionGroup),
		tab:           defaultTables(),
		dirty:         true,
		io:            claspio.NewIOManager(),
	}
}

func (m *Manager) manager() *Manager { return m }

func (m *Manager) touch() { m.dirty = true }

// Version sets the version string shown in the usage header.
func (m *Manager) Version(v string) *Manager {
	m.version = v
	return m
}

// Copyright sets the copyright line shown in the usage header.
func (m *Manager) Copyright(c string) *Manager {
	m.copyright = c
	return m
}

// CaseInsensitive makes option name matching ignore case.
func (m *Manager) CaseInsensitive() *Manager {
	m.caseSensitive = false
	m.touch()
	return m
}

// Styles replaces the set of recognized option prefix conventions. Grouped
// and sign styles imply the short style.
func (m *Manager) Styles(s Style) *Manager {
	m.styles = s
	m.touch()
	return m
}

// RequireAssignment demands explicit assignment syntax for every option that
// does not override the setting itself or through its group.
func (m *Manager) RequireAssignment() *Manager {
	m.requireAssign = true
	m.touch()
	return m
}

// IO exposes the terminal manager used for usage rendering and the examples.
func (m *Manager) IO() *claspio.IOManager { return m.io }

// ExitCodes exposes the process exit code mapping for parse outcomes.
func (m *Manager) ExitCodes() *ExitCodeManager {
	if m.exits == nil {
		m.exits = newExitCodeManager()
	}
	return m.exits
}

// Lexical table customization. These return ErrParseInProgress when called
// from a hook while a parse runs, and reject characters that would make
// ordinary values unlexable.

// AddQuote registers a quotation mark with its escape-code table. The table
// maps the character following an escape character to its replacement.
func (m *Manager) AddQuote(mark rune, escapes map[rune]rune) error {
	if m.parsing {
		return ErrParseInProgress
	}
	if !validTableChar(mark) {
		return fmt.Errorf("clasp: quote character %q must not be whitespace or alphanumeric", mark)
	}
	codes := make(map[rune]rune, len(escapes))
	for k, v := range escapes {
		codes[k] = v
	}
	m.tab.quotes[mark] = codes
	m.touch()
	return nil
}

// RemoveQuote drops a quotation mark from the table.
func (m *Manager) RemoveQuote(mark rune) error {
	if m.parsing {
		return ErrParseInProgress
	}
	delete(m.tab.quotes, mark)
	m.touch()
	return nil
}

// AddAssignment registers an assignment character for the given styles,
// replacing any previous registration of the same character.
func (m *Manager) AddAssignment(ch rune, styles Style) error {
	if m.parsing {
		return ErrParseInProgress
	}
	if !validTableChar(ch) {
		return fmt.Errorf("clasp: assignment character %q must not be whitespace or alphanumeric", ch)
	}
	m.tab.assigns[ch] = styles.normalize()
	m.touch()
	return nil
}

// RemoveAssignment drops an assignment character from the table.
func (m *Manager) RemoveAssignment(ch rune) error {
	if m.parsing {
		return ErrParseInProgress
	}
	delete(m.tab.assigns, ch)
	m.touch()
	return nil
}

// SetEscape replaces the escape character set used inside quoted spans and
// unquoted values. An empty set disables escaping.
func (m *Manager) SetEscape(chars ...rune) error {
	if m.parsing {
		return ErrParseInProgress
	}
	for _, c := range chars {
		if !validTableChar(c) {
			return fmt.Errorf("clasp: escape character %q must not be whitespace or alphanumeric", c)
		}
	}
	m.tab.escapes = append(m.tab.escapes[:0], chars...)
	m.touch()
	return nil
}

// Group declares an option group. Options join it either through the group
// builder or by naming its id.
func (m *Manager) Group(id string) *GroupBuilder {
	if id == "" {
		configPanic("", "group id cannot be empty")
	}
	if _, exists := m.groupByID[id]; exists {
		configPanic("", "group %q already declared", id)
	}
	g := &OptionGroup{ID: id}
	m.groups = append(m.groups, g)
	m.groupByID[id] = g
	m.touch()
	return &GroupBuilder{group: g, m: m}
}

// Option constructors.

// BoolOption declares a boolean option. Bare presence sets it to true unless
// a different mode is chosen.
func (m *Manager) BoolOption(name, description string) *OptionBuilder[bool, *Manager] {
	return newOptionBuilder[bool](m, name, description, TypeBool, getBool)
}

// StringOption declares a string option.
func (m *Manager) StringOption(name, description string) *OptionBuilder[string, *Manager] {
	return newOptionBuilder[string](m, name, description, TypeString, getString)
}

// CharOption declares an option holding exactly one character.
func (m *Manager) CharOption(name, description string) *OptionBuilder[rune, *Manager] {
	return newOptionBuilder[rune](m, name, description, TypeChar, getChar)
}

// IntOption declares a 64-bit signed integer option.
func (m *Manager) IntOption(name, description string) *OptionBuilder[int64, *Manager] {
	return newOptionBuilder[int64](m, name, description, TypeInt64, getInt)
}

// Int8Option declares an 8-bit signed integer option.
func (m *Manager) Int8Option(name, description string) *OptionBuilder[int8, *Manager] {
	return newOptionBuilder[int8](m, name, description, TypeInt8, getInt8)
}

// Int16Option declares a 16-bit signed integer option.
func (m *Manager) Int16Option(name, description string) *OptionBuilder[int16, *Manager] {
	return newOptionBuilder[int16](m, name, description, TypeInt16, getInt16)
}

// Int32Option declares a 32-bit signed integer option.
func (m *Manager) Int32Option(name, description string) *OptionBuilder[int32, *Manager] {
	return newOptionBuilder[int32](m, name, description, TypeInt32, getInt32)
}

// UintOption declares a 64-bit unsigned integer option.
func (m *Manager) UintOption(name, description string) *OptionBuilder[uint64, *Manager] {
	return newOptionBuilder[uint64](m, name, description, TypeUint64, getUint)
}

// Uint8Option declares an 8-bit unsigned integer option.
func (m *Manager) Uint8Option(name, description string) *OptionBuilder[uint8, *Manager] {
	return newOptionBuilder[uint8](m, name, description, TypeUint8, getUint8)
}

// Uint16Option declares a 16-bit unsigned integer option.
func (m *Manager) Uint16Option(name, description string) *OptionBuilder[uint16, *Manager] {
	return newOptionBuilder[uint16](m, name, description, TypeUint16, getUint16)
}

// Uint32Option declares a 32-bit unsigned integer option.
func (m *Manager) Uint32Option(name, description string) *OptionBuilder[uint32, *Manager] {
	return newOptionBuilder[uint32](m, name, description, TypeUint32, getUint32)
}

// FloatOption declares a 64-bit floating point option.
func (m *Manager) FloatOption(name, description string) *OptionBuilder[float64, *Manager] {
	return newOptionBuilder[float64](m, name, description, TypeFloat64, getFloat)
}

// Float32Option declares a 32-bit floating point option.
func (m *Manager) Float32Option(name, description string) *OptionBuilder[float32, *Manager] {
	return newOptionBuilder[float32](m, name, description, TypeFloat32, getFloat32)
}

// DecimalOption declares an arbitrary-precision decimal option.
func (m *Manager) DecimalOption(name, description string) *OptionBuilder[*apd.Decimal, *Manager] {
	return newOptionBuilder[*apd.Decimal](m, name, description, TypeDecimal, getDecimal)
}

// EnumOption declares an option restricted to the given spellings, matched
// case-insensitively. The bound value is always the declared spelling.
func (m *Manager) EnumOption(name, description string, values ...string) *OptionBuilder[string, *Manager] {
	b := newOptionBuilder[string](m, name, description, TypeEnum, getString)
	b.opt.EnumValues = checkEnumValues(name, values)
	return b
}

func (m *Manager) addOption(name, description string, vt ValueType) *OptionSpec {
	if name == "" {
		configPanic("", "option name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			configPanic(name, "option name cannot contain whitespace")
		}
	}
	o := &OptionSpec{
		Name:        name,
		Description: description,
		Type:        vt,
		MaxOccurs:   1,
	}
	m.specs = append(m.specs, o)
	m.touch()
	return o
}

// fold normalizes a name for lookup under the configured case sensitivity.
func (m *Manager) fold(s string) string {
	if m.caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// find resolves a name or alias to its option, or nil.
func (m *Manager) find(name string) *OptionSpec {
	return m.lookup[m.fold(name)]
}

// finalize validates the assembled model and resolves the cross-references:
// lookup tables, group membership, prohibition symmetry, inherited assignment
// requirements and converted bare defaults. It runs on the first parse after
// any model mutation and panics with a ConfigError on specification bugs.
//
//nolint:gocognit,gocyclo,cyclop // the validation rules are one flat checklist
func (m *Manager) finalize() {
	if !m.dirty {
		return
	}
	m.styles = m.styles.normalize()

	lookup := make(map[string]*OptionSpec, len(m.specs)*2)
	register := func(name string, o *OptionSpec) {
		key := m.fold(name)
		if prev, taken := lookup[key]; taken {
			configPanic(o.Name, "name %q already used by option %q", name, prev.Name)
		}
		lookup[key] = o
	}
	for _, o := range m.specs {
		register(o.Name, o)
		for _, a := range o.Aliases {
			register(a, o)
		}
	}
	m.lookup = lookup

	for _, g := range m.groups {
		g.members = g.members[:0]
	}
	for _, o := range m.specs {
		o.group = nil
		if o.GroupID == "" {
			continue
		}
		g, known := m.groupByID[o.GroupID]
		if !known {
			configPanic(o.Name, "unknown group %q", o.GroupID)
		}
		o.group = g
		g.members = append(g.members, o)
	}
	for _, g := range m.groups {
		if g.Policy != GroupNone && len(g.members) == 0 {
			configPanic("", "group %q has a %s policy but no members", g.ID, g.Policy)
		}
	}

	for _, o := range m.specs {
		if !o.Repeated && o.MaxOccurs != 1 {
			configPanic(o.Name, "occurrence bounds %d..%d require a repeated option", o.MinOccurs, o.MaxOccurs)
		}
		if (o.hasMin || o.hasMax) && !o.Type.isNumeric() {
			configPanic(o.Name, "range constraint on non-numeric option of type %s", o.Type)
		}

		o.assignResolved = m.requireAssign
		if o.group != nil && o.group.assign != assignUnset {
			o.assignResolved = o.group.assign == assignRequired
		}
		if o.assign != assignUnset {
			o.assignResolved = o.assign == assignRequired
		}

		if o.hasBareDefault {
			if !o.valueAccepting() {
				configPanic(o.Name, "bare default on an option that takes no value")
			}
			if !o.assignResolved {
				configPanic(o.Name, "bare default requires explicit assignment to be required")
			}
			v, cerr := convertValue(o, o.Name, o.bareDefault)
			if cerr != nil {
				configPanic(o.Name, "bare default %q does not convert: %s", o.bareDefault, cerr.msg)
			}
			o.bareValue = v
		}

		if o.Type == TypeBool && o.Mode == BoolUsePrefix {
			if !m.styles.Has(StyleSign) {
				configPanic(o.Name, "prefix-derived boolean requires the sign style")
			}
			if m.styles.Has(StyleWindows) {
				configPanic(o.Name, "prefix-derived boolean cannot be combined with the windows style")
			}
			if m.styles.Has(StyleGrouped) {
				for _, n := range append([]string{o.Name}, o.Aliases...) {
					if utf8.RuneCountInString(n) > 1 {
						configPanic(o.Name, "grouped style limits prefix-derived booleans to single-character names, got %q", n)
					}
				}
			}
		}

		o.prohibits = o.prohibits[:0]
	}

	for _, o := range m.specs {
		for _, target := range o.prohibitNames {
			t := m.lookup[m.fold(target)]
			if t == nil {
				configPanic(o.Name, "prohibited option %q is not declared", target)
			}
			if t == o {
				configPanic(o.Name, "option cannot prohibit itself")
			}
			linkProhibition(o, t)
		}
	}

	m.dirty = false
}

// linkProhibition records the pair in both directions, skipping duplicates.
func linkProhibition(a, b *OptionSpec) {
	for _, p := range a.prohibits {
		if p == b {
			return
		}
	}
	a.prohibits = append(a.prohibits, b)
	b.prohibits = append(b.prohibits, a)
}

// Parse runs the model against pre-split arguments, such as os.Args[1:].
// Arguments are joined into a single line for lexing; any argument containing
// whitespace, quote or escape characters is re-quoted first so the split
// stays lossless.
func (m *Manager) Parse(args []string) *ParseResult {
	return m.run(m.requoteArgs(args), "")
}

// ParseArgv behaves like Parse but treats the first element as the invoked
// executable path, which lands on the result instead of the remaining values.
func (m *Manager) ParseArgv(argv []string) *ParseResult {
	if len(argv) == 0 {
		return m.run("", "")
	}
	return m.run(m.requoteArgs(argv[1:]), argv[0])
}

// ParseLine runs the model against a raw, unsplit command line.
func (m *Manager) ParseLine(line string) *ParseResult {
	return m.run(line, "")
}

func (m *Manager) run(src, execPath string) *ParseResult {
	m.finalize()
	m.parsing = true
	defer func() { m.parsing = false }()
	p := newParser(m)
	return p.run(src, execPath)
}

// requoteArgs joins pre-split arguments into one lexable line. Arguments that
// survive lexing unchanged pass through raw; the rest are wrapped in the
// preferred quote with their quote and escape characters escaped. An
// option-looking argument splits at its first assignment character so the
// option part keeps its meaning while only the value part is quoted.
func (m *Manager) requoteArgs(args []string) string {
	bp := pool.GetBuffer()
	b := *bp
	defer func() { *bp = b; pool.PutBuffer(bp) }()
	for i, arg := range args {
		if i > 0 {
			b = append(b, ' ')
		}
		b = m.appendArg(b, arg)
	}
	return string(b)
}

func (m *Manager) appendArg(b []byte, arg string) []byte {
	if !m.needsQuoting(arg) {
		return append(b, arg...)
	}
	head, tail := m.splitAssignHead(arg)
	b = append(b, head...)
	mark, quotable := m.tab.preferredQuote()
	if !quotable {
		return append(b, tail...)
	}
	codes := m.tab.quotes[mark]
	b = utf8.AppendRune(b, mark)
	for _, r := range tail {
		if r == mark || m.tab.isEscape(r) {
			if code, esc := escapeCodeFor(codes, r); esc && len(m.tab.escapes) > 0 {
				b = utf8.AppendRune(b, m.tab.escapes[0])
				b = utf8.AppendRune(b, code)
				continue
			}
		}
		b = utf8.AppendRune(b, r)
	}
	return utf8.AppendRune(b, mark)
}

func (m *Manager) needsQuoting(arg string) bool {
	if arg == "" {
		return true
	}
	for _, r := range arg {
		if unicode.IsSpace(r) || m.tab.isQuote(r) || m.tab.isEscape(r) {
			return true
		}
	}
	return false
}

// splitAssignHead splits an option-looking argument at its first assignment
// character, so "--name=a b" re-quotes as --name="a b".
func (m *Manager) splitAssignHead(arg string) (head, tail string) {
	styles := m.styles.normalize()
	var style Style
	switch {
	case strings.HasPrefix(arg, "--") && styles.Has(StyleLong):
		style = StyleLong
	case strings.HasPrefix(arg, "-") && styles.Has(StyleShort):
		style = StyleShort
	case strings.HasPrefix(arg, "+") && styles.Has(StyleSign):
		style = StyleSign
	case strings.HasPrefix(arg, "/") && styles.Has(StyleWindows):
		style = StyleWindows
	default:
		return "", arg
	}
	for i, r := range arg {
		if unicode.IsSpace(r) {
			return "", arg
		}
		if m.tab.assignmentFor(r, style) {
			return arg[:i+utf8.RuneLen(r)], arg[i+utf8.RuneLen(r):]
		}
	}
	return "", arg
}

// escapeCodeFor finds the escape code that decodes to r in the given table.
func escapeCodeFor(codes map[rune]rune, r rune) (rune, bool) {
	for code, repl := range codes {
		if repl == r {
			return code, true
		}
	}
	return 0, false
}
