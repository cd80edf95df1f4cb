package clasp

import "github.com/cockroachdb/apd/v3"

// GroupPolicy is the cardinality constraint an option group places on its
// members, counted as distinct member options that occurred at least once.
type GroupPolicy int

const (
	// GroupNone applies no constraint; the group only structures usage output.
	GroupNone GroupPolicy = iota
	// GroupAtMostOne allows no more than one member to appear.
	GroupAtMostOne
	// GroupAtLeastOne requires some member to appear.
	GroupAtLeastOne
	// GroupExactlyOne requires precisely one member to appear.
	GroupExactlyOne
	// GroupAll requires every member to appear.
	GroupAll
)

func (p GroupPolicy) String() string {
	switch p {
	case GroupNone:
		return "none"
	case GroupAtMostOne:
		return "at-most-one"
	case GroupAtLeastOne:
		return "at-least-one"
	case GroupExactlyOne:
		return "exactly-one"
	case GroupAll:
		return "all"
	default:
		return "invalid"
	}
}

// OptionGroup collects related options under a shared policy and a shared
// usage heading.
type OptionGroup struct {
	ID          string
	Description string
	Policy      GroupPolicy

	assign  assignMode
	members []*OptionSpec // resolved by finalize, declaration order
}

// Members returns the resolved member options in declaration order.
func (g *OptionGroup) Members() []*OptionSpec {
	return g.members
}

// setCount counts the distinct members that occurred at least once this run.
func (g *OptionGroup) setCount() int {
	n := 0
	for _, o := range g.members {
		if o.setAt() {
			n++
		}
	}
	return n
}

// GroupBuilder provides the fluent configuration surface for one group.
// Options declared through it join the group automatically.
type GroupBuilder struct {
	group *OptionGroup
	m     *Manager
}

func (g *GroupBuilder) manager() *Manager {
	return g.m
}

// Description sets the human description shown as the group heading.
func (g *GroupBuilder) Description(s string) *GroupBuilder {
	g.group.Description = s
	return g
}

// AtMostOne constrains the group so no more than one member may appear.
func (g *GroupBuilder) AtMostOne() *GroupBuilder {
	g.group.Policy = GroupAtMostOne
	g.m.touch()
	return g
}

// AtLeastOne constrains the group so some member must appear.
func (g *GroupBuilder) AtLeastOne() *GroupBuilder {
	g.group.Policy = GroupAtLeastOne
	g.m.touch()
	return g
}

// ExactlyOne constrains the group so precisely one member must appear.
func (g *GroupBuilder) ExactlyOne() *GroupBuilder {
	g.group.Policy = GroupExactlyOne
	g.m.touch()
	return g
}

// All constrains the group so every member must appear.
func (g *GroupBuilder) All() *GroupBuilder {
	g.group.Policy = GroupAll
	g.m.touch()
	return g
}

// AssignmentRequired demands explicit assignment syntax for all member
// options that do not override it themselves.
func (g *GroupBuilder) AssignmentRequired() *GroupBuilder {
	g.group.assign = assignRequired
	g.m.touch()
	return g
}

// AssignmentOptional allows bare values for all member options that do not
// override it themselves.
func (g *GroupBuilder) AssignmentOptional() *GroupBuilder {
	g.group.assign = assignOptional
	g.m.touch()
	return g
}

// EndGroup returns to the manager.
func (g *GroupBuilder) EndGroup() *Manager {
	return g.m
}

// Option constructors scoped to the group.

// BoolOption declares a boolean member option.
func (g *GroupBuilder) BoolOption(name, description string) *OptionBuilder[bool, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[bool](g, name, description, TypeBool, getBool))
}

// StringOption declares a string member option.
func (g *GroupBuilder) StringOption(name, description string) *OptionBuilder[string, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[string](g, name, description, TypeString, getString))
}

// CharOption declares a single-character member option.
func (g *GroupBuilder) CharOption(name, description string) *OptionBuilder[rune, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[rune](g, name, description, TypeChar, getChar))
}

// IntOption declares a 64-bit signed integer member option.
func (g *GroupBuilder) IntOption(name, description string) *OptionBuilder[int64, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[int64](g, name, description, TypeInt64, getInt))
}

// Int8Option declares an 8-bit signed integer member option.
func (g *GroupBuilder) Int8Option(name, description string) *OptionBuilder[int8, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[int8](g, name, description, TypeInt8, getInt8))
}

// Int16Option declares a 16-bit signed integer member option.
func (g *GroupBuilder) Int16Option(name, description string) *OptionBuilder[int16, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[int16](g, name, description, TypeInt16, getInt16))
}

// Int32Option declares a 32-bit signed integer member option.
func (g *GroupBuilder) Int32Option(name, description string) *OptionBuilder[int32, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[int32](g, name, description, TypeInt32, getInt32))
}

// UintOption declares a 64-bit unsigned integer member option.
func (g *GroupBuilder) UintOption(name, description string) *OptionBuilder[uint64, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[uint64](g, name, description, TypeUint64, getUint))
}

// Uint8Option declares an 8-bit unsigned integer member option.
func (g *GroupBuilder) Uint8Option(name, description string) *OptionBuilder[uint8, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[uint8](g, name, description, TypeUint8, getUint8))
}

// Uint16Option declares a 16-bit unsigned integer member option.
func (g *GroupBuilder) Uint16Option(name, description string) *OptionBuilder[uint16, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[uint16](g, name, description, TypeUint16, getUint16))
}

// Uint32Option declares a 32-bit unsigned integer member option.
func (g *GroupBuilder) Uint32Option(name, description string) *OptionBuilder[uint32, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[uint32](g, name, description, TypeUint32, getUint32))
}

// FloatOption declares a 64-bit floating point member option.
func (g *GroupBuilder) FloatOption(name, description string) *OptionBuilder[float64, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[float64](g, name, description, TypeFloat64, getFloat))
}

// Float32Option declares a 32-bit floating point member option.
func (g *GroupBuilder) Float32Option(name, description string) *OptionBuilder[float32, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[float32](g, name, description, TypeFloat32, getFloat32))
}

// DecimalOption declares an arbitrary-precision decimal member option.
func (g *GroupBuilder) DecimalOption(name, description string) *OptionBuilder[*apd.Decimal, *GroupBuilder] {
	return inGroup(g, newOptionBuilder[*apd.Decimal](g, name, description, TypeDecimal, getDecimal))
}

// EnumOption declares a member option restricted to the given spellings,
// matched case-insensitively. The bound value is the declared spelling.
func (g *GroupBuilder) EnumOption(name, description string, values ...string) *OptionBuilder[string, *GroupBuilder] {
	b := newOptionBuilder[string](g, name, description, TypeEnum, getString)
	b.opt.EnumValues = checkEnumValues(name, values)
	return inGroup(g, b)
}

func inGroup[T any](g *GroupBuilder, b *OptionBuilder[T, *GroupBuilder]) *OptionBuilder[T, *GroupBuilder] {
	b.opt.GroupID = g.group.ID
	return b
}
