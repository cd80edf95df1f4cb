//nolint:testpackage // using package name 'clasp' to assert on parse internals
package clasp

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dzonerzy/go-clasp/validate"
)

// firstError fails the test unless the result carries at least one error, and
// returns the first.
func firstError(t *testing.T, res *ParseResult) *ErrorInfo {
	t.Helper()
	if !res.HasErrors() {
		t.Fatal("Expected parse errors, got none")
	}
	return res.Errors()[0]
}

func TestParseBasicTypes(t *testing.T) {
	m := New("tool", "")
	m.StringOption("name", "").Alias("n")
	m.IntOption("port", "")
	m.BoolOption("verbose", "").Alias("v")
	m.FloatOption("ratio", "")

	res := m.Parse([]string{"--name", "alice", "--port", "8080", "-v", "--ratio", "2.5"})
	if !res.Ok() {
		t.Fatalf("Expected clean parse, got %v", res.Err())
	}
	if v, ok := res.GetString("name"); !ok || v != "alice" {
		t.Errorf("Expected name=alice, got %q (set=%v)", v, ok)
	}
	if v, ok := res.GetString("n"); !ok || v != "alice" {
		t.Errorf("Expected alias lookup to resolve, got %q (set=%v)", v, ok)
	}
	if v, ok := res.GetInt("port"); !ok || v != 8080 {
		t.Errorf("Expected port=8080, got %d (set=%v)", v, ok)
	}
	if v, ok := res.GetBool("verbose"); !ok || !v {
		t.Errorf("Expected verbose=true, got %v (set=%v)", v, ok)
	}
	if v, ok := res.GetFloat("ratio"); !ok || v != 2.5 {
		t.Errorf("Expected ratio=2.5, got %v (set=%v)", v, ok)
	}
}

func TestParseAssignmentSyntax(t *testing.T) {
	m := New("tool", "").Styles(StyleAll)
	m.IntOption("port", "")

	for _, input := range []string{"--port=8080", "/port:8080", "--port 8080"} {
		res := m.ParseLine(input)
		if !res.Ok() {
			t.Fatalf("%q: expected clean parse, got %v", input, res.Err())
		}
		if v, _ := res.GetInt("port"); v != 8080 {
			t.Errorf("%q: expected 8080, got %d", input, v)
		}
	}
}

func TestParseUnknownOptionSuggestion(t *testing.T) {
	m := New("tool", "")
	m.BoolOption("verbose", "")

	res := m.Parse([]string{"--verbos"})
	e := firstError(t, res)
	if e.Kind != ErrorKindUnknownOption {
		t.Fatalf("Expected unknown_option, got %s", e.Kind)
	}
	want := `unknown option --verbos, did you mean "verbose"?`
	if e.Message != want {
		t.Errorf("Expected %q, got %q", want, e.Message)
	}

	// nothing close enough: no suggestion
	res = m.Parse([]string{"--zzz"})
	e = firstError(t, res)
	if e.Message != "unknown option --zzz" {
		t.Errorf("Expected bare unknown-option message, got %q", e.Message)
	}
}

func TestParseUnknownOptionSkipsAssignment(t *testing.T) {
	m := New("tool", "")
	m.StringOption("name", "")

	res := m.Parse([]string{"--bogus=x", "--name", "ok"})
	if len(res.Errors()) != 1 {
		t.Fatalf("Expected exactly one error, got %v", res.Err())
	}
	if res.Errors()[0].Kind != ErrorKindUnknownOption {
		t.Errorf("Expected unknown_option, got %s", res.Errors()[0].Kind)
	}
	if v, _ := res.GetString("name"); v != "ok" {
		t.Errorf("Expected parsing to continue past the bad option, got %q", v)
	}
	if len(res.Rest()) != 0 {
		t.Errorf("Expected the orphaned value to be skipped, got %v", res.Rest())
	}
}

func TestParseProhibition(t *testing.T) {
	build := func() *Manager {
		m := New("tool", "")
		m.BoolOption("json", "").Prohibits("yaml")
		m.BoolOption("yaml", "")
		return m
	}

	res := build().Parse([]string{"--json", "--yaml"})
	e := firstError(t, res)
	if e.Kind != ErrorKindOptionProhibited {
		t.Fatalf("Expected option_prohibited, got %s", e.Kind)
	}
	if e.Message != "option --yaml cannot be combined with option --json" {
		t.Errorf("Unexpected message: %q", e.Message)
	}

	// the relation is symmetric even though only one side declared it
	res = build().Parse([]string{"--yaml", "--json"})
	e = firstError(t, res)
	if e.Message != "option --json cannot be combined with option --yaml" {
		t.Errorf("Expected symmetric prohibition, got %q", e.Message)
	}
}

func TestParseScalarSingleOccurrence(t *testing.T) {
	m := New("tool", "")
	m.StringOption("name", "")

	res := m.Parse([]string{"--name", "a", "--name", "b"})
	e := firstError(t, res)
	if e.Kind != ErrorKindIllegalCardinality {
		t.Fatalf("Expected illegal_cardinality, got %s", e.Kind)
	}
	if e.Message != "option --name may only be specified once" {
		t.Errorf("Unexpected message: %q", e.Message)
	}
	if v, _ := res.GetString("name"); v != "a" {
		t.Errorf("Expected the committed first value to stick, got %q", v)
	}
	if res.Occurrences("name") != 1 {
		t.Errorf("Expected 1 committed occurrence, got %d", res.Occurrences("name"))
	}
}

func TestParseRepeatedCollection(t *testing.T) {
	m := New("tool", "")
	m.StringOption("tag", "").Repeated()

	res := m.Parse([]string{"--tag", "a", "--tag", "b", "--tag", "c"})
	if !res.Ok() {
		t.Fatalf("Expected clean parse, got %v", res.Err())
	}
	tags, ok := res.GetStrings("tag")
	if !ok || len(tags) != 3 {
		t.Fatalf("Expected 3 collected tags, got %v (set=%v)", tags, ok)
	}
	for i, want := range []string{"a", "b", "c"} {
		if tags[i] != want {
			t.Errorf("Expected tag %q at %d, got %q", want, i, tags[i])
		}
	}
	// the scalar accessor sees the latest occurrence
	if v, _ := res.GetString("tag"); v != "c" {
		t.Errorf("Expected latest value c, got %q", v)
	}
	if res.Occurrences("tag") != 3 {
		t.Errorf("Expected 3 occurrences, got %d", res.Occurrences("tag"))
	}
}

func TestParseOccurrenceBounds(t *testing.T) {
	build := func() *Manager {
		m := New("tool", "")
		m.StringOption("input", "").Repeated().Occurs(2, 3)
		return m
	}

	res := build().Parse([]string{"--input", "a"})
	e := firstError(t, res)
	if e.Kind != ErrorKindIllegalCardinality || e.Message != "option --input must be specified at least 2 times" {
		t.Errorf("Expected lower-bound message, got %s %q", e.Kind, e.Message)
	}

	res = build().Parse([]string{"--input", "a", "--input", "b", "--input", "c", "--input", "d"})
	e = firstError(t, res)
	if e.Message != "option --input may be specified at most 3 times" {
		t.Errorf("Expected upper-bound message, got %q", e.Message)
	}

	m := New("tool", "")
	m.StringOption("pair", "").Repeated().Occurs(2, 2)
	res = m.Parse([]string{"--pair", "a"})
	e = firstError(t, res)
	if e.Message != "option --pair must be specified exactly 2 times" {
		t.Errorf("Expected exact-bound message, got %q", e.Message)
	}
}

func TestParseRequiredOption(t *testing.T) {
	m := New("tool", "")
	m.StringOption("name", "").Required()

	res := m.Parse(nil)
	e := firstError(t, res)
	if e.Kind != ErrorKindMissingRequiredOption {
		t.Fatalf("Expected missing_required_option, got %s", e.Kind)
	}
	if e.Message != "required option --name was not specified" {
		t.Errorf("Unexpected message: %q", e.Message)
	}
}

func TestParseGroupPolicies(t *testing.T) {
	build := func(policy func(*GroupBuilder) *GroupBuilder) *Manager {
		m := New("tool", "")
		g := m.Group("modes")
		policy(g)
		g.BoolOption("json", "").Back()
		g.BoolOption("yaml", "").Back()
		return m
	}

	cases := []struct {
		name   string
		policy func(*GroupBuilder) *GroupBuilder
		args   []string
		kind   ErrorKind
		msg    string
	}{
		{
			"at-most-one violated",
			(*GroupBuilder).AtMostOne,
			[]string{"--json", "--yaml"},
			ErrorKindIllegalCardinality,
			"at most one of the options --json, --yaml may be specified",
		},
		{
			"at-least-one violated",
			(*GroupBuilder).AtLeastOne,
			nil,
			ErrorKindMissingRequiredOption,
			"at least one of the options --json, --yaml must be specified",
		},
		{
			"exactly-one missing",
			(*GroupBuilder).ExactlyOne,
			nil,
			ErrorKindMissingRequiredOption,
			"exactly one of the options --json, --yaml must be specified",
		},
		{
			"exactly-one doubled",
			(*GroupBuilder).ExactlyOne,
			[]string{"--json", "--yaml"},
			ErrorKindIllegalCardinality,
			"only one of the options --json, --yaml may be specified",
		},
		{
			"all violated",
			(*GroupBuilder).All,
			[]string{"--json"},
			ErrorKindMissingRequiredOption,
			"all of the options --json, --yaml must be specified",
		},
	}

	for _, c := range cases {
		res := build(c.policy).Parse(c.args)
		e := firstError(t, res)
		if e.Kind != c.kind {
			t.Errorf("%s: expected %s, got %s", c.name, c.kind, e.Kind)
		}
		if e.Message != c.msg {
			t.Errorf("%s: expected %q, got %q", c.name, c.msg, e.Message)
		}
	}
}

func TestParseGroupPoliciesSatisfied(t *testing.T) {
	m := New("tool", "")
	m.Group("modes").ExactlyOne().
		BoolOption("json", "").Back().
		BoolOption("yaml", "").Back()

	res := m.Parse([]string{"--yaml"})
	if !res.Ok() {
		t.Fatalf("Expected satisfied policy, got %v", res.Err())
	}
	if v, _ := res.GetBool("yaml"); !v {
		t.Error("Expected yaml to be set")
	}
}

func TestParseRepeatedGroupMemberCountsOnce(t *testing.T) {
	m := New("tool", "")
	m.Group("inputs").AtMostOne().
		StringOption("file", "").Repeated().Back().
		StringOption("url", "").Back()

	// several occurrences of one member are still one distinct member
	res := m.Parse([]string{"--file", "a", "--file", "b"})
	if !res.Ok() {
		t.Fatalf("Expected repeated single member to satisfy at-most-one, got %v", res.Err())
	}
}

func TestParseEndOfOptionsToggle(t *testing.T) {
	m := New("tool", "")
	m.BoolOption("v", "").Repeated()

	res := m.Parse([]string{"-v", "--", "-v", "--flag", "--", "-v"})
	if !res.Ok() {
		t.Fatalf("Expected clean parse, got %v", res.Err())
	}
	rest := res.Rest()
	if len(rest) != 2 || rest[0] != "-v" || rest[1] != "--flag" {
		t.Errorf("Expected suppressed options in rest, got %v", rest)
	}
	// the second marker switched recognition back on
	if res.Occurrences("v") != 2 {
		t.Errorf("Expected 2 recognized occurrences, got %d", res.Occurrences("v"))
	}
}

func TestParseBareDefault(t *testing.T) {
	m := New("tool", "")
	m.IntOption("level", "").AssignmentRequired().BareDefault("3")

	res := m.Parse([]string{"--level"})
	if !res.Ok() {
		t.Fatalf("Expected bare default to apply, got %v", res.Err())
	}
	if v, _ := res.GetInt("level"); v != 3 {
		t.Errorf("Expected bare default 3, got %d", v)
	}

	res = m.Parse([]string{"--level=7"})
	if v, _ := res.GetInt("level"); v != 7 {
		t.Errorf("Expected explicit assignment to win, got %d", v)
	}
}

func TestParseAssignmentRequired(t *testing.T) {
	m := New("tool", "")
	m.StringOption("out", "").AssignmentRequired()

	res := m.Parse([]string{"--out", "value"})
	e := firstError(t, res)
	if e.Kind != ErrorKindMissingValue {
		t.Fatalf("Expected missing_value, got %s", e.Kind)
	}
	if e.Message != "option --out requires an assigned value" {
		t.Errorf("Unexpected message: %q", e.Message)
	}
	// the unconsumed value stays positional
	if len(res.Rest()) != 1 || res.Rest()[0] != "value" {
		t.Errorf("Expected the value to remain positional, got %v", res.Rest())
	}

	res = m.Parse([]string{"--out=value"})
	if !res.Ok() {
		t.Fatalf("Expected assigned form to work, got %v", res.Err())
	}
	if v, _ := res.GetString("out"); v != "value" {
		t.Errorf("Expected out=value, got %q", v)
	}
}

func TestParseAssignmentInheritance(t *testing.T) {
	// manager-wide requirement, overridden back on one option
	m := New("tool", "").RequireAssignment()
	m.StringOption("strict", "")
	m.StringOption("loose", "").AssignmentOptional()

	res := m.Parse([]string{"--strict", "x"})
	if !res.HasErrors() {
		t.Fatal("Expected manager-level requirement to apply")
	}
	res = m.Parse([]string{"--loose", "x"})
	if !res.Ok() {
		t.Fatalf("Expected option-level override to win, got %v", res.Err())
	}

	// group-level requirement between the two
	g := New("tool", "")
	g.Group("io").AssignmentRequired().
		StringOption("in", "").Back().
		StringOption("relaxed", "").AssignmentOptional().Back()

	res = g.Parse([]string{"--in", "x"})
	if !res.HasErrors() {
		t.Fatal("Expected group-level requirement to apply")
	}
	res = g.Parse([]string{"--relaxed", "x"})
	if !res.Ok() {
		t.Fatalf("Expected option override inside a group to win, got %v", res.Err())
	}
}

func TestParseMissingValue(t *testing.T) {
	m := New("tool", "")
	m.StringOption("name", "")

	res := m.Parse([]string{"--name"})
	e := firstError(t, res)
	if e.Kind != ErrorKindMissingValue {
		t.Fatalf("Expected missing_value, got %s", e.Kind)
	}
	if e.Message != "option --name requires a value" {
		t.Errorf("Unexpected message: %q", e.Message)
	}
	// the failed attempt still counts, so no missing-required pile-on
	if len(res.Errors()) != 1 {
		t.Errorf("Expected exactly one error, got %v", res.Err())
	}
}

func TestParseMissingValueCountsForRequired(t *testing.T) {
	m := New("tool", "")
	m.StringOption("name", "").Required()

	res := m.Parse([]string{"--name"})
	if len(res.Errors()) != 1 {
		t.Fatalf("Expected the attempt to suppress the required check, got %v", res.Err())
	}
	if res.Errors()[0].Kind != ErrorKindMissingValue {
		t.Errorf("Expected missing_value, got %s", res.Errors()[0].Kind)
	}
}

func TestParseAssignmentToNonValue(t *testing.T) {
	m := New("tool", "")
	m.BoolOption("verbose", "")

	res := m.Parse([]string{"--verbose=true"})
	e := firstError(t, res)
	if e.Kind != ErrorKindAssignmentToNonValue {
		t.Fatalf("Expected assignment_to_non_value_option, got %s", e.Kind)
	}
	if e.Message != "option --verbose does not take a value" {
		t.Errorf("Unexpected message: %q", e.Message)
	}
	if _, set := res.GetBool("verbose"); set {
		t.Error("Expected the rejected occurrence not to commit")
	}
	// the assigned value is consumed with the mistake, not left positional
	if len(res.Rest()) != 0 {
		t.Errorf("Expected empty rest, got %v", res.Rest())
	}
}

func TestParseExplicitBool(t *testing.T) {
	m := New("tool", "")
	m.BoolOption("flag", "").ExplicitValue()

	res := m.Parse([]string{"--flag", "true"})
	if v, _ := res.GetBool("flag"); !v {
		t.Error("Expected explicit true")
	}
	res = m.Parse([]string{"--flag", "FALSE"})
	if v, set := res.GetBool("flag"); !set || v {
		t.Errorf("Expected explicit false, got %v (set=%v)", v, set)
	}
	res = m.Parse([]string{"--flag", "maybe"})
	e := firstError(t, res)
	if e.Kind != ErrorKindInvalidFormat {
		t.Errorf("Expected invalid_format, got %s", e.Kind)
	}
}

func TestParseBoolModes(t *testing.T) {
	m := New("tool", "")
	m.BoolOption("color", "").FalseIfPresent()

	res := m.Parse([]string{"--color"})
	v, set := res.GetBool("color")
	if !set || v {
		t.Errorf("Expected false-if-present to record false, got %v (set=%v)", v, set)
	}
}

func TestParseUsePrefix(t *testing.T) {
	m := New("tool", "").Styles(StyleShort | StyleSign)
	m.BoolOption("x", "").UsePrefix()

	res := m.Parse([]string{"+x"})
	if v, _ := res.GetBool("x"); !v {
		t.Error("Expected +x to set true")
	}
	res = m.Parse([]string{"-x"})
	if v, set := res.GetBool("x"); !set || v {
		t.Errorf("Expected -x to set false, got %v (set=%v)", v, set)
	}
}

func TestParseGroupedShortOptions(t *testing.T) {
	m := New("tool", "")
	m.BoolOption("v", "")
	m.BoolOption("z", "")
	m.BoolOption("c", "")

	res := m.Parse([]string{"-vzc"})
	if !res.Ok() {
		t.Fatalf("Expected clean parse, got %v", res.Err())
	}
	for _, name := range []string{"v", "z", "c"} {
		if v, _ := res.GetBool(name); !v {
			t.Errorf("Expected -%s from the grouped span to be set", name)
		}
	}
}

func TestParseGroupedSpanWithUnknown(t *testing.T) {
	m := New("tool", "")
	m.BoolOption("v", "")

	res := m.Parse([]string{"-vx"})
	if v, _ := res.GetBool("v"); !v {
		t.Error("Expected the known half of the span to commit")
	}
	e := firstError(t, res)
	if e.Kind != ErrorKindUnknownOption || !strings.HasPrefix(e.Message, "unknown option -x") {
		t.Errorf("Expected unknown option -x, got %s %q", e.Kind, e.Message)
	}
}

func TestParseEnvFallback(t *testing.T) {
	m := New("tool", "")
	m.IntOption("port", "").FromEnv("CLASP_TEST_PORT", "CLASP_TEST_PORT_ALT")

	t.Setenv("CLASP_TEST_PORT_ALT", "7070")
	res := m.Parse(nil)
	if v, ok := res.GetInt("port"); !ok || v != 7070 {
		t.Errorf("Expected fallback to the set variable, got %d (set=%v)", v, ok)
	}

	// the first set variable wins
	t.Setenv("CLASP_TEST_PORT", "9090")
	res = m.Parse(nil)
	if v, _ := res.GetInt("port"); v != 9090 {
		t.Errorf("Expected first variable to win, got %d", v)
	}
	if res.Occurrences("port") != 1 {
		t.Errorf("Expected the fallback to count as an occurrence, got %d", res.Occurrences("port"))
	}

	// the command line always wins over the environment
	res = m.Parse([]string{"--port", "1234"})
	if v, _ := res.GetInt("port"); v != 1234 {
		t.Errorf("Expected command line to win, got %d", v)
	}
}

func TestParseEnvFallbackInvalidValueDropped(t *testing.T) {
	m := New("tool", "")
	m.IntOption("port", "").FromEnv("CLASP_TEST_BAD_PORT")

	t.Setenv("CLASP_TEST_BAD_PORT", "not-a-number")
	res := m.Parse(nil)
	if res.HasErrors() {
		t.Fatalf("Expected bad environment value to be dropped silently, got %v", res.Err())
	}
	if _, set := res.GetInt("port"); set {
		t.Error("Expected no value from the rejected variable")
	}
}

func TestParseEnvFallbackSatisfiesRequired(t *testing.T) {
	m := New("tool", "")
	m.StringOption("token", "").Required().FromEnv("CLASP_TEST_TOKEN")

	t.Setenv("CLASP_TEST_TOKEN", "secret")
	res := m.Parse(nil)
	if !res.Ok() {
		t.Fatalf("Expected environment value to satisfy the requirement, got %v", res.Err())
	}
	if v, _ := res.GetString("token"); v != "secret" {
		t.Errorf("Expected token from environment, got %q", v)
	}
}

func TestParseBinds(t *testing.T) {
	var name string
	var tags []string
	count := 0

	m := New("tool", "")
	m.StringOption("name", "").Bind(&name)
	m.StringOption("tag", "").Repeated().BindSlice(&tags)
	m.BoolOption("v", "").Repeated().BindFunc(func(bool) { count++ })

	res := m.Parse([]string{"--name", "x", "--tag", "a", "--tag", "b", "-vv"})
	if !res.Ok() {
		t.Fatalf("Expected clean parse, got %v", res.Err())
	}
	if name != "x" {
		t.Errorf("Expected bound name x, got %q", name)
	}
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("Expected bound slice [a b], got %v", tags)
	}
	if count != 2 {
		t.Errorf("Expected bound func to fire twice, got %d", count)
	}
}

func TestParseBindUntouchedWhenAbsent(t *testing.T) {
	name := "unchanged"
	m := New("tool", "")
	m.StringOption("name", "").Bind(&name)

	m.Parse(nil)
	if name != "unchanged" {
		t.Errorf("Expected absent option to leave the target alone, got %q", name)
	}
}

func TestParseValidators(t *testing.T) {
	m := New("tool", "")
	m.StringOption("mode", "").Validate(func(s string) error {
		if s != "fast" {
			return fmt.Errorf("unsupported mode")
		}
		return nil
	})

	res := m.Parse([]string{"--mode", "slow"})
	e := firstError(t, res)
	if e.Kind != ErrorKindInvalidValue {
		t.Fatalf("Expected invalid_value, got %s", e.Kind)
	}
	want := `invalid value "slow" for option --mode: unsupported mode`
	if e.Message != want {
		t.Errorf("Expected %q, got %q", want, e.Message)
	}
	if _, set := res.GetString("mode"); set {
		t.Error("Expected rejected value not to commit")
	}

	res = m.Parse([]string{"--mode", "fast"})
	if !res.Ok() {
		t.Fatalf("Expected accepted value, got %v", res.Err())
	}
}

func TestParseValidatorBareMessage(t *testing.T) {
	m := New("tool", "")
	m.StringOption("mode", "").Validate(func(s string) error {
		return validate.Bare("mode %q is not available on this build", s)
	})

	res := m.Parse([]string{"--mode", "turbo"})
	e := firstError(t, res)
	want := `mode "turbo" is not available on this build`
	if e.Message != want {
		t.Errorf("Expected bare message to replace the prefix, got %q", e.Message)
	}
}

func TestParseValidatorChain(t *testing.T) {
	m := New("tool", "")
	m.StringOption("name", "").Validate(validate.Chain(
		validate.NonEmpty(),
		validate.Prefix("app-"),
	))

	res := m.Parse([]string{"--name", "app-web"})
	if !res.Ok() {
		t.Fatalf("Expected chained validators to pass, got %v", res.Err())
	}
	res = m.Parse([]string{"--name", "web"})
	if !res.HasErrors() {
		t.Fatal("Expected prefix validator to reject")
	}
}

func TestParseFailedConversionDoesNotPoisonLaterOccurrences(t *testing.T) {
	m := New("tool", "")
	m.IntOption("port", "")

	res := m.Parse([]string{"--port", "abc", "--port", "80"})
	if len(res.Errors()) != 1 {
		t.Fatalf("Expected one conversion error, got %v", res.Err())
	}
	if res.Errors()[0].Kind != ErrorKindInvalidFormat {
		t.Errorf("Expected invalid_format, got %s", res.Errors()[0].Kind)
	}
	if v, _ := res.GetInt("port"); v != 80 {
		t.Errorf("Expected the later clean occurrence to commit, got %d", v)
	}
}

func TestParseRangeConstraint(t *testing.T) {
	m := New("tool", "")
	Range(m.IntOption("n", ""), 1, 10)

	res := m.Parse([]string{"--n", "5"})
	if !res.Ok() {
		t.Fatalf("Expected in-range parse, got %v", res.Err())
	}
	res = m.Parse([]string{"--n", "11"})
	e := firstError(t, res)
	if e.Kind != ErrorKindOverflow {
		t.Fatalf("Expected overflow, got %s", e.Kind)
	}
	if e.Message != `value "11" for option --n is out of range [1, 10]` {
		t.Errorf("Unexpected message: %q", e.Message)
	}
}

func TestParseDecimalOption(t *testing.T) {
	m := New("tool", "")
	DecimalRange(m.DecimalOption("price", ""), "0", "100")

	res := m.Parse([]string{"--price", "99.999"})
	if !res.Ok() {
		t.Fatalf("Expected clean parse, got %v", res.Err())
	}
	d, ok := res.GetDecimal("price")
	if !ok || d.String() != "99.999" {
		t.Errorf("Expected exact decimal 99.999, got %v (set=%v)", d, ok)
	}

	res = m.Parse([]string{"--price", "100.001"})
	e := firstError(t, res)
	if e.Kind != ErrorKindOverflow {
		t.Errorf("Expected overflow outside the decimal range, got %s", e.Kind)
	}
}

func TestParseEnumOption(t *testing.T) {
	m := New("tool", "")
	m.EnumOption("format", "", "json", "yaml", "table")

	res := m.Parse([]string{"--format", "YAML"})
	if v, _ := res.GetString("format"); v != "yaml" {
		t.Errorf("Expected declared spelling yaml, got %q", v)
	}

	res = m.Parse([]string{"--format", "xml"})
	e := firstError(t, res)
	if e.Kind != ErrorKindInvalidFormat {
		t.Fatalf("Expected invalid_format, got %s", e.Kind)
	}
	if e.Message != `invalid value "xml" for option --format, expected one of: json, yaml, table` {
		t.Errorf("Unexpected message: %q", e.Message)
	}
}

func TestParseCharOption(t *testing.T) {
	m := New("tool", "")
	m.CharOption("sep", "")

	res := m.Parse([]string{"--sep", ","})
	if v, _ := res.GetChar("sep"); v != ',' {
		t.Errorf("Expected ',', got %q", v)
	}
	res = m.Parse([]string{"--sep", "ab"})
	e := firstError(t, res)
	if e.Kind != ErrorKindInvalidFormat {
		t.Errorf("Expected invalid_format for multi-character value, got %s", e.Kind)
	}
}

func TestParseRepeatedNumericCollections(t *testing.T) {
	m := New("tool", "")
	m.IntOption("id", "").Repeated()
	m.FloatOption("w", "").Repeated()
	m.UintOption("mask", "").Repeated()

	res := m.Parse([]string{"--id", "1", "--id", "2", "--w", "0.5", "--mask", "0xFF"})
	if !res.Ok() {
		t.Fatalf("Expected clean parse, got %v", res.Err())
	}
	ids, _ := res.GetInts("id")
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("Expected ids [1 2], got %v", ids)
	}
	ws, _ := res.GetFloats("w")
	if len(ws) != 1 || ws[0] != 0.5 {
		t.Errorf("Expected weights [0.5], got %v", ws)
	}
	masks, _ := res.GetUints("mask")
	if len(masks) != 1 || masks[0] != 255 {
		t.Errorf("Expected masks [255], got %v", masks)
	}
}

func TestParseRestAndExecutablePath(t *testing.T) {
	m := New("tool", "")
	m.BoolOption("v", "")

	res := m.ParseArgv([]string{"/usr/bin/tool", "-v", "file1", "file2"})
	if res.ExecutablePath() != "/usr/bin/tool" {
		t.Errorf("Expected exec path, got %q", res.ExecutablePath())
	}
	rest := res.Rest()
	if len(rest) != 2 || rest[0] != "file1" || rest[1] != "file2" {
		t.Errorf("Expected positional files, got %v", rest)
	}

	res = m.Parse([]string{"-v", "file1"})
	if res.ExecutablePath() != "" {
		t.Errorf("Expected empty exec path from Parse, got %q", res.ExecutablePath())
	}

	res = m.ParseArgv(nil)
	if res.ExecutablePath() != "" || len(res.Rest()) != 0 {
		t.Errorf("Expected empty result from empty argv, got %q %v", res.ExecutablePath(), res.Rest())
	}
}

func TestParseLineRaw(t *testing.T) {
	m := New("tool", "")
	m.StringOption("msg", "")

	res := m.ParseLine(`--msg "hello world" extra`)
	if v, _ := res.GetString("msg"); v != "hello world" {
		t.Errorf("Expected quoted value, got %q", v)
	}
	if len(res.Rest()) != 1 || res.Rest()[0] != "extra" {
		t.Errorf("Expected one positional, got %v", res.Rest())
	}
}

func TestParseCaseInsensitiveLookup(t *testing.T) {
	m := New("tool", "").CaseInsensitive()
	m.StringOption("Name", "")

	res := m.Parse([]string{"--NAME", "x"})
	if !res.Ok() {
		t.Fatalf("Expected case-insensitive match, got %v", res.Err())
	}
	if v, _ := res.GetString("name"); v != "x" {
		t.Errorf("Expected accessor to fold case too, got %q", v)
	}
}

func TestParseUnexpectedAssignment(t *testing.T) {
	m := New("tool", "")

	res := m.Parse([]string{"=", "x"})
	e := firstError(t, res)
	if e.Kind != ErrorKindUnexpectedAssignment {
		t.Fatalf("Expected unexpected_assignment, got %s", e.Kind)
	}
	if e.Message != `unexpected assignment character "="` {
		t.Errorf("Unexpected message: %q", e.Message)
	}
	if len(res.Rest()) != 1 || res.Rest()[0] != "x" {
		t.Errorf("Expected the trailing value to stay positional, got %v", res.Rest())
	}
}

func TestParseLexicalErrorsAccumulate(t *testing.T) {
	m := New("tool", "")
	m.StringOption("msg", "")

	res := m.ParseLine(`- ok "broken`)
	if len(res.Errors()) != 2 {
		t.Fatalf("Expected two errors, got %v", res.Err())
	}
	if res.Errors()[0].Kind != ErrorKindEmptyOptionName {
		t.Errorf("Expected empty_option_name first, got %s", res.Errors()[0].Kind)
	}
	if res.Errors()[1].Kind != ErrorKindMissingClosingQuote {
		t.Errorf("Expected missing_closing_quote second, got %s", res.Errors()[1].Kind)
	}
	// scanning carried on between the two conditions
	if len(res.Rest()) != 1 || res.Rest()[0] != "ok" {
		t.Errorf("Expected the value between conditions to survive, got %v", res.Rest())
	}
}

func TestParseRerunResetsState(t *testing.T) {
	m := New("tool", "")
	m.StringOption("tag", "").Repeated()

	first := m.Parse([]string{"--tag", "a", "--tag", "b"})
	if first.Occurrences("tag") != 2 {
		t.Fatalf("Expected 2 occurrences on the first run, got %d", first.Occurrences("tag"))
	}

	second := m.Parse([]string{"--tag", "c"})
	if second.Occurrences("tag") != 1 {
		t.Errorf("Expected per-run occurrence counting, got %d", second.Occurrences("tag"))
	}
	tags, _ := second.GetStrings("tag")
	if len(tags) != 1 || tags[0] != "c" {
		t.Errorf("Expected a fresh collection per run, got %v", tags)
	}
	// the first result is untouched by the rerun
	if tags, _ := first.GetStrings("tag"); len(tags) != 2 {
		t.Errorf("Expected the first result to keep its values, got %v", tags)
	}
}

func TestParseAccessorsOnUnknownName(t *testing.T) {
	m := New("tool", "")
	m.StringOption("name", "")

	res := m.Parse([]string{"--name", "x"})
	if _, ok := res.GetString("never-declared"); ok {
		t.Error("Expected unknown accessor name to report unset")
	}
	if res.Occurrences("never-declared") != 0 {
		t.Error("Expected zero occurrences for unknown name")
	}
	if v := res.MustGetString("never-declared", "fallback"); v != "fallback" {
		t.Errorf("Expected default for unknown name, got %q", v)
	}
}

func TestParseMustAccessors(t *testing.T) {
	m := New("tool", "")
	m.IntOption("port", "")
	m.BoolOption("v", "")

	res := m.Parse([]string{"--port", "8080"})
	if v := res.MustGetInt("port", 1); v != 8080 {
		t.Errorf("Expected set value, got %d", v)
	}
	if v := res.MustGetInt("missing", 42); v != 42 {
		t.Errorf("Expected default, got %d", v)
	}
	if v := res.MustGetBool("v", true); !v {
		t.Error("Expected default true for unset bool")
	}
}

func TestParseNarrowIntegerWidths(t *testing.T) {
	m := New("tool", "")
	m.Int8Option("tiny", "")
	m.Uint16Option("port", "")
	m.Float32Option("ratio", "")

	res := m.Parse([]string{"--tiny", "-5", "--port", "65535", "--ratio", "0.5"})
	if !res.Ok() {
		t.Fatalf("Expected clean parse, got %v", res.Err())
	}
	if v, _ := res.GetInt("tiny"); v != -5 {
		t.Errorf("Expected widened -5, got %d", v)
	}
	if v, _ := res.GetUint("port"); v != 65535 {
		t.Errorf("Expected 65535, got %d", v)
	}
	if v, _ := res.GetFloat("ratio"); v != 0.5 {
		t.Errorf("Expected 0.5, got %v", v)
	}

	res = m.Parse([]string{"--port", "65536"})
	if e := firstError(t, res); e.Kind != ErrorKindOverflow {
		t.Errorf("Expected overflow past uint16, got %s", e.Kind)
	}
}

func TestParseExactlyOneGroupWithRequiredScalar(t *testing.T) {
	build := func() *Manager {
		m := New("tool", "")
		m.StringOption("f", "").Required()
		g := m.Group("modes").ExactlyOne()
		g.BoolOption("c", "")
		g.BoolOption("x", "")
		g.BoolOption("h", "")
		return m
	}

	// -cx sets two group members and leaves f unset: both problems report
	res := build().Parse([]string{"-cx"})
	if len(res.Errors()) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %v", len(res.Errors()), res.Err())
	}
	var missing, cardinality *ErrorInfo
	for _, e := range res.Errors() {
		switch e.Kind {
		case ErrorKindMissingRequiredOption:
			missing = e
		case ErrorKindIllegalCardinality:
			cardinality = e
		}
	}
	if missing == nil || missing.Message != "required option --f was not specified" {
		t.Errorf("Expected the missing required report, got %v", missing)
	}
	if cardinality == nil || cardinality.Message != "only one of the options --c, --x, --h may be specified" {
		t.Errorf("Expected the group report naming every member, got %v", cardinality)
	}

	clean := build().Parse([]string{"-f", "value", "-h"})
	if clean.HasErrors() {
		t.Fatalf("Expected a clean parse, got %v", clean.Err())
	}
	if v, _ := clean.GetString("f"); v != "value" {
		t.Errorf("Expected f bound, got %q", v)
	}
	if v, _ := clean.GetBool("h"); !v {
		t.Error("Expected h set")
	}
}
