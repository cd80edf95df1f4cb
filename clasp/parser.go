package clasp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dzonerzy/go-clasp/internal/fuzzy"
	"github.com/dzonerzy/go-clasp/validate"
)

// maxIncludeDepth caps nested option-file inclusion. Inputs deeper than this
// are runaway generators, not command lines.
const maxIncludeDepth = 16

// parser drives one run: it pulls tokens from a stack of lexers with one
// token of lookahead, resolves option occurrences against the model, and
// accumulates every problem it meets without ever aborting.
type parser struct {
	m   *Manager
	tab *tables

	lexers []*lexer
	active []string // absolute paths of open option files, "" for the root

	look    token
	hasLook bool

	optionsOn bool
	errs      ErrorList
	rest      []string
	execPath  string
	res       *ParseResult
}

func newParser(m *Manager) *parser {
	return &parser{m: m, optionsOn: true}
}

func (p *parser) run(src, execPath string) *ParseResult {
	p.execPath = execPath
	p.res = newParseResult(p.m)
	for _, o := range p.m.specs {
		o.occurrences = 0
	}
	p.tab = p.m.tab.clone()
	p.push(newLexer(src, "", p.m.styles, p.tab), "")

	for {
		tok, ok := p.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokenValue:
			p.rest = append(p.rest, tok.text)
		case tokenAssignment:
			p.report(&ErrorInfo{
				Kind:    ErrorKindUnexpectedAssignment,
				Message: fmt.Sprintf("unexpected assignment character %q", tok.text),
				File:    tok.file,
				Line:    tok.line,
			})
		case tokenEndOfOptions:
			p.optionsOn = !p.optionsOn
		case tokenFile:
			p.include(tok)
		case tokenOption:
			p.resolveOption(tok)
		}
	}

	p.applyEnvFallback()
	p.postScan()
	return p.finishResult()
}

// push and pop maintain the lexer stack and the set of open option files used
// for cycle detection.

func (p *parser) push(lx *lexer, abs string) {
	p.lexers = append(p.lexers, lx)
	p.active = append(p.active, abs)
}

func (p *parser) pop() {
	p.lexers = p.lexers[:len(p.lexers)-1]
	p.active = p.active[:len(p.active)-1]
}

func (p *parser) onStack(abs string) bool {
	for _, a := range p.active {
		if a != "" && a == abs {
			return true
		}
	}
	return false
}

// fetch pulls the next token from the top lexer, popping exhausted lexers and
// converting lexical conditions into reported errors before carrying on.
func (p *parser) fetch() (token, bool) {
	for len(p.lexers) > 0 {
		lx := p.lexers[len(p.lexers)-1]
		tok, ok, err := lx.next(p.optionsOn)
		if err != nil {
			var cond *lexCondition
			if errors.As(err, &cond) {
				p.report(&ErrorInfo{Kind: cond.kind, Message: cond.msg, File: lx.file, Line: cond.line})
			} else {
				p.report(&ErrorInfo{Kind: ErrorKindUnknown, Message: err.Error(), File: lx.file})
			}
			continue
		}
		if !ok {
			p.pop()
			continue
		}
		tok.file = lx.file
		return tok, true
	}
	return token{}, false
}

func (p *parser) next() (token, bool) {
	if p.hasLook {
		p.hasLook = false
		return p.look, true
	}
	return p.fetch()
}

// peek fills the one-token lookahead without consuming it.
func (p *parser) peek() (token, bool) {
	if !p.hasLook {
		tok, ok := p.fetch()
		if !ok {
			return token{}, false
		}
		p.look = tok
		p.hasLook = true
	}
	return p.look, true
}

// take consumes the token last returned by peek.
func (p *parser) take() token {
	p.hasLook = false
	return p.look
}

func (p *parser) report(e *ErrorInfo) {
	p.errs = append(p.errs, e)
}

// include opens an option file and pushes a lexer over its contents. All
// failure modes report file-not-found: the file is unusable either way.
func (p *parser) include(tok token) {
	if len(p.lexers)-1 >= maxIncludeDepth {
		p.report(&ErrorInfo{
			Kind:    ErrorKindFileNotFound,
			Message: fmt.Sprintf("option file %q nested deeper than %d levels", tok.text, maxIncludeDepth),
			File:    tok.file,
			Line:    tok.line,
		})
		return
	}
	abs, err := filepath.Abs(tok.text)
	if err != nil {
		abs = tok.text
	}
	if p.onStack(abs) {
		p.report(&ErrorInfo{
			Kind:    ErrorKindFileNotFound,
			Message: fmt.Sprintf("circular inclusion of option file %q", tok.text),
			File:    tok.file,
			Line:    tok.line,
		})
		return
	}
	data, err := os.ReadFile(tok.text)
	if err != nil {
		p.report(&ErrorInfo{
			Kind:    ErrorKindFileNotFound,
			Message: fmt.Sprintf("cannot read option file: %v", err),
			File:    tok.file,
			Line:    tok.line,
		})
		return
	}
	p.push(newLexer(string(data), tok.text, p.m.styles, p.tab), abs)
}

// resolveOption runs the resolution procedure for one option occurrence.
//
//nolint:gocognit,gocyclo,cyclop // the resolution order is a fixed sequence of guards
func (p *parser) resolveOption(tok token) {
	display := tok.display()
	opt := p.m.find(tok.text)
	if opt == nil {
		msg := "unknown option " + display
		if sugg := p.suggest(tok.text); sugg != "" {
			msg += fmt.Sprintf(", did you mean %q?", sugg)
		}
		p.report(&ErrorInfo{Kind: ErrorKindUnknownOption, Message: msg, Option: tok.text, File: tok.file, Line: tok.line})
		p.skipAssignment()
		return
	}

	for _, other := range opt.prohibits {
		if other.setAt() {
			p.report(&ErrorInfo{
				Kind:    ErrorKindOptionProhibited,
				Message: fmt.Sprintf("option %s cannot be combined with option %s", display, other.displayName(p.m.styles)),
				Option:  opt.Name,
				File:    tok.file,
				Line:    tok.line,
			})
			p.skipAssignment()
			return
		}
	}

	next, hasNext := p.peek()
	hasAssign := hasNext && next.kind == tokenAssignment

	if opt.valueAccepting() && opt.assignResolved && !hasAssign {
		if opt.hasBareDefault {
			if p.underMax(opt, tok) {
				p.commit(opt, opt.bareValue)
			}
			return
		}
		// count the attempt so the post-scan pass does not also flag the
		// option as never specified
		opt.occurrences++
		p.report(&ErrorInfo{
			Kind:    ErrorKindMissingValue,
			Message: fmt.Sprintf("option %s requires an assigned value", display),
			Option:  opt.Name,
			File:    tok.file,
			Line:    tok.line,
		})
		return
	}

	if !opt.valueAccepting() {
		if hasAssign {
			p.take()
			if v, okv := p.peek(); okv && v.kind == tokenValue {
				p.take()
			}
			p.report(&ErrorInfo{
				Kind:    ErrorKindAssignmentToNonValue,
				Message: fmt.Sprintf("option %s does not take a value", display),
				Option:  opt.Name,
				File:    tok.file,
				Line:    tok.line,
			})
			return
		}
		if !p.underMax(opt, tok) {
			return
		}
		val := value{t: TypeBool}
		switch opt.Mode {
		case BoolTrueIfPresent:
			val.b = true
		case BoolFalseIfPresent:
			val.b = false
		case BoolUsePrefix:
			val.b = tok.prefix == '+'
		}
		p.commit(opt, val)
		return
	}

	if hasAssign {
		p.take()
	}
	v, okv := p.peek()
	if !okv || v.kind != tokenValue {
		opt.occurrences++
		p.report(&ErrorInfo{
			Kind:    ErrorKindMissingValue,
			Message: fmt.Sprintf("option %s requires a value", display),
			Option:  opt.Name,
			File:    tok.file,
			Line:    tok.line,
		})
		return
	}
	p.take()
	if !p.underMax(opt, tok) {
		return
	}
	converted, cerr := convertValue(opt, display, v.text)
	if cerr != nil {
		p.report(&ErrorInfo{Kind: cerr.kind, Message: cerr.msg, Option: opt.Name, File: v.file, Line: v.line})
		return
	}
	if msg := p.runValidators(opt, display, v.text, converted); msg != "" {
		p.report(&ErrorInfo{Kind: ErrorKindInvalidValue, Message: msg, Option: opt.Name, File: v.file, Line: v.line})
		return
	}
	p.commit(opt, converted)
}

// runValidators runs the custom hooks and renders the rejection message. A
// bare validation error replaces the standard prefix instead of following it.
func (p *parser) runValidators(opt *OptionSpec, display, raw string, val value) string {
	for _, fn := range opt.validators {
		err := fn(val)
		if err == nil {
			continue
		}
		var verr *validate.Error
		if errors.As(err, &verr) && verr.Bare {
			return verr.Message
		}
		return fmt.Sprintf("invalid value %q for option %s: %v", raw, display, err)
	}
	return ""
}

// underMax reports whether the option may take another occurrence, reporting
// illegal cardinality when it may not.
func (p *parser) underMax(opt *OptionSpec, tok token) bool {
	if opt.MaxOccurs == 0 || opt.occurrences < opt.MaxOccurs {
		return true
	}
	var msg string
	if opt.MaxOccurs == 1 {
		msg = fmt.Sprintf("option %s may only be specified once", tok.display())
	} else {
		msg = fmt.Sprintf("option %s may be specified at most %d times", tok.display(), opt.MaxOccurs)
	}
	p.report(&ErrorInfo{Kind: ErrorKindIllegalCardinality, Message: msg, Option: opt.Name, File: tok.file, Line: tok.line})
	return false
}

// commit counts the occurrence, stores the value on the result and feeds the
// bound slots. Committed effects stick even when later occurrences fail.
func (p *parser) commit(opt *OptionSpec, val value) {
	opt.occurrences++
	p.res.store(opt, val)
	for _, bind := range opt.binds {
		bind(val)
	}
}

// skipAssignment consumes an immediately-following assignment token and its
// value so one bad option yields one error instead of three.
func (p *parser) skipAssignment() {
	if t, ok := p.peek(); ok && t.kind == tokenAssignment {
		p.take()
		if v, okv := p.peek(); okv && v.kind == tokenValue {
			p.take()
		}
	}
}

func (p *parser) suggest(name string) string {
	candidates := make([]string, 0, len(p.m.specs)*2)
	for _, o := range p.m.specs {
		candidates = append(candidates, o.Name)
		candidates = append(candidates, o.Aliases...)
	}
	return fuzzy.FindBestOption(name, candidates, 2)
}

// applyEnvFallback gives options that never occurred their value from the
// first set environment variable. Values travel through the normal conversion
// and validation pipeline, but failures are dropped silently: the user did
// not write them on this command line.
func (p *parser) applyEnvFallback() {
	for _, o := range p.m.specs {
		if o.setAt() || len(o.EnvVars) == 0 {
			continue
		}
		for _, name := range o.EnvVars {
			raw, set := os.LookupEnv(name)
			if !set {
				continue
			}
			val, cerr := convertValue(o, o.Name, raw)
			if cerr == nil && p.runValidators(o, o.Name, raw, val) == "" {
				p.commit(o, val)
			}
			break
		}
	}
}

// postScan checks the constraints that only settle once the whole input has
// been consumed: minimum occurrences and group policies.
func (p *parser) postScan() {
	for _, o := range p.m.specs {
		if o.occurrences >= o.MinOccurs {
			continue
		}
		display := o.displayName(p.m.styles)
		if o.occurrences == 0 {
			p.report(&ErrorInfo{
				Kind:    ErrorKindMissingRequiredOption,
				Message: fmt.Sprintf("required option %s was not specified", display),
				Option:  o.Name,
			})
			continue
		}
		var msg string
		if o.MinOccurs == o.MaxOccurs {
			msg = fmt.Sprintf("option %s must be specified exactly %d times", display, o.MinOccurs)
		} else {
			msg = fmt.Sprintf("option %s must be specified at least %d times", display, o.MinOccurs)
		}
		p.report(&ErrorInfo{Kind: ErrorKindIllegalCardinality, Message: msg, Option: o.Name})
	}

	for _, g := range p.m.groups {
		p.checkGroup(g)
	}
}

func (p *parser) checkGroup(g *OptionGroup) {
	if g.Policy == GroupNone {
		return
	}
	count := g.setCount()
	names := p.memberNames(g)
	switch g.Policy {
	case GroupAtMostOne:
		if count > 1 {
			p.report(&ErrorInfo{
				Kind:    ErrorKindIllegalCardinality,
				Message: fmt.Sprintf("at most one of the options %s may be specified", names),
			})
		}
	case GroupAtLeastOne:
		if count == 0 {
			p.report(&ErrorInfo{
				Kind:    ErrorKindMissingRequiredOption,
				Message: fmt.Sprintf("at least one of the options %s must be specified", names),
			})
		}
	case GroupExactlyOne:
		if count == 0 {
			p.report(&ErrorInfo{
				Kind:    ErrorKindMissingRequiredOption,
				Message: fmt.Sprintf("exactly one of the options %s must be specified", names),
			})
		} else if count > 1 {
			p.report(&ErrorInfo{
				Kind:    ErrorKindIllegalCardinality,
				Message: fmt.Sprintf("only one of the options %s may be specified", names),
			})
		}
	case GroupAll:
		if count != len(g.members) {
			p.report(&ErrorInfo{
				Kind:    ErrorKindMissingRequiredOption,
				Message: fmt.Sprintf("all of the options %s must be specified", names),
			})
		}
	}
}

func (p *parser) memberNames(g *OptionGroup) string {
	names := make([]string, len(g.members))
	for i, o := range g.members {
		names[i] = o.displayName(p.m.styles)
	}
	return strings.Join(names, ", ")
}

func (p *parser) finishResult() *ParseResult {
	p.res.errs = p.errs
	p.res.rest = p.rest
	p.res.execPath = p.execPath
	for _, o := range p.m.specs {
		if o.occurrences > 0 {
			p.res.occurrences[o.Name] = o.occurrences
		}
	}
	return p.res
}
