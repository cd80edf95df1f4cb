package clasp

import (
	"unicode"
	"unicode/utf8"

	"github.com/dzonerzy/go-clasp/internal/intern"
	"github.com/dzonerzy/go-clasp/internal/pool"
)

// lexCondition is a recoverable lexical problem. The parser converts it into
// an ErrorInfo and keeps scanning from the position the lexer stopped at.
type lexCondition struct {
	kind ErrorKind
	msg  string
	line int
}

func (e *lexCondition) Error() string {
	return e.msg
}

// lexer turns one source of command-line text into tokens. A parse run keeps
// a stack of these: the bottom entry scans the original input and option-file
// inclusions push children that share the same tables and style set but carry
// their own file name and line counter.
type lexer struct {
	src    string
	file   string // empty for direct command-line input
	pos    int
	line   int
	styles Style
	tab    *tables

	// grouped option spans split into several tokens per scan call; the
	// surplus queues here and drains before the source advances again
	pending []token
	pendIdx int
}

func newLexer(src, file string, styles Style, tab *tables) *lexer {
	return &lexer{
		src:    src,
		file:   file,
		line:   1,
		styles: styles.normalize(),
		tab:    tab,
	}
}

// peek decodes the rune at the current position without consuming it. Carriage
// returns normalize to newlines, folding a CRLF pair into a single rune, so
// line counting and decoded values are identical across input conventions.
func (lx *lexer) peek() (rune, int) {
	if lx.pos >= len(lx.src) {
		return 0, 0
	}
	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if r == '\r' {
		if lx.pos+size < len(lx.src) && lx.src[lx.pos+size] == '\n' {
			return '\n', size + 1
		}
		return '\n', size
	}
	return r, size
}

func (lx *lexer) advance() rune {
	r, size := lx.peek()
	if size == 0 {
		return 0
	}
	lx.pos += size
	if r == '\n' {
		lx.line++
	}
	return r
}

func (lx *lexer) atEOF() bool {
	return lx.pos >= len(lx.src)
}

// atBreak reports whether the current position ends a token: end of input or
// unescaped whitespace.
func (lx *lexer) atBreak() bool {
	if lx.atEOF() {
		return true
	}
	r, _ := lx.peek()
	return unicode.IsSpace(r)
}

func (lx *lexer) skipSpace() {
	for !lx.atEOF() {
		r, _ := lx.peek()
		if !unicode.IsSpace(r) {
			return
		}
		lx.advance()
	}
}

// next produces the next token. The second result is false once the source is
// exhausted. optionsOn toggles option recognition: when false only the
// end-of-options marker keeps its meaning and everything else lexes as plain
// values, which is how the marker can re-enable recognition later.
//
//nolint:gocognit,gocyclo,cyclop // token dispatch is one big prioritized switch by design
func (lx *lexer) next(optionsOn bool) (token, bool, error) {
	if lx.pendIdx < len(lx.pending) {
		t := lx.pending[lx.pendIdx]
		lx.pendIdx++
		if lx.pendIdx == len(lx.pending) {
			lx.pending = lx.pending[:0]
			lx.pendIdx = 0
		}
		return t, true, nil
	}

	lx.skipSpace()
	if lx.atEOF() {
		return token{}, false, nil
	}
	start := lx.line
	r, size := lx.peek()

	// The end-of-options marker outranks every other rule so that a second
	// occurrence can switch option recognition back on.
	if r == '-' && lx.styles&(StyleLong|StyleShort) != 0 && lx.isEndOfOptions() {
		lx.advance()
		lx.advance()
		return token{kind: tokenEndOfOptions, prefix: '-', line: start}, true, nil
	}

	if optionsOn {
		switch {
		case r == '-' && lx.styles.Has(StyleLong) && lx.peekAt(size) == '-':
			lx.advance()
			lx.advance()
			name, err := lx.lexOptionName(StyleLong)
			if err != nil {
				return token{}, false, err
			}
			return token{kind: tokenOption, text: name, style: StyleLong, prefix: '-', line: start}, true, nil

		case r == '-' && lx.styles.Has(StyleShort):
			return lx.lexShortSpan('-', StyleShort, start)

		case r == '+' && lx.styles.Has(StyleSign):
			return lx.lexShortSpan('+', StyleSign, start)

		case r == '/' && lx.styles.Has(StyleWindows):
			lx.advance()
			name, err := lx.lexOptionName(StyleWindows)
			if err != nil {
				return token{}, false, err
			}
			return token{kind: tokenOption, text: name, style: StyleWindows, prefix: '/', line: start}, true, nil

		case r == '@' && lx.styles.Has(StyleFile):
			if lx.peekPastIsBreak(size) {
				break // bare @ is an ordinary value
			}
			lx.advance()
			name, err := lx.lexValueText()
			if err != nil {
				return token{}, false, err
			}
			return token{kind: tokenFile, text: name, prefix: '@', line: start}, true, nil

		case lx.tab.assignmentFor(r, lx.styles):
			lx.advance()
			return token{kind: tokenAssignment, text: string(r), line: start}, true, nil
		}
	}

	text, err := lx.lexValueText()
	if err != nil {
		return token{}, false, err
	}
	return token{kind: tokenValue, text: text, line: start}, true, nil
}

// isEndOfOptions reports whether the input at the current position is a
// double dash immediately followed by whitespace or end of input.
func (lx *lexer) isEndOfOptions() bool {
	rest := lx.src[lx.pos:]
	if len(rest) < 2 || rest[0] != '-' || rest[1] != '-' {
		return false
	}
	if len(rest) == 2 {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest[2:])
	return unicode.IsSpace(r)
}

// peekAt decodes the rune that starts offset bytes past the current position.
func (lx *lexer) peekAt(offset int) rune {
	if lx.pos+offset >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos+offset:])
	return r
}

// peekPastIsBreak reports whether the rune after skipping offset bytes is
// whitespace or end of input.
func (lx *lexer) peekPastIsBreak(offset int) bool {
	if lx.pos+offset >= len(lx.src) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos+offset:])
	return unicode.IsSpace(r)
}

// lexShortSpan scans the name span after a single-character switch prefix.
// With the grouped style enabled a multi-character span fans out into one
// single-character option token per rune, the first returned now and the rest
// queued.
func (lx *lexer) lexShortSpan(prefix rune, style Style, start int) (token, bool, error) {
	lx.advance()
	name, err := lx.lexOptionName(style)
	if err != nil {
		return token{}, false, err
	}
	if !lx.styles.Has(StyleGrouped) || utf8.RuneCountInString(name) <= 1 {
		return token{kind: tokenOption, text: name, style: style, prefix: prefix, line: start}, true, nil
	}
	first := token{}
	for i, r := range name {
		t := token{kind: tokenOption, text: intern.Rune(r), style: style, prefix: prefix, line: start}
		if i == 0 {
			first = t
			continue
		}
		lx.pending = append(lx.pending, t)
	}
	return first, true, nil
}

// lexOptionName collects an option name: runes up to whitespace, end of
// input, or an assignment character registered for the given style. An empty
// span is a reportable condition, not a token.
func (lx *lexer) lexOptionName(style Style) (string, error) {
	bp := pool.GetBuffer()
	b := *bp
	defer func() { *bp = b; pool.PutBuffer(bp) }()
	for !lx.atBreak() {
		r, _ := lx.peek()
		if lx.tab.assignmentFor(r, style) {
			break
		}
		lx.advance()
		b = utf8.AppendRune(b, r)
	}
	if len(b) == 0 {
		return "", &lexCondition{
			kind: ErrorKindEmptyOptionName,
			msg:  "missing option name after switch character",
			line: lx.line,
		}
	}
	return intern.Bytes(b), nil
}

// lexValueText scans one value: a quoted span decoded through the quote's
// escape-code table, or an unquoted span running to the next unescaped
// whitespace. An escape character followed by a code missing from the active
// table keeps both characters literally.
func (lx *lexer) lexValueText() (string, error) {
	bp := pool.GetBuffer()
	b := *bp
	defer func() { *bp = b; pool.PutBuffer(bp) }()

	r, _ := lx.peek()
	if codes, quoted := lx.tab.quotes[r]; quoted {
		openLine := lx.line
		lx.advance()
		for {
			if lx.atEOF() {
				return "", &lexCondition{
					kind: ErrorKindMissingClosingQuote,
					msg:  "missing closing quote " + string(r),
					line: openLine,
				}
			}
			c := lx.advance()
			if c == r {
				break
			}
			if lx.tab.isEscape(c) && !lx.atEOF() {
				n, _ := lx.peek()
				if repl, ok := codes[n]; ok {
					lx.advance()
					b = utf8.AppendRune(b, repl)
					continue
				}
				lx.advance()
				b = utf8.AppendRune(b, c)
				b = utf8.AppendRune(b, n)
				continue
			}
			b = utf8.AppendRune(b, c)
		}
		return string(b), nil
	}

	for !lx.atBreak() {
		c := lx.advance()
		if lx.tab.isEscape(c) && !lx.atEOF() {
			n, _ := lx.peek()
			if repl, ok := lx.tab.unquoted[n]; ok {
				lx.advance()
				b = utf8.AppendRune(b, repl)
				continue
			}
			lx.advance()
			b = utf8.AppendRune(b, c)
			b = utf8.AppendRune(b, n)
			continue
		}
		b = utf8.AppendRune(b, c)
	}
	return string(b), nil
}
