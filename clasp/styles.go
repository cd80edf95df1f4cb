package clasp

import "unicode"

// Style is a bit set of option prefix conventions the lexer recognizes.
type Style uint8

const (
	// StyleWindows recognizes /name options.
	StyleWindows Style = 1 << iota
	// StyleLong recognizes --name options.
	StyleLong
	// StyleShort recognizes -name options.
	StyleShort
	// StyleGrouped splits a multi-character -xyz span into the
	// single-character options -x -y -z. Implies StyleShort.
	StyleGrouped
	// StyleSign recognizes +name options and lets boolean options derive
	// their value from the switch character. Implies StyleShort.
	StyleSign
	// StyleFile recognizes @path option-file inclusions.
	StyleFile

	// StyleNone disables option recognition entirely.
	StyleNone Style = 0
	// StyleUnix is the conventional default: long and grouped short
	// options plus option files.
	StyleUnix = StyleLong | StyleShort | StyleGrouped | StyleFile
	// StyleAll enables every recognized convention.
	StyleAll = StyleWindows | StyleLong | StyleShort | StyleGrouped | StyleSign | StyleFile
)

// normalize applies the implication rules: grouped and sign prefixes only
// make sense when plain short options are recognized too.
func (s Style) normalize() Style {
	if s&(StyleGrouped|StyleSign) != 0 {
		s |= StyleShort
	}
	return s
}

// Has reports whether every bit of flag is enabled in s.
func (s Style) Has(flag Style) bool {
	return s&flag == flag
}

func (s Style) String() string {
	if s == StyleNone {
		return "none"
	}
	names := []struct {
		bit  Style
		name string
	}{
		{StyleWindows, "windows"},
		{StyleLong, "long"},
		{StyleShort, "short"},
		{StyleGrouped, "grouped"},
		{StyleSign, "sign"},
		{StyleFile, "file"},
	}
	out := ""
	for _, n := range names {
		if s&n.bit != 0 {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	return out
}

// tables holds the lexical customization state: quotation marks with their
// escape codes, the escape characters and codes for unquoted text, and the
// assignment characters with the styles they apply to. A parse run snapshots
// the tables once and shares the snapshot read-only with every lexer it
// spawns, so mid-run mutation can never corrupt a scan.
type tables struct {
	escapes  []rune                 // escape characters, default backslash
	quotes   map[rune]map[rune]rune // quote mark -> escape code table
	unquoted map[rune]rune          // escape codes valid outside quotes
	assigns  map[rune]Style         // assignment char -> styles it serves
}

// defaultTables builds the standard lexical tables: double quote with
// backslash escapes for the quote and the escape character itself, escaped
// space in unquoted text, '=' assigning for every style and ':' additionally
// for windows-style options.
func defaultTables() *tables {
	return &tables{
		escapes: []rune{'\\'},
		quotes: map[rune]map[rune]rune{
			'"': {'"': '"', '\\': '\\'},
		},
		unquoted: map[rune]rune{' ': ' ', '\\': '\\'},
		assigns: map[rune]Style{
			'=': StyleAll,
			':': StyleWindows,
		},
	}
}

// clone deep-copies the tables so a running parse keeps its own snapshot.
func (t *tables) clone() *tables {
	c := &tables{
		escapes:  append([]rune(nil), t.escapes...),
		quotes:   make(map[rune]map[rune]rune, len(t.quotes)),
		unquoted: make(map[rune]rune, len(t.unquoted)),
		assigns:  make(map[rune]Style, len(t.assigns)),
	}
	for mark, codes := range t.quotes {
		cc := make(map[rune]rune, len(codes))
		for k, v := range codes {
			cc[k] = v
		}
		c.quotes[mark] = cc
	}
	for k, v := range t.unquoted {
		c.unquoted[k] = v
	}
	for k, v := range t.assigns {
		c.assigns[k] = v
	}
	return c
}

func (t *tables) isEscape(r rune) bool {
	for _, e := range t.escapes {
		if e == r {
			return true
		}
	}
	return false
}

func (t *tables) isQuote(r rune) bool {
	_, ok := t.quotes[r]
	return ok
}

// assignmentFor reports whether r assigns for any of the given styles.
func (t *tables) assignmentFor(r rune, styles Style) bool {
	mask, ok := t.assigns[r]
	return ok && mask&styles != 0
}

// preferredQuote picks the quotation mark used when this package itself needs
// to quote text, such as re-quoting pre-split arguments. The double quote
// wins when registered; otherwise the lowest registered mark keeps the choice
// deterministic.
func (t *tables) preferredQuote() (rune, bool) {
	if _, ok := t.quotes['"']; ok {
		return '"', true
	}
	best := rune(-1)
	for mark := range t.quotes {
		if best < 0 || mark < best {
			best = mark
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// validTableChar enforces the shared restriction on lexical table characters:
// whitespace and alphanumerics would make ordinary values unlexable.
func validTableChar(r rune) bool {
	return !unicode.IsSpace(r) && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
