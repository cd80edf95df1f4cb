package clasp

// tokenKind discriminates the token classes produced by the lexer.
type tokenKind uint8

const (
	tokenValue tokenKind = iota
	tokenAssignment
	tokenOption
	tokenEndOfOptions
	tokenFile
)

func (k tokenKind) String() string {
	switch k {
	case tokenValue:
		return "value"
	case tokenAssignment:
		return "assignment"
	case tokenOption:
		return "option"
	case tokenEndOfOptions:
		return "end-of-options"
	case tokenFile:
		return "option-file"
	default:
		return "invalid"
	}
}

// token is one lexical unit of a command line. Tokens are ephemeral: the
// parser consumes them with one token of lookahead and never stores them.
type token struct {
	kind   tokenKind
	text   string // decoded value, option name, or file name
	style  Style  // for tokenOption: the style that matched the prefix
	prefix rune   // for tokenOption: the literal switch character
	file   string // source option file, empty for direct input
	line   int    // 1-based source line the token started on
}

// display renders the token the way the user wrote it, for error messages.
func (t token) display() string {
	switch t.kind {
	case tokenOption:
		if t.style == StyleLong {
			return "--" + t.text
		}
		return string(t.prefix) + t.text
	case tokenFile:
		return "@" + t.text
	case tokenEndOfOptions:
		return "--"
	default:
		return t.text
	}
}
