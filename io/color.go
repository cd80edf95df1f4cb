package claspio

import "fmt"

// ColorSpec represents a color in one of three spaces: basic (16), indexed
// (256) or truecolor (RGB).
type ColorSpec struct {
	kind    int // 1=basic, 2=indexed, 3=truecolor
	index   int // basic (0-15) and indexed (0-255)
	r, g, b uint8
}

// Basic colors, 0-7 normal and 8-15 bright.
var (
	Black   = basic(0)
	Red     = basic(1)
	Green   = basic(2)
	Yellow  = basic(3)
	Blue    = basic(4)
	Magenta = basic(5)
	Cyan    = basic(6)
	White   = basic(7)

	BrightBlack   = basic(8)
	BrightRed     = basic(9)
	BrightGreen   = basic(10)
	BrightYellow  = basic(11)
	BrightBlue    = basic(12)
	BrightMagenta = basic(13)
	BrightCyan    = basic(14)
	BrightWhite   = basic(15)
)

func basic(i int) ColorSpec { return ColorSpec{kind: 1, index: i} }

// Indexed returns a 256-color palette spec (0-255).
func Indexed(i int) ColorSpec { return ColorSpec{kind: 2, index: i} }

// Truecolor returns a 24-bit RGB color spec.
func Truecolor(r, g, b uint8) ColorSpec { return ColorSpec{kind: 3, r: r, g: g, b: b} }

// Style is a fluent builder for foreground/background colors and the common
// text attributes.
type Style struct {
	fg, bg                         *ColorSpec
	bold, faint, underline, invert bool
}

// NewStyle creates an empty style builder.
func NewStyle() *Style { return &Style{} }

// Fg sets the foreground color.
func (s *Style) Fg(c ColorSpec) *Style { s.fg = &c; return s }

// Bg sets the background color.
func (s *Style) Bg(c ColorSpec) *Style { s.bg = &c; return s }

// Bold enables bold intensity.
func (s *Style) Bold() *Style { s.bold = true; return s }

// Faint enables faint intensity.
func (s *Style) Faint() *Style { s.faint = true; return s }

// Underline enables underlining.
func (s *Style) Underline() *Style { s.underline = true; return s }

// Invert swaps foreground and background.
func (s *Style) Invert() *Style { s.invert = true; return s }

// Sprint returns the styled text when color is supported, the text unchanged
// otherwise.
func (s *Style) Sprint(io *IOManager, text string) string {
	if !io.SupportsColor() {
		return text
	}
	seq := s.ansiPrefix(io)
	if seq == "" {
		return text
	}
	return "\x1b[" + seq + "m" + text + "\x1b[0m"
}

// Sprintf formats with fmt.Sprintf and then applies the style.
func (s *Style) Sprintf(io *IOManager, format string, a ...any) string {
	return s.Sprint(io, fmt.Sprintf(format, a...))
}

func (s *Style) ansiPrefix(io *IOManager) string {
	codes := make([]string, 0, 6)
	if s.bold {
		codes = append(codes, "1")
	}
	if s.faint {
		codes = append(codes, "2")
	}
	if s.underline {
		codes = append(codes, "4")
	}
	if s.invert {
		codes = append(codes, "7")
	}
	lvl := io.ColorLevel()
	if s.fg != nil {
		codes = append(codes, colorCode(*s.fg, false, lvl))
	}
	if s.bg != nil {
		codes = append(codes, colorCode(*s.bg, true, lvl))
	}
	out := ""
	for _, c := range codes {
		if c == "" {
			continue
		}
		if out != "" {
			out += ";"
		}
		out += c
	}
	return out
}

// colorCode renders the SGR fragment for one color. Colors beyond the
// terminal's level degrade to no code instead of emitting garbage.
func colorCode(c ColorSpec, bg bool, level int) string {
	base := 30
	if bg {
		base = 40
	}
	switch c.kind {
	case 1:
		idx := c.index
		if idx < 0 {
			idx = 0
		}
		if idx > 15 {
			idx = 15
		}
		if idx < 8 {
			return fmt.Sprintf("%d", base+idx)
		}
		return fmt.Sprintf("%d", base+60+(idx-8))
	case 2:
		if level >= 2 {
			if bg {
				return fmt.Sprintf("48;5;%d", c.index)
			}
			return fmt.Sprintf("38;5;%d", c.index)
		}
		return ""
	case 3:
		if level >= 3 {
			if bg {
				return fmt.Sprintf("48;2;%d;%d;%d", c.r, c.g, c.b)
			}
			return fmt.Sprintf("38;2;%d;%d;%d", c.r, c.g, c.b)
		}
		return ""
	default:
		return ""
	}
}

// Theme groups the semantic colors used by diagnostic output.
type Theme struct {
	Heading, Option, Value, Error, Warning, Muted ColorSpec
}

// DefaultTheme16 is the theme for plain 16-color terminals.
func DefaultTheme16() Theme {
	return Theme{
		Heading: BrightWhite,
		Option:  BrightCyan,
		Value:   BrightGreen,
		Error:   BrightRed,
		Warning: BrightYellow,
		Muted:   BrightBlack,
	}
}

// DefaultTheme256 is the theme for 256-color terminals.
func DefaultTheme256() Theme {
	return Theme{
		Heading: BrightWhite,
		Option:  Indexed(117),
		Value:   Indexed(118),
		Error:   Indexed(203),
		Warning: Indexed(214),
		Muted:   Indexed(244),
	}
}

// DefaultThemeTruecolor is the theme for truecolor terminals.
func DefaultThemeTruecolor() Theme {
	return Theme{
		Heading: Truecolor(255, 255, 255),
		Option:  Truecolor(139, 233, 253),
		Value:   Truecolor(80, 250, 123),
		Error:   Truecolor(255, 85, 85),
		Warning: Truecolor(255, 184, 108),
		Muted:   Truecolor(128, 128, 128),
	}
}

// DefaultTheme picks the richest theme the terminal supports.
func DefaultTheme(io *IOManager) Theme {
	switch io.ColorLevel() {
	case 3:
		return DefaultThemeTruecolor()
	case 2:
		return DefaultTheme256()
	default:
		return DefaultTheme16()
	}
}
