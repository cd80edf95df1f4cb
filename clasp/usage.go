package clasp

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// usage layout bounds: the name column never grows past nameColCap, and
// descriptions always keep at least minWrapWidth columns to wrap into.
const (
	nameColCap   = 32
	minWrapWidth = 16
)

// Usage renders help output for the model: a header with name, version and
// copyright, a columnar option listing grouped by option group, and error
// reports. A width of zero or less means the current terminal width.
type Usage struct {
	m       *Manager
	indent  int
	spacing int
	optimal bool
}

// Usage returns a rendering view over the declared model.
func (m *Manager) Usage() *Usage {
	m.finalize()
	return &Usage{m: m, indent: 2, spacing: 2}
}

// Indent sets the left margin of option rows.
func (u *Usage) Indent(n int) *Usage {
	if n >= 0 {
		u.indent = n
	}
	return u
}

// ColumnSpacing sets the gap between the name column and the descriptions.
func (u *Usage) ColumnSpacing(n int) *Usage {
	if n > 0 {
		u.spacing = n
	}
	return u
}

// OptimalWrap switches description wrapping from the greedy breaker to the
// minimum-raggedness one, which distributes trailing space evenly across
// lines.
func (u *Usage) OptimalWrap() *Usage {
	u.optimal = true
	return u
}

func (u *Usage) width(width int) int {
	if width > 0 {
		return width
	}
	return u.m.io.Width()
}

// Header renders the program name, version, copyright and description.
func (u *Usage) Header(width int) string {
	w := u.width(width)
	var sb strings.Builder
	title := u.m.name
	if u.m.version != "" {
		title += " " + u.m.version
	}
	sb.WriteString(u.m.io.Bold(title))
	sb.WriteByte('\n')
	if u.m.copyright != "" {
		sb.WriteString(u.m.copyright)
		sb.WriteByte('\n')
	}
	if u.m.description != "" {
		sb.WriteByte('\n')
		for _, line := range u.wrap(u.m.description, w) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Options renders the columnar option listing: ungrouped options first, then
// each group under its description. Hidden options never appear.
func (u *Usage) Options(width int) string {
	w := u.width(width)
	var sb strings.Builder

	var ungrouped []*OptionSpec
	for _, o := range u.m.specs {
		if !o.Hidden && o.group == nil {
			ungrouped = append(ungrouped, o)
		}
	}
	if len(ungrouped) > 0 {
		sb.WriteString(u.m.io.Bold("Options:"))
		sb.WriteByte('\n')
		u.renderRows(&sb, ungrouped, w)
	}

	for _, g := range u.m.groups {
		var visible []*OptionSpec
		for _, o := range g.members {
			if !o.Hidden {
				visible = append(visible, o)
			}
		}
		if len(visible) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		heading := g.Description
		if heading == "" {
			heading = g.ID
		}
		sb.WriteString(u.m.io.Bold(heading + ":"))
		sb.WriteByte('\n')
		u.renderRows(&sb, visible, w)
	}
	return sb.String()
}

// Errors renders accumulated parse problems as a bulleted report.
func (u *Usage) Errors(errs []*ErrorInfo, width int) string {
	if len(errs) == 0 {
		return ""
	}
	w := u.width(width)
	var sb strings.Builder
	sb.WriteString(u.m.io.Bold("Errors:"))
	sb.WriteByte('\n')
	margin := strings.Repeat(" ", u.indent)
	cont := strings.Repeat(" ", u.indent+2)
	for _, e := range errs {
		lines := u.wrap(e.Error(), w-u.indent-2)
		for i, line := range lines {
			if i == 0 {
				sb.WriteString(margin)
				sb.WriteString("* ")
			} else {
				sb.WriteString(cont)
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// String renders the full help view at the terminal width.
func (u *Usage) String() string {
	header := u.Header(0)
	options := u.Options(0)
	if options == "" {
		return header
	}
	return header + "\n" + options
}

func (u *Usage) renderRows(sb *strings.Builder, opts []*OptionSpec, width int) {
	names := make([]string, len(opts))
	col := 0
	for i, o := range opts {
		names[i] = u.optionNames(o)
		if n := utf8.RuneCountInString(names[i]); n > col {
			col = n
		}
	}
	if col > nameColCap {
		col = nameColCap
	}
	margin := strings.Repeat(" ", u.indent)
	descStart := u.indent + col + u.spacing
	descMargin := strings.Repeat(" ", descStart)
	wrapWidth := width - descStart
	if wrapWidth < minWrapWidth {
		wrapWidth = minWrapWidth
	}

	for i, o := range opts {
		sb.WriteString(margin)
		sb.WriteString(names[i])
		desc := o.Description
		if o.MinOccurs > 0 {
			if desc != "" {
				desc += " "
			}
			desc += "(required)"
		}
		if desc == "" {
			sb.WriteByte('\n')
			continue
		}
		n := utf8.RuneCountInString(names[i])
		if n > col {
			sb.WriteByte('\n')
			sb.WriteString(descMargin)
		} else {
			sb.WriteString(strings.Repeat(" ", col-n+u.spacing))
		}
		for j, line := range u.wrap(desc, wrapWidth) {
			if j > 0 {
				sb.WriteString(descMargin)
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
}

// optionNames joins the option's names shortest-first with fitting prefixes
// and appends the value placeholder.
func (u *Usage) optionNames(o *OptionSpec) string {
	all := make([]string, 0, len(o.Aliases)+1)
	all = append(all, o.Name)
	all = append(all, o.Aliases...)
	sort.SliceStable(all, func(i, j int) bool {
		return utf8.RuneCountInString(all[i]) < utf8.RuneCountInString(all[j])
	})
	styles := u.m.styles
	parts := make([]string, len(all))
	for i, n := range all {
		switch {
		case utf8.RuneCountInString(n) == 1 && styles.Has(StyleShort):
			parts[i] = "-" + n
		case styles.Has(StyleLong):
			parts[i] = "--" + n
		case styles.Has(StyleShort):
			parts[i] = "-" + n
		case styles.Has(StyleWindows):
			parts[i] = "/" + n
		default:
			parts[i] = n
		}
	}
	out := strings.Join(parts, ", ")
	if ph := placeholder(o); ph != "" {
		out += " " + ph
	}
	return out
}

func placeholder(o *OptionSpec) string {
	if !o.valueAccepting() {
		return ""
	}
	switch {
	case o.Type == TypeEnum:
		return "(" + strings.Join(o.EnumValues, "|") + ")"
	case o.Type == TypeBool:
		return "<bool>"
	case o.Type.isSigned():
		return "<int>"
	case o.Type.isUnsigned():
		return "<uint>"
	case o.Type.isFloat():
		return "<float>"
	case o.Type == TypeDecimal:
		return "<decimal>"
	case o.Type == TypeChar:
		return "<char>"
	default:
		return "<string>"
	}
}

func (u *Usage) wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	if u.optimal {
		return wrapOptimal(words, width)
	}
	return wrapGreedy(words, width)
}

// wrapGreedy packs as many words per line as fit. A word longer than the
// width gets a line of its own rather than being split.
func wrapGreedy(words []string, width int) []string {
	var lines []string
	var line strings.Builder
	used := 0
	for _, word := range words {
		n := utf8.RuneCountInString(word)
		switch {
		case used == 0:
			line.WriteString(word)
			used = n
		case used+1+n <= width:
			line.WriteByte(' ')
			line.WriteString(word)
			used += 1 + n
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			used = n
		}
	}
	lines = append(lines, line.String())
	return lines
}

// wrapOptimal breaks words into lines minimizing the summed squared trailing
// space of every line but the last, the classic minimum-raggedness dynamic
// program.
func wrapOptimal(words []string, width int) []string {
	n := len(words)
	const inf = int(^uint(0) >> 2)
	lens := make([]int, n)
	for i, w := range words {
		lens[i] = utf8.RuneCountInString(w)
	}
	cost := make([]int, n+1)
	breakAt := make([]int, n+1)
	for i := 1; i <= n; i++ {
		cost[i] = inf
		length := -1
		for j := i; j >= 1; j-- {
			length += lens[j-1] + 1
			if length > width && j < i {
				break
			}
			bad := 0
			if i < n && length <= width {
				d := width - length
				bad = d * d
			}
			if cost[j-1] != inf && cost[j-1]+bad < cost[i] {
				cost[i] = cost[j-1] + bad
				breakAt[i] = j - 1
			}
		}
		if cost[i] == inf {
			cost[i] = cost[i-1]
			breakAt[i] = i - 1
		}
	}
	var lines []string
	for end := n; end > 0; {
		start := breakAt[end]
		lines = append(lines, strings.Join(words[start:end], " "))
		end = start
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines
}
