package clasp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
)

// value is the canonical converted form of one option occurrence. Signed
// integrals widen to int64, unsigned to uint64, floats to float64; the width
// declared on the option only narrows the accepted range.
type value struct {
	t ValueType
	b bool
	i int64
	u uint64
	f float64
	d *apd.Decimal
	r rune
	s string
}

// Typed extractors handed to the option builders.

func getBool(v value) bool { return v.b }

func getString(v value) string { return v.s }

func getChar(v value) rune { return v.r }

func getInt(v value) int64 { return v.i }

func getInt8(v value) int8 { return int8(v.i) }

func getInt16(v value) int16 { return int16(v.i) }

func getInt32(v value) int32 { return int32(v.i) }

func getUint(v value) uint64 { return v.u }

func getUint8(v value) uint8 { return uint8(v.u) }

func getUint16(v value) uint16 { return uint16(v.u) }

func getUint32(v value) uint32 { return uint32(v.u) }

func getFloat(v value) float64 { return v.f }

func getFloat32(v value) float32 { return float32(v.f) }

func getDecimal(v value) *apd.Decimal { return v.d }

// convError is a conversion failure: its kind separates malformed text from
// well-formed text that exceeds the admissible range.
type convError struct {
	kind ErrorKind
	msg  string
}

// convertValue converts raw option text into the option's domain and checks
// any declared bounds. display is the option name the way the user wrote it,
// used in messages.
func convertValue(opt *OptionSpec, display, text string) (value, *convError) {
	switch {
	case opt.Type == TypeBool:
		return convertBool(display, text)
	case opt.Type.isSigned():
		return convertSigned(opt, display, text)
	case opt.Type.isUnsigned():
		return convertUnsigned(opt, display, text)
	case opt.Type.isFloat():
		return convertFloat(opt, display, text)
	case opt.Type == TypeDecimal:
		return convertDecimal(opt, display, text)
	case opt.Type == TypeChar:
		return convertChar(display, text)
	case opt.Type == TypeEnum:
		return convertEnum(opt, display, text)
	default:
		return value{t: TypeString, s: text}, nil
	}
}

func convertBool(display, text string) (value, *convError) {
	switch {
	case strings.EqualFold(text, "true"):
		return value{t: TypeBool, b: true}, nil
	case strings.EqualFold(text, "false"):
		return value{t: TypeBool, b: false}, nil
	}
	return value{}, &convError{
		kind: ErrorKindInvalidFormat,
		msg:  fmt.Sprintf("invalid boolean value %q for option %s, expected true or false", text, display),
	}
}

type scanStatus uint8

const (
	scanOK scanStatus = iota
	scanMalformed
	scanOverflow
)

// scanMagnitude parses an optional sign followed by decimal or 0x-prefixed
// hexadecimal digits into a uint64 magnitude. Parsing is plain ASCII
// accumulation with an explicit overflow guard, so the two failure classes
// stay distinguishable.
func scanMagnitude(text string) (neg bool, mag uint64, st scanStatus) {
	i := 0
	if i < len(text) && (text[i] == '-' || text[i] == '+') {
		neg = text[i] == '-'
		i++
	}
	base := uint64(10)
	if i+1 < len(text) && text[i] == '0' && (text[i+1] == 'x' || text[i+1] == 'X') {
		base = 16
		i += 2
	}
	if i >= len(text) {
		return false, 0, scanMalformed
	}
	for ; i < len(text); i++ {
		c := text[i]
		var digit uint64
		switch {
		case c >= '0' && c <= '9':
			digit = uint64(c - '0')
		case base == 16 && c >= 'a' && c <= 'f':
			digit = uint64(c-'a') + 10
		case base == 16 && c >= 'A' && c <= 'F':
			digit = uint64(c-'A') + 10
		default:
			return false, 0, scanMalformed
		}
		if digit >= base {
			return false, 0, scanMalformed
		}
		if mag > (math.MaxUint64-digit)/base {
			return neg, 0, scanOverflow
		}
		mag = mag*base + digit
	}
	return neg, mag, scanOK
}

func convertSigned(opt *OptionSpec, display, text string) (value, *convError) {
	neg, mag, st := scanMagnitude(text)
	if st == scanMalformed {
		return value{}, malformedNumber(display, text)
	}
	bits := opt.Type.bits()
	natMax := int64(1)<<(bits-1) - 1
	lo, hi := -natMax-1, natMax
	if opt.hasMin {
		lo = opt.minVal.i
	}
	if opt.hasMax {
		hi = opt.maxVal.i
	}
	if st == scanOverflow {
		return value{}, signedRange(display, text, lo, hi)
	}
	var val int64
	if neg {
		if mag > uint64(natMax)+1 {
			return value{}, signedRange(display, text, lo, hi)
		}
		val = -int64(mag)
	} else {
		if mag > uint64(natMax) {
			return value{}, signedRange(display, text, lo, hi)
		}
		val = int64(mag)
	}
	if val < lo || val > hi {
		return value{}, signedRange(display, text, lo, hi)
	}
	return value{t: opt.Type, i: val}, nil
}

func convertUnsigned(opt *OptionSpec, display, text string) (value, *convError) {
	neg, mag, st := scanMagnitude(text)
	if st == scanMalformed {
		return value{}, malformedNumber(display, text)
	}
	bits := opt.Type.bits()
	hi := uint64(math.MaxUint64)
	if bits < 64 {
		hi = uint64(1)<<bits - 1
	}
	lo := uint64(0)
	if opt.hasMin {
		lo = opt.minVal.u
	}
	if opt.hasMax {
		hi = opt.maxVal.u
	}
	if st == scanOverflow || (neg && mag > 0) || mag < lo || mag > hi {
		return value{}, unsignedRange(display, text, lo, hi)
	}
	return value{t: opt.Type, u: mag}, nil
}

func convertFloat(opt *OptionSpec, display, text string) (value, *convError) {
	bits := 64
	if opt.Type == TypeFloat32 {
		bits = 32
	}
	val, err := strconv.ParseFloat(text, bits)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return value{}, &convError{
				kind: ErrorKindOverflow,
				msg:  fmt.Sprintf("value %q for option %s is out of range for %s", text, display, opt.Type),
			}
		}
		return value{}, malformedNumber(display, text)
	}
	if (opt.hasMin && val < opt.minVal.f) || (opt.hasMax && val > opt.maxVal.f) {
		lo := strconv.FormatFloat(opt.minVal.f, 'g', -1, 64)
		hi := strconv.FormatFloat(opt.maxVal.f, 'g', -1, 64)
		return value{}, &convError{
			kind: ErrorKindOverflow,
			msg:  fmt.Sprintf("value %q for option %s is out of range [%s, %s]", text, display, lo, hi),
		}
	}
	return value{t: opt.Type, f: val}, nil
}

func convertDecimal(opt *OptionSpec, display, text string) (value, *convError) {
	d, _, err := apd.NewFromString(text)
	if err != nil {
		return value{}, malformedNumber(display, text)
	}
	if (opt.hasMin && d.Cmp(opt.minVal.d) < 0) || (opt.hasMax && d.Cmp(opt.maxVal.d) > 0) {
		return value{}, &convError{
			kind: ErrorKindOverflow,
			msg: fmt.Sprintf("value %q for option %s is out of range [%s, %s]",
				text, display, opt.minVal.d, opt.maxVal.d),
		}
	}
	return value{t: TypeDecimal, d: d}, nil
}

func convertChar(display, text string) (value, *convError) {
	r, size := utf8.DecodeRuneInString(text)
	bad := text == "" || size != len(text) || (r == utf8.RuneError && size == 1)
	if bad {
		return value{}, &convError{
			kind: ErrorKindInvalidFormat,
			msg:  fmt.Sprintf("value %q for option %s must be exactly one character", text, display),
		}
	}
	return value{t: TypeChar, r: r}, nil
}

func convertEnum(opt *OptionSpec, display, text string) (value, *convError) {
	for _, allowed := range opt.EnumValues {
		if strings.EqualFold(text, allowed) {
			return value{t: TypeEnum, s: allowed}, nil
		}
	}
	return value{}, &convError{
		kind: ErrorKindInvalidFormat,
		msg: fmt.Sprintf("invalid value %q for option %s, expected one of: %s",
			text, display, strings.Join(opt.EnumValues, ", ")),
	}
}

func malformedNumber(display, text string) *convError {
	return &convError{
		kind: ErrorKindInvalidFormat,
		msg:  fmt.Sprintf("invalid numeric value %q for option %s", text, display),
	}
}

func signedRange(display, text string, lo, hi int64) *convError {
	return &convError{
		kind: ErrorKindOverflow,
		msg: fmt.Sprintf("value %q for option %s is out of range [%s, %s]",
			text, display, strconv.FormatInt(lo, 10), strconv.FormatInt(hi, 10)),
	}
}

func unsignedRange(display, text string, lo, hi uint64) *convError {
	return &convError{
		kind: ErrorKindOverflow,
		msg: fmt.Sprintf("value %q for option %s is out of range [%s, %s]",
			text, display, strconv.FormatUint(lo, 10), strconv.FormatUint(hi, 10)),
	}
}

// checkEnumValues validates an enum declaration: at least one value, no
// blanks, no case-insensitive duplicates.
func checkEnumValues(name string, values []string) []string {
	if len(values) == 0 {
		configPanic(name, "enum option declared without values")
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			configPanic(name, "enum option declared with an empty value")
		}
		for _, seen := range out {
			if strings.EqualFold(seen, v) {
				configPanic(name, "duplicate enum value %q", v)
			}
		}
		out = append(out, v)
	}
	return out
}
