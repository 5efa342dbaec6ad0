package model

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/lineup/pkg/errors"
)

// DefaultNumberFormat renders three significant digits.
const DefaultNumberFormat = ".3n"

// numberFormat renders numbers for labels. Two families are understood:
//
//	.<p>n   p significant digits, trailing zeros trimmed
//	.<p>g   p significant digits
//	.<p>f   p decimals
//	.<p>e   exponent notation with p decimals
//
// and go-humanize patterns such as "#,###.##".
type numberFormat struct {
	spec    string
	verb    byte
	digits  int
	pattern string
}

func parseNumberFormat(spec string) (numberFormat, error) {
	if spec == "" {
		spec = DefaultNumberFormat
	}
	if err := errors.ValidateNumberFormat(spec); err != nil {
		return numberFormat{}, err
	}
	if strings.HasPrefix(spec, "#") {
		return numberFormat{spec: spec, pattern: spec}, nil
	}
	digits, _ := strconv.Atoi(spec[1 : len(spec)-1])
	return numberFormat{spec: spec, verb: spec[len(spec)-1], digits: digits}, nil
}

func mustNumberFormat(spec string) numberFormat {
	f, err := parseNumberFormat(spec)
	if err != nil {
		f, _ = parseNumberFormat(DefaultNumberFormat)
	}
	return f
}

// format renders v. NaN renders as the empty string.
func (f numberFormat) format(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case f.pattern != "":
		return humanize.FormatFloat(f.pattern, v)
	case f.verb == 'f' || f.verb == 'e':
		return strconv.FormatFloat(v, f.verb, f.digits, 64)
	}
	s := significant(v, max(f.digits, 1))
	if f.verb == 'n' && strings.Contains(s, ".") && !strings.ContainsAny(s, "eE") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// significant renders v rounded to p significant digits in fixed notation,
// falling back to exponent notation for very large or small magnitudes.
func significant(v float64, p int) string {
	if v == 0 || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', p-1, 64)
	}
	exp := int(math.Floor(math.Log10(math.Abs(v))))
	if exp < -6 || exp >= 21 {
		return strconv.FormatFloat(v, 'e', p-1, 64)
	}
	// Rounding may carry into the next power of ten (9.996 -> 10.0).
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'e', p-1, 64), 64)
	if r != 0 {
		exp = int(math.Floor(math.Log10(math.Abs(r))))
	}
	return strconv.FormatFloat(r, 'f', max(p-1-exp, 0), 64)
}

// Spec returns the format rule as written in descriptors and dumps.
func (f numberFormat) Spec() string { return f.spec }
