// Package document validates Brazilian taxpayer identifiers (CPF and CNPJ).
//
// Validation strips every non-digit character first, so formatted input such as
// "123.456.789-09" or "11.222.333/0001-81" is accepted the same as the bare digits.
package document

import "strings"

// Kind names the identifier family of a document.
type Kind string

const (
	KindCPF  Kind = "cpf"
	KindCNPJ Kind = "cnpj"
)

const (
	cpfLength  = 11
	cnpjLength = 14
)

var (
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Normalize returns the digits of s in order, discarding everything else.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// KindOf reports which family the digits of s belong to by length alone.
// It returns "" for lengths other than 11 or 14.
func KindOf(s string) Kind {
	switch len(Normalize(s)) {
	case cpfLength:
		return KindCPF
	case cnpjLength:
		return KindCNPJ
	default:
		return ""
	}
}

// IsValid reports whether s is a checksum-valid CPF or CNPJ.
func IsValid(s string) bool {
	digits := toDigits(Normalize(s))
	switch len(digits) {
	case cpfLength:
		return !repeated(digits) && validCPF(digits)
	case cnpjLength:
		return !repeated(digits) && validCNPJ(digits)
	default:
		return false
	}
}

// IsValidAny is IsValid for untyped input; anything other than a string
// (or *string) is invalid.
func IsValidAny(v any) bool {
	switch s := v.(type) {
	case string:
		return IsValid(s)
	case *string:
		return s != nil && IsValid(*s)
	default:
		return false
	}
}

func validCPF(d []int) bool {
	first := checkDigit(d[:9], descending(10, 9))
	if first != d[9] {
		return false
	}
	second := checkDigit(d[:10], descending(11, 10))
	return second == d[10]
}

func validCNPJ(d []int) bool {
	first := checkDigit(d[:12], cnpjFirstWeights)
	if first != d[12] {
		return false
	}
	second := checkDigit(d[:13], cnpjSecondWeights)
	return second == d[13]
}

// checkDigit applies the mod-11 rule: remainders 0 and 1 map to 0,
// anything else to 11-remainder.
func checkDigit(payload, weights []int) int {
	sum := 0
	for i, v := range payload {
		sum += v * weights[i]
	}
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

func descending(from, n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = from - i
	}
	return w
}

func repeated(d []int) bool {
	for _, v := range d[1:] {
		if v != d[0] {
			return false
		}
	}
	return true
}

func toDigits(s string) []int {
	d := make([]int, len(s))
	for i := range len(s) {
		d[i] = int(s[i] - '0')
	}
	return d
}
