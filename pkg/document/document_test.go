package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	validCPFDoc  = "12345678909"
	validCNPJDoc = "11222333000181"
)

func TestIsValid_KnownDocuments(t *testing.T) {
	cases := []string{
		validCPFDoc,
		"123.456.789-09",
		validCNPJDoc,
		"11.222.333/0001-81",
		" 529.982.247-25 ",
	}
	for _, c := range cases {
		assert.True(t, IsValid(c), c)
	}
}

func TestIsValid_RejectsOtherLengths(t *testing.T) {
	for _, c := range []string{"", "abc", "1234567890", "123456789012", "1122233300018", "112223330001810", strings.Repeat("9", 30)} {
		assert.False(t, IsValid(c), c)
	}
}

func TestIsValid_RejectsRepeatedDigits(t *testing.T) {
	for d := '0'; d <= '9'; d++ {
		assert.False(t, IsValid(strings.Repeat(string(d), cpfLength)), "cpf %c", d)
		assert.False(t, IsValid(strings.Repeat(string(d), cnpjLength)), "cnpj %c", d)
	}
}

func TestIsValid_CheckDigitMutationFlipsResult(t *testing.T) {
	mutate := func(doc string, pos int) []string {
		var out []string
		for d := byte('0'); d <= '9'; d++ {
			if d == doc[pos] {
				continue
			}
			b := []byte(doc)
			b[pos] = d
			out = append(out, string(b))
		}
		return out
	}

	for _, pos := range []int{9, 10} {
		for _, m := range mutate(validCPFDoc, pos) {
			assert.False(t, IsValid(m), m)
		}
	}
	for _, pos := range []int{12, 13} {
		for _, m := range mutate(validCNPJDoc, pos) {
			assert.False(t, IsValid(m), m)
		}
	}
}

func TestIsValidAny(t *testing.T) {
	s := validCNPJDoc
	var nilStr *string

	assert.True(t, IsValidAny(validCPFDoc))
	assert.True(t, IsValidAny(&s))
	assert.False(t, IsValidAny(nil))
	assert.False(t, IsValidAny(nilStr))
	assert.False(t, IsValidAny(12345678909))
	assert.False(t, IsValidAny([]byte(validCPFDoc)))
}

func TestKindOfAndNormalize(t *testing.T) {
	assert.Equal(t, KindCPF, KindOf("123.456.789-09"))
	assert.Equal(t, KindCNPJ, KindOf("11.222.333/0001-81"))
	assert.Equal(t, Kind(""), KindOf("123"))
	assert.Equal(t, validCNPJDoc, Normalize("11.222.333/0001-81"))
}
