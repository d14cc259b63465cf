package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	cases := map[string]string{
		"":                             "unknown",
		"unknown":                      "unknown",
		"not-an-ip":                    "invalid",
		"192.168.1.47":                 "192.168.1.0",
		"::ffff:10.1.2.3":              "10.1.2.0",
		"2001:db8:85a3::8a2e:370:7334": "2001:db8:85a3::",
	}
	for in, want := range cases {
		assert.Equal(t, want, AnonymizeIP(in), in)
	}
}

func TestAnonymizeIP_SameNetworkCollapses(t *testing.T) {
	assert.Equal(t, AnonymizeIP("203.0.113.1"), AnonymizeIP("203.0.113.254"))
	assert.NotEqual(t, AnonymizeIP("203.0.113.1"), AnonymizeIP("203.0.114.1"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "f***@bankme.com", MaskEmail("finance@bankme.com"))
	assert.Equal(t, "***", MaskEmail("no-at-sign"))
	assert.Equal(t, "***", MaskEmail("@bankme.com"))
}

func TestMaskDocument(t *testing.T) {
	assert.Equal(t, "*********09", MaskDocument("123.456.789-09"))
	assert.Equal(t, "***", MaskDocument("1"))
}
