// Package privacy masks personal data before it reaches logs.
package privacy

import (
	"fmt"
	"net/netip"
	"strings"

	"aprovame/pkg/document"
)

// AnonymizeIP keeps the /24 of an IPv4 address or the /48 of an IPv6 one.
// Returns "unknown" for empty input and "invalid" when the value does not parse.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()
	if addr.Is4() {
		p, _ := addr.Prefix(24)
		return p.Addr().String()
	}
	p, _ := addr.Prefix(48)
	return p.Addr().String()
}

// MaskEmail keeps the first character of the local part and the domain:
// "finance@bankme.com" becomes "f***@bankme.com".
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}

// MaskDocument keeps only the last two digits of a CPF/CNPJ.
func MaskDocument(doc string) string {
	digits := document.Normalize(doc)
	if len(digits) < 2 {
		return "***"
	}
	return fmt.Sprintf("%s%s", strings.Repeat("*", len(digits)-2), digits[len(digits)-2:])
}
