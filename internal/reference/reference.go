// Package reference encodes and decodes the opaque package reference token
// exchanged with the host. The host protocol carries exactly one string as
// the durable handle for a package across calls (find, download, install,
// uninstall); this package is the provider-private serialization that packs
// a (name, version, summary) triple into that string and recovers it later.
//
// The token is the three fields joined by Separator in a fixed order. Fields
// are assumed never to contain the separator: the vendor metadata source
// excludes it from its field alphabets, so Encode performs no validation. A
// field that does contain the separator misparses on decode; that is a known
// limitation of the format, not something this package tries to repair.
package reference

import (
	"fmt"
	"strings"
)

// Separator joins the token fields. It must not occur in any field value.
const Separator = "|"

const fieldCount = 3

// ErrMalformedToken is returned when a token does not split into the
// expected number of fields. Tokens arrive from the host and must be
// treated as untrusted; callers surface this through the host diagnostic
// channel rather than failing the whole operation.
var ErrMalformedToken = fmt.Errorf("reference: malformed package reference token")

// Encode joins name, version and summary into a single token.
func Encode(name, version, summary string) string {
	return name + Separator + version + Separator + summary
}

// Name returns the package name field of token.
func Name(token string) (string, error) {
	return field(token, 0)
}

// Version returns the version field of token.
func Version(token string) (string, error) {
	return field(token, 1)
}

// Summary returns the summary field of token.
func Summary(token string) (string, error) {
	return field(token, 2)
}

// Decode is the strict form: it returns all three fields and fails unless
// the token has exactly the expected field count. The positional accessors
// above tolerate tokens with extra fields (anything past the summary is
// simply never asked for); Decode does not.
func Decode(token string) (name, version, summary string, err error) {
	parts := strings.Split(token, Separator)
	if len(parts) != fieldCount {
		return "", "", "", fmt.Errorf("%w: got %d fields, want %d", ErrMalformedToken, len(parts), fieldCount)
	}
	return parts[0], parts[1], parts[2], nil
}

// field splits token and returns the field at idx.
func field(token string, idx int) (string, error) {
	parts := strings.Split(token, Separator)
	if idx >= len(parts) {
		return "", fmt.Errorf("%w: field %d of %q out of range", ErrMalformedToken, idx, token)
	}
	return parts[idx], nil
}
