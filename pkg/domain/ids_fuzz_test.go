//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseOrderID checks that parsing never panics on arbitrary input and
// always returns either a valid ID or an error, never both.
func FuzzParseOrderID(f *testing.F) {
	f.Add("")
	f.Add("not-a-uuid")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("d2719d9c-6b5b-4a3e-9f6e-8a2f0a1b2c3d")

	f.Fuzz(func(t *testing.T, raw string) {
		if !utf8.ValidString(raw) {
			t.Skip()
		}
		id, err := ParseOrderID(raw)
		if err != nil {
			if !id.IsNil() {
				t.Errorf("error with non-nil id: %q -> %s", raw, id)
			}
			return
		}
		if id.IsNil() {
			t.Errorf("nil id accepted: %q", raw)
		}
	})
}
