package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// CUID identifies a capability. Most identifiers are four printable
// characters packed little-endian; some are explicit 32-bit constants.
type CUID uint32

// BaseCUID is the identity of the base capability every object answers.
const BaseCUID CUID = 0

// PackCUID packs four bytes into a CUID, first byte lowest.
func PackCUID(a, b, c, d byte) CUID {
	return CUID(a) | CUID(b)<<8 | CUID(c)<<16 | CUID(d)<<24
}

// Code packs a four character code. It panics when code is not exactly four
// bytes long; use ParseCUID for untrusted input.
func Code(code string) CUID {
	if len(code) != 4 {
		panic(fmt.Sprintf("entities: capability code %q must be 4 bytes", code))
	}
	return PackCUID(code[0], code[1], code[2], code[3])
}

// Derive returns the identity of a capability derived from base.
func Derive(base CUID) CUID {
	return base + 1
}

// Compose returns the identity of an object composed of ids.
func Compose(ids ...CUID) CUID {
	var out CUID
	for _, id := range ids {
		out ^= id
	}
	return out
}

// Bytes returns the four packed bytes, lowest first.
func (c CUID) Bytes() [4]byte {
	return [4]byte{byte(c), byte(c >> 8), byte(c >> 16), byte(c >> 24)}
}

// Printable reports whether every packed byte is printable ASCII.
func (c CUID) Printable() bool {
	for _, b := range c.Bytes() {
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}

// String renders packed codes as 'ABCD' and anything else as hex.
func (c CUID) String() string {
	if c.Printable() {
		b := c.Bytes()
		return "'" + string(b[:]) + "'"
	}
	return fmt.Sprintf("0x%08X", uint32(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c CUID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CUID) UnmarshalText(text []byte) error {
	parsed, err := ParseCUID(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCUID accepts a quoted or bare four character code ('EMTN', EMTN),
// a hexadecimal constant (0x494A8538) or a decimal value.
func ParseCUID(s string) (CUID, error) {
	s = strings.TrimSpace(s)
	if len(s) == 6 && s[0] == '\'' && s[5] == '\'' {
		return Code(s[1:5]), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid capability id %q: %w", s, err)
		}
		return CUID(v), nil
	}
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return CUID(v), nil
	}
	if len(s) == 4 {
		return Code(s), nil
	}
	return 0, fmt.Errorf("invalid capability id %q", s)
}
