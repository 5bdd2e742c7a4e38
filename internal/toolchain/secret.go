package toolchain

import (
	"encoding/json"

	"go.uber.org/zap/zapcore"
)

// RedactedMarker replaces present secret values on outward surfaces.
const RedactedMarker = "[REDACTED]"

// Secret is a credential that is either present or absent.
// An absent secret is not an error until something tries to use it.
type Secret struct {
	value string
	set   bool
}

// NewSecret returns a present secret. An empty value yields an absent one.
func NewSecret(value string) Secret {
	if value == "" {
		return Secret{}
	}
	return Secret{value: value, set: true}
}

// Value returns the secret and whether it is present
func (s Secret) Value() (string, bool) {
	return s.value, s.set
}

// Present reports whether the secret was supplied
func (s Secret) Present() bool {
	return s.set
}

// Redacted returns a copy with the value replaced by RedactedMarker.
// Absent secrets stay absent.
func (s Secret) Redacted() Secret {
	if !s.set {
		return s
	}
	return Secret{value: RedactedMarker, set: true}
}

// String never reveals the value
func (s Secret) String() string {
	if !s.set {
		return "<absent>"
	}
	return RedactedMarker
}

// GoString keeps %#v from printing the value
func (s Secret) GoString() string {
	return s.String()
}

// UnmarshalText lets caarlos0/env populate the secret directly.
func (s *Secret) UnmarshalText(text []byte) error {
	*s = NewSecret(string(text))
	return nil
}

// MarshalJSON encodes a present secret as its string and an absent one as null.
func (s Secret) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

// UnmarshalJSON is the inverse of MarshalJSON
func (s *Secret) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Secret{}
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = NewSecret(v)
	return nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s Secret) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("present", s.set)
	return nil
}
