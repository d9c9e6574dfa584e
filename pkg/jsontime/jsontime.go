// Package jsontime provides Milli, a timestamp that serializes as Unix
// milliseconds in every codec agent data passes through: JSON and YAML
// for exports and listings, msgpack for state snapshots. The zero time
// maps to 0 in all of them, so "never" survives a roundtrip.
package jsontime

import (
	"encoding/json"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Milli is a time.Time carried on the wire as epoch milliseconds.
type Milli time.Time

// FromUnixMilli converts an epoch-millisecond value. 0 yields the zero
// Milli.
func FromUnixMilli(ms int64) Milli {
	if ms == 0 {
		return Milli{}
	}
	return Milli(time.UnixMilli(ms))
}

// Time returns the underlying time.Time.
func (m Milli) Time() time.Time {
	return time.Time(m)
}

// UnixMilli returns the time as epoch milliseconds, 0 for the zero
// time.
func (m Milli) UnixMilli() int64 {
	if m.IsZero() {
		return 0
	}
	return time.Time(m).UnixMilli()
}

// IsZero reports whether m is the zero instant.
func (m Milli) IsZero() bool {
	return time.Time(m).IsZero()
}

// MarshalJSON implements json.Marshaler.
func (m Milli) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.UnixMilli())
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Milli) UnmarshalJSON(b []byte) error {
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	*m = FromUnixMilli(ms)
	return nil
}

// MarshalYAML implements yaml marshaling for listings.
func (m Milli) MarshalYAML() (any, error) {
	return m.UnixMilli(), nil
}

// UnmarshalYAML implements yaml unmarshaling.
func (m *Milli) UnmarshalYAML(unmarshal func(any) error) error {
	var ms int64
	if err := unmarshal(&ms); err != nil {
		return err
	}
	*m = FromUnixMilli(ms)
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (m Milli) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeInt64(m.UnixMilli())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (m *Milli) DecodeMsgpack(dec *msgpack.Decoder) error {
	ms, err := dec.DecodeInt64()
	if err != nil {
		return err
	}
	*m = FromUnixMilli(ms)
	return nil
}
