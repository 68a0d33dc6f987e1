// Package tvf defines the message capability every processor exchanges
// over the bus. The framework never inspects field contents; it only
// stores and routes values that satisfy this capability.
package tvf

import "time"

// FieldType enumerates the kinds of values a Tvf field may hold.
type FieldType int

const (
	FieldTypeByte FieldType = iota
	FieldTypeUnsigned
	FieldTypeSigned
	FieldTypeFloat
	FieldTypeString
	FieldTypeBytes
	FieldTypeDate
	FieldTypeDateTime
	FieldTypeNested
)

// Error reports a field-level access failure (missing tag, wrong type, or
// a serialization problem surfaced by a concrete Tvf implementation).
type Error struct {
	Op  string
	Tag uint32
	Msg string
}

func (e *Error) Error() string {
	if e.Tag != 0 {
		return "tvf: " + e.Op + " field " + itoa(e.Tag) + ": " + e.Msg
	}
	return "tvf: " + e.Op + ": " + e.Msg
}

func itoa(u uint32) string {
	if u == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return string(buf[i:])
}

// Tvf is the capability a message payload must satisfy: default
// construction (via a concrete type's zero value), Clone, and
// field-level accessors keyed by a positive integer tag. Concrete
// implementations may substitute any container satisfying this
// interface; the framework treats it opaquely.
type Tvf interface {
	// Clone returns a deep copy of the value.
	Clone() Tvf

	GetByte(tag uint32) (byte, error)
	PutByte(tag uint32, v byte)

	GetUnsigned(tag uint32) (uint64, error)
	PutUnsigned(tag uint32, v uint64)

	GetSigned(tag uint32) (int64, error)
	PutSigned(tag uint32, v int64)

	GetFloat(tag uint32) (float64, error)
	PutFloat(tag uint32, v float64)

	GetString(tag uint32) (string, error)
	PutString(tag uint32, v string)

	GetBytes(tag uint32) ([]byte, error)
	PutBytes(tag uint32, v []byte)

	GetDate(tag uint32) (time.Time, error)
	PutDate(tag uint32, v time.Time)

	GetDateTime(tag uint32) (time.Time, error)
	PutDateTime(tag uint32, v time.Time)

	GetNested(tag uint32) (Tvf, error)
	PutNested(tag uint32, v Tvf)
}
