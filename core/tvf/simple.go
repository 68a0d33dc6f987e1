package tvf

import "time"

// Simple is a minimal, map-backed Tvf implementation used by the demo
// processors and the test suite. It stores every field as an `any` and
// converts on access.
type Simple struct {
	fields map[uint32]any
}

// NewSimple returns an empty Simple message.
func NewSimple() *Simple {
	return &Simple{fields: make(map[uint32]any)}
}

func (s *Simple) ensure() map[uint32]any {
	if s.fields == nil {
		s.fields = make(map[uint32]any)
	}
	return s.fields
}

func (s *Simple) Clone() Tvf {
	clone := NewSimple()
	for k, v := range s.fields {
		switch x := v.(type) {
		case []byte:
			clone.fields[k] = append([]byte(nil), x...)
		case Tvf:
			clone.fields[k] = x.Clone()
		default:
			clone.fields[k] = v
		}
	}
	return clone
}

func (s *Simple) get(op string, tag uint32) (any, error) {
	v, ok := s.fields[tag]
	if !ok {
		return nil, &Error{Op: op, Tag: tag, Msg: "field not found"}
	}
	return v, nil
}

func (s *Simple) GetByte(tag uint32) (byte, error) {
	v, err := s.get("GetByte", tag)
	if err != nil {
		return 0, err
	}
	b, ok := v.(byte)
	if !ok {
		return 0, &Error{Op: "GetByte", Tag: tag, Msg: "type mismatch"}
	}
	return b, nil
}

func (s *Simple) PutByte(tag uint32, v byte) { s.ensure()[tag] = v }

func (s *Simple) GetUnsigned(tag uint32) (uint64, error) {
	v, err := s.get("GetUnsigned", tag)
	if err != nil {
		return 0, err
	}
	u, ok := v.(uint64)
	if !ok {
		return 0, &Error{Op: "GetUnsigned", Tag: tag, Msg: "type mismatch"}
	}
	return u, nil
}

func (s *Simple) PutUnsigned(tag uint32, v uint64) { s.ensure()[tag] = v }

func (s *Simple) GetSigned(tag uint32) (int64, error) {
	v, err := s.get("GetSigned", tag)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int64)
	if !ok {
		return 0, &Error{Op: "GetSigned", Tag: tag, Msg: "type mismatch"}
	}
	return i, nil
}

func (s *Simple) PutSigned(tag uint32, v int64) { s.ensure()[tag] = v }

func (s *Simple) GetFloat(tag uint32) (float64, error) {
	v, err := s.get("GetFloat", tag)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &Error{Op: "GetFloat", Tag: tag, Msg: "type mismatch"}
	}
	return f, nil
}

func (s *Simple) PutFloat(tag uint32, v float64) { s.ensure()[tag] = v }

func (s *Simple) GetString(tag uint32) (string, error) {
	v, err := s.get("GetString", tag)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", &Error{Op: "GetString", Tag: tag, Msg: "type mismatch"}
	}
	return str, nil
}

func (s *Simple) PutString(tag uint32, v string) { s.ensure()[tag] = v }

func (s *Simple) GetBytes(tag uint32) ([]byte, error) {
	v, err := s.get("GetBytes", tag)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, &Error{Op: "GetBytes", Tag: tag, Msg: "type mismatch"}
	}
	return b, nil
}

func (s *Simple) PutBytes(tag uint32, v []byte) { s.ensure()[tag] = v }

func (s *Simple) GetDate(tag uint32) (time.Time, error) {
	return s.getTime("GetDate", tag)
}

func (s *Simple) PutDate(tag uint32, v time.Time) { s.ensure()[tag] = v }

func (s *Simple) GetDateTime(tag uint32) (time.Time, error) {
	return s.getTime("GetDateTime", tag)
}

func (s *Simple) PutDateTime(tag uint32, v time.Time) { s.ensure()[tag] = v }

func (s *Simple) getTime(op string, tag uint32) (time.Time, error) {
	v, err := s.get(op, tag)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, &Error{Op: op, Tag: tag, Msg: "type mismatch"}
	}
	return t, nil
}

func (s *Simple) GetNested(tag uint32) (Tvf, error) {
	v, err := s.get("GetNested", tag)
	if err != nil {
		return nil, err
	}
	n, ok := v.(Tvf)
	if !ok {
		return nil, &Error{Op: "GetNested", Tag: tag, Msg: "type mismatch"}
	}
	return n, nil
}

func (s *Simple) PutNested(tag uint32, v Tvf) { s.ensure()[tag] = v }
