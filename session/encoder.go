package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// Binary layout, version 1:
//
//	version(1) | userLen(1)+userID | roleLen(1)+role |
//	uaLen(1)+userAgent | ipLen(1)+clientIP |
//	secretHash(32) | createdAt(8) | updatedAt(8) | expiresAt(8)
//
// The rotation script in store.go walks the same layout; the three
// timestamps are fixed-width at the tail so the script can rewrite
// updatedAt/expiresAt in place.
const sessionFormatVersion = 1

var errCorruptSession = errors.New("corrupt session record")

func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersion)

	for _, field := range []struct {
		name  string
		value string
	}{
		{"userID", s.UserID},
		{"role", s.Role},
		{"userAgent", s.UserAgent},
		{"clientIP", s.ClientIP},
	} {
		if len(field.value) > 255 {
			return nil, errors.New(field.name + " too long")
		}
		buf.WriteByte(byte(len(field.value)))
		buf.WriteString(field.value)
	}

	buf.Write(s.SecretHash[:])

	for _, ts := range []int64{s.CreatedAt, s.UpdatedAt, s.ExpiresAt} {
		if err := binary.Write(&buf, binary.BigEndian, ts); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, errCorruptSession
	}
	if version != sessionFormatVersion {
		return nil, errCorruptSession
	}

	s := &Session{}

	for _, field := range []*string{&s.UserID, &s.Role, &s.UserAgent, &s.ClientIP} {
		length, err := reader.ReadByte()
		if err != nil {
			return nil, errCorruptSession
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, errCorruptSession
		}
		*field = string(raw)
	}

	if _, err := io.ReadFull(reader, s.SecretHash[:]); err != nil {
		return nil, errCorruptSession
	}

	for _, ts := range []*int64{&s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt} {
		if err := binary.Read(reader, binary.BigEndian, ts); err != nil {
			return nil, errCorruptSession
		}
	}

	if reader.Len() != 0 {
		return nil, errCorruptSession
	}

	return s, nil
}
