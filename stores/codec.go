package stores

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/taskhive/taskauth"
)

const userRecordVersionV1 = 1

const (
	flagBlocked   = 1 << 0
	flagResetUsed = 1 << 1
)

func encodeUserRecord(user *taskauth.User) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(userRecordVersionV1)

	var flags byte
	if user.Blocked {
		flags |= flagBlocked
	}
	if user.ResetUsed {
		flags |= flagResetUsed
	}
	buf.WriteByte(flags)

	if err := binary.Write(&buf, binary.BigEndian, int32(user.Age)); err != nil {
		return nil, err
	}
	for _, ts := range []time.Time{user.ResetExpiry, user.CreatedAt, user.UpdatedAt} {
		var unix int64
		if !ts.IsZero() {
			unix = ts.Unix()
		}
		if err := binary.Write(&buf, binary.BigEndian, unix); err != nil {
			return nil, err
		}
	}

	for _, field := range []string{user.ID, user.Email, user.Name, user.PasswordHash, user.ResetToken} {
		if len(field) > 65535 {
			return nil, errors.New("user record field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeUserRecord(data []byte) (*taskauth.User, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != userRecordVersionV1 {
		return nil, errors.New("invalid user record version")
	}

	flags, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	user := &taskauth.User{
		Blocked:   flags&flagBlocked != 0,
		ResetUsed: flags&flagResetUsed != 0,
	}

	var age int32
	if err := binary.Read(reader, binary.BigEndian, &age); err != nil {
		return nil, err
	}
	user.Age = int(age)

	times := make([]time.Time, 3)
	for i := range times {
		var unix int64
		if err := binary.Read(reader, binary.BigEndian, &unix); err != nil {
			return nil, err
		}
		if unix != 0 {
			times[i] = time.Unix(unix, 0).UTC()
		}
	}
	user.ResetExpiry, user.CreatedAt, user.UpdatedAt = times[0], times[1], times[2]

	fields := make([]string, 5)
	for i := range fields {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		fields[i] = string(raw)
	}
	user.ID, user.Email, user.Name, user.PasswordHash, user.ResetToken =
		fields[0], fields[1], fields[2], fields[3], fields[4]

	return user, nil
}
