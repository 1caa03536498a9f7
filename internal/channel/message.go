// Package channel implements the point-to-point plugin messaging between a
// backend and the proxy connection a player rides on.
package channel

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const DefaultName = "core:channel"

type Kind string

const (
	KindGrantChange    Kind = "GRANT_CHANGE"
	KindPrivateMessage Kind = "PRIVATE_MESSAGE"
)

var ErrUnknownKind = errors.New("unknown message kind")

type Message interface {
	Kind() Kind
	fields() []string
}

type GrantChange struct {
	PlayerId uuid.UUID
}

// PrivateMessage carries a private message to the backend hosting the
// target. FormattedMessage is what the target is shown.
type PrivateMessage struct {
	SenderId         uuid.UUID
	SenderName       string
	Message          string
	FormattedMessage string
}

func (GrantChange) Kind() Kind    { return KindGrantChange }
func (PrivateMessage) Kind() Kind { return KindPrivateMessage }

func (m GrantChange) fields() []string {
	return []string{m.PlayerId.String()}
}

func (m PrivateMessage) fields() []string {
	return []string{m.SenderId.String(), m.SenderName, m.Message, m.FormattedMessage}
}

// Encode writes msg as a sequence of writeUTF strings, starting with the
// kind.
func Encode(msg Message) ([]byte, error) {
	out, err := appendUTF(nil, string(msg.Kind()))
	if err != nil {
		return nil, err
	}
	for _, field := range msg.fields() {
		if out, err = appendUTF(out, field); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", msg.Kind(), err)
		}
	}
	return out, nil
}

// Decode parses a payload written by Encode. Trailing bytes are ignored.
func Decode(data []byte) (Message, error) {
	r := bytes.NewReader(data)

	kind, err := readUTF(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read kind: %w", err)
	}

	switch Kind(kind) {
	case KindGrantChange:
		raw, err := readUTF(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read player id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid player id: %w", err)
		}
		return GrantChange{PlayerId: id}, nil
	case KindPrivateMessage:
		var fields [4]string
		for i := range fields {
			if fields[i], err = readUTF(r); err != nil {
				return nil, fmt.Errorf("failed to read private message: %w", err)
			}
		}
		senderId, err := uuid.Parse(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid sender id: %w", err)
		}
		return PrivateMessage{
			SenderId:         senderId,
			SenderName:       fields[1],
			Message:          fields[2],
			FormattedMessage: fields[3],
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
