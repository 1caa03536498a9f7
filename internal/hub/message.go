package hub

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindGrantChange    Kind = "GRANT_CHANGE"
	KindRankChange     Kind = "RANK_CHANGE"
	KindPlayerUpdate   Kind = "PLAYER_UPDATE"
	KindPrivateMessage Kind = "PRIVATE_MESSAGE"
	KindPunishExecute  Kind = "PUNISH_EXECUTE"
	KindConnected      Kind = "CONNECTED"
	KindError          Kind = "ERROR"
)

// Message is one of the hub message kinds. Frames of any other kind decode
// to Unrecognized.
type Message interface {
	Kind() Kind
	isMessage()
}

type GrantChange struct {
	PlayerId uuid.UUID `json:"playerUuid"`
}

type RankChange struct {
	RankId string `json:"rankId"`
}

type PlayerUpdate struct {
	PlayerId uuid.UUID `json:"playerUuid"`
}

type PrivateMessage struct {
	TargetPlayer string `json:"targetPlayer"`
	SenderName   string `json:"senderName"`
	Message      string `json:"message"`
}

type PunishExecute struct {
	PlayerId       uuid.UUID `json:"playerUuid"`
	PunishmentType string    `json:"punishmentType"`
	Reason         string    `json:"reason,omitempty"`
}

// Connected is sent by the hub once a connection is accepted.
type Connected struct {
	Message string `json:"message"`
}

// ErrorMessage is sent by the hub when it rejects a frame.
type ErrorMessage struct {
	Message string `json:"message"`
}

type Unrecognized struct {
	Type string
	Raw  json.RawMessage
}

func (GrantChange) Kind() Kind    { return KindGrantChange }
func (RankChange) Kind() Kind     { return KindRankChange }
func (PlayerUpdate) Kind() Kind   { return KindPlayerUpdate }
func (PrivateMessage) Kind() Kind { return KindPrivateMessage }
func (PunishExecute) Kind() Kind  { return KindPunishExecute }
func (Connected) Kind() Kind      { return KindConnected }
func (ErrorMessage) Kind() Kind   { return KindError }
func (u Unrecognized) Kind() Kind { return Kind(u.Type) }

func (GrantChange) isMessage()    {}
func (RankChange) isMessage()     {}
func (PlayerUpdate) isMessage()   {}
func (PrivateMessage) isMessage() {}
func (PunishExecute) isMessage()  {}
func (Connected) isMessage()      {}
func (ErrorMessage) isMessage()   {}
func (Unrecognized) isMessage()   {}

// Envelope is the JSON frame exchanged with the hub. ServerType and
// ServerName identify the sending process.
type Envelope struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data,omitempty"`
	ServerType string          `json:"serverType,omitempty"`
	ServerName string          `json:"serverName,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Inbound is a decoded frame together with its sender.
type Inbound struct {
	Message    Message
	ServerType string
	ServerName string
	Timestamp  time.Time
}

var ErrMissingType = errors.New("frame has no type")

// Encode wraps msg in an envelope stamped with the sender identity.
func Encode(msg Message, serverType string, serverName string, ts time.Time) ([]byte, error) {
	var data json.RawMessage
	if u, ok := msg.(Unrecognized); ok {
		data = u.Raw
	} else {
		encoded, err := json.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", msg.Kind(), err)
		}
		data = encoded
	}

	return json.Marshal(Envelope{
		Type:       string(msg.Kind()),
		Data:       data,
		ServerType: serverType,
		ServerName: serverName,
		Timestamp:  ts.UTC(),
	})
}

// Decode parses a frame. Payload fields are read from "data" and fall back
// to the top level of the frame. Unknown kinds decode to Unrecognized
// without error.
func Decode(frame []byte) (Inbound, error) {
	var env struct {
		Type       string          `json:"type"`
		Data       json.RawMessage `json:"data"`
		ServerType string          `json:"serverType"`
		ServerName string          `json:"serverName"`
		Timestamp  *time.Time      `json:"timestamp"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return Inbound{}, fmt.Errorf("invalid frame: %w", err)
	}
	if env.Type == "" {
		return Inbound{}, ErrMissingType
	}

	data := bytes.TrimSpace(env.Data)
	if bytes.Equal(data, []byte("null")) {
		data = nil
	}

	msg, err := decodePayload(Kind(env.Type), frame, data)
	if err != nil {
		return Inbound{}, fmt.Errorf("invalid %s payload: %w", env.Type, err)
	}

	in := Inbound{Message: msg, ServerType: env.ServerType, ServerName: env.ServerName}
	if env.Timestamp != nil {
		in.Timestamp = *env.Timestamp
	}
	return in, nil
}

func decodePayload(kind Kind, frame []byte, data []byte) (Message, error) {
	switch kind {
	case KindGrantChange:
		m, err := decodeFields[GrantChange](frame, data)
		if err == nil && m.PlayerId == uuid.Nil {
			err = errors.New("missing playerUuid")
		}
		return m, err
	case KindRankChange:
		m, err := decodeFields[RankChange](frame, data)
		if err == nil && m.RankId == "" {
			err = errors.New("missing rankId")
		}
		return m, err
	case KindPlayerUpdate:
		m, err := decodeFields[PlayerUpdate](frame, data)
		if err == nil && m.PlayerId == uuid.Nil {
			err = errors.New("missing playerUuid")
		}
		return m, err
	case KindPrivateMessage:
		m, err := decodeFields[PrivateMessage](frame, data)
		if err == nil && m.TargetPlayer == "" {
			err = errors.New("missing targetPlayer")
		}
		return m, err
	case KindPunishExecute:
		m, err := decodeFields[PunishExecute](frame, data)
		if err == nil && m.PlayerId == uuid.Nil {
			err = errors.New("missing playerUuid")
		}
		return m, err
	case KindConnected:
		return decodeFields[Connected](frame, data)
	case KindError:
		return decodeFields[ErrorMessage](frame, data)
	default:
		raw := data
		if raw == nil {
			raw = frame
		}
		return Unrecognized{Type: string(kind), Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

// decodeFields reads the payload fields from the top level of the frame and
// then from data, so fields present in data take precedence.
func decodeFields[T Message](frame []byte, data []byte) (T, error) {
	var m T
	if err := json.Unmarshal(frame, &m); err != nil {
		return m, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m); err != nil {
			return m, err
		}
	}
	return m, nil
}
