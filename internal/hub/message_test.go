package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPlayerId = uuid.MustParse("0d9a5b38-8f6b-4a5e-a0b5-5a1f7e9e0c11")

func TestEncode(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	frame, err := Encode(GrantChange{PlayerId: testPlayerId}, "proxy", "proxy-1", ts)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(frame, &got))
	assert.Equal(t, "GRANT_CHANGE", got["type"])
	assert.Equal(t, "proxy", got["serverType"])
	assert.Equal(t, "proxy-1", got["serverName"])
	assert.Equal(t, "2024-06-01T12:00:00Z", got["timestamp"])
	assert.Equal(t, map[string]any{"playerUuid": testPlayerId.String()}, got["data"])
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		want    Message
		wantErr bool
	}{
		{
			name:  "grant change in data",
			frame: `{"type":"GRANT_CHANGE","data":{"playerUuid":"` + testPlayerId.String() + `"}}`,
			want:  GrantChange{PlayerId: testPlayerId},
		},
		{
			name:  "grant change at top level",
			frame: `{"type":"GRANT_CHANGE","playerUuid":"` + testPlayerId.String() + `"}`,
			want:  GrantChange{PlayerId: testPlayerId},
		},
		{
			name:  "data wins over top level",
			frame: `{"type":"RANK_CHANGE","rankId":"old","data":{"rankId":"vip"}}`,
			want:  RankChange{RankId: "vip"},
		},
		{
			name:  "null data falls back to top level",
			frame: `{"type":"RANK_CHANGE","rankId":"vip","data":null}`,
			want:  RankChange{RankId: "vip"},
		},
		{
			name:  "player update",
			frame: `{"type":"PLAYER_UPDATE","data":{"playerUuid":"` + testPlayerId.String() + `"}}`,
			want:  PlayerUpdate{PlayerId: testPlayerId},
		},
		{
			name:  "private message",
			frame: `{"type":"PRIVATE_MESSAGE","data":{"targetPlayer":"Steve","senderName":"Alex","message":"hi"}}`,
			want:  PrivateMessage{TargetPlayer: "Steve", SenderName: "Alex", Message: "hi"},
		},
		{
			name:  "punish execute",
			frame: `{"type":"PUNISH_EXECUTE","data":{"playerUuid":"` + testPlayerId.String() + `","punishmentType":"BAN","reason":"cheating"}}`,
			want:  PunishExecute{PlayerId: testPlayerId, PunishmentType: "BAN", Reason: "cheating"},
		},
		{
			name:  "connected",
			frame: `{"type":"CONNECTED","message":"welcome"}`,
			want:  Connected{Message: "welcome"},
		},
		{
			name:  "error",
			frame: `{"type":"ERROR","data":{"message":"bad frame"}}`,
			want:  ErrorMessage{Message: "bad frame"},
		},
		{
			name:  "unknown kind",
			frame: `{"type":"SERVER_STATUS","data":{"online":3}}`,
			want:  Unrecognized{Type: "SERVER_STATUS", Raw: json.RawMessage(`{"online":3}`)},
		},
		{name: "missing type", frame: `{"data":{}}`, wantErr: true},
		{name: "not json", frame: `hello`, wantErr: true},
		{name: "missing player", frame: `{"type":"GRANT_CHANGE","data":{}}`, wantErr: true},
		{name: "invalid uuid", frame: `{"type":"GRANT_CHANGE","data":{"playerUuid":"nope"}}`, wantErr: true},
		{name: "missing rank", frame: `{"type":"RANK_CHANGE"}`, wantErr: true},
		{name: "missing target", frame: `{"type":"PRIVATE_MESSAGE","data":{"message":"hi"}}`, wantErr: true},
		{name: "data not an object", frame: `{"type":"RANK_CHANGE","data":"vip"}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in, err := Decode([]byte(tc.frame))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, in.Message)
		})
	}
}

func TestDecode_Envelope(t *testing.T) {
	frame, err := Encode(RankChange{RankId: "vip"}, "backend", "lobby-1", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	in, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, RankChange{RankId: "vip"}, in.Message)
	assert.Equal(t, "backend", in.ServerType)
	assert.Equal(t, "lobby-1", in.ServerName)
	assert.True(t, in.Timestamp.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)))
}

func TestDecode_MissingType(t *testing.T) {
	_, err := Decode([]byte(`{"data":{"rankId":"vip"}}`))
	assert.ErrorIs(t, err, ErrMissingType)
}
