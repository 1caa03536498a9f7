package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"permission-sync/internal/repository/model"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	return nil
}

func newTestNotifier() (*kafkaNotifier, *recordingWriter) {
	w := &recordingWriter{}
	return &kafkaNotifier{logger: zap.NewNop().Sugar(), w: w}, w
}

var testPlayerId = uuid.MustParse("0d9a5b38-8f6b-4a5e-a0b5-5a1f7e9e0c11")

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaNotifier_GrantUpdate(t *testing.T) {
	n, w := newTestNotifier()
	expires := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	err := n.GrantUpdate(context.Background(), &model.Grant{
		Id: 7, PlayerId: testPlayerId, RankId: "vip", Active: true, ExpiresAt: &expires,
	}, ChangeCreate)
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, testPlayerId.String(), string(msg.Key))
	assert.Equal(t, "GrantUpdateMessage", header(msg, messageTypeHeader))

	var got GrantUpdateMessage
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, int64(7), got.GrantId)
	assert.Equal(t, "vip", got.RankId)
	assert.True(t, got.Active)
	assert.Equal(t, ChangeCreate, got.ChangeType)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, expires.Equal(*got.ExpiresAt))
}

func TestKafkaNotifier_RankUpdate(t *testing.T) {
	tests := []struct {
		name       string
		changeType ChangeType
		wantRank   bool
	}{
		{name: "update carries rank", changeType: ChangeUpdate, wantRank: true},
		{name: "delete carries id only", changeType: ChangeDelete, wantRank: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, w := newTestNotifier()

			err := n.RankUpdate(context.Background(), &model.Rank{Id: "vip", Prefix: "&a[VIP]"}, tc.changeType)
			require.NoError(t, err)
			require.Len(t, w.msgs, 1)
			assert.Equal(t, "vip", string(w.msgs[0].Key))

			var got RankUpdateMessage
			require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
			assert.Equal(t, "vip", got.RankId)
			assert.Equal(t, tc.changeType, got.ChangeType)
			assert.Equal(t, tc.wantRank, got.Rank != nil)
		})
	}
}

func TestKafkaNotifier_PunishmentUpdate(t *testing.T) {
	n, w := newTestNotifier()

	err := n.PunishmentUpdate(context.Background(), &model.Punishment{
		Id: 3, PlayerId: testPlayerId, Type: model.PunishmentBan, Reason: "cheating",
	}, ChangeCreate)
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "PunishmentUpdateMessage", header(w.msgs[0], messageTypeHeader))

	var got PunishmentUpdateMessage
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, model.PunishmentBan, got.PunishmentType)
	assert.Equal(t, "cheating", got.Reason)
}

func TestKafkaNotifier_WriteError(t *testing.T) {
	n, w := newTestNotifier()
	w.err = errors.New("broker unavailable")

	err := n.GrantUpdate(context.Background(), &model.Grant{Id: 1, PlayerId: testPlayerId}, ChangeRevoke)
	assert.ErrorIs(t, err, w.err)
}
