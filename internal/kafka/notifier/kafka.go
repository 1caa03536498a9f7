package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"permission-sync/internal/config"
	"permission-sync/internal/repository/model"
)

const (
	topic             = "permission-sync"
	messageTypeHeader = "X-Message-Type"
)

type GrantUpdateMessage struct {
	GrantId    int64      `json:"grantId"`
	PlayerId   string     `json:"playerId"`
	RankId     string     `json:"rankId"`
	Active     bool       `json:"active"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	ChangeType ChangeType `json:"changeType"`
}

type RankUpdateMessage struct {
	Rank       *model.Rank `json:"rank,omitempty"`
	RankId     string      `json:"rankId"`
	ChangeType ChangeType  `json:"changeType"`
}

type PunishmentUpdateMessage struct {
	PunishmentId   int64                `json:"punishmentId"`
	PlayerId       string               `json:"playerId"`
	PunishmentType model.PunishmentType `json:"punishmentType"`
	Reason         string               `json:"reason"`
	ExpiresAt      *time.Time           `json:"expiresAt,omitempty"`
	ChangeType     ChangeType           `json:"changeType"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaNotifier struct {
	logger *zap.SugaredLogger
	w      messageWriter
}

func NewKafkaNotifier(ctx context.Context, wg *sync.WaitGroup, logger *zap.SugaredLogger, cfg config.KafkaConfig) Notifier {
	w := &kafka.Writer{
		Addr:        kafka.TCP(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		Topic:       topic,
		Async:       true,
		Balancer:    &kafka.LeastBytes{},
		ErrorLogger: zap.NewStdLog(zap.L()),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		logger.Info("shutting down kafka writer")
		if err := w.Close(); err != nil {
			logger.Errorw("failed to close kafka writer", "error", err)
		}
	}()

	return &kafkaNotifier{
		logger: logger,
		w:      w,
	}
}

func (k *kafkaNotifier) GrantUpdate(ctx context.Context, grant *model.Grant, changeType ChangeType) error {
	msg := GrantUpdateMessage{
		GrantId:    grant.Id,
		PlayerId:   grant.PlayerId.String(),
		RankId:     grant.RankId,
		Active:     grant.Active,
		ExpiresAt:  grant.ExpiresAt,
		ChangeType: changeType,
	}
	if err := k.publishMessage(ctx, msg.PlayerId, "GrantUpdateMessage", msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (k *kafkaNotifier) RankUpdate(ctx context.Context, rank *model.Rank, changeType ChangeType) error {
	msg := RankUpdateMessage{Rank: rank, ChangeType: changeType}
	if rank != nil {
		msg.RankId = rank.Id
	}
	if changeType == ChangeDelete {
		msg.Rank = nil
	}

	if err := k.publishMessage(ctx, msg.RankId, "RankUpdateMessage", msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (k *kafkaNotifier) PunishmentUpdate(ctx context.Context, punishment *model.Punishment, changeType ChangeType) error {
	msg := PunishmentUpdateMessage{
		PunishmentId:   punishment.Id,
		PlayerId:       punishment.PlayerId.String(),
		PunishmentType: punishment.Type,
		Reason:         punishment.Reason,
		ExpiresAt:      punishment.ExpiresAt,
		ChangeType:     changeType,
	}
	if err := k.publishMessage(ctx, msg.PlayerId, "PunishmentUpdateMessage", msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (k *kafkaNotifier) publishMessage(ctx context.Context, key string, messageType string, message any) error {
	bytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := k.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   bytes,
		Headers: []kafka.Header{{Key: messageTypeHeader, Value: []byte(messageType)}},
	}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
