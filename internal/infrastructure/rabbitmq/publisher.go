package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sanosuguru/go-show-booking/internal/config"
	"github.com/sanosuguru/go-show-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-booking/internal/pkg/metrics"
)

// Channel は Publisher が使用する amqp.Channel のメソッド
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher は予約ライフサイクルイベントを topic exchange に配信する
// ルーティングキーはイベント種別（booking.confirmed 等）
type Publisher struct {
	conn     *amqp.Connection
	ch       Channel
	exchange string
	metrics  *metrics.Metrics
	newID    func() string
	now      func() time.Time
}

// Dial はブローカーに接続し、exchange を宣言した Publisher を返す
func Dial(cfg *config.RabbitMQConfig, m *metrics.Metrics) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗しました: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗しました: %w", err)
	}
	p, err := NewPublisher(ch, cfg.Exchange, m)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher は既存のチャネルから Publisher を作成する
func NewPublisher(ch Channel, exchange string, m *metrics.Metrics) (*Publisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("exchange宣言に失敗しました: %w", err)
	}
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		metrics:  m,
		newID:    uuid.NewString,
		now:      time.Now,
	}, nil
}

// Publish はイベントを永続メッセージとして配信する
func (p *Publisher) Publish(ctx context.Context, ev booking.LifecycleEvent) error {
	if ev.ID == "" {
		ev.ID = p.newID()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		p.metrics.RecordEventPublished(string(ev.Type), false)
		return fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, string(ev.Type), false, false, msg); err != nil {
		p.metrics.RecordEventPublished(string(ev.Type), false)
		return fmt.Errorf("イベント配信に失敗: %w", err)
	}
	p.metrics.RecordEventPublished(string(ev.Type), true)
	return nil
}

// Close はチャネルと接続を閉じる
func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
