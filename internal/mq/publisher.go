package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/config"
	"github.com/seancondron/ReelLoop/internal/models"
)

// 事件类型
const (
	EventPostSaved   = "post.saved"
	EventPostDeleted = "post.deleted"
)

// PostEvent 帖子变更事件
type PostEvent struct {
	Event      string       `json:"event"`
	PostID     string       `json:"post_id"`
	Platform   string       `json:"platform,omitempty"`
	URL        string       `json:"url,omitempty"`
	Restricted bool         `json:"restricted,omitempty"`
	Post       *models.Post `json:"post,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewPostSavedEvent 帖子保存事件
func NewPostSavedEvent(post *models.Post, restricted bool) *PostEvent {
	return &PostEvent{
		Event:      EventPostSaved,
		PostID:     post.ID,
		Platform:   post.Source.String(),
		URL:        post.URL,
		Restricted: restricted,
		Post:       post,
		OccurredAt: time.Now().UTC(),
	}
}

// NewPostDeletedEvent 帖子删除事件
func NewPostDeletedEvent(id string) *PostEvent {
	return &PostEvent{
		Event:      EventPostDeleted,
		PostID:     id,
		OccurredAt: time.Now().UTC(),
	}
}

// Encode 序列化为消息体
func (e *PostEvent) Encode() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return body, nil
}

// Publisher RabbitMQ 发布器
type Publisher struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	cfg       *config.RabbitMQConfig
	mu        sync.Mutex
	isClosing atomic.Bool
	logger    *zap.Logger
}

// NewPublisher 创建发布器
func NewPublisher(cfg *config.RabbitMQConfig, logger *zap.Logger) (*Publisher, error) {
	p := &Publisher{
		cfg:    cfg,
		logger: logger,
	}

	if err := p.connect(); err != nil {
		return nil, err
	}

	// 启动重连监听
	go p.watchConnection()

	return p, nil
}

// connect 连接到 RabbitMQ
func (p *Publisher) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	// 声明交换机
	err = channel.ExchangeDeclare(
		p.cfg.Exchange, // 交换机名称
		"direct",       // 类型
		true,           // 持久化
		false,          // 自动删除
		false,          // 内部
		false,          // 不等待
		nil,            // 参数
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	// 声明并绑定队列
	if _, err = channel.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err = channel.QueueBind(p.cfg.Queue, p.cfg.RoutingKey, p.cfg.Exchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	p.conn = conn
	p.channel = channel

	p.logger.Info("Connected to RabbitMQ", zap.String("exchange", p.cfg.Exchange))
	return nil
}

// watchConnection 监听连接关闭并重连
func (p *Publisher) watchConnection() {
	for {
		p.mu.Lock()
		conn := p.conn
		p.mu.Unlock()

		if p.isClosing.Load() {
			return
		}

		closeC := conn.NotifyClose(make(chan *amqp.Error, 1))
		if err := <-closeC; err != nil {
			p.logger.Warn("RabbitMQ connection closed, reconnecting", zap.Error(err))
		}

		if p.isClosing.Load() {
			return
		}

		for i := 0; i < 5; i++ {
			if err := p.connect(); err != nil {
				p.logger.Warn("RabbitMQ reconnect failed", zap.Int("attempt", i+1), zap.Error(err))
				time.Sleep(time.Duration(i+1) * time.Second)
				continue
			}
			break
		}
	}
}

// PublishPostEvent 发布帖子事件
func (p *Publisher) PublishPostEvent(ctx context.Context, event *PostEvent) error {
	body, err := event.Encode()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.channel.IsClosed() {
		return fmt.Errorf("channel is not available")
	}

	err = p.channel.PublishWithContext(ctx,
		p.cfg.Exchange,   // 交换机
		p.cfg.RoutingKey, // 路由键
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Type:         event.Event,
			Body:         body,
			Timestamp:    event.OccurredAt,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug("Post event published", zap.String("event", event.Event), zap.String("post_id", event.PostID))
	return nil
}

// Close 关闭连接
func (p *Publisher) Close() error {
	p.isClosing.Store(true)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Ping 检查通道是否可用
func (p *Publisher) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.channel.IsClosed() {
		return fmt.Errorf("channel is not available")
	}
	return nil
}
