package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/apify"
	"github.com/seancondron/ReelLoop/internal/progress"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Manager WebSocket 连接管理器, 把 Redis 中的进度消息转发给客户端
type Manager struct {
	connections sync.Map // map[connID]*websocket.Conn
	seq         atomic.Int64
	rdb         *redis.Client
	logger      *zap.Logger
}

// NewManager 创建 WebSocket 管理器
func NewManager(rdb *redis.Client, logger *zap.Logger) *Manager {
	return &Manager{
		rdb:    rdb,
		logger: logger,
	}
}

// HandleConnection 处理 WebSocket 连接
func (m *Manager) HandleConnection(c *gin.Context) {
	taskID := c.Query("task_id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "task_id is required",
		})
		return
	}

	// 先订阅再升级, 避免漏掉第一条消息
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := progress.Channel(taskID)
	pubsub := m.rdb.Subscribe(ctx, channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		m.logger.Error("Failed to subscribe progress channel", zap.String("channel", channel), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    http.StatusServiceUnavailable,
			"message": "progress channel unavailable",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		m.logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	connID := fmt.Sprintf("conn_%d", m.seq.Add(1))
	m.connections.Store(connID, conn)
	m.logger.Info("WebSocket connection established", zap.String("conn_id", connID), zap.String("task_id", taskID))
	defer func() {
		conn.Close()
		m.connections.Delete(connID)
		m.logger.Info("WebSocket connection closed", zap.String("conn_id", connID))
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// 读循环只用于感知客户端断开
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	m.relay(ctx, conn, pubsub.Channel())
}

// relay 转发进度消息直到任务进入终态或连接断开
func (m *Manager) relay(ctx context.Context, conn *websocket.Conn, ch <-chan *redis.Message) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event apify.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				m.logger.Warn("Failed to parse progress message", zap.Error(err))
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				m.logger.Warn("Failed to send progress message", zap.Error(err))
				return
			}

			if isTerminal(event.State) {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(event.State)),
					time.Now().Add(writeWait))
				return
			}
		}
	}
}

func isTerminal(state apify.State) bool {
	switch state {
	case apify.StateSucceeded, apify.StateFailed, apify.StateTimedOut, apify.StateCancelled:
		return true
	}
	return false
}

// GetConnectionCount 获取当前连接数
func (m *Manager) GetConnectionCount() int {
	count := 0
	m.connections.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}
