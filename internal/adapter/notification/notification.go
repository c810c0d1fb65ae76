package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"qa-track/internal/pkg/config"
)

// Event 通知事件类型
type Event string

const (
	EventVerificationRequested Event = "verification_requested" // 注册后发送验证邮件
	EventWelcome               Event = "welcome"                // 验证成功欢迎邮件
	EventResetRequested        Event = "reset_requested"        // 密码重置邮件
	EventTestAssigned          Event = "test_assigned"          // 用例指派通知
)

// Message 通知消息
type Message struct {
	Event     Event                  `json:"event"`
	Recipient string                 `json:"recipient"`
	Subject   string                 `json:"subject"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Notifier 通知器接口
// 邮件投递由外部网关完成, 本服务只负责投递事件
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}

// NewNotifier 根据配置创建通知器
func NewNotifier(cfg *config.NotifyConfig, logger *zap.Logger) Notifier {
	if !cfg.Enabled || cfg.WebhookURL == "" {
		return &noopNotifier{logger: logger}
	}
	return &WebhookNotifier{
		webhookURL: cfg.WebhookURL,
		from:       cfg.From,
		logger:     logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WebhookNotifier 邮件网关Webhook通知器
type WebhookNotifier struct {
	webhookURL string
	from       string
	logger     *zap.Logger
	client     *http.Client
}

// Send 发送通知
func (n *WebhookNotifier) Send(ctx context.Context, msg *Message) error {
	body := map[string]interface{}{
		"from":      n.from,
		"to":        msg.Recipient,
		"subject":   msg.Subject,
		"event":     msg.Event,
		"payload":   msg.Payload,
		"timestamp": msg.Timestamp,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("邮件网关返回错误状态码: %d", resp.StatusCode)
	}

	n.logger.Info("通知发送成功",
		zap.String("event", string(msg.Event)),
		zap.String("recipient", msg.Recipient))

	return nil
}

// noopNotifier 通知禁用时的空实现
type noopNotifier struct {
	logger *zap.Logger
}

func (n *noopNotifier) Send(_ context.Context, msg *Message) error {
	n.logger.Debug("通知已禁用,跳过发送",
		zap.String("event", string(msg.Event)),
		zap.String("recipient", msg.Recipient))
	return nil
}

// Dispatch 异步发送, 失败只记日志
// 通知永远不阻塞/回滚主流程
func Dispatch(n Notifier, logger *zap.Logger, msg *Message) {
	msg.Timestamp = time.Now()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := n.Send(ctx, msg); err != nil {
			logger.Warn("通知发送失败",
				zap.String("event", string(msg.Event)),
				zap.String("recipient", msg.Recipient),
				zap.Error(err))
		}
	}()
}
