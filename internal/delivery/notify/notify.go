package notify

import (
	"sync"

	"go.uber.org/zap"
)

// LogNotifier показывает уведомления в логе (CLI, worker)
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier создает новый LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify пишет сообщение как есть
func (n *LogNotifier) Notify(message string) {
	n.logger.Warn(message, zap.String("channel", "notification"))
}

// Collector накапливает уведомления сессии для ответа клиенту
type Collector struct {
	mu       sync.Mutex
	messages []string
}

// NewCollector создает пустой Collector
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Notify(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

// Messages возвращает копию накопленных сообщений
func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return nil
	}
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}
