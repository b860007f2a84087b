package notify

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectToast is the per-session toast subject prefix (+ ".<session_id>").
const SubjectToast = "notify.toast"

// NATSNotifier publishes toasts over NATS so every frontend instance serving
// the session can forward them.
type NATSNotifier struct {
	conn   *nats.Conn
	logger *log.Logger
}

// Config holds NATS connection settings.
type Config struct {
	URL           string
	Name          string
	ReconnectWait time.Duration
	MaxReconnects int
}

// DefaultConfig returns sensible defaults with infinite reconnects.
func DefaultConfig(url string) Config {
	return Config{
		URL:           url,
		Name:          "postro-api",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// NewNATSNotifier connects to NATS and returns a ready notifier.
func NewNATSNotifier(cfg Config, logger *log.Logger) (*NATSNotifier, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Printf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Printf("nats reconnected to %s", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}
	return &NATSNotifier{conn: nc, logger: logger}, nil
}

// Toast publishes a transient message for a session. Failures are logged and
// dropped: a lost toast is cosmetic.
func (n *NATSNotifier) Toast(_ context.Context, sessionID, message string) {
	data, err := json.Marshal(Toast{
		Message:    message,
		DurationMS: ToastDuration.Milliseconds(),
	})
	if err != nil {
		return
	}
	if err := n.conn.Publish(SubjectToast+"."+sessionID, data); err != nil {
		n.logger.Printf("notify: toast session=%s error=%v", sessionID, err)
	}
}

// SubscribeToasts invokes handler for every toast published for the session,
// returning a cancel function that drains the subscription.
func (n *NATSNotifier) SubscribeToasts(sessionID string, handler func(Toast)) (func(), error) {
	sub, err := n.conn.Subscribe(SubjectToast+"."+sessionID, func(msg *nats.Msg) {
		var toast Toast
		if err := json.Unmarshal(msg.Data, &toast); err != nil {
			n.logger.Printf("notify: bad toast payload session=%s error=%v", sessionID, err)
			return
		}
		handler(toast)
	})
	if err != nil {
		return nil, err
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil {
			n.logger.Printf("notify: unsubscribe session=%s error=%v", sessionID, err)
		}
	}, nil
}

// Close drains and closes the NATS connection.
func (n *NATSNotifier) Close() {
	n.conn.Close()
}
