package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/accounts"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const (
	DefaultExchange      = "accounts.events"
	RoutingKeyActivation = "accounts.activation.requested"

	publishTimeout = 2 * time.Second
)

// activationMessage is the wire payload consumed by the mail sender.
type activationMessage struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	URL        string    `json:"url"`
	OccurredAt time.Time `json:"occurred_at"`
}

// session is one connection with a confirm-mode channel.
type session struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	confirms <-chan amqp.Confirmation
	returns  <-chan amqp.Return
}

func (s *session) alive() bool {
	return s != nil && !s.conn.IsClosed() && !s.ch.IsClosed()
}

func (s *session) close() {
	if s == nil {
		return
	}
	_ = s.ch.Close()
	_ = s.conn.Close()
}

// Publisher sends account events to a durable topic exchange. Messages are
// published mandatory in confirm mode, so an unroutable or nacked message is
// an error. A broken connection is redialled on the next publish.
type Publisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	sess *session
}

func NewPublisher(url string) (*Publisher, error) {
	p := &Publisher{url: url, exchange: DefaultExchange}
	sess, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.sess = sess
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sess.close()
	p.sess = nil
	return nil
}

func (p *Publisher) PublishActivation(ctx context.Context, evt accounts.ActivationEvent) error {
	msg, err := newActivationPublishing(evt, time.Now().UTC())
	if err != nil {
		return domain.ErrInternal(err)
	}
	if err := p.publish(ctx, RoutingKeyActivation, msg); err != nil {
		return domain.ErrRabbitUnavailable(err)
	}
	return nil
}

func newActivationPublishing(evt accounts.ActivationEvent, now time.Time) (amqp.Publishing, error) {
	id := uuid.NewString()
	body, err := json.Marshal(activationMessage{
		EventID:    id,
		UserID:     evt.UserID,
		Email:      evt.Email,
		URL:        evt.URL,
		OccurredAt: now,
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal activation event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Timestamp:    now,
		Body:         body,
	}, nil
}

func (p *Publisher) dial() (*session, error) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	s := &session{conn: conn, ch: ch}

	// durable, not auto-deleted, not internal, wait for the reply
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		s.close()
		return nil, fmt.Errorf("rabbitmq declare %s: %w", p.exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		s.close()
		return nil, fmt.Errorf("rabbitmq confirm mode: %w", err)
	}
	s.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	s.returns = ch.NotifyReturn(make(chan amqp.Return, 1))
	return s, nil
}

func (p *Publisher) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishTimeout)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.sess.alive() {
		p.sess.close()
		sess, err := p.dial()
		if err != nil {
			p.sess = nil
			return err
		}
		p.sess = sess
	}
	s := p.sess
	s.discardPending()

	tag := s.ch.GetNextPublishSeqNo()
	if err := s.ch.PublishWithContext(ctx, p.exchange, key, true, false, msg); err != nil {
		s.close()
		p.sess = nil
		return fmt.Errorf("rabbitmq publish %s: %w", key, err)
	}
	return s.awaitConfirm(ctx, key, tag, msg.MessageId)
}

// discardPending drops confirms and returns left over from a publish that
// timed out.
func (s *session) discardPending() {
	for {
		select {
		case <-s.confirms:
		case <-s.returns:
		default:
			return
		}
	}
}

// awaitConfirm waits for the broker's verdict on the publish with delivery
// tag tag. Confirms for other tags and returns for other messages belong to
// earlier publishes that timed out and are skipped. For an unroutable
// mandatory message basic.return arrives before basic.ack.
func (s *session) awaitConfirm(ctx context.Context, key string, tag uint64, msgID string) error {
	var returned *amqp.Return
	takeReturn := func(ret amqp.Return) {
		if ret.MessageId == msgID {
			returned = &ret
		}
	}
	unroutable := func() error {
		return fmt.Errorf("rabbitmq unroutable %s: %d %s", key, returned.ReplyCode, returned.ReplyText)
	}

	for {
		select {
		case ret := <-s.returns:
			takeReturn(ret)
		case conf := <-s.confirms:
			if conf.DeliveryTag != tag {
				continue
			}
			if returned == nil {
				select {
				case ret := <-s.returns:
					takeReturn(ret)
				default:
				}
			}
			if returned != nil {
				return unroutable()
			}
			if !conf.Ack {
				return fmt.Errorf("rabbitmq nack %s: delivery tag %d", key, conf.DeliveryTag)
			}
			return nil
		case <-ctx.Done():
			if returned != nil {
				return unroutable()
			}
			return fmt.Errorf("rabbitmq publish %s: %w", key, ctx.Err())
		}
	}
}
