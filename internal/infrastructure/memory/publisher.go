package memory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/accounts"
)

// NoopPublisher logs activation links instead of sending them. Handy in dev
// where no broker runs: the link can be copied from the log.
type NoopPublisher struct {
	lg zerolog.Logger
}

func NewNoopPublisher(lg zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{lg: lg}
}

func (p *NoopPublisher) PublishActivation(ctx context.Context, evt accounts.ActivationEvent) error {
	p.lg.Info().
		Str("user_id", evt.UserID).
		Str("activation_url", evt.URL).
		Msg("activation event (noop publisher)")
	return nil
}
