package verification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-verify-mail/internal/audit"
	"github.com/go-verify-mail/internal/config"
	"github.com/go-verify-mail/internal/domain"
	"github.com/go-verify-mail/internal/pkg/id"
)

// Transport delivers a message. Implementations may block on the network.
type Transport interface {
	Send(ctx context.Context, msg domain.Message) error
}

// Dispatcher sends verification emails. Dispatch is fire-and-forget: the
// transport runs on its own goroutine and its outcome is only logged.
// There is no deduplication; every call is an independent send.
type Dispatcher struct {
	log       *slog.Logger
	cfg       *config.Config
	members   MemberDirectory
	transport Transport
	audit     audit.Logger
	wg        sync.WaitGroup
}

// NewDispatcher wires a dispatcher. transport may be nil when mail is not configured.
func NewDispatcher(log *slog.Logger, cfg *config.Config, members MemberDirectory, transport Transport, auditLog audit.Logger) *Dispatcher {
	return &Dispatcher{
		log:       log,
		cfg:       cfg,
		members:   members,
		transport: transport,
		audit:     auditLog,
	}
}

// Dispatch resolves the member, builds the verification link and submits the
// email. Without sender credentials the link is printed to the operator console instead.
func (d *Dispatcher) Dispatch(ctx context.Context, userID int64) {
	const op = "verification.Dispatch"

	log := d.log.With(
		slog.String("op", op),
		slog.String("dispatch_id", id.New()),
		slog.Int64("user_id", userID),
	)

	m, err := d.members.Member(ctx, userID)
	if err != nil {
		d.audit.Log(ctx, audit.ChannelError,
			fmt.Sprintf("unable to send email confirmation of non-existent member of id %d", userID),
			true, slog.Int64("user_id", userID), slog.Any("err", err))
		return
	}

	state, err := domain.DecodeVerification(m.Verification)
	if err != nil || state == nil || !state.HasCode() {
		d.audit.Log(ctx, audit.ChannelError,
			fmt.Sprintf("cannot build a verification link for member %q of id %d: no usable code", m.Username, userID),
			true, slog.Int64("user_id", userID), slog.Any("err", err))
		return
	}

	link := VerificationURL(d.cfg.VerificationHost(), m.Username, *state.Code)

	if !d.cfg.TransportConfigured() || d.transport == nil {
		log.Warn("Email environment variables not specified. Not sending email. Click this link instead to verify",
			slog.String("url", link))
		return
	}

	msg, err := NewMessage(d.cfg.SenderAddress(), m, link)
	if err != nil {
		d.audit.Log(ctx, audit.ChannelError, "failed to render verification email",
			true, slog.Int64("user_id", userID), slog.Any("err", err))
		return
	}

	result := d.submit(ctx, msg)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := <-result; err != nil {
			d.audit.Log(context.WithoutCancel(ctx), audit.ChannelError,
				fmt.Sprintf("error when sending verification email: %v", err),
				true, slog.Int64("user_id", userID), slog.String("username", m.Username))
			return
		}
		log.Info("verification email sent", slog.String("username", m.Username))
	}()
}

// Wait blocks until every submitted send has reported. Only for shutdown and tests.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// submit runs the transport detached from the caller's cancellation.
// The returned channel yields exactly one result.
func (d *Dispatcher) submit(ctx context.Context, msg domain.Message) <-chan error {
	result := make(chan error, 1)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("transport panic: %v", r)
			}
		}()

		sctx := context.WithoutCancel(ctx)
		if d.cfg.MailSendTimeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(sctx, d.cfg.MailSendTimeout)
			defer cancel()
		}
		result <- d.transport.Send(sctx, msg)
	}()

	return result
}
