package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-verify-mail/internal/audit"
	"github.com/go-verify-mail/internal/domain"
)

// MemberDirectory looks up member records by user id.
type MemberDirectory interface {
	Member(ctx context.Context, userID int64) (*domain.Member, error)
}

// Guard decides whether a caller may have their verification email resent.
// It never mutates member state; its only side effect is audit logging.
type Guard struct {
	members MemberDirectory
	audit   audit.Logger
}

func NewGuard(members MemberDirectory, auditLog audit.Logger) *Guard {
	return &Guard{members: members, audit: auditLog}
}

// Authorize checks, in order: caller context present, caller signed in,
// caller is the target (case-insensitive), then the caller's verification state.
func (g *Guard) Authorize(ctx context.Context, caller *domain.Caller, target string) domain.Decision {
	if caller == nil {
		g.audit.Log(ctx, audit.ChannelError,
			"member info must be resolved before handling a resend-verification request",
			true, slog.String("target", target))
		return domain.StateMissing(domain.ReasonMissingContext)
	}

	if !caller.SignedIn {
		g.audit.Log(ctx, audit.ChannelError,
			fmt.Sprintf("signed-out caller tried to resend the verification email for member %q", target),
			true, slog.String("target", target))
		return domain.Unauthorized(domain.ReasonNotSignedIn)
	}

	attrs := []slog.Attr{
		slog.Int64("user_id", caller.UserID),
		slog.String("username", caller.Username),
		slog.String("target", target),
	}

	if !strings.EqualFold(caller.Username, target) {
		g.audit.Log(ctx, audit.ChannelSuspicious,
			fmt.Sprintf("member %q of id %d attempted to send a verification email for member %q", caller.Username, caller.UserID, target),
			true, attrs...)
		return domain.Unauthorized(domain.ReasonIdentityMismatch)
	}

	m, err := g.members.Member(ctx, caller.UserID)
	if err != nil {
		msg := fmt.Sprintf("could not find member %q of id %d when requesting a verification email", caller.Username, caller.UserID)
		if !errors.Is(err, domain.ErrNotFound) {
			msg = fmt.Sprintf("member lookup failed for %q of id %d when requesting a verification email", caller.Username, caller.UserID)
		}
		g.audit.Log(ctx, audit.ChannelError, msg, true, append(attrs, slog.Any("err", err))...)
		return domain.AccountNotFound()
	}

	state, err := domain.DecodeVerification(m.Verification)
	if err != nil {
		g.audit.Log(ctx, audit.ChannelError,
			fmt.Sprintf("verification state of member %q of id %d is unreadable", caller.Username, caller.UserID),
			true, append(attrs, slog.Any("err", err))...)
		return domain.StateMissing(domain.ReasonStateUnreadable)
	}
	if state == nil {
		g.audit.Log(ctx, audit.ChannelError,
			fmt.Sprintf("member %q of id %d has no verification state", caller.Username, caller.UserID),
			true, attrs...)
		return domain.StateMissing(domain.ReasonStateMissing)
	}
	if state.Done() {
		g.audit.Log(ctx, audit.ChannelSuspicious,
			fmt.Sprintf("member %q of id %d requested another verification email after already verifying", caller.Username, caller.UserID),
			true, attrs...)
		return domain.AlreadyVerified()
	}

	return domain.Authorized()
}
