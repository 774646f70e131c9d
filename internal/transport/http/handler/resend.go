package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-verify-mail/internal/domain"
	"github.com/go-verify-mail/internal/transport/http/middleware"
)

// ResendGuard decides whether a resend may proceed.
type ResendGuard interface {
	Authorize(ctx context.Context, caller *domain.Caller, target string) domain.Decision
}

// ResendDispatcher starts a verification email send without waiting for delivery.
type ResendDispatcher interface {
	Dispatch(ctx context.Context, userID int64)
}

// ResendHandler serves POST /v1/members/{member}/resend-verification.
type ResendHandler struct {
	log        *slog.Logger
	guard      ResendGuard
	dispatcher ResendDispatcher
}

func NewResendHandler(log *slog.Logger, guard ResendGuard, dispatcher ResendDispatcher) *ResendHandler {
	return &ResendHandler{log: log, guard: guard, dispatcher: dispatcher}
}

func (h *ResendHandler) Resend(w http.ResponseWriter, r *http.Request) {
	const op = "handler.Resend"

	ctx := r.Context()
	caller := middleware.CallerFromContext(ctx)
	decision := h.guard.Authorize(ctx, caller, chi.URLParam(r, "member"))

	switch decision.Kind {
	case domain.DecisionAuthorized:
		h.dispatcher.Dispatch(ctx, caller.UserID)
		writeJSON(w, http.StatusOK, ResendEnvelope{Sent: true})
	case domain.DecisionUnauthorized:
		if decision.Reason == domain.ReasonNotSignedIn {
			writeJSON(w, http.StatusUnauthorized, ResendEnvelope{Message: "Not signed in. Can't resend verification email."})
			return
		}
		writeJSON(w, http.StatusUnauthorized, ResendEnvelope{})
	case domain.DecisionAlreadyVerified:
		writeJSON(w, http.StatusUnauthorized, ResendEnvelope{})
	case domain.DecisionAccountNotFound:
		writeJSON(w, http.StatusInternalServerError, ResendEnvelope{Message: "Server error. Member not found."})
	case domain.DecisionStateMissing:
		if decision.Reason == domain.ReasonMissingContext {
			writeJSON(w, http.StatusInternalServerError, ResendEnvelope{Message: "Internal Server Error"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ResendEnvelope{Message: "Server error. Verification state missing."})
	default:
		h.log.Error("unhandled resend decision", slog.String("op", op), slog.String("kind", decision.Kind.String()))
		writeJSON(w, http.StatusInternalServerError, ResendEnvelope{Message: "Internal Server Error"})
	}
}
