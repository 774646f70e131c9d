package http

import (
	"github.com/go-verify-mail/internal/transport/http/handler"
	"github.com/go-verify-mail/internal/transport/http/middleware"
)

// Deps holds the application services the router wires into handlers.
type Deps struct {
	Guard      handler.ResendGuard
	Dispatcher handler.ResendDispatcher
	// Tokens may be nil, in which case every caller is treated as signed out.
	Tokens middleware.TokenVerifier
}
