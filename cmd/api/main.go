package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-verify-mail/internal/application/verification"
	"github.com/go-verify-mail/internal/audit"
	"github.com/go-verify-mail/internal/config"
	"github.com/go-verify-mail/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-verify-mail/internal/infrastructure/jwt"
	"github.com/go-verify-mail/internal/infrastructure/rabbitmq"
	"github.com/go-verify-mail/internal/infrastructure/smtp"
	"github.com/go-verify-mail/internal/infrastructure/sns"
	transporthttp "github.com/go-verify-mail/internal/transport/http"
	"github.com/joho/godotenv"
)

const (
	envLocal = "local"
	envDev   = "development"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := setupLogger(cfg.AppEnv)
	if envErr != nil {
		log.Info("no .env file found, reading from environment")
	}
	if err := cfg.Validate(); err != nil {
		log.Error("configuration rejected", slog.Any("err", err))
		os.Exit(1)
	}

	ctx := context.Background()

	var auditOpts []audit.Option
	if cfg.AuditAlertTopicARN != "" {
		if alerter, err := sns.NewAlerter(ctx, cfg); err == nil {
			auditOpts = append(auditOpts, audit.WithAlerter(alerter))
		} else {
			log.Warn("suspicious-activity alerts disabled", slog.Any("err", err))
		}
	}
	auditLog, err := audit.New(cfg.AuditLogDir, log, auditOpts...)
	if err != nil {
		log.Error("failed to open audit log", slog.Any("err", err))
		os.Exit(1)
	}

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to build dynamodb client", slog.Any("err", err))
		os.Exit(1)
	}
	if cfg.AWSEndpointURL != "" {
		dynamo.Bootstrap(ctx, log, dynamoClient, cfg.DynamoTables)
	}
	members := dynamo.NewMemberRepo(dynamoClient, cfg.DynamoTables.Members)

	deps := &transporthttp.Deps{}
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.Tokens = p
	} else {
		log.Warn("JWT provider not available, every caller will be signed out", slog.Any("err", err))
	}

	var mailTransport verification.Transport
	var closeTransport func()
	if cfg.TransportConfigured() {
		switch cfg.MailTransport {
		case config.TransportAMQP:
			pub, err := rabbitmq.New(cfg.RabbitMQURL, cfg.RabbitMQQueue)
			if err != nil {
				log.Error("failed to connect to rabbitmq", slog.Any("err", err))
				os.Exit(1)
			}
			mailTransport, closeTransport = pub, pub.Close
		default:
			mailTransport = smtp.NewMailer(cfg)
		}
	}

	dispatcher := verification.NewDispatcher(log, cfg, members, mailTransport, auditLog)
	deps.Guard = verification.NewGuard(members, auditLog)
	deps.Dispatcher = dispatcher

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, log, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", slog.String("port", cfg.AppPort), slog.String("env", cfg.AppEnv),
			slog.String("mail_transport", cfg.MailTransport), slog.Bool("mail_configured", mailTransport != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", slog.Any("err", err))
	}

	// In-flight sends and alerts finish before exit.
	dispatcher.Wait()
	auditLog.Wait()
	if closeTransport != nil {
		closeTransport()
	}
	log.Info("server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default: // production
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
