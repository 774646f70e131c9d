package verification

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/go-verify-mail/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) Member(ctx context.Context, userID int64) (*domain.Member, error) {
	args := m.Called(ctx, userID)
	if mem, _ := args.Get(0).(*domain.Member); mem != nil {
		return mem, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTransport struct{ mock.Mock }

func (m *mockTransport) Send(ctx context.Context, msg domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// syncBuffer lets the test read log output written from dispatch goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}

func strPtr(s string) *string { return &s }

func alice(blob *string) *domain.Member {
	return &domain.Member{UserID: 42, Username: "Alice", Email: "alice@chess.example", Verification: blob}
}

const pendingBlob = `{"verified":false,"code":"abc123"}`
