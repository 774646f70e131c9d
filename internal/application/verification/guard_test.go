package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/go-verify-mail/internal/audit"
	"github.com/go-verify-mail/internal/audit/audittest"
	"github.com/go-verify-mail/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func signedIn(id int64, username string) *domain.Caller {
	return &domain.Caller{UserID: id, Username: username, SignedIn: true}
}

func TestAuthorize_MissingCallerContext(t *testing.T) {
	dir := &mockDirectory{}
	rec := &audittest.Recorder{}

	d := NewGuard(dir, rec).Authorize(context.Background(), nil, "alice")

	assert.Equal(t, domain.DecisionStateMissing, d.Kind)
	assert.Equal(t, domain.ReasonMissingContext, d.Reason)
	require.Len(t, rec.Entries(), 1)
	assert.Equal(t, audit.ChannelError, rec.Entries()[0].Channel)
	assert.Equal(t, 1, rec.Echoed())
	dir.AssertNotCalled(t, "Member", mock.Anything, mock.Anything)
}

func TestAuthorize_NotSignedIn(t *testing.T) {
	dir := &mockDirectory{}
	rec := &audittest.Recorder{}

	d := NewGuard(dir, rec).Authorize(context.Background(), &domain.Caller{}, "alice")

	assert.Equal(t, domain.Unauthorized(domain.ReasonNotSignedIn), d)
	require.Len(t, rec.On(audit.ChannelError), 1)
	assert.Empty(t, rec.On(audit.ChannelSuspicious))
	dir.AssertNotCalled(t, "Member", mock.Anything, mock.Anything)
}

func TestAuthorize_IdentityMismatchIsSuspicious(t *testing.T) {
	dir := &mockDirectory{}
	rec := &audittest.Recorder{}

	d := NewGuard(dir, rec).Authorize(context.Background(), signedIn(7, "bob"), "Alice")

	assert.Equal(t, domain.Unauthorized(domain.ReasonIdentityMismatch), d)
	hacks := rec.On(audit.ChannelSuspicious)
	require.Len(t, hacks, 1)
	assert.Equal(t, "Alice", hacks[0].Fields["target"])
	assert.Empty(t, rec.On(audit.ChannelError))
	dir.AssertNotCalled(t, "Member", mock.Anything, mock.Anything)
}

func TestAuthorize_MismatchReportedEvenWhenTargetVerified(t *testing.T) {
	// The directory would say the target is verified, but identity is checked first.
	dir := &mockDirectory{}
	dir.On("Member", mock.Anything, mock.Anything).Return(alice(strPtr(`{"verified":true,"code":"abc123"}`)), nil).Maybe()
	rec := &audittest.Recorder{}

	d := NewGuard(dir, rec).Authorize(context.Background(), signedIn(7, "bob"), "alice")

	assert.Equal(t, domain.DecisionUnauthorized, d.Kind)
	assert.Equal(t, domain.ReasonIdentityMismatch, d.Reason)
	assert.Len(t, rec.On(audit.ChannelSuspicious), 1)
	dir.AssertNotCalled(t, "Member", mock.Anything, mock.Anything)
}

func TestAuthorize_UsernameComparisonIgnoresCase(t *testing.T) {
	for _, target := range []string{"alice", "ALICE", "Alice", "aLiCe"} {
		dir := &mockDirectory{}
		dir.On("Member", mock.Anything, int64(42)).Return(alice(strPtr(pendingBlob)), nil)
		rec := &audittest.Recorder{}

		d := NewGuard(dir, rec).Authorize(context.Background(), signedIn(42, "Alice"), target)

		assert.True(t, d.Allowed(), target)
		assert.Empty(t, rec.Entries(), target)
	}
}

func TestAuthorize_AccountNotFound(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("Member", mock.Anything, int64(42)).Return(nil, domain.ErrNotFound)
	rec := &audittest.Recorder{}

	d := NewGuard(dir, rec).Authorize(context.Background(), signedIn(42, "Alice"), "alice")

	assert.Equal(t, domain.DecisionAccountNotFound, d.Kind)
	errs := rec.On(audit.ChannelError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "could not find member")
}

func TestAuthorize_DirectoryFailureIsNotLeaked(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("Member", mock.Anything, int64(42)).Return(nil, errors.New("ProvisionedThroughputExceeded"))
	rec := &audittest.Recorder{}

	d := NewGuard(dir, rec).Authorize(context.Background(), signedIn(42, "Alice"), "alice")

	assert.Equal(t, domain.DecisionAccountNotFound, d.Kind)
	require.Len(t, rec.On(audit.ChannelError), 1)
	assert.Contains(t, rec.On(audit.ChannelError)[0].Message, "lookup failed")
	assert.Equal(t, "ProvisionedThroughputExceeded", rec.On(audit.ChannelError)[0].Fields["err"])
}

func TestAuthorize_StateMissing(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("Member", mock.Anything, int64(42)).Return(alice(nil), nil)
	rec := &audittest.Recorder{}

	d := NewGuard(dir, rec).Authorize(context.Background(), signedIn(42, "Alice"), "alice")

	assert.Equal(t, domain.StateMissing(domain.ReasonStateMissing), d)
	assert.Len(t, rec.On(audit.ChannelError), 1)
}

func TestAuthorize_StateUnreadable(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("Member", mock.Anything, int64(42)).Return(alice(strPtr("{oops")), nil)
	rec := &audittest.Recorder{}

	d := NewGuard(dir, rec).Authorize(context.Background(), signedIn(42, "Alice"), "alice")

	assert.Equal(t, domain.StateMissing(domain.ReasonStateUnreadable), d)
	assert.Len(t, rec.On(audit.ChannelError), 1)
}

func TestAuthorize_AlreadyVerifiedIsSuspicious(t *testing.T) {
	for _, blob := range []string{`{"verified":true,"code":"abc123"}`, domain.VerificationComplete} {
		dir := &mockDirectory{}
		dir.On("Member", mock.Anything, int64(42)).Return(alice(strPtr(blob)), nil)
		rec := &audittest.Recorder{}

		d := NewGuard(dir, rec).Authorize(context.Background(), signedIn(42, "Alice"), "alice")

		assert.Equal(t, domain.DecisionAlreadyVerified, d.Kind, blob)
		assert.Len(t, rec.On(audit.ChannelSuspicious), 1, blob)
		assert.Empty(t, rec.On(audit.ChannelError), blob)
	}
}

func TestAuthorize_PendingIsAuthorizedWithoutAudit(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("Member", mock.Anything, int64(42)).Return(alice(strPtr(pendingBlob)), nil).Once()
	rec := &audittest.Recorder{}

	d := NewGuard(dir, rec).Authorize(context.Background(), signedIn(42, "Alice"), "alice")

	assert.Equal(t, domain.Authorized(), d)
	assert.Empty(t, rec.Entries())
	dir.AssertExpectations(t)
}
