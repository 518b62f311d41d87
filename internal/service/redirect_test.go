package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockLinkSource struct {
	link *models.ShortLink
	err  error
}

func (m *mockLinkSource) FindByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	return m.link, m.err
}

type mockRecorder struct {
	recorded []models.ShortLink
}

func (m *mockRecorder) Record(link *models.ShortLink, visit Visit) {
	m.recorded = append(m.recorded, *link)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func newTestRedirect(link *models.ShortLink) (*RedirectService, *mockRecorder) {
	recorder := &mockRecorder{}
	svc := NewRedirectService(&mockLinkSource{link: link}, recorder)
	return svc, recorder
}

func TestResolveActive(t *testing.T) {
	link := &models.ShortLink{Code: "abc123", OriginalURL: "https://example.com", IsActive: true}
	svc, recorder := newTestRedirect(link)

	dest, err := svc.Resolve(context.Background(), "abc123", "", Visit{UserAgent: "curl/8.0"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", dest)
	assert.Len(t, recorder.recorded, 1, "exactly one click recorded")
}

func TestResolveUnknownCode(t *testing.T) {
	svc, recorder := newTestRedirect(nil)

	_, err := svc.Resolve(context.Background(), "nope", "", Visit{})
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
	assert.Empty(t, recorder.recorded)
}

func TestResolveDeleted(t *testing.T) {
	link := &models.ShortLink{Code: "gone1", OriginalURL: "https://example.com", IsActive: true, IsDeleted: true}
	svc, recorder := newTestRedirect(link)

	_, err := svc.Resolve(context.Background(), "gone1", "", Visit{})
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
	assert.Empty(t, recorder.recorded)
}

func TestResolveInactiveIsNotFound(t *testing.T) {
	// Administratively hidden, not advertised as expired.
	link := &models.ShortLink{Code: "off", OriginalURL: "https://example.com", IsActive: false}
	svc, recorder := newTestRedirect(link)

	_, err := svc.Resolve(context.Background(), "off", "", Visit{})
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
	assert.Empty(t, recorder.recorded)
}

func TestResolveExpired(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	link := &models.ShortLink{Code: "old", OriginalURL: "https://example.com", IsActive: true, ExpiresAt: &past}
	svc, recorder := newTestRedirect(link)

	_, err := svc.Resolve(context.Background(), "old", "", Visit{})
	require.Error(t, err)
	assert.Equal(t, errs.Gone, errs.KindOf(err))
	assert.Empty(t, recorder.recorded)
}

func TestResolveExpiredBeatsPassword(t *testing.T) {
	// Expiry wins regardless of password correctness.
	past := time.Now().UTC().Add(-time.Hour)
	link := &models.ShortLink{
		Code:         "old",
		OriginalURL:  "https://example.com",
		IsActive:     true,
		ExpiresAt:    &past,
		PasswordHash: hashPassword(t, "secret"),
	}
	svc, recorder := newTestRedirect(link)

	for _, password := range []string{"", "wrong", "secret"} {
		_, err := svc.Resolve(context.Background(), "old", password, Visit{})
		require.Error(t, err)
		assert.Equal(t, errs.Gone, errs.KindOf(err))
	}
	assert.Empty(t, recorder.recorded)
}

func TestResolvePasswordGate(t *testing.T) {
	link := &models.ShortLink{
		Code:         "vault",
		OriginalURL:  "https://example.com/secret",
		IsActive:     true,
		PasswordHash: hashPassword(t, "secret"),
	}

	t.Run("missing password", func(t *testing.T) {
		svc, recorder := newTestRedirect(link)
		_, err := svc.Resolve(context.Background(), "vault", "", Visit{})
		require.Error(t, err)
		assert.Equal(t, errs.Forbidden, errs.KindOf(err))
		assert.Empty(t, recorder.recorded)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, recorder := newTestRedirect(link)
		_, err := svc.Resolve(context.Background(), "vault", "guess", Visit{})
		require.Error(t, err)
		assert.Equal(t, errs.Forbidden, errs.KindOf(err))
		assert.Empty(t, recorder.recorded)
	})

	t.Run("correct password", func(t *testing.T) {
		svc, recorder := newTestRedirect(link)
		dest, err := svc.Resolve(context.Background(), "vault", "secret", Visit{})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/secret", dest)
		assert.Len(t, recorder.recorded, 1)
	})
}

func TestResolveStoreFailure(t *testing.T) {
	recorder := &mockRecorder{}
	svc := NewRedirectService(&mockLinkSource{err: errors.New("db down")}, recorder)

	_, err := svc.Resolve(context.Background(), "abc", "", Visit{})
	require.Error(t, err)
	assert.Equal(t, errs.Internal, errs.KindOf(err))
	assert.Empty(t, recorder.recorded)
}
