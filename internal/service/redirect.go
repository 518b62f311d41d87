package service

import (
	"context"
	"errors"
	"time"

	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/aman-churiwal/shortlink/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type linkSource interface {
	FindByCode(ctx context.Context, code string) (*models.ShortLink, error)
}

type visitRecorder interface {
	Record(link *models.ShortLink, visit Visit)
}

// RedirectService resolves a short code to its destination, enforcing the
// link's lifecycle state and password gate. Only successful resolutions
// record a click.
type RedirectService struct {
	links    linkSource
	recorder visitRecorder
	now      func() time.Time
}

func NewRedirectService(links linkSource, recorder visitRecorder) *RedirectService {
	return &RedirectService{
		links:    links,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *RedirectService) Resolve(ctx context.Context, code, password string, visit Visit) (string, error) {
	const op = "redirect.Resolve"

	link, err := s.links.FindByCode(ctx, code)
	if err != nil {
		return "", errs.E(op, errs.Internal, err)
	}
	if link == nil {
		// Absent and soft-deleted codes are indistinguishable here.
		return "", errs.E(op, errs.NotFound, errors.New("short link not found"))
	}

	switch link.Status(s.now()) {
	case models.StatusDeleted:
		return "", errs.E(op, errs.NotFound, errors.New("short link not found"))
	case models.StatusExpired:
		// Expiry wins regardless of password correctness.
		return "", errs.E(op, errs.Gone, errors.New("short link has expired"))
	case models.StatusInactive:
		// Administratively hidden, not advertised as expired.
		return "", errs.E(op, errs.NotFound, errors.New("short link not found"))
	}

	if link.PasswordProtected() {
		if password == "" {
			return "", errs.E(op, errs.Forbidden, errors.New("password required"))
		}
		if bcrypt.CompareHashAndPassword([]byte(link.PasswordHash), []byte(password)) != nil {
			return "", errs.E(op, errs.Forbidden, errors.New("incorrect password"))
		}
	}

	s.recorder.Record(link, visit)

	return link.OriginalURL, nil
}
