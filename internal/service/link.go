package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aman-churiwal/shortlink/internal/access"
	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/aman-churiwal/shortlink/internal/shortcode"
	"github.com/aman-churiwal/shortlink/internal/urlcheck"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MaxBulkSize = 100

type CreateLinkRequest struct {
	URL         string     `json:"url" binding:"required"`
	CustomCode  string     `json:"custom_code,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Password    string     `json:"password,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type UpdateLinkRequest struct {
	URL         *string    `json:"url,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// BulkResult reports the outcome for one item of a bulk create.
type BulkResult struct {
	Index int               `json:"index"`
	Link  *models.ShortLink `json:"link,omitempty"`
	Error string            `json:"error,omitempty"`
}

// linkStore is the slice of the repository the service needs; satisfied by
// *repository.LinkRepository.
type linkStore interface {
	Create(ctx context.Context, link *models.ShortLink) error
	FindByCode(ctx context.Context, code string) (*models.ShortLink, error)
	ListByOwner(ctx context.Context, keyID uuid.UUID, limit, offset int) ([]models.ShortLink, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, id uint) error
}

// LinkService owns ShortLink lifecycle: creation, updates, soft deletion.
// Quota and tier permissions are admitted before these methods run; the
// service re-checks feature permissions tied to request content.
type LinkService struct {
	links     linkStore
	generator *shortcode.Generator
}

func NewLinkService(links linkStore, generator *shortcode.Generator) *LinkService {
	return &LinkService{links: links, generator: generator}
}

func (s *LinkService) Create(ctx context.Context, auth *access.AuthContext, req CreateLinkRequest) (*models.ShortLink, error) {
	const op = "link.Create"

	normalized, err := urlcheck.Validate(req.URL)
	if err != nil {
		return nil, err
	}

	if req.CustomCode != "" && !auth.Caps.Has(models.PermCustomCode) {
		return nil, errs.Ef(op, errs.PermissionDenied, "tier %d cannot set custom codes", auth.Key.Tier)
	}
	if req.Password != "" && !auth.Caps.Has(models.PermPasswordProtect) {
		return nil, errs.Ef(op, errs.PermissionDenied, "tier %d cannot password-protect links", auth.Key.Tier)
	}
	if req.ExpiresAt != nil {
		if !auth.Caps.Has(models.PermExpiration) {
			return nil, errs.Ef(op, errs.PermissionDenied, "tier %d cannot set expiration", auth.Key.Tier)
		}
		if !req.ExpiresAt.After(time.Now().UTC()) {
			return nil, errs.E(op, errs.Validation, errors.New("expires_at must be in the future"))
		}
	}

	code, err := s.generator.Generate(ctx, req.CustomCode)
	if err != nil {
		return nil, err
	}

	var passwordHash string
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errs.E(op, errs.Internal, err)
		}
		passwordHash = string(hashed)
	}

	link := &models.ShortLink{
		Code:         code,
		OriginalURL:  normalized,
		Title:        req.Title,
		Description:  req.Description,
		Tags:         strings.Join(req.Tags, ","),
		APIKeyID:     auth.Key.ID,
		PasswordHash: passwordHash,
		ExpiresAt:    req.ExpiresAt,
		IsActive:     true,
	}

	if err := s.links.Create(ctx, link); err != nil {
		// A concurrent creator can win the code between the availability
		// check and the insert; the unique index is the arbiter.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.Ef(op, errs.Conflict, "code %q is already in use", code)
		}
		return nil, errs.E(op, errs.Internal, err)
	}

	return link, nil
}

// BulkCreate validates the batch size before persisting anything, then runs
// the single-create path per item, reporting partial success.
func (s *LinkService) BulkCreate(ctx context.Context, auth *access.AuthContext, reqs []CreateLinkRequest) []BulkResult {
	results := make([]BulkResult, 0, len(reqs))

	for i, req := range reqs {
		link, err := s.Create(ctx, auth, req)
		if err != nil {
			results = append(results, BulkResult{Index: i, Error: errs.Message(err)})
			continue
		}
		results = append(results, BulkResult{Index: i, Link: link})
	}

	return results
}

// Get returns a link the key owns. Non-owners get PermissionDenied.
func (s *LinkService) Get(ctx context.Context, auth *access.AuthContext, code string) (*models.ShortLink, error) {
	const op = "link.Get"
	return s.owned(ctx, op, auth, code)
}

func (s *LinkService) List(ctx context.Context, auth *access.AuthContext, limit, offset int) ([]models.ShortLink, error) {
	const op = "link.List"

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	links, err := s.links.ListByOwner(ctx, auth.Key.ID, limit, offset)
	if err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}
	return links, nil
}

func (s *LinkService) Update(ctx context.Context, auth *access.AuthContext, code string, req UpdateLinkRequest) (*models.ShortLink, error) {
	const op = "link.Update"

	link, err := s.owned(ctx, op, auth, code)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if req.URL != nil {
		normalized, err := urlcheck.Validate(*req.URL)
		if err != nil {
			return nil, err
		}
		updates["original_url"] = normalized
		link.OriginalURL = normalized
	}
	if req.Title != nil {
		updates["title"] = *req.Title
		link.Title = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		link.Description = *req.Description
	}
	if req.Tags != nil {
		tags := strings.Join(req.Tags, ",")
		updates["tags"] = tags
		link.Tags = tags
	}
	if req.ExpiresAt != nil {
		if !auth.Caps.Has(models.PermExpiration) {
			return nil, errs.Ef(op, errs.PermissionDenied, "tier %d cannot set expiration", auth.Key.Tier)
		}
		updates["expires_at"] = *req.ExpiresAt
		link.ExpiresAt = req.ExpiresAt
	}

	if len(updates) == 0 {
		return link, nil
	}

	if err := s.links.Update(ctx, link.ID, updates); err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}

	return link, nil
}

// Toggle flips the active flag and returns the new state.
func (s *LinkService) Toggle(ctx context.Context, auth *access.AuthContext, code string) (*models.ShortLink, error) {
	const op = "link.Toggle"

	link, err := s.owned(ctx, op, auth, code)
	if err != nil {
		return nil, err
	}

	link.IsActive = !link.IsActive
	if err := s.links.Update(ctx, link.ID, map[string]interface{}{"is_active": link.IsActive}); err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}

	return link, nil
}

// Clone creates a new link copying the source's destination and attributes
// under a fresh (or supplied custom) code.
func (s *LinkService) Clone(ctx context.Context, auth *access.AuthContext, code, customCode string) (*models.ShortLink, error) {
	const op = "link.Clone"

	source, err := s.owned(ctx, op, auth, code)
	if err != nil {
		return nil, err
	}

	if customCode != "" && !auth.Caps.Has(models.PermCustomCode) {
		return nil, errs.Ef(op, errs.PermissionDenied, "tier %d cannot set custom codes", auth.Key.Tier)
	}

	newCode, err := s.generator.Generate(ctx, customCode)
	if err != nil {
		return nil, err
	}

	clone := &models.ShortLink{
		Code:         newCode,
		OriginalURL:  source.OriginalURL,
		Title:        source.Title,
		Description:  source.Description,
		Tags:         source.Tags,
		APIKeyID:     auth.Key.ID,
		PasswordHash: source.PasswordHash,
		ExpiresAt:    source.ExpiresAt,
		IsActive:     true,
	}

	if err := s.links.Create(ctx, clone); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.Ef(op, errs.Conflict, "code %q is already in use", newCode)
		}
		return nil, errs.E(op, errs.Internal, err)
	}

	return clone, nil
}

// Delete soft-deletes the link. The code stays reserved and click history
// survives for analytics.
func (s *LinkService) Delete(ctx context.Context, auth *access.AuthContext, code string) error {
	const op = "link.Delete"

	link, err := s.owned(ctx, op, auth, code)
	if err != nil {
		return err
	}

	if err := s.links.SoftDelete(ctx, link.ID); err != nil {
		return errs.E(op, errs.Internal, err)
	}
	return nil
}

func (s *LinkService) owned(ctx context.Context, op string, auth *access.AuthContext, code string) (*models.ShortLink, error) {
	link, err := s.links.FindByCode(ctx, code)
	if err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}
	if link == nil {
		return nil, errs.E(op, errs.NotFound, errors.New("short link not found"))
	}
	if link.APIKeyID != auth.Key.ID {
		return nil, errs.E(op, errs.PermissionDenied, errors.New("not the owner of this link"))
	}
	return link, nil
}
