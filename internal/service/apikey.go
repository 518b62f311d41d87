package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/aman-churiwal/shortlink/internal/access"
	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/aman-churiwal/shortlink/internal/models"
)

const keyPrefixLen = 8

// keyStore is the slice of the repository the service needs; satisfied by
// *repository.APIKeyRepository.
type keyStore interface {
	Create(ctx context.Context, apiKey *models.APIKey) error
	FindByID(ctx context.Context, id string) (*models.APIKey, error)
	List(ctx context.Context) ([]models.APIKey, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Deactivate(ctx context.Context, id string) error
}

// APIKeyService is the administrative lifecycle of API keys. Usage counters
// are never touched here; only the quota tracker mutates them.
type APIKeyService struct {
	repo       keyStore
	controller *access.Controller
}

func NewAPIKeyService(repo keyStore, controller *access.Controller) *APIKeyService {
	return &APIKeyService{
		repo:       repo,
		controller: controller,
	}
}

// Create mints a new key. The plaintext is returned once and only its hash
// is stored.
func (s *APIKeyService) Create(ctx context.Context, name, description string, tier int) (string, *models.APIKey, error) {
	const op = "apikey.Create"

	if tier < models.MinTier || tier > models.MaxTier {
		return "", nil, errs.Ef(op, errs.Validation,
			"tier must be between %d and %d", models.MinTier, models.MaxTier)
	}

	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", nil, errs.E(op, errs.Internal, fmt.Errorf("generate random key: %w", err))
	}

	key := "sl_" + base64.URLEncoding.EncodeToString(keyBytes)

	// Limits stay zero so the key follows its tier's defaults, including
	// after a tier change; an admin sets them only to override.
	apiKey := &models.APIKey{
		KeyHash:     access.HashKey(key),
		KeyPrefix:   key[:keyPrefixLen],
		Name:        name,
		Description: description,
		Tier:        tier,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, apiKey); err != nil {
		return "", nil, errs.E(op, errs.Internal, fmt.Errorf("create API key: %w", err))
	}

	// Plaintext is visible only in this response.
	return key, apiKey, nil
}

func (s *APIKeyService) Get(ctx context.Context, id string) (*models.APIKey, error) {
	const op = "apikey.Get"

	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}
	if key == nil {
		return nil, errs.Ef(op, errs.NotFound, "api key %s not found", id)
	}
	return key, nil
}

func (s *APIKeyService) List(ctx context.Context) ([]models.APIKey, error) {
	return s.repo.List(ctx)
}

// Update applies admin changes (tier, limits, name, active flag) and drops
// the cache entry so the next admission sees fresh state.
func (s *APIKeyService) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	const op = "apikey.Update"

	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errs.E(op, errs.Internal, err)
	}
	if key == nil {
		return errs.Ef(op, errs.NotFound, "api key %s not found", id)
	}

	if tier, ok := updates["tier"]; ok {
		if t, ok := tier.(int); !ok || t < models.MinTier || t > models.MaxTier {
			return errs.Ef(op, errs.Validation,
				"tier must be between %d and %d", models.MinTier, models.MaxTier)
		}
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return errs.E(op, errs.Internal, err)
	}

	s.controller.InvalidateCache(ctx, key.KeyHash)
	return nil
}

// Deactivate revokes the key; the record and its usage history remain.
func (s *APIKeyService) Deactivate(ctx context.Context, id string) error {
	const op = "apikey.Deactivate"

	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errs.E(op, errs.Internal, err)
	}
	if key == nil {
		return errs.Ef(op, errs.NotFound, "api key %s not found", id)
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return errs.E(op, errs.Internal, err)
	}

	s.controller.InvalidateCache(ctx, key.KeyHash)
	return nil
}
