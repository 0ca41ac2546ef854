package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/noahjmorrison/onnaflips/internal/cache"
	"github.com/noahjmorrison/onnaflips/internal/config"
	"github.com/noahjmorrison/onnaflips/internal/models"
	"github.com/noahjmorrison/onnaflips/internal/repository"
)

const (
	statsCacheKey = "onnaflips:stats"
	statsCacheTTL = 5 * time.Minute

	maxDescriptionLen = 200
)

// ErrInvalid marks item validation failures so the handler can answer 400.
var ErrInvalid = errors.New("invalid item")

// Service handles business logic
type Service struct {
	repo         *repository.Repository
	cache        cache.Cache
	log          *logrus.Logger
	config       *config.Config
	passwordHash []byte
}

// NewService initializes a new service
func NewService(repo *repository.Repository, c cache.Cache, log *logrus.Logger, cfg *config.Config) (*Service, error) {
	s := &Service{repo: repo, cache: c, log: log, config: cfg}
	if cfg.AuthEnabled() {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AuthPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash operator password: %w", err)
		}
		s.passwordHash = hash
	}
	return s, nil
}

// Login verifies the operator password and returns a JWT token
func (s *Service) Login(password string) (string, error) {
	if !s.config.AuthEnabled() {
		return "", fmt.Errorf("auth is not enabled")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Info("Operator logged in")
	return tokenString, nil
}

// CreateItem validates and stores a new item
func (s *Service) CreateItem(ctx context.Context, item *models.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if item.Status == "" {
		item.Status = models.StatusListed
	}
	if err := s.repo.CreateItem(item); err != nil {
		return err
	}
	s.invalidateStats(ctx)
	s.log.Infof("Item created: %d (%s)", item.ID, item.Description)
	return nil
}

// GetItem retrieves a single item by id
func (s *Service) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return s.repo.FindItemByID(id)
}

// ListItems retrieves items, optionally filtered by status
func (s *Service) ListItems(ctx context.Context, status string) ([]*models.Item, error) {
	return s.repo.ListItems(status)
}

// UpdateItem validates and overwrites an existing item
func (s *Service) UpdateItem(ctx context.Context, item *models.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if err := s.repo.UpdateItem(item); err != nil {
		return err
	}
	s.invalidateStats(ctx)
	s.log.Infof("Item updated: %d", item.ID)
	return nil
}

// DeleteItem removes an item by id
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.repo.DeleteItem(id); err != nil {
		return err
	}
	s.invalidateStats(ctx)
	s.log.Infof("Item deleted: %d", id)
	return nil
}

// ImportItems clears the table and bulk-inserts the given items. Returns how
// many rows were cleared.
func (s *Service) ImportItems(ctx context.Context, items []*models.Item) (int64, error) {
	cleared, err := s.repo.DeleteAllItems()
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		if item.Status == "" {
			item.Status = models.StatusListed
		}
		if err := validateItem(item); err != nil {
			return cleared, fmt.Errorf("invalid imported item %q: %w", item.Description, err)
		}
		if err := s.repo.CreateItem(item); err != nil {
			return cleared, err
		}
	}
	s.invalidateStats(ctx)
	s.log.Infof("Imported %d items (cleared %d)", len(items), cleared)
	return cleared, nil
}

// Stats computes the dashboard aggregates, reading through the cache.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	if cached, ok := s.cache.Get(ctx, statsCacheKey); ok {
		stats := &models.Stats{}
		if err := json.Unmarshal([]byte(cached), stats); err == nil {
			return stats, nil
		}
		// A corrupt entry just falls through to a recompute.
		s.log.Warn("Discarding unreadable cached stats")
	}

	items, err := s.repo.ListItems("")
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(items)

	if encoded, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, statsCacheKey, string(encoded), statsCacheTTL); err != nil {
			s.log.Warnf("Failed to cache stats: %v", err)
		}
	}
	return stats, nil
}

// WarmStatsCache recomputes the stats so the next dashboard load is served
// from cache. Called by the nightly cron job.
func (s *Service) WarmStatsCache(ctx context.Context) error {
	s.invalidateStats(ctx)
	_, err := s.Stats(ctx)
	return err
}

// TaxReportItems collects the rows for the tax report: sold items within the
// optional date range and, when requested, the still-listed inventory.
func (s *Service) TaxReportItems(ctx context.Context, start, end string, includeListed bool) (sold, listed []*models.Item, err error) {
	sold, err = s.repo.ListSoldBetween(start, end)
	if err != nil {
		return nil, nil, err
	}
	if includeListed {
		listed, err = s.repo.ListItems(models.StatusListed)
		if err != nil {
			return nil, nil, err
		}
	}
	return sold, listed, nil
}

// MonthSummary totals the sales realized in the given YYYY-MM month.
func (s *Service) MonthSummary(ctx context.Context, month string) (*models.MonthSummary, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", month, err)
	}
	start := t.Format("2006-01-02")
	end := t.AddDate(0, 1, -1).Format("2006-01-02")

	sold, err := s.repo.ListSoldBetween(start, end)
	if err != nil {
		return nil, err
	}

	summary := &models.MonthSummary{Month: month, SoldCount: len(sold)}
	for _, item := range sold {
		if item.SoldFor != nil {
			summary.Revenue += *item.SoldFor
		}
		if p := item.ActualProfit(); p != nil {
			summary.Profit += *p
		}
	}
	summary.Revenue = round2(summary.Revenue)
	summary.Profit = round2(summary.Profit)
	return summary, nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.log.Warnf("Failed to invalidate stats cache: %v", err)
	}
}

func validateItem(item *models.Item) error {
	if item.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalid)
	}
	if len(item.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalid, maxDescriptionLen)
	}
	if item.Status != "" && item.Status != models.StatusListed && item.Status != models.StatusSold {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, item.Status)
	}
	return nil
}
