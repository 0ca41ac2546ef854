package service

import (
	"context"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahjmorrison/onnaflips/internal/cache"
	"github.com/noahjmorrison/onnaflips/internal/config"
	"github.com/noahjmorrison/onnaflips/internal/models"
	"github.com/noahjmorrison/onnaflips/internal/repository"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(t *testing.T, cfg *config.Config) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc, err := NewService(repository.NewRepository(db, "sqlite"), cache.NewMemoryCache(), quietLogger(), cfg)
	require.NoError(t, err)
	return svc, mock
}

func emptyItemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "date_bought", "date_sold", "description", "cost",
		"listing_price", "sold_for", "status", "notes", "created_at", "updated_at",
	})
}

func TestStatsServedFromCache(t *testing.T) {
	svc, mock := newTestService(t, &config.Config{})

	// One DB round trip, then the cache answers.
	mock.ExpectQuery("SELECT (.+) FROM items").WillReturnRows(emptyItemRows())

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)
	second, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItemRequiresDescription(t *testing.T) {
	svc, mock := newTestService(t, &config.Config{})

	err := svc.CreateItem(context.Background(), &models.Item{Cost: 10})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	cfg := &config.Config{AuthPassword: "flip-it", JWTSecret: "test-secret"}
	svc, _ := newTestService(t, cfg)

	tokenString, err := svc.Login("flip-it")
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestService(t, &config.Config{AuthPassword: "flip-it", JWTSecret: "test-secret"})

	_, err := svc.Login("steal-it")
	assert.Error(t, err)
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	svc, _ := newTestService(t, &config.Config{})

	_, err := svc.Login("anything")
	assert.Error(t, err)
}
