package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahjmorrison/onnaflips/internal/models"
)

func fp(v float64) *float64 { return &v }
func sp(s string) *string   { return &s }

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db, "sqlite"), mock
}

// nv unwraps nullable fixture fields into plain driver values.
func nv[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func itemRows(items ...*models.Item) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "date_bought", "date_sold", "description", "cost",
		"listing_price", "sold_for", "status", "notes", "created_at", "updated_at",
	})
	for _, it := range items {
		rows.AddRow(it.ID, nv(it.DateBought), nv(it.DateSold), it.Description, it.Cost,
			nv(it.ListingPrice), nv(it.SoldFor), it.Status, nv(it.Notes), it.CreatedAt, it.UpdatedAt)
	}
	return rows
}

func TestCreateItem(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO items").
		WithArgs("2024-03-01", nil, "vintage lamp", 25.0, 80.0, nil,
			models.StatusListed, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	item := &models.Item{
		DateBought:   sp("2024-03-01"),
		Description:  "vintage lamp",
		Cost:         25,
		ListingPrice: fp(80),
		Status:       models.StatusListed,
	}
	require.NoError(t, repo.CreateItem(item))
	assert.Equal(t, int64(12), item.ID)
	assert.NotEmpty(t, item.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindItemByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM items WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(itemRows())

	_, err := repo.FindItemByID(99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListItemsFiltersByStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	stored := &models.Item{
		ID:          3,
		DateBought:  sp("2024-02-10"),
		DateSold:    sp("2024-02-20"),
		Description: "record player",
		Cost:        15,
		SoldFor:     fp(95),
		Status:      models.StatusSold,
		CreatedAt:   "2024-02-10T12:00:00Z",
		UpdatedAt:   "2024-02-20T12:00:00Z",
	}
	mock.ExpectQuery("SELECT (.+) FROM items WHERE status").
		WithArgs(models.StatusSold).
		WillReturnRows(itemRows(stored))

	items, err := repo.ListItems(models.StatusSold)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "record player", items[0].Description)
	require.NotNil(t, items[0].SoldFor)
	assert.Equal(t, 95.0, *items[0].SoldFor)
	assert.Nil(t, items[0].ListingPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSoldBetweenAppliesRange(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM items WHERE status = (.+) AND date_sold >= (.+) AND date_sold <=").
		WithArgs(models.StatusSold, "2024-01-01", "2024-12-31").
		WillReturnRows(itemRows())

	items, err := repo.ListSoldBetween("2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItemNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE items").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateItem(&models.Item{ID: 42, Description: "gone", Status: models.StatusListed})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteItem(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM items WHERE id").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DeleteItem(5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAllItems(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM items").
		WillReturnResult(sqlmock.NewResult(0, 37))

	n, err := repo.DeleteAllItems()
	require.NoError(t, err)
	assert.Equal(t, int64(37), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
