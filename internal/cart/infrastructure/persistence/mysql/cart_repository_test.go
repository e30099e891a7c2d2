package mysql

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

// 行项删除必须是物理 DELETE。软删只置 deleted_at，墓碑行仍占住
// (cart_id, product_id) 唯一索引，之后同一商品的加购会走 upsert 的
// UPDATE 分支落在一条查不出来的死行上。
func TestDeleteItemIssuesHardDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	mock.ExpectExec("^" + regexp.QuoteMeta("DELETE FROM `cart_items` WHERE cart_id = ? AND product_id = ?") + "$").
		WithArgs(5, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteItem(context.Background(), 5, 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearItemsIssuesHardDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	mock.ExpectExec("^" + regexp.QuoteMeta("DELETE FROM `cart_items` WHERE cart_id = ?") + "$").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.ClearItems(context.Background(), 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertItemAccumulatesQuantityAndRefreshesPrice(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	mock.ExpectExec("INSERT INTO `cart_items` .*ON DUPLICATE KEY UPDATE.*`price`=VALUES\\(price\\).*quantity \\+ VALUES\\(quantity\\)").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpsertItem(context.Background(), 5, 7, 2, decimal.RequireFromString("7.50"))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 移除后再次加购同一商品：DELETE 释放唯一索引位，upsert 走 INSERT 分支
func TestRemoveThenReAddHitsFreshRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	mock.ExpectExec("^" + regexp.QuoteMeta("DELETE FROM `cart_items` WHERE cart_id = ? AND product_id = ?") + "$").
		WithArgs(5, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `cart_items` .*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(2, 1))

	require.NoError(t, repo.DeleteItem(context.Background(), 5, 7))
	require.NoError(t, repo.UpsertItem(context.Background(), 5, 7, 3, decimal.RequireFromString("5.00")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkConvertedReleasesActiveKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCartRepository(db)

	mock.ExpectExec("UPDATE `carts` SET .*`active_key`=\\?.*WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkConverted(context.Background(), 5))
	require.NoError(t, mock.ExpectationsWereMet())
}
