package postgres

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reserveScope/internal/model"
)

// openTestStore connects to the database named by PG_DSN and skips when it is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func testSnapshot(pool string, block uint64, ltv uint16, category *model.EModeCategoryData) model.ReserveSnapshot {
	var emode uint8
	if category != nil {
		emode = category.ID
	}
	return model.ReserveSnapshot{
		ChainID:     1,
		Pool:        pool,
		BlockNumber: block,
		Timestamp:   1700000000 + block,
		Info: model.ReserveInfo{
			Version: "v3",
			Asset:   model.TokenMeta{Address: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Symbol: "WETH", Decimals: 18},
			AToken:  model.TokenMeta{Address: "0x4d5F47FA6A74757f35C14fD3a6Ef8E3C9BC514E8", Symbol: "aEthWETH", Decimals: 18},
			Data:    model.PoolReserveData{Configuration: "0x1f40"},
			Liquidity: model.ReserveLiquidity{
				TotalSupplied:     new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil),
				TotalStableDebt:   big.NewInt(0),
				TotalVariableDebt: big.NewInt(5),
			},
			Config: model.ReserveConfigFields{
				BasicReserveFields: model.BasicReserveFields{LTV: ltv, Active: true},
				Extended:           &model.ExtendedReserveFields{SupplyCap: 2000000, EModeCategory: emode},
			},
			Price:    big.NewInt(200000000000),
			Category: category,
		},
	}
}

func cleanupPool(t *testing.T, store *Store, pool string) {
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = store.pool.Exec(ctx, `DELETE FROM reserve_snapshots WHERE pool_address=$1`, pool)
		_, _ = store.pool.Exec(ctx, `DELETE FROM emode_categories WHERE pool_address=$1`, pool)
	})
}

func TestStorePutSnapshotsUpserts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	pool := fmt.Sprintf("0xpool%d", time.Now().UnixNano())
	cleanupPool(t, store, pool)

	category := &model.EModeCategoryData{ID: 1, LTV: 9300, LiquidationThreshold: 9500, LiquidationBonus: 10100, Label: "ETH correlated"}
	require.NoError(t, store.PutSnapshots(ctx, []model.ReserveSnapshot{testSnapshot(pool, 100, 8000, category)}))
	require.NoError(t, store.PutSnapshots(ctx, []model.ReserveSnapshot{testSnapshot(pool, 100, 8250, category)}))
	require.NoError(t, store.PutSnapshots(ctx, nil))

	var (
		count     int
		ltv       int32
		supplied  string
		supplyCap string
		emode     int16
		symbol    string
	)
	row := store.pool.QueryRow(ctx, `
		SELECT count(*) OVER (), ltv, total_supplied::text, supply_cap::text, emode_category, payload->'asset'->>'symbol'
		FROM reserve_snapshots WHERE pool_address=$1
	`, pool)
	require.NoError(t, row.Scan(&count, &ltv, &supplied, &supplyCap, &emode, &symbol))
	require.Equal(t, 1, count)
	require.Equal(t, int32(8250), ltv)
	require.Equal(t, "1000000000000000000000000000000", supplied)
	require.Equal(t, "2000000", supplyCap)
	require.Equal(t, int16(1), emode)
	require.Equal(t, "WETH", symbol)

	var label string
	var bonus int32
	row = store.pool.QueryRow(ctx, `SELECT label, liquidation_bonus FROM emode_categories WHERE pool_address=$1 AND category_id=1`, pool)
	require.NoError(t, row.Scan(&label, &bonus))
	require.Equal(t, "ETH correlated", label)
	require.Equal(t, int32(10100), bonus)
}

func TestStoreUpsertCategories(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	pool := fmt.Sprintf("0xpool%d", time.Now().UnixNano())
	cleanupPool(t, store, pool)

	require.NoError(t, store.UpsertCategories(ctx, 1, pool, nil))
	require.NoError(t, store.UpsertCategories(ctx, 1, pool, []model.EModeCategoryData{
		{ID: 1, LTV: 9000, Label: "Stablecoins"},
		{ID: 2, LTV: 9300, Label: "ETH correlated"},
	}))
	require.NoError(t, store.UpsertCategories(ctx, 1, pool, []model.EModeCategoryData{
		{ID: 1, LTV: 9700, Label: "Stablecoins"},
	}))

	var count int
	require.NoError(t, store.pool.QueryRow(ctx, `SELECT count(*) FROM emode_categories WHERE pool_address=$1`, pool).Scan(&count))
	require.Equal(t, 2, count)

	var ltv int32
	require.NoError(t, store.pool.QueryRow(ctx, `SELECT ltv FROM emode_categories WHERE pool_address=$1 AND category_id=1`, pool).Scan(&ltv))
	require.Equal(t, int32(9700), ltv)
}

func TestStoreState(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	name := fmt.Sprintf("reserves_test_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = store.pool.Exec(context.Background(), `DELETE FROM exporter_state WHERE name=$1`, name)
	})

	_, ok, err := store.LoadState(ctx, name)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.SaveState(ctx, name, 19000000))
	require.NoError(t, store.SaveState(ctx, name, 19007200))

	block, ok, err := store.LoadState(ctx, name)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(19007200), block)

	_, _, err = store.LoadState(ctx, "")
	require.Error(t, err)
	require.Error(t, store.SaveState(ctx, "", 1))
}
