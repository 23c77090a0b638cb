package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reserveScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS reserve_snapshots (
	chain_id BIGINT NOT NULL,
	pool_address TEXT NOT NULL,
	block_number BIGINT NOT NULL,
	asset_address TEXT NOT NULL,
	block_ts BIGINT NOT NULL,
	version TEXT NOT NULL,
	symbol TEXT NOT NULL,
	atoken_address TEXT NOT NULL,
	configuration TEXT NOT NULL,
	ltv INTEGER NOT NULL,
	liquidation_threshold INTEGER NOT NULL,
	liquidation_bonus INTEGER NOT NULL,
	reserve_factor INTEGER NOT NULL,
	active BOOLEAN NOT NULL,
	frozen BOOLEAN NOT NULL,
	emode_category SMALLINT NOT NULL,
	supply_cap NUMERIC,
	borrow_cap NUMERIC,
	total_supplied NUMERIC,
	available_liquidity NUMERIC,
	total_stable_debt NUMERIC,
	total_variable_debt NUMERIC,
	price NUMERIC,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address, block_number, asset_address)
);

CREATE TABLE IF NOT EXISTS emode_categories (
	chain_id BIGINT NOT NULL,
	pool_address TEXT NOT NULL,
	category_id SMALLINT NOT NULL,
	ltv INTEGER NOT NULL,
	liquidation_threshold INTEGER NOT NULL,
	liquidation_bonus INTEGER NOT NULL,
	price_source TEXT NOT NULL,
	label TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address, category_id)
);

CREATE TABLE IF NOT EXISTS exporter_state (
	name TEXT PRIMARY KEY,
	last_block BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for reserve snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// EnsureSchema creates the tables used by the store.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutSnapshots upserts snapshots and the e-mode categories they reference.
func (s *Store) PutSnapshots(ctx context.Context, snapshots []model.ReserveSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		payload, err := json.Marshal(snap.Info)
		if err != nil {
			return fmt.Errorf("marshal snapshot %s: %w", snap.Info.Asset.Address, err)
		}
		info := snap.Info
		var supplyCap, borrowCap *string
		if ext := info.Config.Extended; ext != nil {
			supplyCap = uintText(ext.SupplyCap)
			borrowCap = uintText(ext.BorrowCap)
		}
		batch.Queue(`
			INSERT INTO reserve_snapshots (
				chain_id, pool_address, block_number, asset_address, block_ts, version, symbol,
				atoken_address, configuration, ltv, liquidation_threshold, liquidation_bonus,
				reserve_factor, active, frozen, emode_category, supply_cap, borrow_cap,
				total_supplied, available_liquidity, total_stable_debt, total_variable_debt,
				price, payload, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
				$17::numeric, $18::numeric, $19::numeric, $20::numeric, $21::numeric, $22::numeric,
				$23::numeric, $24::jsonb, now(), now()
			)
			ON CONFLICT (chain_id, pool_address, block_number, asset_address)
			DO UPDATE SET
				block_ts = EXCLUDED.block_ts,
				version = EXCLUDED.version,
				symbol = EXCLUDED.symbol,
				atoken_address = EXCLUDED.atoken_address,
				configuration = EXCLUDED.configuration,
				ltv = EXCLUDED.ltv,
				liquidation_threshold = EXCLUDED.liquidation_threshold,
				liquidation_bonus = EXCLUDED.liquidation_bonus,
				reserve_factor = EXCLUDED.reserve_factor,
				active = EXCLUDED.active,
				frozen = EXCLUDED.frozen,
				emode_category = EXCLUDED.emode_category,
				supply_cap = EXCLUDED.supply_cap,
				borrow_cap = EXCLUDED.borrow_cap,
				total_supplied = EXCLUDED.total_supplied,
				available_liquidity = EXCLUDED.available_liquidity,
				total_stable_debt = EXCLUDED.total_stable_debt,
				total_variable_debt = EXCLUDED.total_variable_debt,
				price = EXCLUDED.price,
				payload = EXCLUDED.payload,
				updated_at = now()
		`,
			int64(snap.ChainID),
			snap.Pool,
			int64(snap.BlockNumber),
			info.Asset.Address,
			int64(snap.Timestamp),
			info.Version,
			info.Asset.Symbol,
			info.AToken.Address,
			info.Data.Configuration,
			int32(info.Config.LTV),
			int32(info.Config.LiquidationThreshold),
			int32(info.Config.LiquidationBonus),
			int32(info.Config.ReserveFactor),
			info.Config.Active,
			info.Config.Frozen,
			int16(info.Config.EModeCategory()),
			supplyCap,
			borrowCap,
			numericText(info.Liquidity.TotalSupplied),
			numericText(info.Liquidity.Available()),
			numericText(info.Liquidity.TotalStableDebt),
			numericText(info.Liquidity.TotalVariableDebt),
			numericText(info.Price),
			string(payload),
		)
	}

	if err := s.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("upsert snapshots: %w", err)
	}

	categories := make(map[string]map[uint8]model.EModeCategoryData)
	chains := make(map[string]uint64)
	for _, snap := range snapshots {
		if snap.Info.Category == nil {
			continue
		}
		if categories[snap.Pool] == nil {
			categories[snap.Pool] = make(map[uint8]model.EModeCategoryData)
		}
		categories[snap.Pool][snap.Info.Category.ID] = *snap.Info.Category
		chains[snap.Pool] = snap.ChainID
	}
	for pool, byID := range categories {
		list := make([]model.EModeCategoryData, 0, len(byID))
		for _, category := range byID {
			list = append(list, category)
		}
		if err := s.UpsertCategories(ctx, chains[pool], pool, list); err != nil {
			return err
		}
	}
	return nil
}

// UpsertCategories inserts or updates e-mode categories of a pool.
func (s *Store) UpsertCategories(ctx context.Context, chainID uint64, pool string, categories []model.EModeCategoryData) error {
	if len(categories) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range categories {
		batch.Queue(`
			INSERT INTO emode_categories (
				chain_id, pool_address, category_id, ltv, liquidation_threshold, liquidation_bonus,
				price_source, label, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			ON CONFLICT (chain_id, pool_address, category_id)
			DO UPDATE SET
				ltv = EXCLUDED.ltv,
				liquidation_threshold = EXCLUDED.liquidation_threshold,
				liquidation_bonus = EXCLUDED.liquidation_bonus,
				price_source = EXCLUDED.price_source,
				label = EXCLUDED.label,
				updated_at = now()
		`,
			int64(chainID),
			pool,
			int16(c.ID),
			int32(c.LTV),
			int32(c.LiquidationThreshold),
			int32(c.LiquidationBonus),
			c.PriceSource,
			c.Label,
		)
	}
	if err := s.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("upsert categories: %w", err)
	}
	return nil
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the last completed block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_block FROM exporter_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts the last completed block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO exporter_state (name, last_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_block = EXCLUDED.last_block, updated_at = now()
	`, name, int64(block))
	return err
}

func numericText(value *big.Int) *string {
	if value == nil {
		return nil
	}
	text := value.String()
	return &text
}

func uintText(value uint64) *string {
	text := new(big.Int).SetUint64(value).String()
	return &text
}
