package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mselser95/nft-market/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id               TEXT PRIMARY KEY,
	maker            TEXT NOT NULL,
	contract_address TEXT NOT NULL,
	token_id         CHAR(64) NOT NULL,
	price            CHAR(64) NOT NULL,
	expiration_time  BIGINT NOT NULL,
	is_sell          BOOLEAN NOT NULL,
	verified         BOOLEAN NOT NULL DEFAULT FALSE,
	raw              TEXT NOT NULL,
	signature        TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS orders_book_idx
	ON orders (contract_address, token_id, is_sell, verified, expiration_time);
CREATE TABLE IF NOT EXISTS nft_contracts (
	contract_address TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	symbol           TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	image            TEXT NOT NULL DEFAULT '',
	total_supply     TEXT NOT NULL DEFAULT '',
	synced           BOOLEAN NOT NULL DEFAULT FALSE,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const orderColumns = `id, maker, contract_address, token_id, price, expiration_time,
	is_sell, verified, raw, signature, created_at`

// PostgresStorage implements Store using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	// AutoMigrate runs EnsureSchema on connect.
	AutoMigrate bool
	Logger      *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(ctx context.Context, cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}

	if cfg.AutoMigrate {
		err = p.EnsureSchema(ctx)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return p, nil
}

// EnsureSchema creates the tables if they do not exist.
func (p *PostgresStorage) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// FindByID returns the order with the given id, or nil.
func (p *PostgresStorage) FindByID(ctx context.Context, id string) (*types.Order, error) {
	return p.FindOne(ctx, Filter{ID: id})
}

// FindOne returns the first order matching the filter, or nil.
func (p *PostgresStorage) FindOne(ctx context.Context, filter Filter) (*types.Order, error) {
	where, args := filter.sql()
	query := "SELECT " + orderColumns + " FROM orders" + where + " LIMIT 1"

	row := p.db.QueryRowContext(ctx, query, args...)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	return order, nil
}

// FindMany returns all orders matching the filter, sorted by price.
func (p *PostgresStorage) FindMany(ctx context.Context, filter Filter, sort Sort) ([]*types.Order, error) {
	where, args := filter.sql()

	direction := "ASC"
	if sort.Price == Descending {
		direction = "DESC"
	}

	// Fixed-width lowercase hex sorts the same as the integer it encodes.
	query := "SELECT " + orderColumns + " FROM orders" + where +
		" ORDER BY price " + direction + ", created_at ASC, id ASC"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*types.Order, 0)
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan order: %w", scanErr)
		}
		orders = append(orders, order)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

// Save inserts the order or replaces it when the id already exists.
func (p *PostgresStorage) Save(ctx context.Context, order *types.Order) error {
	if order.ID == "" {
		return ErrMissingID
	}

	query := `
		INSERT INTO orders (
			id, maker, contract_address, token_id, price, expiration_time,
			is_sell, verified, raw, signature, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			maker = EXCLUDED.maker,
			contract_address = EXCLUDED.contract_address,
			token_id = EXCLUDED.token_id,
			price = EXCLUDED.price,
			expiration_time = EXCLUDED.expiration_time,
			is_sell = EXCLUDED.is_sell,
			verified = EXCLUDED.verified,
			raw = EXCLUDED.raw,
			signature = EXCLUDED.signature
	`

	_, err := p.db.ExecContext(ctx, query,
		order.ID,
		order.Maker,
		order.ContractAddress,
		order.TokenID,
		order.Price,
		order.ExpirationTime,
		order.IsSell,
		order.Verified,
		order.Raw,
		nullString(order.Signature),
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}

	p.logger.Debug("order-stored",
		zap.String("order-id", order.ID),
		zap.Bool("verified", order.Verified))

	return nil
}

// MarkVerified flips verified to true only while the row is still unverified.
func (p *PostgresStorage) MarkVerified(ctx context.Context, id string, signature string) (bool, error) {
	result, err := p.db.ExecContext(ctx,
		`UPDATE orders SET verified = TRUE, signature = $2 WHERE id = $1 AND verified = FALSE`,
		id, signature,
	)
	if err != nil {
		return false, fmt.Errorf("mark verified: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}

// FindNFTContract returns cached contract metadata, or nil.
func (p *PostgresStorage) FindNFTContract(ctx context.Context, address string) (*types.NFTContract, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT contract_address, name, symbol, description, image, total_supply, synced, created_at
		FROM nft_contracts WHERE contract_address = $1`, address)

	var c types.NFTContract
	err := row.Scan(&c.ContractAddress, &c.Name, &c.Symbol, &c.Description, &c.Image, &c.TotalSupply, &c.Synced, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query nft contract: %w", err)
	}

	return &c, nil
}

// SaveNFTContract inserts or replaces contract metadata.
func (p *PostgresStorage) SaveNFTContract(ctx context.Context, c *types.NFTContract) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO nft_contracts (contract_address, name, symbol, description, image, total_supply, synced, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (contract_address) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			description = EXCLUDED.description,
			image = EXCLUDED.image,
			total_supply = EXCLUDED.total_supply,
			synced = EXCLUDED.synced`,
		c.ContractAddress, c.Name, c.Symbol, c.Description, c.Image, c.TotalSupply, c.Synced, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert nft contract: %w", err)
	}

	return nil
}

// Ping checks the database connection.
func (p *PostgresStorage) Ping(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*types.Order, error) {
	var o types.Order
	var signature sql.NullString

	err := row.Scan(
		&o.ID,
		&o.Maker,
		&o.ContractAddress,
		&o.TokenID,
		&o.Price,
		&o.ExpirationTime,
		&o.IsSell,
		&o.Verified,
		&o.Raw,
		&signature,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Signature = signature.String
	return &o, nil
}

func (f Filter) sql() (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.ID != "" {
		add("id = $%d", f.ID)
	}
	if f.ContractAddress != "" {
		add("contract_address = $%d", f.ContractAddress)
	}
	if f.TokenID != "" {
		add("token_id = $%d", f.TokenID)
	}
	if f.Maker != "" {
		add("maker = $%d", f.Maker)
	}
	if f.IsSell != nil {
		add("is_sell = $%d", *f.IsSell)
	}
	if f.Verified != nil {
		add("verified = $%d", *f.Verified)
	}
	if f.NotExpiredAt > 0 {
		add("expiration_time >= $%d", f.NotExpiredAt)
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
