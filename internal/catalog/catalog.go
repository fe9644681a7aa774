package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"checkout-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrProductNotFound is returned when a product id is unknown.
var ErrProductNotFound = errors.New("product not found")

// ProductCatalog is the read-only catalog collaborator. The cart core only
// needs identity, price, stock and display fields.
type ProductCatalog interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// PaymentMethodRegistry resolves stored payment methods. GetDefault
// returns (nil, nil) when the scope has none.
type PaymentMethodRegistry interface {
	GetDefault(ctx context.Context, scopeKey string) (*models.PaymentMethod, error)
}

// SQLStore serves both catalog interfaces from Postgres.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore connects to the catalog database.
func NewSQLStore(databaseURL string) (*SQLStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// GetByID retrieves a product by ID
func (s *SQLStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT id, name, image_url, price, stock FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products
func (s *SQLStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT id, name, image_url, price, stock FROM products ORDER BY id")
	return products, err
}

// GetDefault retrieves the default payment method for a scope key.
func (s *SQLStore) GetDefault(ctx context.Context, scopeKey string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := s.db.GetContext(ctx, &method,
		`SELECT id, method_type, label, is_default
		 FROM payment_methods
		 WHERE scope_key = $1 AND is_default
		 ORDER BY created_at DESC LIMIT 1`, scopeKey)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &method, nil
}
