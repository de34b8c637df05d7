package tablesource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradepostapp/tradepost/internal/pricing"
)

// PostgresLoader reads the rule tables from Postgres. The schema mirrors
// the YAML document: one relation per table, loaded in full on every Load.
type PostgresLoader struct {
	pool *pgxpool.Pool
}

func NewPostgresLoader(ctx context.Context, databaseURL string) (*PostgresLoader, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.ConnConfig.Tracer = newQueryTracer()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresLoader{pool: pool}, nil
}

func (l *PostgresLoader) Load(ctx context.Context) (*pricing.Tables, error) {
	doc := &pricing.TableDocument{}

	if err := l.loadCurrencies(ctx, doc); err != nil {
		return nil, err
	}
	if err := l.loadCountries(ctx, doc); err != nil {
		return nil, err
	}
	if err := l.loadTiers(ctx, doc); err != nil {
		return nil, err
	}
	if err := l.loadShipping(ctx, doc); err != nil {
		return nil, err
	}
	if err := l.loadPayments(ctx, doc); err != nil {
		return nil, err
	}

	return pricing.NewTables(doc)
}

func (l *PostgresLoader) Close() error {
	l.pool.Close()
	return nil
}

func (l *PostgresLoader) loadCurrencies(ctx context.Context, doc *pricing.TableDocument) error {
	rows, err := l.pool.Query(ctx, `
		SELECT code, symbol, rate_to_base, minor_units, thousands_sep, decimal_sep, symbol_after
		FROM currencies
		ORDER BY code`)
	if err != nil {
		return fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c pricing.CurrencyConfig
		if err := rows.Scan(&c.Code, &c.Symbol, &c.RateToBase, &c.MinorUnits, &c.ThousandsSep, &c.DecimalSep, &c.SymbolAfter); err != nil {
			return fmt.Errorf("failed to scan currency row: %w", err)
		}
		doc.Currencies = append(doc.Currencies, c)
	}
	return rows.Err()
}

func (l *PostgresLoader) loadCountries(ctx context.Context, doc *pricing.TableDocument) error {
	rows, err := l.pool.Query(ctx, `
		SELECT code, name, default_currency, zone
		FROM countries
		ORDER BY code`)
	if err != nil {
		return fmt.Errorf("failed to query countries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c pricing.CountryConfig
		if err := rows.Scan(&c.Code, &c.Name, &c.DefaultCurrency, &c.Zone); err != nil {
			return fmt.Errorf("failed to scan country row: %w", err)
		}
		doc.Countries = append(doc.Countries, c)
	}
	return rows.Err()
}

func (l *PostgresLoader) loadTiers(ctx context.Context, doc *pricing.TableDocument) error {
	rows, err := l.pool.Query(ctx, `
		SELECT min_price, max_price, rate
		FROM commission_tiers
		ORDER BY min_price`)
	if err != nil {
		return fmt.Errorf("failed to query commission tiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t pricing.CommissionTierConfig
		if err := rows.Scan(&t.MinPrice, &t.MaxPrice, &t.Rate); err != nil {
			return fmt.Errorf("failed to scan commission tier row: %w", err)
		}
		doc.Tiers = append(doc.Tiers, t)
	}
	return rows.Err()
}

func (l *PostgresLoader) loadShipping(ctx context.Context, doc *pricing.TableDocument) error {
	rows, err := l.pool.Query(ctx, `
		SELECT id, zone, COALESCE(country_override, ''), base_rate, per_kg_rate, eta_label, tracking, insured, carrier
		FROM shipping_methods
		ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to query shipping methods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m pricing.ShippingMethodConfig
		if err := rows.Scan(&m.ID, &m.Zone, &m.CountryOverride, &m.BaseRate, &m.PerKgRate, &m.ETALabel, &m.Tracking, &m.Insured, &m.Carrier); err != nil {
			return fmt.Errorf("failed to scan shipping method row: %w", err)
		}
		doc.Shipping = append(doc.Shipping, m)
	}
	return rows.Err()
}

func (l *PostgresLoader) loadPayments(ctx context.Context, doc *pricing.TableDocument) error {
	rows, err := l.pool.Query(ctx, `
		SELECT id, name, fee_percent, supported_currencies, zones, countries
		FROM payment_methods
		ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to query payment methods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m pricing.PaymentMethodConfig
		if err := rows.Scan(&m.ID, &m.Name, &m.FeePercent, &m.SupportedCurrencies, &m.Zones, &m.Countries); err != nil {
			return fmt.Errorf("failed to scan payment method row: %w", err)
		}
		doc.Payments = append(doc.Payments, m)
	}
	return rows.Err()
}
