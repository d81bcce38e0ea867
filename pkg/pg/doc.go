// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool
// with startup retries, goose schema migrations, and a health check
// closure, plus error classification helpers used by the storage
// implementations.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		log.Fatal(err)
//	}
//
// Error helpers like IsDuplicateKeyError unwrap *pgconn.PgError so
// business logic can map constraint violations to domain errors without
// depending on SQLSTATE codes directly.
package pg
