// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

/*
Package main is the entry point for the Sugoi server.

Sugoi serves an anime catalog with per-profile watch history, ratings and
favorites, and recommends content from that history.

# Application Architecture

	RootSupervisor ("sugoi")
	├── DataSupervisor ("data-layer")
	│   ├── Audit logger (batched writes of the audit trail)
	│   └── Dedupe scheduler (optional, DEDUPE_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: koanf with defaults, config file and environment
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB (default) or MySQL
 4. Demo data: optional deterministic seed
 5. Recommendation engine with the four built-in strategies
 6. Audit logger: memory or database backed
 7. Supervisor tree and HTTP server

# Configuration

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	DB_DRIVER=duckdb             # duckdb or mysql
	DUCKDB_PATH=/data/sugoi.duckdb
	MYSQL_DSN=user:pass@tcp(mysql:3306)/sugoi?parseTime=true

	RECOMMEND_DEFAULT_LIMIT=20
	RECOMMEND_SEED=0             # 0 seeds the shuffle from the clock

	DEDUPE_ENABLED=true
	DEDUPE_INTERVAL=1h

	AUDIT_ENABLED=true
	AUDIT_PERSIST=false

CONFIG_PATH points at a YAML file with the same keys grouped by section.

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests for HTTP_SHUTDOWN_TIMEOUT and the audit logger flushes its
buffer before the database is closed.
*/
package main
