// internal/config/doc.go

// Package config loads the storefront configuration.
//
// # Resolution Order
//
//  1. Built-in defaults (see Default)
//  2. The TOML file passed to Load, or ~/.config/gamershop/config.toml
//  3. GAMERSHOP_* environment variables
//
// A missing config file is not an error. Empty string fields fall back to
// their defaults after the overrides are applied, and tilde paths are
// expanded. The command line loads a .env file into the environment before
// calling Load, so variables defined there take part in step 3.
//
// # TOML Format
//
//	listen_addr = "127.0.0.1:8080"
//
//	[catalog]
//	addr = "127.0.0.1:8081"
//	url = ""            # remote catalog; empty serves it in process
//	dsn = ""            # Postgres catalog; empty uses the built-in list
//	page_size = 12
//
//	[storage]
//	backend = "bolt"    # memory | bolt | postgres | redis
//	path = "~/.local/share/gamershop/cart.db"
//	dsn = ""
//	redis_addr = ""
//	key = "gamer-shop-cart"
//	user_id = ""        # optional UUID stamped on the cart blob
//
//	[flags]
//	path = ""           # feature flag JSON; empty uses the embedded document
//
//	[log]
//	level = "info"
//	format = "console"  # console | json
//
//	[telemetry]
//	otlp_endpoint = ""  # host:port of an OTLP/HTTP collector; empty disables tracing
//	otlp_insecure = false
//
//	[rate_limit]
//	rps = 20
//	burst = 40
//
// # Environment Overrides
//
//   - GAMERSHOP_LISTEN_ADDR, GAMERSHOP_CATALOG_ADDR, GAMERSHOP_CATALOG_URL
//   - GAMERSHOP_CATALOG_DSN, GAMERSHOP_PAGE_SIZE
//   - GAMERSHOP_STORAGE_BACKEND, GAMERSHOP_STORAGE_PATH, GAMERSHOP_STORAGE_DSN
//   - GAMERSHOP_REDIS_ADDR, GAMERSHOP_REDIS_PASSWORD, GAMERSHOP_REDIS_DB
//   - GAMERSHOP_CART_KEY, GAMERSHOP_USER_ID, GAMERSHOP_FLAGS_PATH
//   - GAMERSHOP_LOG_LEVEL, GAMERSHOP_LOG_FORMAT
//   - GAMERSHOP_OTLP_ENDPOINT, GAMERSHOP_OTLP_INSECURE
//   - GAMERSHOP_RATE_LIMIT
//
// DATABASE_URL is honoured as the storage DSN when none is configured.
package config
