package postgres

// Schema holds the idempotent DDL for the radar tables. Column names match
// the repository queries in this package. cmd/seed applies it on deploy and
// the integration harness applies it against a throwaway container.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
  id                TEXT PRIMARY KEY,
  telegram_id       BIGINT NOT NULL UNIQUE,
  username          TEXT NOT NULL DEFAULT '',
  steam_token       TEXT NOT NULL DEFAULT '',
  monitoring        BOOLEAN NOT NULL DEFAULT FALSE,
  found_count       INTEGER NOT NULL DEFAULT 0,
  max_finds         INTEGER NOT NULL DEFAULT 10,
  auto_purchase     BOOLEAN NOT NULL DEFAULT TRUE,
  max_price_cents   INTEGER NOT NULL DEFAULT 1000,
  max_item_age_days INTEGER NOT NULL DEFAULT 3,
  registered_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  last_active_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS users_monitoring_idx ON users (monitoring) WHERE monitoring;

CREATE TABLE IF NOT EXISTS creators (
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL DEFAULT '',
  first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
  item_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS opportunities (
  id             TEXT PRIMARY KEY,
  user_id        TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  item_id        BIGINT NOT NULL,
  item_name      TEXT NOT NULL DEFAULT '',
  creator_id     TEXT NOT NULL DEFAULT '',
  creator_name   TEXT NOT NULL DEFAULT '',
  price_cents    INTEGER NOT NULL DEFAULT 0,
  purchased      BOOLEAN NOT NULL DEFAULT FALSE,
  purchase_error TEXT NOT NULL DEFAULT '',
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS opportunities_user_idx ON opportunities (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS processed_items (
  user_id      TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  item_id      BIGINT NOT NULL,
  processed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (user_id, item_id)
);

CREATE INDEX IF NOT EXISTS processed_items_age_idx ON processed_items (processed_at);
`
