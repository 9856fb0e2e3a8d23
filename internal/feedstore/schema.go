package feedstore

const schema = `
CREATE TABLE IF NOT EXISTS sources (
    name TEXT PRIMARY KEY,
    location TEXT NOT NULL,
    trusted BOOLEAN NOT NULL DEFAULT 0,
    registered_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS provider_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sources_location ON sources(location);
`
