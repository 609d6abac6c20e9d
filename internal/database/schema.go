package database

var schema = []string{
	`CREATE TABLE IF NOT EXISTS repositories (
		id UUID PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT repositories_name_key UNIQUE (name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_repositories_created_at ON repositories (created_at)`,
}
