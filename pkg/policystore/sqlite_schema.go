package policystore

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the policy store schema.
const Schema = `
-- Collections and the embedding dimensionality they were created with
CREATE TABLE IF NOT EXISTS collections (
    name TEXT PRIMARY KEY,
    dimensions INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

-- Policy chunks
CREATE TABLE IF NOT EXISTS chunks (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    document_id TEXT NOT NULL,
    chunk_index INTEGER NOT NULL,
    text TEXT NOT NULL,
    metadata TEXT NOT NULL,
    embedding BLOB NOT NULL,

    -- Insertion order, kept across re-upserts
    seq INTEGER NOT NULL,

    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(collection, document_id, chunk_index);
CREATE INDEX IF NOT EXISTS idx_chunks_seq ON chunks(collection, seq);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertCollection = `
INSERT INTO collections (name, dimensions, created_at)
VALUES (?, ?, ?)
ON CONFLICT(name) DO NOTHING;
`

const getCollectionDimensions = `
SELECT dimensions FROM collections WHERE name = ?;
`

const upsertChunk = `
INSERT INTO chunks (collection, id, document_id, chunk_index, text, metadata, embedding, seq, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET
    document_id = excluded.document_id,
    chunk_index = excluded.chunk_index,
    text = excluded.text,
    metadata = excluded.metadata,
    embedding = excluded.embedding,
    updated_at = excluded.updated_at;
`

const selectChunks = `
SELECT id, document_id, chunk_index, text, metadata, embedding, seq, created_at, updated_at
FROM chunks
WHERE collection = ?
ORDER BY seq ASC;
`

const deleteChunk = `
DELETE FROM chunks
WHERE collection = ? AND id = ?;
`
