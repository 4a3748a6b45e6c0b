package index

// schemaTemplate defines the chunk table. The single %d is the HNSW
// dimension, which must match the embedding model's output.
const schemaTemplate = `
    DEFINE TABLE IF NOT EXISTS chunk SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS content ON chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS source ON chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS metadata ON chunk TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS embedding ON chunk TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS created ON chunk TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS chunk_source ON chunk FIELDS source;
    DEFINE INDEX IF NOT EXISTS chunk_embedding ON chunk FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
`
