package db

import "fmt"

// schemaSQL returns the schema initialization SQL with HNSW indexes sized to
// the embedder dimension.
func schemaSQL(embeddingDim int) string {
	return fmt.Sprintf(`
    -- ==========================================================================
    -- MEMORY TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS memory SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS entity_type ON memory TYPE string
        ASSERT $value IN ["staff", "mentor"];
    DEFINE FIELD IF NOT EXISTS entity_id ON memory TYPE string;
    DEFINE FIELD IF NOT EXISTS memory_type ON memory TYPE string
        ASSERT $value IN ["fact", "preference", "decision", "insight", "entity_mention"];
    DEFINE FIELD IF NOT EXISTS content ON memory TYPE string;
    DEFINE FIELD IF NOT EXISTS importance ON memory TYPE float
        ASSERT $value >= 0.0 AND $value <= 1.0;
    DEFINE FIELD IF NOT EXISTS relevance_score ON memory TYPE float DEFAULT 1.0
        ASSERT $value >= 0.0 AND $value <= 1.0;
    DEFINE FIELD IF NOT EXISTS embedding ON memory TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS entities_mentioned ON memory TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS source_message_ids ON memory TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS first_mentioned_at ON memory TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS last_accessed_at ON memory TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS access_count ON memory TYPE int DEFAULT 0;

    DEFINE INDEX IF NOT EXISTS memory_owner ON memory FIELDS entity_type, entity_id;
    DEFINE INDEX IF NOT EXISTS memory_embedding ON memory FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

    -- ==========================================================================
    -- SUMMARY TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS summary SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS entity_type ON summary TYPE string
        ASSERT $value IN ["staff", "mentor"];
    DEFINE FIELD IF NOT EXISTS entity_id ON summary TYPE string;
    DEFINE FIELD IF NOT EXISTS message_range_start ON summary TYPE int;
    DEFINE FIELD IF NOT EXISTS message_range_end ON summary TYPE int
        ASSERT $value > message_range_start;
    DEFINE FIELD IF NOT EXISTS message_count ON summary TYPE int;
    DEFINE FIELD IF NOT EXISTS summary_text ON summary TYPE string;
    DEFINE FIELD IF NOT EXISTS key_topics ON summary TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS entities_discussed ON summary TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS decisions_made ON summary TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS embedding ON summary TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS time_range_start ON summary TYPE datetime;
    DEFINE FIELD IF NOT EXISTS time_range_end ON summary TYPE datetime;
    DEFINE FIELD IF NOT EXISTS created_at ON summary TYPE datetime DEFAULT time::now();

    -- One summary per (entity, range); the unique index closes the
    -- check-then-insert race between concurrent first-time summarizers.
    DEFINE INDEX IF NOT EXISTS summary_range ON summary
        FIELDS entity_type, entity_id, message_range_start, message_range_end UNIQUE;

    -- ==========================================================================
    -- MESSAGE TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS message SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS entity_type ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS entity_id ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS role ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON message TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS message_owner ON message FIELDS entity_type, entity_id, created_at;

    -- ==========================================================================
    -- GRAPH NODE TABLE (knowledge graph)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS graph_node SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS entity_id ON graph_node TYPE string;
    DEFINE FIELD IF NOT EXISTS entity_type ON graph_node TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON graph_node TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON graph_node TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS metadata ON graph_node TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS created_at ON graph_node TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON graph_node TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS graph_node_key ON graph_node FIELDS entity_type, entity_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS graph_node_embedding ON graph_node FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

    -- ==========================================================================
    -- DOMAIN ENTITY CARDS (small projections used for hydration and work context)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS domain_entity SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS kind ON domain_entity TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON domain_entity TYPE string;
    DEFINE FIELD IF NOT EXISTS status ON domain_entity TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS priority ON domain_entity TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS active ON domain_entity TYPE bool DEFAULT true;
    DEFINE FIELD IF NOT EXISTS owner_type ON domain_entity TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS owner_id ON domain_entity TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS updated_at ON domain_entity TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS domain_entity_kind ON domain_entity FIELDS kind;
    DEFINE INDEX IF NOT EXISTS domain_entity_owner ON domain_entity FIELDS owner_type, owner_id, kind;

    -- ==========================================================================
    -- PERSONA TABLE (capability flags per conversation owner)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS persona SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS entity_type ON persona TYPE string;
    DEFINE FIELD IF NOT EXISTS entity_id ON persona TYPE string;
    DEFINE FIELD IF NOT EXISTS capabilities ON persona TYPE array<string> DEFAULT [];

    DEFINE INDEX IF NOT EXISTS persona_key ON persona FIELDS entity_type, entity_id UNIQUE;
`, embeddingDim, embeddingDim)
}
