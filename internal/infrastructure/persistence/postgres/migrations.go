// Package postgres implements PostgreSQL persistence layer for Tabletop Mastering.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE PLAYERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create players table
-- Version: 001

CREATE TABLE IF NOT EXISTS players (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(254) NOT NULL UNIQUE,
    password_hash VARCHAR(100) NOT NULL,
    display_name VARCHAR(100) NOT NULL,
    avatar_url TEXT NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    last_seen_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    joined_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_status CHECK (status IN ('active', 'inactive', 'left', 'suspended'))
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_players_email ON players(email);
CREATE INDEX IF NOT EXISTS idx_players_status ON players(status);
CREATE INDEX IF NOT EXISTS idx_players_last_seen_at ON players(last_seen_at);
`

const migration001Down = `
DROP TABLE IF EXISTS players;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE GROUPS AND GAMES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create groups and the game catalog
-- Version: 002

CREATE TABLE IF NOT EXISTS groups (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(100) NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    owner_id UUID NOT NULL REFERENCES players(id),
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Members keyed by player id:
    -- {"<uuid>": {"role": "admin", "joined_at": "..."}}
    members JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE INDEX IF NOT EXISTS idx_groups_owner_id ON groups(owner_id);
CREATE INDEX IF NOT EXISTS idx_groups_members ON groups USING GIN (members);
CREATE INDEX IF NOT EXISTS idx_groups_active ON groups(created_at) WHERE is_deleted = FALSE;

-- Game catalog, one row per game per group
CREATE TABLE IF NOT EXISTS games (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    name VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    source VARCHAR(10) NOT NULL DEFAULT 'manual',
    external_id BIGINT NOT NULL DEFAULT 0,
    min_players INTEGER NOT NULL DEFAULT 0,
    max_players INTEGER NOT NULL DEFAULT 0,
    play_time_minutes INTEGER NOT NULL DEFAULT 0,
    year_published INTEGER NOT NULL DEFAULT 0,
    thumbnail_url TEXT NOT NULL DEFAULT '',
    rating DECIMAL(4,2) NOT NULL DEFAULT 0.00,
    synced_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_source CHECK (source IN ('manual', 'bgg')),
    CONSTRAINT valid_player_range CHECK (
        (min_players = 0 AND max_players = 0) OR
        (min_players >= 1 AND max_players >= min_players)
    )
);

CREATE INDEX IF NOT EXISTS idx_games_group_id ON games(group_id);
CREATE INDEX IF NOT EXISTS idx_games_name ON games(group_id, name);
CREATE INDEX IF NOT EXISTS idx_games_synced ON games(external_id) WHERE source = 'bgg';

-- A BGG game appears at most once per group catalog
CREATE UNIQUE INDEX IF NOT EXISTS idx_games_group_external
    ON games(group_id, external_id) WHERE external_id > 0;
`

const migration002Down = `
DROP TABLE IF EXISTS games;
DROP TABLE IF EXISTS groups;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE MATCHES AND PLAYER STATS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create matches and cumulative player stats
-- Version: 003

CREATE TABLE IF NOT EXISTS matches (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    game_id UUID NOT NULL REFERENCES games(id),
    created_by UUID NOT NULL REFERENCES players(id),
    status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
    scheduled_at TIMESTAMP WITH TIME ZONE NOT NULL,
    location TEXT NOT NULL DEFAULT '',

    -- Participant ids in scheduling order: ["<uuid>", ...]
    participants JSONB NOT NULL DEFAULT '[]'::jsonb,

    -- Results after the match is finished:
    -- [{"player_id": "...", "position": 1, "score": 87, "points": 10}]
    results JSONB NOT NULL DEFAULT '[]'::jsonb,

    finished_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_match_status CHECK (status IN ('scheduled', 'finished', 'cancelled', 'expired'))
);

CREATE INDEX IF NOT EXISTS idx_matches_group_id ON matches(group_id, scheduled_at DESC);
CREATE INDEX IF NOT EXISTS idx_matches_game_id ON matches(game_id);
CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
CREATE INDEX IF NOT EXISTS idx_matches_participants ON matches USING GIN (participants);
CREATE INDEX IF NOT EXISTS idx_matches_overdue ON matches(scheduled_at) WHERE status = 'scheduled';

-- Cumulative per-player, per-group counters.
-- Updated with single-statement upsert increments on match finish.
CREATE TABLE IF NOT EXISTS player_stats (
    group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    matches_played INTEGER NOT NULL DEFAULT 0,
    wins INTEGER NOT NULL DEFAULT 0,
    total_points INTEGER NOT NULL DEFAULT 0,
    last_played_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (group_id, player_id),

    CONSTRAINT valid_counters CHECK (
        matches_played >= 0 AND wins >= 0 AND total_points >= 0 AND wins <= matches_played
    )
);

CREATE INDEX IF NOT EXISTS idx_player_stats_ranking
    ON player_stats(group_id, total_points DESC, created_at ASC);
`

const migration003Down = `
DROP TABLE IF EXISTS player_stats;
DROP TABLE IF EXISTS matches;
`
