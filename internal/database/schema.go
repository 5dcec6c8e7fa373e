package database

// HamsterSchema is the subset of the Hamster time tracker's schema the
// selector reads. It is applied to in-memory databases so the tool and its
// tests can run without a real Hamster installation.
const HamsterSchema = `
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY,
    name VARCHAR2(500),
    color_code VARCHAR2(50),
    category_order INTEGER,
    search_name VARCHAR2
);

CREATE TABLE IF NOT EXISTS activities (
    id INTEGER PRIMARY KEY,
    name VARCHAR2(500),
    work INTEGER,
    activity_order INTEGER,
    deleted INTEGER,
    category_id INTEGER,
    search_name VARCHAR2
);

CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    autocomplete BOOL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS facts (
    id INTEGER PRIMARY KEY,
    activity_id INTEGER,
    start_time TIMESTAMP,
    end_time TIMESTAMP,
    description VARCHAR2
);

CREATE TABLE IF NOT EXISTS fact_tags (
    fact_id INTEGER,
    tag_id INTEGER
);
`
