package database

// Queries against the Hamster database. Timestamps are read through
// strftime so the driver hands back plain text in TimeLayout regardless of
// how Hamster wrote them, and compared through datetime() so both sides are
// normalized before the comparison.

const selectSyncState = `
SELECT token_string, strftime('%Y-%m-%d %H:%M:%S', last_update)
FROM google_parameters
ORDER BY rowid
LIMIT 1`

const insertSyncState = `
INSERT INTO google_parameters (token_string, last_update) VALUES (NULL, NULL)`

// The state row is a singleton, so updates apply to every row.
const updateToken = `UPDATE google_parameters SET token_string = ?`

const updateLastSyncTime = `UPDATE google_parameters SET last_update = ?`

// selectFactsSince fans a fact out to one row per tag. Facts without tags
// produce no rows. ?1 is the watermark, or NULL for a full sync.
const selectFactsSince = `
SELECT f.id,
       strftime('%Y-%m-%d %H:%M:%S', f.start_time),
       strftime('%Y-%m-%d %H:%M:%S', f.end_time),
       COALESCE(f.description, ''),
       COALESCE(t.name, ''),
       COALESCE(a.name, '')
FROM facts f
JOIN activities a ON a.id = f.activity_id
JOIN fact_tags ft ON ft.fact_id = f.id
JOIN tags t ON t.id = ft.tag_id
WHERE f.end_time IS NOT NULL
  AND f.start_time IS NOT NULL
  AND (?1 IS NULL OR datetime(f.end_time) >= datetime(?1))
ORDER BY t.name, datetime(f.start_time), f.id`
