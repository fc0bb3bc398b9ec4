package database

import (
	"database/sql"
	"time"
)

const selectRemovals = `
	SELECT id, timestamp, action, path, directory, root, size, error_message
	FROM removals
	`

// GetRecentRemovals returns the N most recent removal attempts
func (d *RemovalDB) GetRecentRemovals(limit int) ([]RemovalRecord, error) {
	return d.queryRemovals(selectRemovals+`
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, limit)
}

// GetRemovalsByDateRange returns removal attempts within a time range
func (d *RemovalDB) GetRemovalsByDateRange(start, end time.Time) ([]RemovalRecord, error) {
	return d.queryRemovals(selectRemovals+`
	WHERE timestamp BETWEEN ? AND ?
	ORDER BY timestamp DESC, id DESC
	`, start, end)
}

// GetRemovalsByAction returns removal attempts filtered by action
func (d *RemovalDB) GetRemovalsByAction(action string) ([]RemovalRecord, error) {
	return d.queryRemovals(selectRemovals+`
	WHERE action = ?
	ORDER BY timestamp DESC, id DESC
	`, action)
}

// GetRemovalsByPath returns removal attempts matching a path pattern (SQL LIKE)
func (d *RemovalDB) GetRemovalsByPath(pathPattern string) ([]RemovalRecord, error) {
	return d.queryRemovals(selectRemovals+`
	WHERE path LIKE ?
	ORDER BY timestamp DESC, id DESC
	`, pathPattern)
}

// GetLargestRemovals returns the N largest successful removals by size
func (d *RemovalDB) GetLargestRemovals(limit int) ([]RemovalRecord, error) {
	return d.queryRemovals(selectRemovals+`
	WHERE action = 'DELETE'
	ORDER BY size DESC, id DESC
	LIMIT ?
	`, limit)
}

// GetBytesRemoved returns total bytes removed in a time range
func (d *RemovalDB) GetBytesRemoved(start, end time.Time) (int64, error) {
	var total int64
	err := d.db.QueryRow(`
	SELECT COALESCE(SUM(size), 0)
	FROM removals
	WHERE action = 'DELETE' AND timestamp BETWEEN ? AND ?
	`, start, end).Scan(&total)
	return total, err
}

// RemovalStats holds aggregated statistics
type RemovalStats struct {
	TotalRemoved int            `json:"total_removed"`
	TotalSkipped int            `json:"total_skipped"`
	TotalErrors  int            `json:"total_errors"`
	BytesRemoved int64          `json:"bytes_removed"`
	ByRoot       map[string]int `json:"by_root"`
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
}

// GetRemovalStats returns statistics for the last days
func (d *RemovalDB) GetRemovalStats(days int) (*RemovalStats, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	stats := &RemovalStats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'SKIP' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END)
		FROM removals
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalRemoved, &stats.TotalSkipped, &stats.TotalErrors)
	if err != nil {
		return nil, err
	}

	stats.BytesRemoved, err = d.GetBytesRemoved(since, now)
	if err != nil {
		return nil, err
	}

	stats.ByRoot, err = d.countByRoot(since)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// countByRoot returns successful removals grouped by root
func (d *RemovalDB) countByRoot(since time.Time) (map[string]int, error) {
	rows, err := d.db.Query(`
	SELECT root, COUNT(*)
	FROM removals
	WHERE action = 'DELETE' AND timestamp >= ?
	GROUP BY root
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var root string
		var count int
		if err := rows.Scan(&root, &count); err != nil {
			return nil, err
		}
		counts[root] = count
	}

	return counts, rows.Err()
}

// DeleteOldRecords removes records older than specified days
func (d *RemovalDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`DELETE FROM removals WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// queryRemovals executes a query and scans the resulting rows
func (d *RemovalDB) queryRemovals(query string, args ...interface{}) ([]RemovalRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RemovalRecord
	for rows.Next() {
		var r RemovalRecord
		var errMsg sql.NullString

		if err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Action, &r.Path,
			&r.Directory, &r.Root, &r.Size, &errMsg,
		); err != nil {
			return nil, err
		}

		if errMsg.Valid {
			r.ErrorMessage = errMsg.String
		}

		records = append(records, r)
	}

	return records, rows.Err()
}
