package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type OperationLog struct {
	ID           string
	Operation    string
	Description  string
	IPAddress    string
	Method       string
	Path         string
	StatusCode   int
	ErrorMessage string
	ProcessingMS float64
	ExtraInfo    string
	CreatedAt    time.Time
}

// InsertOperationLog records one processing request. The insert runs off the
// request goroutine so logging never delays a response.
func InsertOperationLog(database *sql.DB, l OperationLog) {
	go func() {
		_, _ = database.Exec(
			`INSERT INTO operation_logs
			 (id, operation, description, ip_address, method, path, status_code, error_message, processing_ms, extra_info)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), l.Operation, l.Description, l.IPAddress, l.Method, l.Path,
			l.StatusCode, l.ErrorMessage, l.ProcessingMS, l.ExtraInfo,
		)
	}()
}

func ListOperationLogs(database *sql.DB, limit, offset int, filterOperation string) ([]OperationLog, error) {
	var rows *sql.Rows
	var err error

	if filterOperation != "" {
		rows, err = database.Query(
			`SELECT id, operation, description, ip_address, method, path, status_code, error_message, processing_ms, extra_info, created_at
			 FROM operation_logs WHERE operation = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
			filterOperation, limit, offset,
		)
	} else {
		rows, err = database.Query(
			`SELECT id, operation, description, ip_address, method, path, status_code, error_message, processing_ms, extra_info, created_at
			 FROM operation_logs ORDER BY created_at DESC LIMIT ? OFFSET ?`,
			limit, offset,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []OperationLog
	for rows.Next() {
		var l OperationLog
		var createdAt SQLiteTime
		if err := rows.Scan(&l.ID, &l.Operation, &l.Description, &l.IPAddress, &l.Method, &l.Path,
			&l.StatusCode, &l.ErrorMessage, &l.ProcessingMS, &l.ExtraInfo, &createdAt); err != nil {
			return nil, err
		}
		l.CreatedAt = createdAt.Time
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func CountOperationLogs(database *sql.DB, filterOperation string) (int, error) {
	var count int
	var err error
	if filterOperation != "" {
		err = database.QueryRow(`SELECT COUNT(*) FROM operation_logs WHERE operation = ?`, filterOperation).Scan(&count)
	} else {
		err = database.QueryRow(`SELECT COUNT(*) FROM operation_logs`).Scan(&count)
	}
	return count, err
}
