package database

import (
	"log"
	"time"
)

// ErrorReporter persists reported errors to the error_logs table.
// Report is fire-and-forget: a failed write is logged and dropped, it
// never reaches the caller.
type ErrorReporter struct {
	log  *log.Logger
	repo ChatRepository
}

func NewErrorReporter(logger *log.Logger, repo ChatRepository) *ErrorReporter {
	return &ErrorReporter{log: logger, repo: repo}
}

func (r *ErrorReporter) Report(err error) {
	if err == nil {
		return
	}

	occurredAt := time.Now().UTC()
	go func() {
		if dbErr := r.repo.CreateErrorLog(err.Error(), occurredAt); dbErr != nil {
			r.log.Printf("error log write failed: %v (original: %v)", dbErr, err)
		}
	}()
}
