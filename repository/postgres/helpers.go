package postgres

import (
	"time"

	"github.com/truckmitra/backend/domain"
)

// SQLSTATE codes the repositories translate into domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func nullString(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func timeNow() time.Time {
	return domain.Stamp(time.Now())
}
