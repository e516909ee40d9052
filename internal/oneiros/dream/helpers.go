package dream

import (
	"time"

	"github.com/oneiros/oneiros/internal/oneiros/errs"
	"github.com/oneiros/oneiros/internal/oneiros/id"
)

func parseID(s string) (id.Id, error) {
	parsed, err := id.Parse(s)
	if err != nil {
		return id.Id{}, &errs.MalformedIDError{Cause: err}
	}
	return parsed, nil
}

func parseTime(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, &errs.SerializationError{Context: "created_at", Cause: err}
	}
	return ts, nil
}
