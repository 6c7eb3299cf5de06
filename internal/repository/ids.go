package repository

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newID is the creation time in milliseconds followed by a 9 character random suffix.
func newID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return strconv.FormatInt(now.UnixMilli(), 10) + suffix
}

func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
