package services

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// ParseDate parses YYYY-MM-DD as a UTC calendar date.
func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

func FormatDate(d datatypes.Date) string {
	t := time.Time(d)
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func today() datatypes.Date {
	y, m, d := time.Now().UTC().Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
