package store

import (
	"database/sql"
	"strconv"
	"strings"
)

// repeat_days is stored as a comma-joined list ("1,2,5"); NULL means
// one-shot.

func repeatDaysToNull(days []int) sql.NullString {
	if len(days) == 0 {
		return sql.NullString{}
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return sql.NullString{String: strings.Join(parts, ","), Valid: true}
}

func repeatDaysFromNull(ns sql.NullString) ([]int, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	parts := strings.Split(ns.String, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
