package interfaces

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	timestampLayout = "2006-01-02 15:04:05.999999999"
	dateLayout      = "2006-01-02"
)

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(timestampLayout)
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(dateLayout)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// formatFixed rounds half away from zero for display.
func formatFixed(value float64, places int32) string {
	return decimal.NewFromFloat(value).StringFixed(places)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
