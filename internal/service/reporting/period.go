package reporting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
)

var (
	// ErrInvalidPeriod reports a period whose start falls after its end, or an
	// unknown period name.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidDate reports a user-entered date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, use YYYY-MM-DD")
)

// QuickPeriod names one of the preset reporting windows.
type QuickPeriod string

const (
	ThisWeek  QuickPeriod = "week"
	ThisMonth QuickPeriod = "month"
	LastMonth QuickPeriod = "last_month"
)

// ParseQuickPeriod accepts the usual spellings of the preset windows.
func ParseQuickPeriod(value string) (QuickPeriod, error) {
	normalized := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case "", "week", "this_week", "weekly":
		return ThisWeek, nil
	case "month", "this_month", "monthly":
		return ThisMonth, nil
	case "last_month", "lastmonth", "previous_month":
		return LastMonth, nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", ErrInvalidPeriod, value)
	}
}

// ResolvePeriod turns a preset into concrete dates relative to now:
// the week is the 7 days ending today, the month runs from the 1st to today
// and last month spans the whole previous calendar month.
func ResolvePeriod(kind QuickPeriod, now time.Time) (models.Period, error) {
	today := models.DateOf(now)

	switch kind {
	case ThisWeek:
		return models.Period{Label: "Weekly Summary", Start: today.AddDate(0, 0, -6), End: today}, nil
	case ThisMonth:
		return models.Period{Label: "Monthly Summary", Start: firstOfMonth(today), End: today}, nil
	case LastMonth:
		end := firstOfMonth(today).AddDate(0, 0, -1)
		return models.Period{Label: "Last Month Summary", Start: firstOfMonth(end), End: end}, nil
	default:
		return models.Period{}, fmt.Errorf("%w: unknown period %q", ErrInvalidPeriod, kind)
	}
}

// CustomPeriod validates an explicit inclusive range.
func CustomPeriod(start, end time.Time) (models.Period, error) {
	start, end = models.DateOf(start), models.DateOf(end)
	if start.After(end) {
		return models.Period{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidPeriod, start.Format(models.DateLayout), end.Format(models.DateLayout))
	}
	return models.Period{Label: "Custom Period", Start: start, End: end}, nil
}

// ParseCustomPeriod builds a custom period from user-entered YYYY-MM-DD text.
func ParseCustomPeriod(from, to string) (models.Period, error) {
	start, err := ParseUserDate(from)
	if err != nil {
		return models.Period{}, err
	}
	end, err := ParseUserDate(to)
	if err != nil {
		return models.Period{}, err
	}
	return CustomPeriod(start, end)
}

// MonthPeriod covers one full calendar month.
func MonthPeriod(year, month int) (models.Period, error) {
	if month < 1 || month > 12 {
		return models.Period{}, fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, month)
	}
	if year < 1 {
		return models.Period{}, fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, year)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return models.Period{
		Label: fmt.Sprintf("Monthly Summary - %02d/%d", month, year),
		Start: start,
		End:   start.AddDate(0, 1, -1),
	}, nil
}

// ParseUserDate is strict: unlike stored records, user input must be YYYY-MM-DD.
func ParseUserDate(value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// FilterByPeriod keeps, in order, the records whose date falls inside
// [start, end]. Records with a missing or unparsable date are dropped.
func FilterByPeriod[T any](records []T, start, end time.Time, dateOf func(T) string) []T {
	period := models.Period{Start: start, End: end}
	filtered := make([]T, 0, len(records))
	for _, record := range records {
		date, err := models.ParseDate(dateOf(record))
		if err != nil {
			continue
		}
		if period.Contains(date) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
