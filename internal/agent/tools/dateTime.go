package tools

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// DateTimeSpec answers two kinds of query: the current date and time, and the
// number of days between two ISO dates found in the input.
func DateTimeSpec() Spec {
	return Spec{
		Name: "datetime_tool",
		Description: "Useful for date and time queries. Ask for the 'current' date/time, " +
			"or 'days between YYYY-MM-DD and YYYY-MM-DD' to count days between two dates.",
		Run: runDateTime,
	}
}

func runDateTime(query string) string {
	q := strings.ToLower(query)

	if strings.Contains(q, "current") || strings.Contains(q, "now") || strings.Contains(q, "today") {
		return fmt.Sprintf("Current date and time: %s", time.Now().Format("2006-01-02 15:04:05"))
	}

	if strings.Contains(q, "days between") || strings.Contains(q, "difference") {
		dates := isoDateRe.FindAllString(query, -1)
		if len(dates) < 2 {
			return "Error: please provide two dates in YYYY-MM-DD format, e.g. 'days between 2024-01-01 and 2024-12-31'."
		}
		from, err := time.Parse("2006-01-02", dates[0])
		if err != nil {
			return fmt.Sprintf("Error: could not parse date %q.", dates[0])
		}
		to, err := time.Parse("2006-01-02", dates[1])
		if err != nil {
			return fmt.Sprintf("Error: could not parse date %q.", dates[1])
		}
		days := int(to.Sub(from).Hours() / 24)
		if days < 0 {
			days = -days
		}
		return fmt.Sprintf("There are %d days between %s and %s.", days, dates[0], dates[1])
	}

	return "I can tell you the current date/time (ask for 'current date') or count days between " +
		"two dates (ask 'days between YYYY-MM-DD and YYYY-MM-DD')."
}
