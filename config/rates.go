package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Wage schedule seeded by the original payroll data set. Override per
// deployment with JOB_GROUP_RATES, e.g. "A=20,B=30,C=12.50".
const defaultJobGroupRates = "A=20,B=30"

// JobGroupRates parses the JOB_GROUP_RATES env var into the hourly-rate table
// consumed by payroll aggregation. A malformed table is a startup error, not
// something to discover halfway through a report.
func JobGroupRates() (map[string]decimal.Decimal, error) {
	raw := strings.TrimSpace(getEnv("JOB_GROUP_RATES", defaultJobGroupRates))

	rates := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		group, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed JOB_GROUP_RATES entry %q (want GROUP=RATE)", pair)
		}
		group = strings.TrimSpace(group)
		if group == "" {
			return nil, fmt.Errorf("malformed JOB_GROUP_RATES entry %q: empty job group", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("malformed rate for job group %q: %w", group, err)
		}
		rates[group] = rate
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("JOB_GROUP_RATES must define at least one job group")
	}
	return rates, nil
}
