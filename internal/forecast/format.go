package forecast

import (
	"fmt"
	"sort"
	"strings"
)

// FormatForDisplay renders a Result as plain human-readable text: header
// fields, one line per forecast step with its confidence bounds, the
// accuracy metric block, and a closing insight sentence. It is pure and
// tolerates malformed results (nil, mismatched sequence lengths) by
// rendering what it can.
func FormatForDisplay(r *Result) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Forecast Report\n")
	b.WriteString("===============\n")
	fmt.Fprintf(&b, "Method:       %s\n", r.Method.DisplayName())
	fmt.Fprintf(&b, "Horizon:      %d periods\n", r.ForecastHorizon)
	fmt.Fprintf(&b, "Trend:        %s\n", r.TrendDirection)
	if r.SeasonalDetected {
		b.WriteString("Seasonality:  detected\n")
	} else {
		b.WriteString("Seasonality:  not detected\n")
	}
	fmt.Fprintf(&b, "Last actual:  %.2f\n", r.LastActualValue)

	steps := len(r.ForecastValues)
	if len(r.ConfidenceUpper) < steps {
		steps = len(r.ConfidenceUpper)
	}
	if len(r.ConfidenceLower) < steps {
		steps = len(r.ConfidenceLower)
	}
	if steps > 0 {
		b.WriteString("\nForecast:\n")
		for i := 0; i < steps; i++ {
			label := fmt.Sprintf("step %d", i+1)
			if i < len(r.ForecastDates) {
				label = r.ForecastDates[i]
			}
			fmt.Fprintf(&b, "  %-12s %10.2f   [%.2f .. %.2f]\n",
				label, r.ForecastValues[i], r.ConfidenceLower[i], r.ConfidenceUpper[i])
		}
	}

	if len(r.AccuracyMetrics) > 0 {
		b.WriteString("\nAccuracy metrics:\n")
		keys := make([]string, 0, len(r.AccuracyMetrics))
		for k := range r.AccuracyMetrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %-18s %.4f\n", k+":", r.AccuracyMetrics[k])
		}
		if r.MethodConfidence != "" {
			fmt.Fprintf(&b, "  %-18s %s\n", "method_confidence:", r.MethodConfidence)
		}
	}

	b.WriteString("\n")
	b.WriteString(insightSentence(r.TrendDirection, r.SeasonalDetected))
	b.WriteString("\n")
	return b.String()
}

// insightSentence produces the one-line qualitative summary keyed off the
// trend direction and the seasonality flag.
func insightSentence(direction TrendDirection, seasonal bool) string {
	var s string
	switch direction {
	case TrendIncreasing:
		s = "Values are projected to rise over the forecast window."
	case TrendDecreasing:
		s = "Values are projected to decline over the forecast window."
	case TrendSeasonal:
		s = "Values are projected to follow a recurring seasonal pattern."
	default:
		s = "Values are projected to hold near their current level."
	}
	if seasonal && direction != TrendSeasonal {
		s += " A seasonal pattern is present in the history."
	}
	return s
}
