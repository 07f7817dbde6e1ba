package metrics

import (
	"strings"

	"github.com/hardenaudit/hardenaudit/internal/audit"
)

const namespace = "hardenaudit_"

// RecordAudit turns a finished run into gauges and counters.
func RecordAudit(r *Registry, res *audit.Result) {
	r.Describe(namespace+"compliance_percent", "Compliance score of the last audit, 0-100.")
	r.Describe(namespace+"score", "Sum of check credits of the last audit.")
	r.Describe(namespace+"check_score", "Credit earned by each check.")
	r.Describe(namespace+"check_max_score", "Maximum credit of each check.")
	r.Describe(namespace+"check_duration_seconds", "Wall time of each check.")
	r.Describe(namespace+"findings_total", "Findings recorded by the last audit, by check and severity.")
	r.Describe(namespace+"last_run_timestamp_seconds", "Unix time the last audit finished.")
	r.Describe(namespace+"report_write_errors", "Report lines that could not be written.")

	r.Gauge(namespace+"compliance_percent", nil).Set(res.Verdict.Percentage)
	r.Gauge(namespace+"score", nil).Set(res.Verdict.Total)
	r.Gauge(namespace+"last_run_timestamp_seconds", nil).Set(float64(res.FinishedAt.Unix()))
	r.Gauge(namespace+"report_write_errors", nil).Set(float64(res.ReportErrors))

	for _, c := range res.Checks {
		labels := map[string]string{"check": c.Name}
		r.Gauge(namespace+"check_score", labels).Set(c.Score)
		r.Gauge(namespace+"check_max_score", labels).Set(c.MaxScore)
		r.Gauge(namespace+"check_duration_seconds", labels).Set(c.Duration.Seconds())

		for _, f := range c.Findings {
			r.Counter(namespace+"findings_total", map[string]string{
				"check":    c.Name,
				"severity": strings.ToLower(string(f.Severity)),
			}).Inc()
		}
	}
}
