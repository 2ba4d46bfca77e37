package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
)

// MigrationReportTemplate renders the HTML body of a migration failure report
func MigrationReportTemplate(summary *domain.MigrationSummary) string {
	var b strings.Builder

	b.WriteString("<h2>Schema migration run report</h2>")
	b.WriteString("<table cellpadding=\"4\">")
	fmt.Fprintf(&b, "<tr><td>Started</td><td>%s</td></tr>", summary.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "<tr><td>Finished</td><td>%s</td></tr>", summary.FinishedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "<tr><td>Shared steps applied</td><td>%d</td></tr>", summary.SharedApplied)
	fmt.Fprintf(&b, "<tr><td>Tenants in batch</td><td>%d</td></tr>", summary.TenantsTotal)
	fmt.Fprintf(&b, "<tr><td>Steps applied</td><td>%d</td></tr>", summary.Applied)
	fmt.Fprintf(&b, "<tr><td>Steps skipped</td><td>%d</td></tr>", summary.Skipped)
	fmt.Fprintf(&b, "<tr><td><strong>Tenants failed</strong></td><td><strong>%d</strong></td></tr>", summary.Failed)
	b.WriteString("</table>")

	if len(summary.Failures) > 0 {
		b.WriteString("<h3>Failures</h3><table cellpadding=\"4\" border=\"1\">")
		b.WriteString("<tr><th>Tenant</th><th>Schema</th><th>Step</th><th>Reason</th></tr>")
		for _, f := range summary.Failures {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
				html.EscapeString(f.Slug),
				html.EscapeString(f.SchemaName),
				html.EscapeString(f.Version),
				html.EscapeString(f.Reason),
			)
		}
		b.WriteString("</table>")
		b.WriteString("<p>Failed tenants will be retried on the next run; already-applied steps are skipped automatically.</p>")
	}

	return b.String()
}
