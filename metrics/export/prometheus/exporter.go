package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cdi-dev/sessionauth"
)

type metricsSource interface {
	MetricsSnapshot() sessionauth.MetricsSnapshot
	AuditDropped() uint64
}

type counterDef struct {
	ID   sessionauth.MetricID
	Name string
	Help string
}

var counterDefs = []counterDef{
	{sessionauth.MetricLoginSuccess, "sessionauth_login_success_total", "Successful logins."},
	{sessionauth.MetricLoginFailure, "sessionauth_login_failure_total", "Rejected login attempts."},
	{sessionauth.MetricLogout, "sessionauth_logout_total", "Logout operations."},
	{sessionauth.MetricVerifyAccepted, "sessionauth_verify_accepted_total", "Tokens accepted by verification."},
	{sessionauth.MetricVerifyRejected, "sessionauth_verify_rejected_total", "Tokens rejected by verification."},
	{sessionauth.MetricVerifyNoToken, "sessionauth_verify_no_token_total", "Requests carrying no token."},
	{sessionauth.MetricPasswordChangeSuccess, "sessionauth_password_change_success_total", "Completed password changes."},
	{sessionauth.MetricPasswordChangeFailure, "sessionauth_password_change_failure_total", "Failed password change attempts."},
	{sessionauth.MetricSessionsRevoked, "sessionauth_sessions_revoked_total", "Session index reseeds after password change."},
}

// Exporter renders engine metrics in Prometheus text exposition format.
type Exporter struct {
	source metricsSource
}

// NewExporter creates an exporter that reads from the given engine.
func NewExporter(engine *sessionauth.Engine) *Exporter {
	return &Exporter{source: engine}
}

// NewExporterFromSource creates an exporter from a custom source.
func NewExporterFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler that serves the rendered metrics.
func (p *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render writes the current counters in Prometheus text exposition format.
func (p *Exporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()

	var b strings.Builder
	b.Grow(4096)

	for _, def := range counterDefs {
		writeCounter(&b, def.Name, def.Help, snapshot.Counters[def.ID])
	}
	writeCounter(&b, "sessionauth_audit_dropped_total",
		"Dropped audit events due to dispatcher backpressure.", p.source.AuditDropped())

	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(help)
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}
