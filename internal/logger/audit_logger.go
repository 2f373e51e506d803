// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated trail of data mutations.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogTableWrite logs a write of a derived table.
func (al *AuditLogger) LogTableWrite(schema, table, mode string, rows int64) {
	al.WithFields(logrus.Fields{
		"schema": schema,
		"table":  table,
		"mode":   mode,
		"rows":   rows,
	}).Info("Table written")
}

// LogSourceRefresh logs an ingestion refresh of one source.
func (al *AuditLogger) LogSourceRefresh(source string, season int, fetched, stored, failed int, at time.Time) {
	al.WithFields(logrus.Fields{
		"source":    source,
		"season":    season,
		"fetched":   fetched,
		"stored":    stored,
		"failed":    failed,
		"timestamp": at.Unix(),
	}).Info("Source refreshed")
}

// LogReportExport logs an exported analytics report.
func (al *AuditLogger) LogReportExport(report, format, path string, rows int) {
	al.WithFields(logrus.Fields{
		"report": report,
		"format": format,
		"path":   path,
		"rows":   rows,
	}).Info("Report exported")
}
