package pipeline

const (
	// ReportContentType is the content type of archived snapshot reports.
	ReportContentType = "application/json"

	// ReportSchemaVersion is bumped whenever the Report layout changes.
	ReportSchemaVersion = 1
)
