package config

// Application constants
const (
	AppName = "Sprint Dashboard"

	// ServiceName is reported to OpenTelemetry and the health endpoint.
	ServiceName = "sprintdash"

	// NoDataMessage is shown in the chart when the dataset is empty.
	NoDataMessage = "No data available. Please check file path."

	// NoTableDataMessage is shown in place of the summary table.
	NoTableDataMessage = "No data available."

	// UnsetLocation labels a candidate whose environment variable is not set.
	UnsetLocation = "N/A (from env)"
)
