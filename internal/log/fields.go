package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldUserID        = "user_id"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldAmount        = "amount"
	FieldMonth         = "month"
	FieldAnomalyCount  = "anomaly_count"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentInsights  = "insights"
	ComponentLedger    = "ledger"
	ComponentReports   = "reports"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpAnalyze  = "analyze"
	OpExport   = "export"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
