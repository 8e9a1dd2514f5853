package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldCollection  = "collection"
	FieldOwner       = "owner"
	FieldRecordID    = "record_id"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldMonth       = "month"
	FieldBlobPath    = "blob_path"
)

// Standard component names.
const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentStore        = "store"
	ComponentBlobs        = "blobs"
	ComponentTransactions = "transactions"
	ComponentBudgets      = "budgets"
	ComponentRecurring    = "recurring"
	ComponentProfile      = "profile"
	ComponentAlerts       = "alerts"
	ComponentSnapshot     = "snapshot"
	ComponentNotify       = "notify"
	ComponentExport       = "export"
	ComponentWorker       = "worker"
)
