package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldGroupID     = "group_id"
	FieldParticipant = "participant_id"
	FieldPaymentID   = "payment_id"
	FieldRound       = "round"
	FieldMonth       = "month"
	FieldYear        = "year"
	FieldAmountCents = "amount_cents"
	FieldTransaction = "transaction_id"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentScheduler = "scheduler"
	ComponentExport    = "export"
	ComponentRounds    = "rounds"
)
