package observability

// Metric name prefixes
const (
	MetricPrefix = "reelspin"
)

// Metric names
const (
	// Spin metrics
	SpinsTotal            = MetricPrefix + ".spins.total"
	SpinBetAmountTotal    = MetricPrefix + ".spins.bet_amount_total"
	SpinWinAmountTotal    = MetricPrefix + ".spins.win_amount_total"
	DecisionFailuresTotal = MetricPrefix + ".spins.decision_failures_total"
	AutoSpinActive        = MetricPrefix + ".autospin.active"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Balance metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"

	// HTTP metrics
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelResult    = "result"
	LabelAutoSpin  = "auto_spin"
	LabelRoute     = "route"
	LabelStatus    = "status"
)

// Spin results
const (
	ResultWin  = "win"
	ResultLose = "lose"
)
