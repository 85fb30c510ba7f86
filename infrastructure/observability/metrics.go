package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"reelspin/config"
	"reelspin/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the slot service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	spinsCounter                 metric.Int64Counter
	betAmountCounter             metric.Int64Counter
	winAmountCounter             metric.Int64Counter
	decisionFailuresCounter      metric.Int64Counter
	autoSpinActiveGauge          metric.Int64UpDownCounter
	natsMessagesPublishedCounter metric.Int64Counter
	balanceTransactionsCounter   metric.Int64Counter
	httpRequestDurationHist      metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)
	otel.SetMeterProvider(mp.meterProvider)

	if err := mp.useMeter(mp.meterProvider.Meter("reelspin")); err != nil {
		return err
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// useMeter creates every instrument on meter and enables recording
func (mp *MetricsProvider) useMeter(meter metric.Meter) error {
	mp.meter = meter
	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}
	mp.enabled = true
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.spinsCounter, err = mp.meter.Int64Counter(
		SpinsTotal,
		metric.WithDescription("Total number of settled spins"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create spins counter: %w", err)
	}

	mp.betAmountCounter, err = mp.meter.Int64Counter(
		SpinBetAmountTotal,
		metric.WithDescription("Total amount staked on settled spins"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create bet amount counter: %w", err)
	}

	mp.winAmountCounter, err = mp.meter.Int64Counter(
		SpinWinAmountTotal,
		metric.WithDescription("Total amount paid out on winning spins"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create win amount counter: %w", err)
	}

	mp.decisionFailuresCounter, err = mp.meter.Int64Counter(
		DecisionFailuresTotal,
		metric.WithDescription("Spins settled as a loss because no decision was available"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create decision failures counter: %w", err)
	}

	mp.autoSpinActiveGauge, err = mp.meter.Int64UpDownCounter(
		AutoSpinActive,
		metric.WithDescription("Accounts with auto-spin currently enabled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create auto spin gauge: %w", err)
	}

	mp.natsMessagesPublishedCounter, err = mp.meter.Int64Counter(
		NATSMessagesPublishedTotal,
		metric.WithDescription("Total number of NATS messages published"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages published counter: %w", err)
	}

	mp.balanceTransactionsCounter, err = mp.meter.Int64Counter(
		BalanceTransactionsTotal,
		metric.WithDescription("Total number of balance transactions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create balance transactions counter: %w", err)
	}

	mp.httpRequestDurationHist, err = mp.meter.Float64Histogram(
		HTTPRequestDuration,
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// Subscribe records spin, balance and auto-spin metrics from bus events
func (mp *MetricsProvider) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeSpinSettled, func(ctx context.Context, e events.Event) {
		if settled, ok := e.(events.SpinSettledEvent); ok {
			mp.RecordSpin(settled)
		}
	})
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		if change, ok := e.(events.BalanceChangeEvent); ok {
			mp.RecordBalanceTransaction(string(change.TransactionType))
		}
	})
	bus.Subscribe(events.EventTypeAutoSpinChanged, func(ctx context.Context, e events.Event) {
		if changed, ok := e.(events.AutoSpinChangedEvent); ok {
			mp.RecordAutoSpinChanged(changed.Enabled)
		}
	})
}

// RecordSpin records one settled spin
func (mp *MetricsProvider) RecordSpin(e events.SpinSettledEvent) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	result := ResultLose
	if e.Result.IsWin {
		result = ResultWin
	}
	attrs := metric.WithAttributes(
		attribute.String(LabelResult, result),
		attribute.Bool(LabelAutoSpin, e.AutoSpin),
	)

	mp.spinsCounter.Add(ctx, 1, attrs)
	mp.betAmountCounter.Add(ctx, e.Result.BetAmount, attrs)
	if e.Result.IsWin {
		mp.winAmountCounter.Add(ctx, e.Result.WinAmount, attrs)
	}
	if e.Result.DecisionFailed {
		mp.decisionFailuresCounter.Add(ctx, 1)
	}
}

// RecordAutoSpinChanged tracks how many accounts have auto-spin on
func (mp *MetricsProvider) RecordAutoSpinChanged(enabled bool) {
	if !mp.isEnabled() {
		return
	}

	delta := int64(-1)
	if enabled {
		delta = 1
	}
	mp.autoSpinActiveGauge.Add(context.Background(), delta)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType events.EventType) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, string(eventType)),
		),
	)
}

// RecordBalanceTransaction records a balance transaction
func (mp *MetricsProvider) RecordBalanceTransaction(transactionType string) {
	if !mp.isEnabled() {
		return
	}

	mp.balanceTransactionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, transactionType),
		),
	)
}

// RecordHTTPRequest records a served HTTP request
func (mp *MetricsProvider) RecordHTTPRequest(route string, status int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	mp.httpRequestDurationHist.Record(context.Background(), duration.Seconds(),
		metric.WithAttributes(
			attribute.String(LabelRoute, route),
			attribute.String(LabelStatus, strconv.Itoa(status)),
		),
	)
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}
