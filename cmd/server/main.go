// Command server runs the notification-first market intelligence hub: it
// wires the exchange adapter, source pollers, alert engine, threat
// detector, enrichment pipeline, notification store, delivery fan-out,
// text-to-speech service, and the REST/WebSocket API into one process.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/ai"
	"github.com/sentineldesk/signalhub/internal/alerts"
	"github.com/sentineldesk/signalhub/internal/api"
	"github.com/sentineldesk/signalhub/internal/config"
	"github.com/sentineldesk/signalhub/internal/credentials"
	"github.com/sentineldesk/signalhub/internal/database"
	"github.com/sentineldesk/signalhub/internal/enrichment"
	"github.com/sentineldesk/signalhub/internal/events"
	"github.com/sentineldesk/signalhub/internal/fanout"
	"github.com/sentineldesk/signalhub/internal/market"
	"github.com/sentineldesk/signalhub/internal/pollers"
	"github.com/sentineldesk/signalhub/internal/snapshot"
	"github.com/sentineldesk/signalhub/internal/store"
	"github.com/sentineldesk/signalhub/internal/threat"
	"github.com/sentineldesk/signalhub/internal/trading"
	"github.com/sentineldesk/signalhub/internal/tts"
	"github.com/sentineldesk/signalhub/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logger.SetGlobalLogger(log)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	alertsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "alerts.db"),
		Profile: database.ProfileStandard,
		Name:    "alerts",
	})
	if err != nil {
		return err
	}
	defer alertsDB.Close()
	if err := alertsDB.Migrate(); err != nil {
		return err
	}

	credsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "credentials.db"),
		Profile: database.ProfileStandard,
		Name:    "credentials",
	})
	if err != nil {
		return err
	}
	defer credsDB.Close()
	if err := credsDB.Migrate(); err != nil {
		return err
	}

	credStore, err := credentials.NewStore(credsDB, filepath.Join(cfg.DataDir, "credentials-mirror"), log)
	if err != nil {
		return err
	}

	snapshotStore, err := snapshot.NewStore(filepath.Join(cfg.DataDir, "poller-snapshots"))
	if err != nil {
		return err
	}

	marketAdapter := market.NewAdapter(
		market.NewHTTPProvider(cfg.Market.BaseURL, cfg.Market.RequestTimeout, log),
		market.RetryPolicy{
			Attempts:  cfg.Market.RetryAttempts,
			BaseDelay: cfg.Market.RetryBaseDelay,
			MaxDelay:  cfg.Market.RetryMaxDelay,
		},
		log,
	)

	broker := trading.StubBroker{}

	eventBus := events.NewBus(log)
	eventBus.Subscribe(events.NotificationCreated, logEvent(log))
	eventBus.Subscribe(events.NotificationRead, logEvent(log))
	eventBus.Subscribe(events.NotificationResponded, logEvent(log))
	eventBus.Subscribe(events.NotificationDeleted, logEvent(log))
	eventBus.Subscribe(events.SourceStatusChanged, logEvent(log))

	notifications := store.New(store.Config{MaxNotifications: cfg.Store.MaxNotifications, Publisher: eventBus}, log)
	defer notifications.Close()

	hub := fanout.NewHub(log)
	enrichmentSvc := enrichment.New(notifications, hub, ai.StubAssistant{}, log)

	alertsRepo := alerts.NewRepository(alertsDB)
	alertEngine := alerts.NewEngine(alertsRepo, marketAdapter, enrichmentSvc, cfg.Alerts.EvaluationInterval, cfg.Alerts.EmergencyBandPercent, log)
	alertEngine.Start(ctx)
	defer alertEngine.Stop()

	threatDetector := threat.NewDetector(broker, marketAdapter, enrichmentSvc, cfg.Threat.EvaluationInterval, cfg.Threat.VelocityWindow, log)
	threatDetector.Start(ctx)
	defer threatDetector.Stop()

	retention := store.NewRetentionSweeper(notifications, cfg.Store.RetentionAge, log)
	if err := retention.Start(); err != nil {
		return err
	}
	defer retention.Stop()

	pollerController := buildPollers(cfg, marketAdapter, broker, enrichmentSvc, hub, snapshotStore, log)
	pollerController.SetPublisher(eventBus)
	pollerController.StartAll(ctx)
	defer pollerController.StopAll()

	ttsService, err := buildTTS(ctx, cfg, credStore, log)
	if err != nil {
		return err
	}

	apiServer := api.New(api.Config{
		Log:                  log,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		DevMode:              cfg.DevMode,
		Notifications:        notifications,
		Alerts:               alertsRepo,
		Enrichment:           enrichmentSvc,
		Broker:               broker,
		Pollers:              pollerController,
		TTS:                  ttsService,
		Hub:                  hub,
		ToastVisibleDuration: cfg.Fanout.ToastVisibleDuration,
		SystemStatus:         dependencyChecker{alertsDB: alertsDB, credsDB: credsDB},
	}, cfg.Port)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- apiServer.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return apiServer.Shutdown(shutdownCtx)
}

// logEvent builds an events.Handler that logs every event at debug level,
// giving the bus a subscriber even before a richer consumer (audit trail,
// metrics) is wired in.
func logEvent(log zerolog.Logger) events.Handler {
	return func(e events.EventData) {
		log.Debug().Str("event_type", string(e.EventType())).Interface("payload", e).Msg("event published")
	}
}

// buildPollers wires every C2 source poller and registers it with a
// Controller. Social and news listening APIs have no in-house
// implementation (external collaborators); until one is configured those
// pollers run against a stub source that reports no new items.
func buildPollers(cfg *config.Config, marketAdapter *market.Adapter, broker trading.Broker, notifier *enrichment.Service, hub *fanout.Hub, snapshotStore *snapshot.Store, log zerolog.Logger) *pollers.Controller {
	controller := pollers.NewController()

	social := pollers.NewSocialPoller(pollers.StubSocialSource{}, notifier, snapshotStore, pollers.SocialPollerConfig{
		Interval:            cfg.Pollers.SocialInterval,
		HighValueAccounts:   map[string]struct{}{},
		EngagementThreshold: 500,
	}, log)
	controller.Register("social", social)

	news := pollers.NewNewsPoller(pollers.StubNewsSource{}, notifier, snapshotStore, pollers.NewsPollerConfig{
		Interval: cfg.Pollers.NewsInterval,
	}, log)
	controller.Register("news", news)

	technical := pollers.NewTechnicalPoller(marketAdapter, notifier, pollers.TechnicalPollerConfig{
		Interval: cfg.Pollers.TechnicalInterval,
		Symbols:  []string{"BTC/USD", "ETH/USD"},
	}, log)
	controller.Register("technical", technical)

	priceUpdates := pollers.NewPriceUpdatePoller(broker, marketAdapter, hub, cfg.Pollers.PriceInterval, log)
	controller.Register("price", priceUpdates)

	return controller
}

// buildTTS assembles the synthesis fallback chain in spec order: premium
// voice vendor, AWS Polly, a second generic vendor, then the local
// fallback that never fails. Each vendor's base URL and API key come from
// the credential store, falling back to environment variables so the
// system still starts before an operator has populated it.
func buildTTS(ctx context.Context, cfg *config.Config, credStore *credentials.Store, log zerolog.Logger) (*tts.Service, error) {
	providers := []tts.Provider{
		tts.NewPremiumProvider("premium",
			credentialOrEnv(credStore, "tts_premium", "base_url", "TTS_PREMIUM_BASE_URL", "https://premium-voice.example"),
			credentialOrEnv(credStore, "tts_premium", "api_key", "TTS_PREMIUM_API_KEY", ""),
			cfg.TTS.ProviderTimeout, log),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load aws config, polly provider unavailable")
	} else {
		providers = append(providers, tts.NewPollyProvider(polly.NewFromConfig(awsCfg), log))
	}

	providers = append(providers,
		tts.NewPremiumProvider("cloud-vendor-b",
			credentialOrEnv(credStore, "tts_cloud_b", "base_url", "TTS_CLOUD_B_BASE_URL", "https://cloud-vendor-b.example"),
			credentialOrEnv(credStore, "tts_cloud_b", "api_key", "TTS_CLOUD_B_API_KEY", ""),
			cfg.TTS.ProviderTimeout, log),
		tts.NewFallbackProvider(),
	)

	return tts.NewService(providers, cfg.TTS.CacheMaxEntries, cfg.TTS.ProviderBackoff, log), nil
}

// credentialOrEnv reads field from the credential store's provider
// snapshot, falling back to an environment variable, then a default.
func credentialOrEnv(store *credentials.Store, provider, field, envKey, fallback string) string {
	if snap, ok, err := store.Get(provider); err == nil && ok {
		if v, ok := snap.Fields[field]; ok && v != "" {
			return v
		}
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

// dependencyChecker reports database reachability for GET /system/status.
type dependencyChecker struct {
	alertsDB *database.DB
	credsDB  *database.DB
}

func (d dependencyChecker) CheckDependencies(ctx context.Context) map[string]string {
	status := map[string]string{}
	if err := d.alertsDB.QuickCheck(ctx); err != nil {
		status["alerts_db"] = err.Error()
	} else {
		status["alerts_db"] = "ok"
	}
	if err := d.credsDB.QuickCheck(ctx); err != nil {
		status["credentials_db"] = err.Error()
	} else {
		status["credentials_db"] = "ok"
	}
	return status
}
