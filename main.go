package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/hotel-ops/config"
	"github.com/yeremiapane/hotel-ops/engine"
	"github.com/yeremiapane/hotel-ops/middlewares"
	"github.com/yeremiapane/hotel-ops/notifier"
	"github.com/yeremiapane/hotel-ops/relay"
	"github.com/yeremiapane/hotel-ops/router"
	"github.com/yeremiapane/hotel-ops/services"
	"github.com/yeremiapane/hotel-ops/store"
	"github.com/yeremiapane/hotel-ops/utils"
)

func init() {
	// Load .env before anything reads the environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InfoLogger = logrus.New()
	utils.ErrorLogger = logrus.New()

	utils.InfoLogger.SetOutput(os.Stdout)
	utils.ErrorLogger.SetOutput(os.Stderr)

	utils.InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
	utils.ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}

func main() {
	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to open local store: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	events := notifier.NewStaffNotifier(st)

	relayClient := relay.NewClient(cfg.RelayURL, cfg.RelayChannel, cfg.DeviceID)
	eng := engine.New(st, relayClient, events, cfg.DeviceID)

	// order matters: drain the offline queue before the full-sync request
	relayClient.OnConnect(eng.HandleConnect)
	relayClient.OnEnvelope(eng.HandleEnvelope)
	relayClient.OnStateChange(notifier.BroadcastLinkState)
	relayClient.Start()
	defer relayClient.Stop()

	monitor := services.NewQueueMonitor(st, relayClient, eng)
	monitor.Start()
	defer monitor.Stop()

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(st, relayClient, eng)
	r.Use(rateLimiter.RateLimit())
	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	utils.InfoLogger.Printf("Device %s listening on %s (relay %s)", cfg.DeviceID, cfg.APIAddr, cfg.RelayURL)
	if err := r.Run(cfg.APIAddr); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
