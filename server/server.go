package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/AkashSundaramoorthi/Haven/channel"
	"github.com/AkashSundaramoorthi/Haven/coordinator"
	"github.com/AkashSundaramoorthi/Haven/dispatch"
	"github.com/AkashSundaramoorthi/Haven/haptics"
	"github.com/AkashSundaramoorthi/Haven/location"
	"github.com/AkashSundaramoorthi/Haven/registry"
	"github.com/AkashSundaramoorthi/Haven/server/auth"
	"github.com/AkashSundaramoorthi/Haven/server/auth/key"
	"github.com/AkashSundaramoorthi/Haven/server/gstorage"
	"github.com/AkashSundaramoorthi/Haven/server/logger"
	"github.com/AkashSundaramoorthi/Haven/shared"
	"github.com/AkashSundaramoorthi/Haven/store"
	"github.com/AkashSundaramoorthi/Haven/utils"
	"github.com/AkashSundaramoorthi/Haven/voice"
	"github.com/go-co-op/gocron"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

var (
	logg     = logger.NewLogger()
	validate = validator.New()

	serverConfig shared.ServerConfig
	authKeyPair  *key.KeyPair
	coord        *coordinator.Coordinator
	voiceBridge  *voice.Bridge
)

type RequestContextKey string

type DecodedJWT struct {
	Claims   *auth.HavenTokenClaims
	ErrorMsg string
}

// Start wires the emergency-response core & serves the HTTP API the
// device shell talks to. Blocks until SIGINT/SIGTERM.
func Start(config *viper.Viper, devMode bool) {
	fatalOnError(RegisterValidators(validate))
	fatalOnError(config.Unmarshal(&serverConfig))
	fatalOnError(validate.Struct(serverConfig))

	var err error
	authKeyPair, err = key.NewKeyPairFromRSAPrivateKeyPem(serverConfig.Haven.PrivateKeyPem)
	fatalOnError(err)

	configDir := configDirectory(devMode)
	scheduler := gocron.NewScheduler(time.UTC)

	kv := openStore(configDir, scheduler)
	reg := registry.NewRegistry(kv)

	voiceBridge = voice.NewBridge()
	monitor := voice.NewMonitor(voiceBridge, voice.ShellPermissions{}, serverConfig.Haven.Voice.TriggerPhrase)
	if serverConfig.Haven.Voice.Locale != "" {
		monitor.SetLocale(serverConfig.Haven.Voice.Locale)
	}
	if serverConfig.Haven.Voice.RestartDelayMs > 0 {
		monitor.SetRestartDelay(time.Duration(serverConfig.Haven.Voice.RestartDelayMs) * time.Millisecond)
	}

	dispatcher := dispatch.NewDispatcher(
		reg,
		location.NewHTTPLocator(serverConfig.Haven.Alert.LocationEndpoint),
		channel.NewTwilioOpener(serverConfig.Twilio),
		haptics.LogNotifier{},
	)
	if serverConfig.Haven.Alert.SendDelayMs > 0 {
		dispatcher.SetSendDelay(time.Duration(serverConfig.Haven.Alert.SendDelayMs) * time.Millisecond)
	}

	coord = coordinator.New(reg, monitor, dispatcher)
	coord.Start()
	scheduler.StartAsync()

	server := &http.Server{
		Handler: router(),
		Addr:    fmt.Sprintf(":%v", serverConfig.Haven.Listener.Port),
	}
	go serve(server)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cleanup(server, scheduler)
}

func router() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(initialContextMiddleware)

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.HandleFunc("/jwks.json", jwks).Methods("GET")
	router.HandleFunc("/login", logIn).Methods("POST")

	protected := router.NewRoute().Subrouter()
	protected.Use(protectedRouteMiddleware)

	protected.HandleFunc("/contacts", listContacts).Methods("GET")
	protected.HandleFunc("/contacts", addContact).Methods("POST")
	protected.HandleFunc("/contacts/{id}", updateContact).Methods("PUT")
	protected.HandleFunc("/contacts/{id}", removeContact).Methods("DELETE")
	protected.HandleFunc("/contacts/{id}/phone-number", updateContactPhoneNumber).Methods("PUT")

	protected.HandleFunc("/emergency-number", getEmergencyNumber).Methods("GET")
	protected.HandleFunc("/emergency-number", setEmergencyNumber).Methods("PUT")

	protected.HandleFunc("/alert", sendAlert).Methods("POST")

	protected.HandleFunc("/voice", voiceStatus).Methods("GET")
	protected.HandleFunc("/voice/start", startVoice).Methods("POST")
	protected.HandleFunc("/voice/stop", stopVoice).Methods("POST")
	protected.HandleFunc("/voice/events", injectVoiceEvent).Methods("POST")

	return router
}

// openStore opens the encrypted kv db, restoring the last backup when the
// local file is missing & scheduling periodic backups when enabled.
func openStore(configDir string, scheduler *gocron.Scheduler) store.KV {
	storageConfig := serverConfig.Google.Storage
	backupEnabled := storageConfig.EnableDbBackupAndSync == true

	dbDir, err := store.DbDirectory(configDir)
	fatalOnError(err)
	dbFilePath := filepath.Join(dbDir, store.DB_NAME)

	var gs *gstorage.GStorage
	if backupEnabled {
		gs, err = gstorage.NewGStorage(serverConfig.Google.ApplicationCredentials)
		fatalOnError(err)

		if !utils.FileExist(dbFilePath) {
			err = gs.Restore(storageConfig.Bucket, storageConfig.Prefix, store.DB_NAME, dbFilePath)
			if err == gstorage.ErrObjectNotExist {
				logg.Info("no db backup found, starting fresh")
			} else if err != nil {
				logg.Errorf("db restore failed: %v", err)
			}
		}
	}

	kv, err := store.NewSqliteKV(serverConfig.Sqlite.PassPhrase, configDir)
	fatalOnError(err)

	if backupEnabled {
		scheduler.Cron(storageConfig.DbBackupSchedule).Tag("db_backup").Do(func() {
			if err := gs.Backup(storageConfig.Bucket, storageConfig.Prefix, dbFilePath); err != nil {
				logg.Errorf("db backup failed: %v", err)
				return
			}
			logg.Info("db backup uploaded")
		})
	}

	return kv
}
