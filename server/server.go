package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daskott/addressbook/server/auth"
	"github.com/Daskott/addressbook/server/auth/key"
	"github.com/Daskott/addressbook/server/logger"
	"github.com/Daskott/addressbook/server/models"
	"github.com/Daskott/addressbook/server/reminder"
	"github.com/Daskott/addressbook/server/service"
	"github.com/Daskott/addressbook/server/twilio"
	"github.com/Daskott/addressbook/server/work"
	"github.com/Daskott/addressbook/shared"
	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

type RequestContextKey string

type DecodedJWT struct {
	Claims   *auth.AddressbookTokenClaims
	ErrorMsg string
}

type ResponsePayload struct {
	Errors  []string    `json:"errors"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

var (
	logg     = logger.NewLogger()
	validate = newValidator()
)

// Server holds the dependencies shared by the route handlers
type Server struct {
	keyPair   *key.KeyPair
	contacts  *service.ContactService
	reminders *reminder.Scheduler
}

func NewServer(keyPair *key.KeyPair, contacts *service.ContactService, reminders *reminder.Scheduler) *Server {
	return &Server{keyPair: keyPair, contacts: contacts, reminders: reminders}
}

// Router returns the http handler serving every addressbook route
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(s.initialContextMiddleware)

	router.HandleFunc("/health", s.health).Methods("GET")
	router.HandleFunc("/jwks", s.jwks).Methods("GET")

	protectedRouter := router.PathPrefix("/v1").Subrouter()
	protectedRouter.Use(protectedRouteMiddleware)

	protectedRouter.HandleFunc("/contacts", s.listContacts).Methods("GET")
	protectedRouter.HandleFunc("/contacts", s.createContact).Methods("POST")
	protectedRouter.HandleFunc("/contacts/upcoming-birthdays", s.upcomingBirthdays).Methods("GET")
	protectedRouter.HandleFunc("/contacts/{id:[0-9]+}", s.findContact).Methods("GET")
	protectedRouter.HandleFunc("/contacts/{id:[0-9]+}", s.updateContact).Methods("PUT")
	protectedRouter.HandleFunc("/contacts/{id:[0-9]+}", s.deleteContact).Methods("DELETE")

	protectedRouter.HandleFunc("/reminders", s.findReminderSetting).Methods("GET")
	protectedRouter.HandleFunc("/reminders", s.updateReminderSetting).Methods("PUT")
	protectedRouter.HandleFunc("/reminders/send", s.sendReminder).Methods("POST")

	return router
}

func Start(configArg *viper.Viper, devMode bool) {
	config := shared.ServerConfig{}

	err := configArg.Unmarshal(&config)
	fatalOnError(err)

	err = validate.Struct(config)
	fatalOnError(err)

	if sqliteEnabled(config.Database) && config.Database.Sqlite.PassPhrase == "" {
		logg.Fatal("database.sqlite.passPhrase is required when using sqlite")
	}

	keyPair, err := key.NewKeyPairFromRSAPrivateKeyPem(config.Addressbook.PrivateKeyPem)
	fatalOnError(err)

	configDir := configDirectory(devMode)

	// Pull the latest sqlite backup before the db is opened
	var backup *sqliteBackup
	if sqliteEnabled(config.Database) && config.Google.Storage.EnableSqliteBackupAndSync {
		backup, err = newSqliteBackup(context.Background(), config.Google, configDir)
		fatalOnError(err)

		err = backup.restoreIfMissing(context.Background())
		fatalOnError(err)
	}

	err = models.AutoMigrate(config.Database, configDir)
	fatalOnError(err)

	workerPool := work.NewWorkerAdapter(config.Addressbook.Cron.TimeZone, devMode)

	contactService := service.NewContactService(models.NewContactStore(models.DB()))

	reminders, err := reminder.NewScheduler(workerPool, twilio.NewClient(config.Twilio, devMode), contactService)
	fatalOnError(err)

	if backup != nil {
		err = backup.schedule(workerPool, config.Google.Storage.SqliteBackupSchedule)
		fatalOnError(err)
	}

	workerPool.Start()

	err = reminders.ScheduleReminders(context.Background())
	fatalOnError(err)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%v", config.Addressbook.Listener.Port),
		Handler:      NewServer(keyPair, contactService, reminders).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go serve(server)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down addressbook server...")
	cleanup(workerPool, server, backup)
}

func sqliteEnabled(dbConfig shared.DatabaseConfig) bool {
	return dbConfig.Driver == "" || dbConfig.Driver == models.SQLITE_DRIVER
}
