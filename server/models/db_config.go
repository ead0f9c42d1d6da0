package models

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/Daskott/addressbook/server/logger"
	"github.com/Daskott/addressbook/shared"
	"github.com/Daskott/addressbook/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	DB_NAME         = "addressbook.db"
	SQLITE_DRIVER   = "sqlite"
	POSTGRES_DRIVER = "postgres"
)

var logg = logger.NewLogger()
var db *gorm.DB

// AutoMigrate opens the db configured in 'dbConfig', migrates the schema
// and inserts seed data
func AutoMigrate(dbConfig shared.DatabaseConfig, dbRootDir string) error {
	err := openDB(dbConfig, dbRootDir)
	if err != nil {
		return err
	}

	return migrate()
}

// InitializeTestDb creates a fresh encrypted sqlite db in a temp directory
func InitializeTestDb() {
	dir, err := os.MkdirTemp("", "addressbook-test-")
	if err != nil {
		log.Panic(err)
	}

	err = AutoMigrate(shared.DatabaseConfig{
		Driver: SQLITE_DRIVER,
		Sqlite: shared.SqliteConfig{PassPhrase: "test-passphrase"},
	}, dir)
	if err != nil {
		log.Panic(err)
	}
}

func DB() *gorm.DB {
	return db
}

// SqliteDbFilePath returns the path of the sqlite db file under 'dbRootDir'
func SqliteDbFilePath(dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dbDir, DB_NAME), nil
}

func DbDirectory(dbRootDir string) (string, error) {
	dbDir := filepath.Join(dbRootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func openDB(dbConfig shared.DatabaseConfig, dbRootDir string) error {
	var dialector gorm.Dialector

	switch dbConfig.Driver {
	case POSTGRES_DRIVER:
		dialector = postgres.Open(dbConfig.Postgres.DSN)
	case SQLITE_DRIVER, "":
		dsn, err := sqliteDSN(dbConfig.Sqlite.PassPhrase, dbRootDir)
		if err != nil {
			return fmt.Errorf("failed to set sqlite DSN: %v", err)
		}
		dialector = sqliteEncrypt.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver %q", dbConfig.Driver)
	}

	var err error
	db, err = gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}

	return nil
}

func migrate() error {
	err := db.AutoMigrate(&JobStatus{}, &Job{}, &Contact{}, &ReminderSetting{})
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %v", err)
	}

	err = backfillContactSearchColumns()
	if err != nil {
		return fmt.Errorf("failed to backfill contact search columns: %v", err)
	}

	return populateDBWithSeedData()
}

// backfillContactSearchColumns fills the search columns of contacts
// stored before those columns existed
func backfillContactSearchColumns() error {
	contacts := []Contact{}

	return db.Where("first_name_search = ''").FindInBatches(&contacts, 100, func(_ *gorm.DB, _ int) error {
		for i := range contacts {
			contacts[i].fillSearchColumns()

			err := db.Model(&contacts[i]).Select("first_name_search", "last_name_search", "email_search").
				Updates(&contacts[i]).Error
			if err != nil {
				return err
			}
		}
		return nil
	}).Error
}

func populateDBWithSeedData() error {
	if err := db.First(&JobStatus{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'JobStatus'")
		return db.Create(&[]JobStatus{
			{Name: ENQUEUED_JOB}, {Name: IN_PROGRESS_JOB}, {Name: SUCCESSFUL_JOB}, {Name: DEAD_JOB},
		}).Error
	}

	return nil
}

func sqliteDSN(passPhrase string, dbRootDir string) (string, error) {
	dbFilePath, err := SqliteDbFilePath(dbRootDir)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"file:%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL",
		dbFilePath,
		passPhrase,
	), nil
}
