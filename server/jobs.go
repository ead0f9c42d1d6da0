package server

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/Daskott/addressbook/server/gstorage"
	"github.com/Daskott/addressbook/server/models"
	"github.com/Daskott/addressbook/server/work"
	"github.com/Daskott/addressbook/shared"
	"github.com/Daskott/addressbook/utils"
)

const BACKUP_SQLITE_DB_HANDLER = "backupSqliteDb"

type objectStorage interface {
	UploadFile(ctx context.Context, bucket, object, filePath string) error
	DownloadFile(ctx context.Context, bucket, object, destFileName string) error
}

// sqliteBackup syncs the local sqlite db file with a google storage bucket
type sqliteBackup struct {
	storage    objectStorage
	bucket     string
	object     string
	dbFilePath string
}

func newSqliteBackup(ctx context.Context, config shared.GoogleConfig, dbRootDir string) (*sqliteBackup, error) {
	dbFilePath, err := models.SqliteDbFilePath(dbRootDir)
	if err != nil {
		return nil, err
	}

	storage, err := gstorage.NewGStorage(ctx, config.ApplicationCredentials)
	if err != nil {
		return nil, err
	}

	return &sqliteBackup{
		storage:    storage,
		bucket:     config.Storage.Bucket,
		object:     path.Join(config.Storage.Prefix, models.DB_NAME),
		dbFilePath: dbFilePath,
	}, nil
}

// restoreIfMissing downloads the backup when there's no local db file yet
func (b *sqliteBackup) restoreIfMissing(ctx context.Context) error {
	exists, err := utils.FileExists(b.dbFilePath)
	if err != nil || exists {
		return err
	}

	err = b.storage.DownloadFile(ctx, b.bucket, b.object, b.dbFilePath)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logg.Infof("No sqlite backup found in bucket %v, starting with a new db", b.bucket)
		return nil
	}

	return err
}

func (b *sqliteBackup) upload(ctx context.Context) error {
	// Flush the WAL so the db file is complete on its own
	err := models.DB().WithContext(ctx).Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error
	if err != nil {
		return fmt.Errorf("sqlite checkpoint: %v", err)
	}

	return b.storage.UploadFile(ctx, b.bucket, b.object, b.dbFilePath)
}

func (b *sqliteBackup) schedule(workerPool *work.WorkerPoolAdapter, cronExpression string) error {
	err := workerPool.Register(BACKUP_SQLITE_DB_HANDLER, func(map[string]interface{}) error {
		return b.upload(context.Background())
	})
	if err != nil {
		return err
	}

	return workerPool.PeriodicallyPerform(cronExpression, work.JobParams{
		Name:    BACKUP_SQLITE_DB_HANDLER,
		Handler: BACKUP_SQLITE_DB_HANDLER,
		Args:    map[string]interface{}{},
	})
}
