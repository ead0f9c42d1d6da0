package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Daskott/addressbook/server/gstorage"
	"github.com/Daskott/addressbook/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStorage struct {
	downloadErr error
	downloads   []string
	uploads     []string
}

func (f *fakeObjectStorage) UploadFile(ctx context.Context, bucket, object, filePath string) error {
	f.uploads = append(f.uploads, bucket+"/"+object)
	return nil
}

func (f *fakeObjectStorage) DownloadFile(ctx context.Context, bucket, object, destFileName string) error {
	f.downloads = append(f.downloads, bucket+"/"+object)
	if f.downloadErr != nil {
		return f.downloadErr
	}
	return os.WriteFile(destFileName, []byte("backup"), 0600)
}

func newTestBackup(storage objectStorage, dbFilePath string) *sqliteBackup {
	return &sqliteBackup{
		storage:    storage,
		bucket:     "addressbook",
		object:     "addressbook-test/" + models.DB_NAME,
		dbFilePath: dbFilePath,
	}
}

func TestRestoreIfMissing(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps an existing db file", func(t *testing.T) {
		dbFilePath := filepath.Join(t.TempDir(), models.DB_NAME)
		require.Nil(t, os.WriteFile(dbFilePath, []byte("local"), 0600))

		storage := &fakeObjectStorage{}
		assert.Nil(t, newTestBackup(storage, dbFilePath).restoreIfMissing(ctx))
		assert.Empty(t, storage.downloads, "Should not download over a local db")

		content, err := os.ReadFile(dbFilePath)
		require.Nil(t, err)
		assert.Equal(t, "local", string(content))
	})

	t.Run("downloads the backup when there's no db file", func(t *testing.T) {
		dbFilePath := filepath.Join(t.TempDir(), models.DB_NAME)

		storage := &fakeObjectStorage{}
		assert.Nil(t, newTestBackup(storage, dbFilePath).restoreIfMissing(ctx))
		assert.Equal(t, []string{"addressbook/addressbook-test/addressbook.db"}, storage.downloads)

		content, err := os.ReadFile(dbFilePath)
		require.Nil(t, err)
		assert.Equal(t, "backup", string(content))
	})

	t.Run("starts fresh when there's no backup", func(t *testing.T) {
		dbFilePath := filepath.Join(t.TempDir(), models.DB_NAME)

		storage := &fakeObjectStorage{downloadErr: gstorage.ErrObjectNotExist}
		assert.Nil(t, newTestBackup(storage, dbFilePath).restoreIfMissing(ctx))
		assert.Len(t, storage.downloads, 1)
	})

	t.Run("returns other download errors", func(t *testing.T) {
		dbFilePath := filepath.Join(t.TempDir(), models.DB_NAME)

		storage := &fakeObjectStorage{downloadErr: errors.New("permission denied")}
		assert.NotNil(t, newTestBackup(storage, dbFilePath).restoreIfMissing(ctx))
	})
}

func TestBackupUpload(t *testing.T) {
	models.InitializeTestDb()

	storage := &fakeObjectStorage{}
	err := newTestBackup(storage, filepath.Join(t.TempDir(), models.DB_NAME)).upload(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, []string{"addressbook/addressbook-test/addressbook.db"}, storage.uploads)
}
