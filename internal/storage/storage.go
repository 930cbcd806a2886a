package storage

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/vcscsvcscs/nutrifast/internal/apperr"
)

// Object describes one stored backup
type Object struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// BackupStorage defines the interface for backup storage operations
// Implementations: AzureBlobStorage, LocalStorage, MemoryStorage.
type BackupStorage interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]Object, error)
}

var (
	_ BackupStorage = (*AzureBlobStorage)(nil)
	_ BackupStorage = (*LocalStorage)(nil)
	_ BackupStorage = (*MemoryStorage)(nil)
)

// backupPrefix namespaces backups inside shared containers
const backupPrefix = "backups/"

// CheckName rejects names that could escape the backup namespace
func CheckName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return apperr.Validationf("invalid backup name %q", name)
	}
	return nil
}

func notFound(name string) error {
	return apperr.NotFoundf("backup %s not found", name)
}
