package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/security"
	"github.com/vcscsvcscs/nutrifast/internal/storage"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// snapshotVersion is bumped whenever the snapshot layout changes
const snapshotVersion = 1

const (
	backupNamePrefix = "backup-"
	encryptedSuffix  = ".enc"
)

// SnapshotRepositoryInterface exports and replaces the whole dataset
type SnapshotRepositoryInterface interface {
	Export(ctx context.Context) (*model.Snapshot, error)
	Restore(ctx context.Context, snap *model.Snapshot) error
}

// BackupInfo describes a created backup
type BackupInfo struct {
	Name      string         `json:"name"`
	Size      int            `json:"size"`
	Encrypted bool           `json:"encrypted"`
	Counts    map[string]int `json:"counts"`
}

// BackupService snapshots the database into backup storage and restores it
type BackupService struct {
	snapshots SnapshotRepositoryInterface
	store     storage.BackupStorage
	encryptor *security.Encryptor
	audit     audit.Recorder
	now       Clock
	logger    *zap.Logger
}

// NewBackupService creates a new BackupService. encryptor may be nil, in
// which case backups are stored as plain JSON.
func NewBackupService(snapshots SnapshotRepositoryInterface, store storage.BackupStorage, encryptor *security.Encryptor, recorder audit.Recorder, logger *zap.Logger) *BackupService {
	return &BackupService{
		snapshots: snapshots,
		store:     store,
		encryptor: encryptor,
		audit:     recorder,
		now:       systemClock,
		logger:    logger,
	}
}

// WithClock replaces the time source
func (s *BackupService) WithClock(clock Clock) *BackupService {
	s.now = clock
	return s
}

func snapshotCounts(snap *model.Snapshot) map[string]int {
	counts := map[string]int{
		"products":         len(snap.Products),
		"dishes":           len(snap.Dishes),
		"log_entries":      len(snap.LogEntries),
		"fasting_sessions": len(snap.FastingSessions),
		"fasting_goals":    len(snap.FastingGoals),
		"profile":          0,
	}
	if snap.Profile != nil {
		counts["profile"] = 1
	}
	return counts
}

// Create exports every table, seals the JSON when a key is configured and
// uploads it
func (s *BackupService) Create(ctx context.Context) (*BackupInfo, error) {
	snap, err := s.snapshots.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export snapshot: %w", err)
	}
	snap.Version = snapshotVersion
	snap.CreatedAt = s.now().UTC()

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	name := backupNamePrefix + snap.CreatedAt.Format("20060102T150405Z") + ".json"
	if s.encryptor != nil {
		name += encryptedSuffix
		if data, err = s.encryptor.Seal(data, name); err != nil {
			return nil, fmt.Errorf("failed to encrypt snapshot: %w", err)
		}
	}

	if err := s.store.Put(ctx, name, data); err != nil {
		return nil, err
	}

	info := &BackupInfo{
		Name:      name,
		Size:      len(data),
		Encrypted: s.encryptor != nil,
		Counts:    snapshotCounts(snap),
	}

	if err := s.audit.Record(ctx, audit.Entry{
		OperationType: audit.OperationBackup,
		ResourceType:  audit.ResourceBackup,
		ResourceID:    name,
		AdditionalData: map[string]any{
			"size":      info.Size,
			"encrypted": info.Encrypted,
		},
	}); err != nil {
		s.logger.Warn("failed to audit backup", zap.Error(err), zap.String("backup", name))
	}

	s.logger.Info("backup created",
		zap.String("backup", name),
		zap.Int("size_bytes", info.Size),
		zap.Bool("encrypted", info.Encrypted),
	)
	return info, nil
}

// List returns stored backups, newest first
func (s *BackupService) List(ctx context.Context) ([]storage.Object, error) {
	objects, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	backups := make([]storage.Object, 0, len(objects))
	for _, obj := range objects {
		if strings.HasPrefix(obj.Name, backupNamePrefix) {
			backups = append(backups, obj)
		}
	}
	return backups, nil
}

// validateSnapshot runs every row through the same checks the API applies
// and verifies that ingredients and log entries only reference items carried
// in the snapshot itself
func validateSnapshot(snap *model.Snapshot, now time.Time) error {
	var c apperr.Collector

	nested := func(prefix string, i int, err error) {
		for _, msg := range apperr.MessagesOf(err) {
			c.Addf("%s[%d]: %s", prefix, i, msg)
		}
	}
	checkUUID := func(prefix string, i int, id string) bool {
		if _, err := uuid.Parse(id); err != nil {
			c.Addf("%s[%d]: id %q is not a valid id", prefix, i, id)
			return false
		}
		return true
	}

	products := make(map[string]struct{}, len(snap.Products))
	names := make(map[string]struct{}, len(snap.Products))
	for i := range snap.Products {
		p := &snap.Products[i]
		if err := validateProduct(p); err != nil {
			nested("products", i, err)
		}
		if !checkUUID("products", i, p.ID) {
			continue
		}
		if _, dup := products[p.ID]; dup {
			c.Addf("products[%d]: duplicate id %s", i, p.ID)
		}
		products[p.ID] = struct{}{}
		key := strings.ToLower(p.Name)
		if _, dup := names[key]; dup && key != "" {
			c.Addf("products[%d]: duplicate name %q", i, p.Name)
		}
		names[key] = struct{}{}
	}

	dishes := make(map[string]struct{}, len(snap.Dishes))
	names = make(map[string]struct{}, len(snap.Dishes))
	for i := range snap.Dishes {
		d := &snap.Dishes[i]
		if err := validateDish(d); err != nil {
			nested("dishes", i, err)
		}
		for j, ing := range d.Ingredients {
			if _, err := uuid.Parse(ing.ProductID); err != nil {
				continue
			}
			if _, ok := products[ing.ProductID]; !ok {
				c.Addf("dishes[%d]: ingredients[%d]: product %s is not in the backup", i, j, ing.ProductID)
			}
		}
		if !checkUUID("dishes", i, d.ID) {
			continue
		}
		if _, dup := dishes[d.ID]; dup {
			c.Addf("dishes[%d]: duplicate id %s", i, d.ID)
		}
		dishes[d.ID] = struct{}{}
		key := strings.ToLower(d.Name)
		if _, dup := names[key]; dup && key != "" {
			c.Addf("dishes[%d]: duplicate name %q", i, d.Name)
		}
		names[key] = struct{}{}
	}

	for i := range snap.LogEntries {
		e := &snap.LogEntries[i]
		checkUUID("log_entries", i, e.ID)
		prefix := fmt.Sprintf("log_entries[%d]: ", i)
		checkEntryFields(&c, prefix, e)
		c.Check(!e.Date.IsZero(), "%sdate is required", prefix)

		var known bool
		switch e.ItemType {
		case model.ItemProduct:
			_, known = products[e.ItemID]
		case model.ItemDish:
			_, known = dishes[e.ItemID]
		default:
			continue
		}
		c.Check(known, "%s%s %s is not in the backup", prefix, e.ItemType, e.ItemID)
	}

	open := 0
	for i := range snap.FastingSessions {
		f := &snap.FastingSessions[i]
		checkUUID("fasting_sessions", i, f.ID)
		_, known := FastingTypes[f.FastingType]
		c.Check(known, "fasting_sessions[%d]: unknown fasting_type %q", i, f.FastingType)
		c.Check(f.Status.Valid(), "fasting_sessions[%d]: unknown status %q", i, f.Status)
		c.Check(!f.StartedAt.IsZero(), "fasting_sessions[%d]: started_at is required", i)
		c.Check(!math.IsNaN(f.PausedSeconds) && f.PausedSeconds >= 0, "fasting_sessions[%d]: paused_seconds must not be negative", i)
		if f.Status.Open() {
			open++
			c.Check(f.EndedAt == nil, "fasting_sessions[%d]: an open session cannot have ended_at", i)
		} else if f.Status.Valid() {
			c.Check(f.EndedAt != nil, "fasting_sessions[%d]: a %s session needs ended_at", i, f.Status)
		}
		if f.EndedAt != nil {
			c.Check(!f.EndedAt.Before(f.StartedAt), "fasting_sessions[%d]: ended_at is before started_at", i)
		}
	}
	c.Check(open <= 1, "at most one fasting session may be open, backup has %d", open)

	for i := range snap.FastingGoals {
		g := &snap.FastingGoals[i]
		checkUUID("fasting_goals", i, g.ID)
		if err := validateGoal(g); err != nil {
			nested("fasting_goals", i, err)
		}
	}

	if snap.Profile != nil {
		if err := validateProfile(snap.Profile, now); err != nil {
			for _, msg := range apperr.MessagesOf(err) {
				c.Addf("profile: %s", msg)
			}
		}
	}

	return c.Err()
}

// Restore replaces every table with the contents of the named backup
func (s *BackupService) Restore(ctx context.Context, name string) (map[string]int, error) {
	if err := storage.CheckName(name); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(name, backupNamePrefix) {
		return nil, apperr.Validationf("%s is not a backup", name)
	}

	data, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(name, encryptedSuffix) {
		if s.encryptor == nil {
			return nil, apperr.Validationf("backup %s is encrypted but no encryption key is configured", name)
		}
		if data, err = s.encryptor.Open(data, name); err != nil {
			s.logger.Error("failed to decrypt backup", zap.Error(err), zap.String("backup", name))
			return nil, apperr.Validationf("backup %s could not be decrypted", name)
		}
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperr.Validationf("backup %s is not a valid snapshot: %v", name, err)
	}
	if snap.Version != snapshotVersion {
		return nil, apperr.Validationf("backup %s has unsupported version %d", name, snap.Version)
	}

	if err := validateSnapshot(&snap, s.now()); err != nil {
		s.logger.Warn("backup rejected",
			zap.String("backup", name),
			zap.Strings("problems", apperr.MessagesOf(err)),
		)
		return nil, err
	}

	if err := s.snapshots.Restore(ctx, &snap); err != nil {
		s.logger.Error("failed to restore backup", zap.Error(err), zap.String("backup", name))
		return nil, err
	}

	counts := snapshotCounts(&snap)
	if err := s.audit.Record(ctx, audit.Entry{
		OperationType:  audit.OperationRestore,
		ResourceType:   audit.ResourceBackup,
		ResourceID:     name,
		AdditionalData: map[string]any{"counts": counts},
	}); err != nil {
		s.logger.Warn("failed to audit restore", zap.Error(err), zap.String("backup", name))
	}

	s.logger.Info("backup restored", zap.String("backup", name))
	return counts, nil
}
