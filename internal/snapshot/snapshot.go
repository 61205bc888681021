// Package snapshot dumps every table to object storage as one JSON document.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wayfare/backend/internal/models"
)

const contentType = "application/json"

// Dumper reads the current state of every table.
type Dumper interface {
	Dump(ctx context.Context) (*models.SnapshotData, error)
}

// ObjectStore is the subset of store.SnapshotStore used here.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	List(ctx context.Context) ([]models.Snapshot, error)
	Remove(ctx context.Context, key string) error
}

type Service struct {
	dumper Dumper
	store  ObjectStore
	now    func() time.Time
}

func NewService(dumper Dumper, store ObjectStore) *Service {
	return &Service{dumper: dumper, store: store, now: time.Now}
}

// Key names a snapshot taken at t, e.g. "snapshot-20261019T101500Z-<uuid>.json".
func Key(t time.Time) string {
	return fmt.Sprintf("snapshot-%s-%s.json", t.UTC().Format("20060102T150405Z"), uuid.NewString())
}

func (s *Service) Create(ctx context.Context) (*models.Snapshot, error) {
	data, err := s.dumper.Dump(ctx)
	if err != nil {
		return nil, err
	}
	at := s.now().UTC()
	data.TakenAt = at

	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	key := Key(at)
	if err := s.store.Upload(ctx, key, body, contentType); err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}
	return &models.Snapshot{Key: key, Size: int64(len(body)), CreatedAt: at}, nil
}

func (s *Service) Get(ctx context.Context, key string) ([]byte, string, error) {
	return s.store.Download(ctx, key)
}

func (s *Service) List(ctx context.Context) ([]models.Snapshot, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, key string) error {
	return s.store.Remove(ctx, key)
}
