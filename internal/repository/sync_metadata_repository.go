package repository

import (
	"context"
	"fmt"
	"time"

	"pos-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type SyncMetadataRepository interface {
	Get(userID, terminalID string) (*domain.SyncMetadata, error)
	UpdateLastSync(userID, terminalID string, timestamp time.Time) error
}

type syncMetadataRepository struct {
	client *kivik.Client
	dbName string
}

func NewSyncMetadataRepository(client *kivik.Client, dbName string) SyncMetadataRepository {
	return &syncMetadataRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *syncMetadataRepository) Get(userID, terminalID string) (*domain.SyncMetadata, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("sync:%s:%s", userID, terminalID)
	row := db.Get(context.Background(), docID)

	var metadata domain.SyncMetadata
	if err := row.ScanDoc(&metadata); err != nil {
		// First sync for this terminal.
		return &domain.SyncMetadata{
			UserID:     userID,
			TerminalID: terminalID,
			UpdatedAt:  time.Now(),
		}, nil
	}

	return &metadata, nil
}

func (r *syncMetadataRepository) UpdateLastSync(userID, terminalID string, timestamp time.Time) error {
	db := r.client.DB(r.dbName)

	metadata := &domain.SyncMetadata{
		UserID:       userID,
		TerminalID:   terminalID,
		LastSyncTime: timestamp,
		UpdatedAt:    time.Now(),
	}

	docID := fmt.Sprintf("sync:%s:%s", userID, terminalID)
	if err := putWithRev(db, docID, metadata); err != nil {
		return fmt.Errorf("failed to update sync metadata: %w", err)
	}

	return nil
}
