package repository

import (
	"context"
	"fmt"
	"time"

	"pos-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// ConflictRepository keeps an audit trail of detected conflicts and how
// they were resolved. The live pending queue stays in memory with the
// resolver; these documents survive restarts for review.
type ConflictRepository interface {
	Create(key string, record *domain.ConflictRecord) error
	Get(key string) (*ConflictDocument, error)
	MarkResolved(key string, strategy domain.ResolutionStrategy) error
	ListUnresolved() ([]*ConflictDocument, error)
}

type ConflictDocument struct {
	Key        string                    `json:"key"`
	Record     *domain.ConflictRecord    `json:"record"`
	Resolved   bool                      `json:"resolved"`
	ResolvedAt *time.Time                `json:"resolved_at,omitempty"`
	Strategy   domain.ResolutionStrategy `json:"strategy,omitempty"`
}

type conflictRepository struct {
	client *kivik.Client
	dbName string
}

func NewConflictRepository(client *kivik.Client, dbName string) ConflictRepository {
	return &conflictRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *conflictRepository) Create(key string, record *domain.ConflictRecord) error {
	db := r.client.DB(r.dbName)

	doc := &ConflictDocument{
		Key:    key,
		Record: record,
	}

	docID := fmt.Sprintf("conflict:%s", key)
	_, err := db.Put(context.Background(), docID, doc)
	if err != nil {
		return fmt.Errorf("failed to create conflict record: %w", err)
	}

	return nil
}

func (r *conflictRepository) Get(key string) (*ConflictDocument, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("conflict:%s", key)
	row := db.Get(context.Background(), docID)

	var doc ConflictDocument
	if err := row.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("conflict not found")
	}

	return &doc, nil
}

func (r *conflictRepository) MarkResolved(key string, strategy domain.ResolutionStrategy) error {
	doc, err := r.Get(key)
	if err != nil {
		return err
	}

	now := time.Now()
	doc.Resolved = true
	doc.ResolvedAt = &now
	doc.Strategy = strategy

	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("conflict:%s", key)
	if err := putWithRev(db, docID, doc); err != nil {
		return fmt.Errorf("failed to mark conflict resolved: %w", err)
	}

	return nil
}

func (r *conflictRepository) ListUnresolved() ([]*ConflictDocument, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"_id": map[string]interface{}{
				"$gt": "conflict:",
				"$lt": "conflict:\ufff0",
			},
			"resolved": false,
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}
	defer rows.Close()

	var docs []*ConflictDocument
	for rows.Next() {
		var doc ConflictDocument
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}
		docs = append(docs, &doc)
	}

	return docs, nil
}
