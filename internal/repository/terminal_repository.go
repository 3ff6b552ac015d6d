package repository

import (
	"context"
	"fmt"
	"time"

	"pos-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type TerminalRepository interface {
	Create(terminal *domain.Terminal) error
	FindByID(id string) (*domain.Terminal, error)
	List(userID string) ([]*domain.Terminal, error)
	Revoke(id string) error
	UpdateLastSeen(id string) error
}

type terminalRepository struct {
	client *kivik.Client
	dbName string
}

func NewTerminalRepository(client *kivik.Client, dbName string) TerminalRepository {
	return &terminalRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *terminalRepository) Create(terminal *domain.Terminal) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("terminal:%s", terminal.ID)
	_, err := db.Put(context.Background(), docID, terminal)
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}

	return nil
}

func (r *terminalRepository) FindByID(id string) (*domain.Terminal, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("terminal:%s", id)
	row := db.Get(context.Background(), docID)

	var terminal domain.Terminal
	if err := row.ScanDoc(&terminal); err != nil {
		return nil, fmt.Errorf("terminal not found")
	}

	return &terminal, nil
}

func (r *terminalRepository) List(userID string) ([]*domain.Terminal, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"_id": map[string]interface{}{
				"$gt": "terminal:",
				"$lt": "terminal:\ufff0",
			},
			"user_id": userID,
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list terminals: %w", err)
	}
	defer rows.Close()

	var terminals []*domain.Terminal
	for rows.Next() {
		var terminal domain.Terminal
		if err := rows.ScanDoc(&terminal); err != nil {
			return nil, fmt.Errorf("failed to scan terminal: %w", err)
		}
		terminals = append(terminals, &terminal)
	}

	return terminals, nil
}

func (r *terminalRepository) Revoke(id string) error {
	terminal, err := r.FindByID(id)
	if err != nil {
		return err
	}

	terminal.IsRevoked = true

	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("terminal:%s", id)
	if err := putWithRev(db, docID, terminal); err != nil {
		return fmt.Errorf("failed to revoke terminal: %w", err)
	}

	return nil
}

func (r *terminalRepository) UpdateLastSeen(id string) error {
	terminal, err := r.FindByID(id)
	if err != nil {
		return err
	}

	terminal.LastSeen = time.Now()

	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("terminal:%s", id)
	if err := putWithRev(db, docID, terminal); err != nil {
		return fmt.Errorf("failed to update terminal: %w", err)
	}

	return nil
}
