package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-kivik/kivik/v4"
)

// putWithRev upserts a document, carrying the current CouchDB revision over
// so updates do not hit a document update conflict. Missing documents are
// created without a revision.
func putWithRev(db *kivik.DB, docID string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	var existing map[string]interface{}
	if err := db.Get(context.Background(), docID).ScanDoc(&existing); err == nil {
		if rev, ok := existing["_rev"].(string); ok {
			raw["_rev"] = rev
		}
	}

	if _, err := db.Put(context.Background(), docID, raw); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	return nil
}
