// Path: internal/service/storage.go
package service

import (
	"context"

	"catalog-viewer/internal/domain"
)

// Fetcher is the fetch collaborator: one page of the remote catalog.
type Fetcher interface {
	FetchPage(ctx context.Context, page, size int) (*domain.Page, error)
}

// SessionStorage defines the interface for persisting a viewer session.
type SessionStorage interface {
	// Load returns the stored session, or nil, nil when there is none.
	Load(ctx context.Context, id string) (*domain.SessionDocument, error)

	// Save inserts or replaces the session identified by doc.ID.
	Save(ctx context.Context, doc domain.SessionDocument) error
}
