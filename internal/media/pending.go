package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"campora/api/internal/util"
)

// Staged uploads live on local disk until the owning dialog saves. A save
// commits them to object storage; closing the dialog releases them. A
// background sweep removes anything older than the TTL in case a client
// disappears without closing.

var ErrPendingNotFound = errors.New("pending upload not found")

type PendingUpload struct {
	ID          string
	FileName    string
	ContentType string
	Size        int64
	StagedAt    time.Time
	path        string
}

type PendingStore struct {
	dir      string
	uploader Uploader
	ttl      time.Duration

	mu      sync.Mutex
	pending map[string]PendingUpload
}

func NewPendingStore(dir string, uploader Uploader, ttl time.Duration) (*PendingStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PendingStore{
		dir:      dir,
		uploader: uploader,
		ttl:      ttl,
		pending:  map[string]PendingUpload{},
	}, nil
}

// Stage validates and spools one upload to disk, returning its pending ID.
func (p *PendingStore) Stage(fileName, contentType string, r io.Reader, size int64) (PendingUpload, error) {
	if err := ValidateUpload(contentType, size); err != nil {
		return PendingUpload{}, err
	}
	id := util.NewID("upl")
	path := filepath.Join(p.dir, id)

	f, err := os.Create(path)
	if err != nil {
		return PendingUpload{}, fmt.Errorf("create staged file: %w", err)
	}
	// Cap the copy one byte past the limit so a lying Content-Length header
	// cannot sneak an oversized body through.
	written, err := io.Copy(f, io.LimitReader(r, MaxUploadBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return PendingUpload{}, fmt.Errorf("spool staged file: %w", err)
	}
	if written > MaxUploadBytes {
		_ = os.Remove(path)
		return PendingUpload{}, ErrTooLarge
	}

	upload := PendingUpload{
		ID:          id,
		FileName:    fileName,
		ContentType: contentType,
		Size:        written,
		StagedAt:    time.Now(),
		path:        path,
	}
	p.mu.Lock()
	p.pending[id] = upload
	p.mu.Unlock()
	return upload, nil
}

// Commit sends one staged upload to object storage and removes it from the
// staging area. The returned URL is what gets written into the page payload.
func (p *PendingStore) Commit(ctx context.Context, schoolID, pendingID string) (string, error) {
	p.mu.Lock()
	upload, ok := p.pending[pendingID]
	p.mu.Unlock()
	if !ok {
		return "", ErrPendingNotFound
	}

	f, err := os.Open(upload.path)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	objectName := ObjectName(schoolID, pendingID, upload.ContentType)
	publicURL, err := p.uploader.Upload(ctx, objectName, upload.ContentType, f, upload.Size)
	if err != nil {
		return "", fmt.Errorf("commit staged upload: %w", err)
	}

	p.mu.Lock()
	delete(p.pending, pendingID)
	p.mu.Unlock()
	_ = os.Remove(upload.path)
	return publicURL, nil
}

// Release discards a staged upload without committing it.
func (p *PendingStore) Release(pendingID string) error {
	p.mu.Lock()
	upload, ok := p.pending[pendingID]
	delete(p.pending, pendingID)
	p.mu.Unlock()
	if !ok {
		return ErrPendingNotFound
	}
	if err := os.Remove(upload.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

// ReleaseAll discards a batch, ignoring IDs already gone.
func (p *PendingStore) ReleaseAll(pendingIDs []string) {
	for _, id := range pendingIDs {
		_ = p.Release(id)
	}
}

// Sweep drops staged uploads older than the TTL and returns how many went.
func (p *PendingStore) Sweep() int {
	cutoff := time.Now().Add(-p.ttl)
	p.mu.Lock()
	var stale []PendingUpload
	for id, upload := range p.pending {
		if upload.StagedAt.Before(cutoff) {
			stale = append(stale, upload)
			delete(p.pending, id)
		}
	}
	p.mu.Unlock()

	for _, upload := range stale {
		_ = os.Remove(upload.path)
	}
	return len(stale)
}

// RunSweeper sweeps on an interval until the context ends.
func (p *PendingStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep()
		}
	}
}
