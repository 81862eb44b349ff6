package pagestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/canvas/internal/document"
	"github.com/roach88/canvas/internal/model"
)

// PageInfo describes one stored page.
type PageInfo struct {
	ID          string `json:"id"`
	Revision    int64  `json:"revision"`
	ContentHash string `json:"contentHash"`
}

// SavePage stores doc under id. The revision is bumped only when the
// content hash differs from the stored one.
func (s *Store) SavePage(ctx context.Context, id string, doc model.Document) error {
	_, err := s.SavePageInfo(ctx, id, doc)
	return err
}

// SavePageInfo is SavePage returning the page's resulting info.
func (s *Store) SavePageInfo(ctx context.Context, id string, doc model.Document) (PageInfo, error) {
	if id == "" {
		return PageInfo{}, model.NewInvalid("savePage", "", "page id is required")
	}
	if err := model.ValidateDocument(doc); err != nil {
		return PageInfo{}, fmt.Errorf("save page: %w", err)
	}
	data, err := document.Encode(doc)
	if err != nil {
		return PageInfo{}, fmt.Errorf("save page: %w", err)
	}
	hash, err := document.Hash(doc)
	if err != nil {
		return PageInfo{}, fmt.Errorf("save page: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PageInfo{}, fmt.Errorf("save page: %w", err)
	}
	defer tx.Rollback()

	info := PageInfo{ID: id, ContentHash: hash}
	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT revision, content_hash FROM pages WHERE id = ?`, id,
	).Scan(&info.Revision, &current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		info.Revision = 0
	case err != nil:
		return PageInfo{}, fmt.Errorf("save page: %w", err)
	case current == hash:
		return info, nil
	}

	info.Revision++
	_, err = tx.ExecContext(ctx, `
		INSERT INTO pages (id, revision, content_hash, document)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			revision = excluded.revision,
			content_hash = excluded.content_hash,
			document = excluded.document
	`, id, info.Revision, hash, string(data))
	if err != nil {
		return PageInfo{}, fmt.Errorf("save page: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return PageInfo{}, fmt.Errorf("save page: %w", err)
	}
	return info, nil
}

// LoadPage returns the document stored under id. A stored document that
// fails validation is rejected with a CORRUPT error.
func (s *Store) LoadPage(ctx context.Context, id string) (model.Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM pages WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, model.NewNotFound("loadPage", "page", id)
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("load page: %w", err)
	}
	doc, err := document.Decode([]byte(data))
	if err != nil {
		return model.Document{}, fmt.Errorf("load page %q: %w", id, err)
	}
	return doc, nil
}

// Page returns the info of one stored page.
func (s *Store) Page(ctx context.Context, id string) (PageInfo, error) {
	info := PageInfo{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT revision, content_hash FROM pages WHERE id = ?`, id,
	).Scan(&info.Revision, &info.ContentHash)
	if errors.Is(err, sql.ErrNoRows) {
		return PageInfo{}, model.NewNotFound("page", "page", id)
	}
	if err != nil {
		return PageInfo{}, fmt.Errorf("page: %w", err)
	}
	return info, nil
}

// ListPages returns every stored page, ordered by id.
func (s *Store) ListPages(ctx context.Context) ([]PageInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, revision, content_hash FROM pages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	pages := []PageInfo{}
	for rows.Next() {
		var info PageInfo
		if err := rows.Scan(&info.ID, &info.Revision, &info.ContentHash); err != nil {
			return nil, fmt.Errorf("list pages: %w", err)
		}
		pages = append(pages, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

// DeletePage removes a page.
func (s *Store) DeletePage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.NewNotFound("deletePage", "page", id)
	}
	return nil
}
