package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brogergvhs/mangatoc/internal/providers"
	"go.uber.org/zap"
)

// SaveCatalog replaces the stored book row and its whole chapter list in a
// single transaction.
func (s *Store) SaveCatalog(ctx context.Context, book providers.Book, catalog []providers.Chapter) error {
	if s.readOnly {
		return ErrReadOnly
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		REPLACE INTO books (
			book_url, toc_url, name, origin, reverse_toc,
			latest_chapter_title, current_chapter_title, current_chapter_index,
			total_chapter_count, last_check_count, latest_chapter_time, last_check_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.BookURL, book.TocURL, book.Name, book.Origin, boolInt(book.ReverseToc),
		book.LatestChapterTitle, book.CurrentChapterTitle, book.CurrentChapterIndex,
		book.TotalChapterCount, book.LastCheckCount,
		unixMilli(book.LatestChapterTime), unixMilli(book.LastCheckTime),
	); err != nil {
		return fmt.Errorf("save book %s: %w", book.BookURL, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chapters WHERE book_url = ?`, book.BookURL); err != nil {
		return fmt.Errorf("clear chapters of %s: %w", book.BookURL, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chapters (book_url, idx, title, url, page_url, tag, is_vip, is_pay)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, c := range catalog {
		if _, err := stmt.ExecContext(ctx,
			book.BookURL, c.Index, c.Title, c.URL, c.PageURL, c.Tag,
			boolInt(c.IsVip), boolInt(c.IsPay),
		); err != nil {
			return fmt.Errorf("insert chapter %d of %s: %w", c.Index, book.BookURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.logger.Debug("catalog saved", zap.String("book", book.BookURL), zap.Int("chapters", len(catalog)))

	return nil
}

func (s *Store) LoadBook(ctx context.Context, bookURL string) (providers.Book, error) {
	var (
		b                    providers.Book
		reverse              int
		latestTime, lastTime int64
		tocURL, name, origin sql.NullString
		latest, current      sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT book_url, toc_url, name, origin, reverse_toc,
			latest_chapter_title, current_chapter_title, current_chapter_index,
			total_chapter_count, last_check_count, latest_chapter_time, last_check_time
		FROM books WHERE book_url = ?`, bookURL,
	).Scan(
		&b.BookURL, &tocURL, &name, &origin, &reverse,
		&latest, &current, &b.CurrentChapterIndex,
		&b.TotalChapterCount, &b.LastCheckCount, &latestTime, &lastTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrBookNotFound
	}
	if err != nil {
		return b, fmt.Errorf("load book %s: %w", bookURL, err)
	}

	b.TocURL = tocURL.String
	b.Name = name.String
	b.Origin = origin.String
	b.ReverseToc = reverse != 0
	b.LatestChapterTitle = latest.String
	b.CurrentChapterTitle = current.String
	b.LatestChapterTime = fromUnixMilli(latestTime)
	b.LastCheckTime = fromUnixMilli(lastTime)

	return b, nil
}

// LoadCatalog returns the stored chapters of a book in index order.
func (s *Store) LoadCatalog(ctx context.Context, bookURL string) ([]providers.Chapter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, title, url, page_url, tag, is_vip, is_pay
		FROM chapters WHERE book_url = ? ORDER BY idx`, bookURL)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", bookURL, err)
	}
	defer rows.Close()

	var out []providers.Chapter
	for rows.Next() {
		var (
			c        providers.Chapter
			pageURL  sql.NullString
			tag      sql.NullString
			vip, pay int
		)
		if err := rows.Scan(&c.Index, &c.Title, &c.URL, &pageURL, &tag, &vip, &pay); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		c.BookURL = bookURL
		c.PageURL = pageURL.String
		c.Tag = tag.String
		c.IsVip = vip != 0
		c.IsPay = pay != 0
		out = append(out, c)
	}

	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
