// Package importer loads CSV exports of the catalogue, users, reviews and
// comments into the store.
//
// Each file is recognised by its name and read by header: the first row
// names the columns, in any order. Explicit ids are kept so that references
// between files resolve. Rows pass the same validation rules and store
// constraints as API writes; the first failing row aborts the import.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// Files lists the importable file names in dependency order.
var Files = []string{
	"users.csv",
	"category.csv",
	"genre.csv",
	"titles.csv",
	"genre_title.csv",
	"review.csv",
	"comments.csv",
}

// Result reports how many rows were loaded from one file.
type Result struct {
	File string
	Rows int
}

// RowError locates a failing row. Line is 1-based and counts the header.
type RowError struct {
	File string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ErrUnknownFile is returned for file names outside Files.
var ErrUnknownFile = errors.New("unknown import file")

// Importer writes CSV rows to a store.
type Importer struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// New creates an importer.
func New(st store.Store, v *validation.Validator, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{store: st, validator: v, logger: logger}
}

// ImportFiles imports the given paths in dependency order, then re-syncs id
// sequences. Base names must appear in Files.
func (im *Importer) ImportFiles(ctx context.Context, paths []string) ([]Result, error) {
	ordered := slices.Clone(paths)
	for _, p := range ordered {
		if !slices.Contains(Files, filepath.Base(p)) {
			return nil, fmt.Errorf("%w: %s (expected one of %s)", ErrUnknownFile, filepath.Base(p), strings.Join(Files, ", "))
		}
	}
	slices.SortStableFunc(ordered, func(a, b string) int {
		return slices.Index(Files, filepath.Base(a)) - slices.Index(Files, filepath.Base(b))
	})

	var results []Result
	for _, p := range ordered {
		n, err := im.importPath(ctx, p)
		if err != nil {
			return results, err
		}
		results = append(results, Result{File: filepath.Base(p), Rows: n})
	}

	if err := im.store.ResetSequences(ctx); err != nil {
		return results, fmt.Errorf("reset sequences: %w", err)
	}
	return results, nil
}

// ImportDir imports every known file present in dir. Missing files are skipped.
func (im *Importer) ImportDir(ctx context.Context, dir string) ([]Result, error) {
	var paths []string
	for _, name := range Files {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				im.logger.Warn("import file not found, skipping", "file", p)
				continue
			}
			return nil, err
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no import files found in %s", dir)
	}
	return im.ImportFiles(ctx, paths)
}

func (im *Importer) importPath(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // Path comes from the operator
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	return im.Import(ctx, filepath.Base(path), f)
}

// Import reads one CSV stream. name selects the row loader and must appear in Files.
func (im *Importer) Import(ctx context.Context, name string, r io.Reader) (int, error) {
	load, ok := im.loaders()[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownFile, name)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, &RowError{File: name, Line: 1, Err: err}
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	rows := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, &RowError{File: name, Line: line, Err: err}
		}
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		if err := load(ctx, newRow(header, record)); err != nil {
			return rows, &RowError{File: name, Line: line, Err: err}
		}
		rows++
	}

	im.logger.Info("imported csv file", "file", name, "rows", rows)
	return rows, nil
}

type loader func(ctx context.Context, r row) error

func (im *Importer) loaders() map[string]loader {
	return map[string]loader{
		"users.csv":       im.loadUser,
		"category.csv":    im.loadCategory,
		"genre.csv":       im.loadGenre,
		"titles.csv":      im.loadTitle,
		"genre_title.csv": im.loadGenreTitle,
		"review.csv":      im.loadReview,
		"comments.csv":    im.loadComment,
	}
}

// row gives access to a record by column name.
type row struct {
	columns map[string]int
	record  []string
	err     error
}

func newRow(header, record []string) row {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(h)] = i
	}
	return row{columns: columns, record: record}
}

// str returns a column value, or "" when the column is absent.
func (r *row) str(name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// required returns a column value and records an error when it is empty.
func (r *row) required(name string) string {
	v := r.str(name)
	if v == "" && r.err == nil {
		r.err = fmt.Errorf("column %q is required", name)
	}
	return v
}

func (r *row) int64(name string) int64 {
	v := r.required(name)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %q: %q is not an integer", name, v)
	}
	return n
}

// optionalInt64 returns 0 for an empty column.
func (r *row) optionalInt64(name string) int64 {
	if r.str(name) == "" {
		return 0
	}
	return r.int64(name)
}

func (r *row) time(name string) time.Time {
	v := r.str(name)
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %q: %w", name, err)
	}
	return t.UTC()
}

type userRow struct {
	Username  string `json:"username" validate:"required,username"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Role      string `json:"role" validate:"omitempty,oneof=user moderator admin"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

func (im *Importer) loadUser(ctx context.Context, r row) error {
	u := &domain.User{
		ID:        r.int64("id"),
		Username:  r.str("username"),
		Email:     r.str("email"),
		Role:      domain.Role(r.str("role")),
		Bio:       r.str("bio"),
		FirstName: r.str("first_name"),
		LastName:  r.str("last_name"),
	}
	if r.err != nil {
		return r.err
	}
	if err := im.validator.Validate(userRow{
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}); err != nil {
		return err
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	return im.store.CreateUser(ctx, u)
}

type catalogRow struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,slug"`
}

func (im *Importer) loadCategory(ctx context.Context, r row) error {
	c := &domain.Category{ID: r.int64("id"), Name: r.str("name"), Slug: r.str("slug")}
	if r.err != nil {
		return r.err
	}
	if err := im.validator.Validate(catalogRow{Name: c.Name, Slug: c.Slug}); err != nil {
		return err
	}
	return im.store.CreateCategory(ctx, c)
}

func (im *Importer) loadGenre(ctx context.Context, r row) error {
	g := &domain.Genre{ID: r.int64("id"), Name: r.str("name"), Slug: r.str("slug")}
	if r.err != nil {
		return r.err
	}
	if err := im.validator.Validate(catalogRow{Name: g.Name, Slug: g.Slug}); err != nil {
		return err
	}
	return im.store.CreateGenre(ctx, g)
}

type titleRow struct {
	Name string `json:"name" validate:"required,max=256"`
	Year int    `json:"year" validate:"gte=0,notfuture"`
}

func (im *Importer) loadTitle(ctx context.Context, r row) error {
	t := &domain.Title{
		ID:          r.int64("id"),
		Name:        r.str("name"),
		Year:        int(r.int64("year")),
		Description: r.str("description"),
	}
	if categoryID := r.optionalInt64("category"); categoryID != 0 {
		t.Category = &domain.Category{ID: categoryID}
	}
	if r.err != nil {
		return r.err
	}
	if err := im.validator.Validate(titleRow{Name: t.Name, Year: t.Year}); err != nil {
		return err
	}
	return im.store.CreateTitle(ctx, t)
}

func (im *Importer) loadGenreTitle(ctx context.Context, r row) error {
	id := r.int64("id")
	titleID := r.int64("title_id")
	genreID := r.int64("genre_id")
	if r.err != nil {
		return r.err
	}
	return im.store.AddTitleGenre(ctx, id, titleID, genreID)
}

type reviewRow struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"score"`
}

func (im *Importer) loadReview(ctx context.Context, r row) error {
	rv := &domain.Review{
		ID:       r.int64("id"),
		TitleID:  r.int64("title_id"),
		Text:     r.str("text"),
		AuthorID: r.int64("author"),
		Score:    int(r.int64("score")),
		PubDate:  r.time("pub_date"),
	}
	if r.err != nil {
		return r.err
	}
	if err := im.validator.Validate(reviewRow{Text: rv.Text, Score: rv.Score}); err != nil {
		return err
	}
	return im.store.CreateReview(ctx, rv)
}

type commentRow struct {
	Text string `json:"text" validate:"required"`
}

func (im *Importer) loadComment(ctx context.Context, r row) error {
	c := &domain.Comment{
		ID:       r.int64("id"),
		ReviewID: r.int64("review_id"),
		Text:     r.str("text"),
		AuthorID: r.int64("author"),
		PubDate:  r.time("pub_date"),
	}
	if r.err != nil {
		return r.err
	}
	if err := im.validator.Validate(commentRow{Text: c.Text}); err != nil {
		return err
	}
	return im.store.CreateComment(ctx, c)
}
