package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/auth"
	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/logger"
	"github.com/yamdb/yamdb-server/internal/mail"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/search"
	"github.com/yamdb/yamdb-server/internal/store/sqlstore"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// fakeMailer records sent messages instead of delivering them.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// lastCode extracts the confirmation code from the newest message.
func (f *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no mail sent")
	_, rest, ok := strings.Cut(f.sent[len(f.sent)-1].Body, "Your confirmation code: ")
	require.True(t, ok, "mail body has no code")
	code, _, _ := strings.Cut(rest, "\n")
	return code
}

// testYear is the current year as seen by the fixture validator.
const testYear = 2024

type fixture struct {
	store  *sqlstore.Store
	index  *search.Index
	mailer *fakeMailer
	tokens *auth.TokenService

	auth     *AuthService
	users    *UserService
	catalog  *CatalogService
	titles   *TitleService
	reviews  *ReviewService
	comments *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	log := logger.Discard().Logger

	s, err := sqlstore.Open(context.Background(), "sqlite", filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.Open(search.Options{Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	v := validation.NewWithClock(func() time.Time {
		return time.Date(testYear, 6, 1, 12, 0, 0, 0, time.UTC)
	})
	mailer := &fakeMailer{}

	return &fixture{
		store:    s,
		index:    index,
		mailer:   mailer,
		tokens:   tokens,
		auth:     NewAuthService(s, tokens, mailer, v, log),
		users:    NewUserService(s, v, log),
		catalog:  NewCatalogService(s, v, log),
		titles:   NewTitleService(s, index, v, log),
		reviews:  NewReviewService(s, v, log),
		comments: NewCommentService(s, v, log),
	}
}

// identity creates a user with the given role and returns its identity.
func (f *fixture) identity(t *testing.T, username string, role domain.Role) policy.Identity {
	t.Helper()
	u := &domain.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return policy.IdentityOf(u)
}

// title creates a title as an admin with the given genre and category slugs,
// creating missing catalogue entries on the way.
func (f *fixture) title(t *testing.T, admin policy.Identity, name, category string, genres ...string) *domain.Title {
	t.Helper()
	ctx := context.Background()
	if category != "" {
		if _, err := f.store.GetCategoryBySlug(ctx, category); err != nil {
			_, err := f.catalog.CreateCategory(ctx, admin, CatalogEntryRequest{Name: "Category " + category, Slug: category})
			require.NoError(t, err)
		}
	}
	for _, g := range genres {
		if _, err := f.store.GetGenreBySlug(ctx, g); err != nil {
			_, err := f.catalog.CreateGenre(ctx, admin, CatalogEntryRequest{Name: "Genre " + g, Slug: g})
			require.NoError(t, err)
		}
	}
	title, err := f.titles.Create(ctx, admin, CreateTitleRequest{Name: name, Year: 2000, Category: category, Genre: genres})
	require.NoError(t, err)
	return title
}

// fieldErrors returns the per-field details of a validation error.
func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var de *domainerrors.Error
	require.True(t, errors.As(err, &de), "expected a domain error, got %v", err)
	require.Equal(t, domainerrors.CodeValidation, de.Code)
	details, ok := de.Details.(map[string]string)
	require.True(t, ok, "expected field details, got %#v", de.Details)
	return details
}
