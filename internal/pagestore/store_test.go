package pagestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canvas/internal/model"
	"github.com/roach88/canvas/internal/testutil"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"foreign_keys": "1",
		"user_version": "1",
	} {
		got, err := s.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestSchema_IndexesComponentOrder(t *testing.T) {
	s := createTestStore(t)

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_components_position'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 2")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNewerSchema)
}

func TestSaveAndLoadPage(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.SavePage(ctx, "home", testutil.CardDocument()))
	doc, err := s.LoadPage(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, testutil.CardDocument(), doc)
}

func TestSavePage_RevisionFollowsContent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	doc := testutil.CardDocument()

	first, err := s.SavePageInfo(ctx, "home", doc)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Revision)

	again, err := s.SavePageInfo(ctx, "home", doc)
	require.NoError(t, err)
	assert.Equal(t, first, again, "unchanged content keeps its revision")

	doc.Elements["card"].Style["backgroundColor"] = model.String("#000")
	changed, err := s.SavePageInfo(ctx, "home", doc)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed.Revision)
	assert.NotEqual(t, first.ContentHash, changed.ContentHash)

	info, err := s.Page(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, changed, info)
}

func TestSavePage_RejectsInvalidDocument(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	doc := testutil.CardDocument()
	doc.RootElementIDs = append(doc.RootElementIDs, "ghost")
	err := s.SavePage(ctx, "home", doc)
	assert.True(t, model.IsCorruptError(err))

	assert.True(t, model.IsInvalidError(s.SavePage(ctx, "", testutil.CardDocument())))

	pages, err := s.ListPages(ctx)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestLoadPage_Missing(t *testing.T) {
	s := createTestStore(t)
	_, err := s.LoadPage(context.Background(), "nope")
	assert.True(t, model.IsReferenceError(err))
}

func TestLoadPage_RejectsCorruptRow(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	_, err := s.db.Exec(`INSERT INTO pages (id, revision, content_hash, document) VALUES (?, 1, 'x', ?)`,
		"bad", `{"elements":{"a":{"id":"a","type":"text","children":[]}},"rootElementIds":[]}`)
	require.NoError(t, err)

	_, err = s.LoadPage(ctx, "bad")
	assert.True(t, model.IsCorruptError(err))
}

func TestListAndDeletePages(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.SavePage(ctx, "b", testutil.CardDocument()))
	require.NoError(t, s.SavePage(ctx, "a", model.NewDocument()))

	pages, err := s.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "a", pages[0].ID)
	assert.Equal(t, "b", pages[1].ID)

	require.NoError(t, s.DeletePage(ctx, "a"))
	assert.True(t, model.IsReferenceError(s.DeletePage(ctx, "a")))

	pages, err = s.ListPages(ctx)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestSaveAndLoadComponents(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	card := testutil.CardComponent()
	card.Variants = []model.Variant{{ID: "dark", Name: "Dark", StyleOverrides: model.Record{"backgroundColor": model.String("#000")}}}
	second := testutil.CardComponent()
	second.ID = "panel"
	second.Name = "Panel"

	require.NoError(t, s.SaveComponents(ctx, []*model.Component{second, card}))
	got, err := s.LoadComponents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "panel", got[0].ID)
	assert.Equal(t, card, got[1])

	require.NoError(t, s.SaveComponents(ctx, []*model.Component{card}))
	got, err = s.LoadComponents(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1, "saving replaces the library")
}

func TestLoadComponents_RejectsTamperedRow(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	require.NoError(t, s.SaveComponents(ctx, []*model.Component{testutil.CardComponent()}))

	_, err := s.db.Exec(`UPDATE components SET component = replace(component, '#fff', '#f00')`)
	require.NoError(t, err)

	_, err = s.LoadComponents(ctx)
	assert.True(t, model.IsCorruptError(err))
}
