package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/gogotex/docmanager/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var author = document.Author{ID: "a1", Name: "Ann"}

func ids(docs []document.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestMemoryRepo_SaveAssignsDistinctIDs(t *testing.T) {
	r := NewMemoryRepo()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		d := r.Save(document.Document{Title: "t"})
		require.NotEmpty(t, d.ID)
		require.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
		require.False(t, d.CreatedAt.IsZero())
	}
}

func TestMemoryRepo_IDsAreDecimalCounterFromZero(t *testing.T) {
	r := NewMemoryRepo()
	require.Equal(t, "0", r.Save(document.Document{}).ID)
	require.Equal(t, "1", r.Save(document.Document{}).ID)

	// a fresh store starts over
	require.Equal(t, "0", NewMemoryRepo().Save(document.Document{}).ID)
}

func TestMemoryRepo_UpdateKeepsCreatedAt(t *testing.T) {
	r := NewMemoryRepo()
	first := r.Save(document.Document{Title: "Alpha", Author: author})

	second := r.Save(document.Document{
		ID:        first.ID,
		Title:     "Alpha v2",
		Author:    author,
		CreatedAt: first.CreatedAt.Add(72 * time.Hour),
	})
	require.True(t, first.CreatedAt.Equal(second.CreatedAt))
	require.Equal(t, "Alpha v2", second.Title)

	got, ok := r.FindByID(first.ID)
	require.True(t, ok)
	require.Equal(t, second, got)
}

func TestMemoryRepo_UpdateIsFullReplace(t *testing.T) {
	r := NewMemoryRepo()
	first := r.Save(document.Document{Title: "Alpha", Content: "body", Author: author})
	r.Save(document.Document{ID: first.ID, Title: "Alpha"})

	got, ok := r.FindByID(first.ID)
	require.True(t, ok)
	assert.Empty(t, got.Content)
	assert.Equal(t, document.Author{}, got.Author)
}

func TestMemoryRepo_UnknownIDKeepsCallerCreatedAt(t *testing.T) {
	r := NewMemoryRepo()
	created := time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)
	d := r.Save(document.Document{ID: "external-1", Title: "x", CreatedAt: created})
	require.Equal(t, "external-1", d.ID)
	require.True(t, created.Equal(d.CreatedAt))

	// caller-chosen ids do not advance the counter
	require.Equal(t, "0", r.Save(document.Document{}).ID)
}

func TestMemoryRepo_RoundTrip(t *testing.T) {
	r := NewMemoryRepo()
	saved := r.Save(document.Document{Title: "T", Content: "C", Author: author})
	got, ok := r.FindByID(saved.ID)
	require.True(t, ok)
	require.Equal(t, saved, got)
}

func TestMemoryRepo_FindByIDAbsent(t *testing.T) {
	r := NewMemoryRepo()
	r.Save(document.Document{Title: "T"})
	_, ok := r.FindByID("never-saved")
	require.False(t, ok)
}

func TestMemoryRepo_ReturnedDocumentIsACopy(t *testing.T) {
	r := NewMemoryRepo()
	saved := r.Save(document.Document{Title: "original"})
	saved.Title = "mutated by caller"

	got, ok := r.FindByID(saved.ID)
	require.True(t, ok)
	require.Equal(t, "original", got.Title)
}

func TestMemoryRepo_SearchOrWithinAndAcross(t *testing.T) {
	r := NewMemoryRepo()
	r.Save(document.Document{Title: "Alpha", Content: "foo", Author: author})
	r.Save(document.Document{Title: "Beta", Content: "bar", Author: author})
	c := r.Save(document.Document{Title: "Alpha2", Content: "bar", Author: author})

	got := r.Search(document.SearchRequest{
		TitlePrefixes:    []string{"Alpha"},
		ContainsContents: []string{"bar"},
	})
	require.Equal(t, []string{c.ID}, ids(got))
}

func TestMemoryRepo_SearchEmptyRequestMatchesAll(t *testing.T) {
	r := NewMemoryRepo()
	var want []string
	for _, title := range []string{"a", "b", "c"} {
		want = append(want, r.Save(document.Document{Title: title}).ID)
	}
	require.ElementsMatch(t, want, ids(r.Search(document.SearchRequest{})))
	require.ElementsMatch(t, want, ids(r.Search(document.SearchRequest{
		TitlePrefixes: []string{}, ContainsContents: []string{}, AuthorIDs: []string{},
	})))
}

func TestMemoryRepo_SearchEmptyStore(t *testing.T) {
	got := NewMemoryRepo().Search(document.SearchRequest{})
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestMemoryRepo_SearchByAuthor(t *testing.T) {
	r := NewMemoryRepo()
	a := r.Save(document.Document{Title: "a", Author: author})
	r.Save(document.Document{Title: "b", Author: document.Author{ID: "a2"}})
	require.Equal(t, []string{a.ID}, ids(r.Search(document.SearchRequest{AuthorIDs: []string{"a1", "a9"}})))
}

func TestMemoryRepo_SearchCreatedBoundsInclusive(t *testing.T) {
	r := NewMemoryRepo()
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	r.Save(document.Document{ID: "at-from", CreatedAt: from})
	r.Save(document.Document{ID: "at-to", CreatedAt: to})
	r.Save(document.Document{ID: "before", CreatedAt: from.Add(-time.Second)})
	r.Save(document.Document{ID: "after", CreatedAt: to.Add(time.Second)})

	got := r.Search(document.SearchRequest{CreatedFrom: &from, CreatedTo: &to})
	require.ElementsMatch(t, []string{"at-from", "at-to"}, ids(got))

	got = r.Search(document.SearchRequest{CreatedFrom: &from})
	require.ElementsMatch(t, []string{"at-from", "at-to", "after"}, ids(got))

	got = r.Search(document.SearchRequest{CreatedTo: &from})
	require.ElementsMatch(t, []string{"at-from", "before"}, ids(got))
}

func TestMemoryRepo_UpdateIsReflectedInSearch(t *testing.T) {
	r := NewMemoryRepo()
	d := r.Save(document.Document{Title: "Draft notes"})
	require.Len(t, r.Search(document.SearchRequest{TitlePrefixes: []string{"Draft"}}), 1)

	d.Title = "Final notes"
	r.Save(d)
	require.Empty(t, r.Search(document.SearchRequest{TitlePrefixes: []string{"Draft"}}))
	require.Len(t, r.Search(document.SearchRequest{TitlePrefixes: []string{"Final"}}), 1)
	require.Len(t, r.Search(document.SearchRequest{}), 1)
}

func TestMemoryRepo_ClockIsUsedForNewDocuments(t *testing.T) {
	r := NewMemoryRepo()
	fixed := time.Date(2023, 7, 4, 9, 30, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }
	d := r.Save(document.Document{Title: "x", CreatedAt: time.Now()})
	require.Equal(t, fixed, d.CreatedAt)
}

func TestMemoryRepo_ConcurrentSaves(t *testing.T) {
	r := NewMemoryRepo()
	const n = 100
	var wg sync.WaitGroup
	out := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out <- r.Save(document.Document{Title: "c"}).ID
			r.Search(document.SearchRequest{TitlePrefixes: []string{"c"}})
		}()
	}
	wg.Wait()
	close(out)
	seen := map[string]bool{}
	for id := range out {
		require.False(t, seen[id])
		seen[id] = true
	}
	require.Len(t, r.Search(document.SearchRequest{}), n)
}
