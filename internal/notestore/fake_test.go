package notestore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
)

// fakeAPI is an in-memory notes API. Setting fail makes every call return it
// without touching the server-side state.
type fakeAPI struct {
	mu     sync.Mutex
	notes  []models.Note
	nextID int64
	fail   error
	calls  []string
}

func newFakeAPI(seed ...models.Note) *fakeAPI {
	f := &fakeAPI{nextID: 1}
	for _, n := range seed {
		f.notes = append(f.notes, n)
		if id, ok := n.ID.Int64(); ok && id >= f.nextID {
			f.nextID = id + 1
		}
	}
	return f
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.fail != nil {
		return f.fail
	}
	return nil
}

func (f *fakeAPI) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeAPI) List(_ context.Context) ([]models.Note, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.notes), nil
}

func (f *fakeAPI) Create(_ context.Context, title, content string) (models.Note, error) {
	if err := f.record("create"); err != nil {
		return models.Note{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := models.Note{ID: models.IDFromInt(f.nextID), Title: title, Content: content}
	f.nextID++
	f.notes = append(f.notes, n)
	return n, nil
}

func (f *fakeAPI) Get(_ context.Context, id models.ID) (models.Note, error) {
	if err := f.record("get " + id.String()); err != nil {
		return models.Note{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		return models.Note{}, fmt.Errorf("%w: %w: GET /notes/%s", apperr.ErrRequestFailed, apperr.ErrNotFound, id)
	}
	return f.notes[i], nil
}

func (f *fakeAPI) DeleteOne(_ context.Context, id models.ID) ([]models.Note, error) {
	if err := f.record("delete " + id.String()); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexLocked(id); i >= 0 {
		f.notes = slices.Delete(f.notes, i, i+1)
	}
	return slices.Clone(f.notes), nil
}

func (f *fakeAPI) DeleteAll(_ context.Context) error {
	if err := f.record("delete all"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = nil
	return nil
}

func (f *fakeAPI) Update(_ context.Context, id models.ID, title, content string) (models.Note, error) {
	if err := f.record("update " + id.String()); err != nil {
		return models.Note{}, err
	}
	return f.patch(id, &title, &content)
}

func (f *fakeAPI) UpdateTitle(_ context.Context, id models.ID, title string) (models.Note, error) {
	if err := f.record("update title " + id.String()); err != nil {
		return models.Note{}, err
	}
	return f.patch(id, &title, nil)
}

func (f *fakeAPI) UpdateContent(_ context.Context, id models.ID, content string) (models.Note, error) {
	if err := f.record("update content " + id.String()); err != nil {
		return models.Note{}, err
	}
	return f.patch(id, nil, &content)
}

func (f *fakeAPI) SearchTitle(_ context.Context, query string) ([]models.Note, error) {
	if err := f.record("search title " + query); err != nil {
		return nil, err
	}
	return f.filter(func(n models.Note) string { return n.Title }, query), nil
}

func (f *fakeAPI) SearchContent(_ context.Context, query string) ([]models.Note, error) {
	if err := f.record("search content " + query); err != nil {
		return nil, err
	}
	return f.filter(func(n models.Note) string { return n.Content }, query), nil
}

func (f *fakeAPI) patch(id models.ID, title, content *string) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		return models.Note{}, fmt.Errorf("%w: %w", apperr.ErrRequestFailed, apperr.ErrNotFound)
	}
	if title != nil {
		f.notes[i].Title = *title
	}
	if content != nil {
		f.notes[i].Content = *content
	}
	return f.notes[i], nil
}

func (f *fakeAPI) filter(field func(models.Note) string, query string) []models.Note {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Note{}
	for _, n := range f.notes {
		if strings.Contains(strings.ToLower(field(n)), strings.ToLower(query)) {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeAPI) indexLocked(id models.ID) int {
	return slices.IndexFunc(f.notes, func(n models.Note) bool { return n.ID == id })
}

// gatedAPI holds every List call until the test releases it, so tests can
// choose the order in which overlapping loads complete.
type gatedAPI struct {
	*fakeAPI
	started chan chan []models.Note
}

func newGatedAPI() *gatedAPI {
	return &gatedAPI{fakeAPI: newFakeAPI(), started: make(chan chan []models.Note, 4)}
}

func (g *gatedAPI) List(ctx context.Context) ([]models.Note, error) {
	reply := make(chan []models.Note, 1)
	g.started <- reply
	select {
	case notes := <-reply:
		return notes, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// renumberingAPI reports every updated note under id, whatever id the
// request targeted.
type renumberingAPI struct {
	*fakeAPI
	id models.ID
}

func (r *renumberingAPI) renumber(n models.Note, err error) (models.Note, error) {
	if err == nil {
		n.ID = r.id
	}
	return n, err
}

func (r *renumberingAPI) Update(ctx context.Context, id models.ID, title, content string) (models.Note, error) {
	return r.renumber(r.fakeAPI.Update(ctx, id, title, content))
}

func (r *renumberingAPI) UpdateTitle(ctx context.Context, id models.ID, title string) (models.Note, error) {
	return r.renumber(r.fakeAPI.UpdateTitle(ctx, id, title))
}

func (r *renumberingAPI) UpdateContent(ctx context.Context, id models.ID, content string) (models.Note, error) {
	return r.renumber(r.fakeAPI.UpdateContent(ctx, id, content))
}

func note(id int64, title, content string) models.Note {
	return models.Note{ID: models.IDFromInt(id), Title: title, Content: content}
}

func strp(s string) *string { return &s }
