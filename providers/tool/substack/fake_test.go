package substack

import (
	"context"
	"errors"
	"sync"

	api "github.com/leofalp/substack-tools/providers/substack"
)

var errNotFound = errors.New("unexpected status code: 404 Not Found")

// fakeFetcher serves canned posts keyed by publication address.
type fakeFetcher struct {
	mu sync.Mutex

	posts      map[string][]api.Post
	listErr    map[string]error
	metaErr    map[string]error
	content    map[string]string
	contentErr error
	recs       map[string][]api.Publication
	recErr     error
	cats       []api.Category
	catErr     error

	// onList runs before ListPosts answers.
	onList func(address string)

	listCalls []string
	metaCalls int
}

func (f *fakeFetcher) ListPosts(_ context.Context, address string, limit int) ([]api.PostRef, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, address)
	hook := f.onList
	f.mu.Unlock()
	if hook != nil {
		hook(address)
	}

	if err := f.listErr[address]; err != nil {
		return nil, err
	}
	posts := f.posts[address]
	refs := make([]api.PostRef, 0, len(posts))
	for i := 0; i < len(posts) && i < limit; i++ {
		refs = append(refs, api.PostRef{Address: address, Slug: posts[i].Slug})
	}
	return refs, nil
}

func (f *fakeFetcher) GetMetadata(_ context.Context, ref api.PostRef) (*api.Post, error) {
	f.mu.Lock()
	f.metaCalls++
	f.mu.Unlock()

	if err := f.metaErr[ref.Slug]; err != nil {
		return nil, err
	}
	for _, p := range f.posts[ref.Address] {
		if p.Slug == ref.Slug {
			post := p
			return &post, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeFetcher) GetContent(_ context.Context, ref api.PostRef) (string, error) {
	if f.contentErr != nil {
		return "", f.contentErr
	}
	if body, ok := f.content[ref.Slug]; ok {
		return body, nil
	}
	for _, p := range f.posts[ref.Address] {
		if p.Slug == ref.Slug {
			return p.BodyHTML, nil
		}
	}
	return "", errNotFound
}

func (f *fakeFetcher) ListRecommendations(_ context.Context, address string) ([]api.Publication, error) {
	if f.recErr != nil {
		return nil, f.recErr
	}
	return f.recs[address], nil
}

func (f *fakeFetcher) ListCategories(context.Context) ([]api.Category, error) {
	if f.catErr != nil {
		return nil, f.catErr
	}
	return f.cats, nil
}

func (f *fakeFetcher) listed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.listCalls...)
}
