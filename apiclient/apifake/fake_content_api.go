package apifake

import (
	"context"
	"sync"

	"github.com/jrsteele09/site-admin-console/apiclient"
	"github.com/jrsteele09/site-admin-console/authmodel"
	apperrors "github.com/jrsteele09/site-admin-console/internal/errors"
)

// FakeContentAPI serves a fixed profile and in-memory content, counting how
// often each endpoint is hit.
type FakeContentAPI struct {
	mu sync.Mutex

	Profile *authmodel.Profile
	Items   map[apiclient.Kind][]apiclient.Item
	// Err, when set, is returned by every call.
	Err error

	meCalls   int
	listCalls int
	getCalls  int
}

func NewFakeContentAPI() *FakeContentAPI {
	return &FakeContentAPI{Items: make(map[apiclient.Kind][]apiclient.Item)}
}

func (f *FakeContentAPI) Me(ctx context.Context) (*authmodel.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Profile, nil
}

func (f *FakeContentAPI) List(ctx context.Context, kind apiclient.Kind, opts apiclient.ListOptions) (*apiclient.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.Err != nil {
		return nil, f.Err
	}

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}
	all := f.Items[kind]
	result := &apiclient.ListResult{Total: len(all), Page: opts.Page, PageSize: opts.PageSize}
	start := (opts.Page - 1) * opts.PageSize
	if start < len(all) {
		end := min(start+opts.PageSize, len(all))
		result.Items = all[start:end]
	}
	return result, nil
}

func (f *FakeContentAPI) Get(ctx context.Context, kind apiclient.Kind, id string) (apiclient.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	for _, item := range f.Items[kind] {
		if item.ID() == id {
			return item, nil
		}
	}
	return nil, apperrors.Wrapf(apperrors.ErrNotFound, "%s %s", kind, id)
}

func (f *FakeContentAPI) MeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meCalls
}

func (f *FakeContentAPI) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *FakeContentAPI) GetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}
