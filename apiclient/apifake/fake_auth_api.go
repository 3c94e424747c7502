package apifake

import (
	"context"
	"sync"

	"github.com/jrsteele09/site-admin-console/authmodel"
)

// FakeAuthAPI is a scripted stand-in for the REST client's auth endpoints.
// Each operation returns the configured response/error and counts its calls.
// A non-nil gate channel blocks the call until it is closed or receives.
type FakeAuthAPI struct {
	mu sync.Mutex

	LoginResponse   *authmodel.TokenResponse
	LoginErr        error
	LogoutErr       error
	RefreshResponse *authmodel.TokenResponse
	RefreshErr      error

	LoginGate   chan struct{}
	RefreshGate chan struct{}

	loginCalls   int
	logoutCalls  int
	refreshCalls int
	lastCreds    authmodel.Credentials
}

func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{}
}

func (f *FakeAuthAPI) Login(ctx context.Context, creds authmodel.Credentials) (*authmodel.TokenResponse, error) {
	f.mu.Lock()
	f.loginCalls++
	f.lastCreds = creds
	gate := f.LoginGate
	f.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LoginResponse, f.LoginErr
}

func (f *FakeAuthAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.LogoutErr
}

func (f *FakeAuthAPI) Refresh(ctx context.Context) (*authmodel.TokenResponse, error) {
	f.mu.Lock()
	f.refreshCalls++
	gate := f.RefreshGate
	f.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.RefreshResponse, f.RefreshErr
}

// SetRefresh changes the scripted refresh outcome while other goroutines may
// be calling Refresh.
func (f *FakeAuthAPI) SetRefresh(resp *authmodel.TokenResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefreshResponse = resp
	f.RefreshErr = err
}

func (f *FakeAuthAPI) SetLogin(resp *authmodel.TokenResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginResponse = resp
	f.LoginErr = err
}

func (f *FakeAuthAPI) LoginCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}

func (f *FakeAuthAPI) LogoutCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logoutCalls
}

func (f *FakeAuthAPI) RefreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func (f *FakeAuthAPI) LastCredentials() authmodel.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCreds
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
