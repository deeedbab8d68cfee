package coop

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeCoop imitates the Django login flow of the member-services site.
func newFakeCoop(t *testing.T, logins *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.SetCookie(w, &http.Cookie{Name: csrfCookieName, Value: "tok123", Path: "/"})
			_, _ = w.Write([]byte("<form></form>"))
		case http.MethodPost:
			_ = r.ParseForm()
			if r.PostForm.Get("csrfmiddlewaretoken") != "tok123" || r.Header.Get("X-CSRFToken") != "tok123" {
				http.Error(w, "csrf", http.StatusForbidden)
				return
			}
			if r.PostForm.Get("username") != "member" || r.PostForm.Get("password") != "secret" {
				_, _ = w.Write([]byte("bad credentials"))
				return
			}
			logins.Add(1)
			http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "sess", Path: "/"})
			http.Redirect(w, r, "/services/", http.StatusFound)
		}
	})
	mux.HandleFunc("/services/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("home"))
	})
	mux.HandleFunc("/services/shifts/", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessionCookieName); err != nil || c.Value != "sess" {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(`<div class="grid-container"></div>`))
	})
	return httptest.NewServer(mux)
}

func TestSession_LogsInLazilyAndFetches(t *testing.T) {
	var logins atomic.Int32
	srv := newFakeCoop(t, &logins)
	defer srv.Close()

	s, err := NewSession(srv.URL, Credentials{Username: "member", Password: "secret"}, 5*time.Second, testLogger())
	require.NoError(t, err)

	status, body, err := s.Fetch(context.Background(), srv.URL+"/services/shifts/0/0/0/2025-03-16")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "grid-container")

	_, _, err = s.Fetch(context.Background(), srv.URL+"/services/shifts/1/0/0/2025-03-16")
	require.NoError(t, err)
	assert.Equal(t, int32(1), logins.Load(), "the session is reused across fetches")
}

func TestSession_RejectedLogin(t *testing.T) {
	var logins atomic.Int32
	srv := newFakeCoop(t, &logins)
	defer srv.Close()

	s, err := NewSession(srv.URL, Credentials{Username: "member", Password: "wrong"}, 5*time.Second, testLogger())
	require.NoError(t, err)

	_, _, err = s.Fetch(context.Background(), srv.URL+"/services/shifts/0/0/0/2025-03-16")
	assert.ErrorIs(t, err, ErrLoginRejected)
}

func TestSession_ExpiredSessionReportsErrorAndRelogsNextTime(t *testing.T) {
	var logins atomic.Int32
	srv := newFakeCoop(t, &logins)
	defer srv.Close()

	s, err := NewSession(srv.URL, Credentials{Username: "member", Password: "secret"}, 5*time.Second, testLogger())
	require.NoError(t, err)
	require.NoError(t, s.Login(context.Background()))

	// Drop the session cookie to simulate the site expiring it.
	u := s.baseURL
	s.client.Jar.SetCookies(u, []*http.Cookie{{Name: sessionCookieName, Value: "", Path: "/", MaxAge: -1}})

	_, _, err = s.Fetch(context.Background(), srv.URL+"/services/shifts/0/0/0/2025-03-16")
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, _, err = s.Fetch(context.Background(), srv.URL+"/services/shifts/0/0/0/2025-03-16")
	require.NoError(t, err)
	assert.Equal(t, int32(2), logins.Load())
}

func TestNewSession_RequiresCredentials(t *testing.T) {
	_, err := NewSession("https://members.foodcoop.com", Credentials{Username: "member"}, time.Second, testLogger())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestSource_ConcurrentCatalogFetchesShareOneLogin(t *testing.T) {
	var logins atomic.Int32
	srv := newFakeCoop(t, &logins)
	defer srv.Close()

	session, err := NewSession(srv.URL, Credentials{Username: "member", Password: "secret"}, 5*time.Second, testLogger())
	require.NoError(t, err)
	fetcher, err := NewFetcher(FetcherOptions{BaseURL: srv.URL, Timeout: 5 * time.Second, RequestsPerSecond: 1000}, NewExtractor(testLogger()), testLogger())
	require.NoError(t, err)
	src := NewSource(fetcher, session)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = src.FetchCatalog(context.Background(), 58)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), logins.Load())
}
