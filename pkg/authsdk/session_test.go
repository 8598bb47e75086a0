package authsdk_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/lostfound/pkg/authsdk"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
	"github.com/stretchr/testify/require"
)

// refreshServer answers /auth/refresh-token with ok until failAfter calls.
func refreshServer(t *testing.T, failAfter int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if failAfter > 0 && n > failAfter {
			authsdk.ErrInvalidRefreshToken.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Access token refrescado"})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Sesión cerrada exitosamente"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSessionAutoRefreshStopsOnLogout(t *testing.T) {
	srv, calls := refreshServer(t, 0)
	s := authsdk.NewSession(authsdk.NewClient(srv.URL))

	h := s.StartAutoRefresh(context.Background(), 5*time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.True(t, s.Running())

	_, err := s.Logout(context.Background())
	require.NoError(t, err)

	<-h.Done()
	require.NoError(t, h.Err())
	require.False(t, s.Running())

	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, stopped, calls.Load())
}

func TestSessionAutoRefreshStopsOnFailure(t *testing.T) {
	srv, calls := refreshServer(t, 1)
	s := authsdk.NewSession(authsdk.NewClient(srv.URL))

	var reported atomic.Value
	s.OnRefreshError = func(err error) { reported.Store(err) }

	h := s.StartAutoRefresh(context.Background(), 5*time.Millisecond)

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after a failed refresh")
	}

	require.True(t, authsdk.IsCode(h.Err(), authsdk.ErrorCodeInvalidSession))
	require.Equal(t, h.Err(), reported.Load())
	require.Equal(t, int32(2), calls.Load())
	require.False(t, s.Running())
}

func TestSessionRestartReplacesRefresher(t *testing.T) {
	srv, _ := refreshServer(t, 0)
	s := authsdk.NewSession(authsdk.NewClient(srv.URL))

	first := s.StartAutoRefresh(context.Background(), time.Hour)
	second := s.StartAutoRefresh(context.Background(), time.Hour)

	<-first.Done()
	require.True(t, s.Running())

	second.Stop()
	second.Stop()
	require.False(t, s.Running())
}

func TestSessionConcurrentStartsLeaveOneRefresher(t *testing.T) {
	srv, _ := refreshServer(t, 0)
	s := authsdk.NewSession(authsdk.NewClient(srv.URL))

	const starts = 16
	handles := make(chan *authsdk.RefreshHandle, starts)
	var wg sync.WaitGroup
	for range starts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handles <- s.StartAutoRefresh(context.Background(), time.Hour)
		}()
	}
	wg.Wait()
	close(handles)
	require.True(t, s.Running())

	s.Stop()
	require.False(t, s.Running())

	for h := range handles {
		select {
		case <-h.Done():
		case <-time.After(time.Second):
			t.Fatal("a refresher outlived Stop")
		}
	}
}

func TestSessionStopsWithContext(t *testing.T) {
	srv, _ := refreshServer(t, 0)
	s := authsdk.NewSession(authsdk.NewClient(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	h := s.StartAutoRefresh(ctx, time.Hour)
	cancel()

	<-h.Done()
	require.NoError(t, h.Err())
}
