package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

type mockExchanger struct {
	token *oauth2.Token
	err   error
	calls int
	state string
}

func (m *mockExchanger) Token(ctx context.Context, state string, r *http.Request, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	m.calls++
	m.state = state
	return m.token, m.err
}

func TestOAuthHandler(t *testing.T) {
	t.Run("successful exchange", func(t *testing.T) {
		ex := &mockExchanger{token: &oauth2.Token{AccessToken: "abc"}}
		h := NewOAuthHandler(ex, "state-1", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=xyz", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Errorf("expected success page, got %s", rec.Body.String())
		}

		res := <-h.Result()
		if res.Error() != nil || res.Token.AccessToken != "abc" {
			t.Errorf("expected token abc, got %+v (%v)", res.Token, res.Error())
		}
		if ex.state != "state-1" {
			t.Errorf("expected exchanger to receive state, got %q", ex.state)
		}
	})

	t.Run("invalid state", func(t *testing.T) {
		ex := &mockExchanger{}
		h := NewOAuthHandler(ex, "state-1", "/callback")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=forged&code=xyz", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if res := <-h.Result(); res.Error() == nil {
			t.Error("expected an error result")
		}
		if ex.calls != 0 {
			t.Error("expected no exchange for a forged state")
		}
	})

	t.Run("authorization denied", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{}, "s", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied", nil))

		res := <-h.Result()
		if res.Error() == nil || !strings.Contains(res.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", res.Error())
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{err: errors.New("bad code")}, "s", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=c", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if res := <-h.Result(); res.Error() == nil {
			t.Error("expected an error result")
		}
	})

	t.Run("second callback rejected", func(t *testing.T) {
		ex := &mockExchanger{token: &oauth2.Token{AccessToken: "abc"}}
		h := NewOAuthHandler(ex, "s", "")

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s&code=c", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=c", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replay, got %d", rec.Code)
		}
		if ex.calls != 1 {
			t.Errorf("expected a single exchange, got %d", ex.calls)
		}
	})

	t.Run("routes", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{}, "s", "/auth/spotify")
		if r := h.Routes(); len(r) != 1 || r[0] != "/auth/spotify" {
			t.Errorf("unexpected routes %v", r)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("method patterns", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodGet, "/ping", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "pong")
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Body.String() != "pong" {
			t.Errorf("expected pong, got %q", rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("registers handler routes", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{token: &oauth2.Token{AccessToken: "abc"}}, "s", "/callback")
		router := NewBasicRouter()
		router.Handler(h)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=c", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	router := NewBasicRouter()
	router.Use(RequestLogger(logger))
	router.HandleFunc(http.MethodGet, "/teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

	out := buf.String()
	if !strings.Contains(out, "path=/teapot") || !strings.Contains(out, "status=418") {
		t.Errorf("expected path and status to be logged, got %q", out)
	}
}

func TestCallbackServer(t *testing.T) {
	router := NewBasicRouter()
	router.HandleFunc(http.MethodGet, "/callback", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})

	srv, err := Start("127.0.0.1:0", router)
	if err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/callback")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("expected ok, got %q", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if err, ok := <-srv.Err(); ok {
		t.Errorf("expected clean stop, got %v", err)
	}

	t.Run("address in use", func(t *testing.T) {
		first, err := Start("127.0.0.1:0", router)
		if err != nil {
			t.Fatalf("failed to start: %v", err)
		}
		defer first.Shutdown(context.Background())

		if _, err := Start(first.Addr(), router); err == nil {
			t.Error("expected an error for an address in use")
		}
	})
}
