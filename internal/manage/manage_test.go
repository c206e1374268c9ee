package manage

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type notifierFunc func()

func (f notifierFunc) Notify() {
	f()
}

func TestManager_ServeHTTP(t *testing.T) {
	notified := 0
	notifier := notifierFunc(func() {
		notified++
	})
	s := httptest.NewServer(NewManager(zap.NewNop(), notifier))
	defer s.Close()
	c := s.Client()
	get := func(t *testing.T, path string) (int, string) {
		t.Helper()
		res, err := c.Get(s.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		body, err := ioutil.ReadAll(res.Body)
		if err != nil {
			t.Fatal(err)
		}
		if err = res.Body.Close(); err != nil {
			t.Error(err)
		}
		return res.StatusCode, strings.TrimSpace(string(body))
	}
	t.Run("Reload", func(t *testing.T) {
		code, body := get(t, "/reload")
		if code != http.StatusOK {
			t.Error("bad status", code)
		}
		if notified != 1 {
			t.Error("not notified")
		}
		if !strings.Contains(body, "reloaded") {
			t.Errorf("unexpected body %q", body)
		}
	})
	t.Run("Health", func(t *testing.T) {
		code, body := get(t, "/healthz")
		if code != http.StatusOK {
			t.Error("bad status", code)
		}
		if body != "ok" {
			t.Errorf("unexpected body %q", body)
		}
	})
	t.Run("NotFound", func(t *testing.T) {
		code, _ := get(t, "/random")
		if code != http.StatusNotFound {
			t.Error("bad status", code)
		}
		if notified != 1 {
			t.Error("unexpected notify")
		}
	})
}
