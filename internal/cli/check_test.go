package cli

import (
	"bytes"
	"testing"
)

func TestCheck(t *testing.T) {
	v := getViper()
	v.Set("filter.client.rules", []map[string]string{
		{"net": "10.0.0.0/8", "action": "deny"},
	})
	buf := new(bytes.Buffer)
	if err := execCheck(v, []string{"10.1.2.3", "8.8.8.8"}, buf); err != nil {
		t.Fatal(err)
	}
	expected := "10.1.2.3: deny\n8.8.8.8: allow\n"
	if buf.String() != expected {
		t.Errorf("got %q, want %q", buf.String(), expected)
	}
	t.Run("BadAddress", func(t *testing.T) {
		if err := execCheck(v, []string{"bad"}, buf); err == nil {
			t.Error("should error")
		}
	})
	t.Run("NotIPv4", func(t *testing.T) {
		if err := execCheck(v, []string{"2001:db8::1"}, buf); err == nil {
			t.Error("should error")
		}
	})
}
