package esp8266at

import "testing"

func TestSendCommandFraming(t *testing.T) {
	cases := []struct {
		verb string
		want string
	}{
		{"", "AT\r\n"},
		{"+GMR", "AT+GMR\r\n"},
		{"+CWMODE=1", "AT+CWMODE=1\r\n"},
	}
	for _, c := range cases {
		d, sink := newDriver("")
		if err := d.sendCommand("t", c.verb); err != nil {
			t.Fatalf("sendCommand(%q) error = %v", c.verb, err)
		}
		if got := string(sink.Bytes()); got != c.want {
			t.Errorf("sendCommand(%q) wrote %q, want %q", c.verb, got, c.want)
		}
		if sink.flushes != 1 {
			t.Errorf("sendCommand(%q) flushed %d times, want 1", c.verb, sink.flushes)
		}
	}
}

func TestSendRawBypassesFraming(t *testing.T) {
	d, sink := newDriver("")
	if err := d.sendRaw("t", []byte("ATE0\r\n")); err != nil {
		t.Fatalf("sendRaw() error = %v", err)
	}
	if got := string(sink.Bytes()); got != "ATE0\r\n" {
		t.Errorf("sendRaw() wrote %q, want %q", got, "ATE0\r\n")
	}
}
