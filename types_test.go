package esp8266at

import "testing"

func TestWifiModeCode(t *testing.T) {
	cases := []struct {
		mode WifiMode
		code byte
	}{
		{STATION, '1'},
		{ACCESSPOINT, '2'},
		{BOTH, '3'},
	}
	for _, c := range cases {
		if got := c.mode.code(); got != c.code {
			t.Errorf("%v.code() = %q, want %q", c.mode, got, c.code)
		}
	}
}

func TestWifiModeCodesRoundTrip(t *testing.T) {
	for digit, mode := range wifiModeCodes {
		if mode.code() != digit {
			t.Errorf("wifiModeCodes[%q] = %v, but %v.code() = %q", digit, mode, mode, mode.code())
		}
	}
}

func TestEncryptionString(t *testing.T) {
	if got := WPA2_PSK.String(); got != "WPA2_PSK" {
		t.Errorf("WPA2_PSK.String() = %q", got)
	}
	if got := Encryption(99).String(); got != "Encryption(99)" {
		t.Errorf("Encryption(99).String() = %q", got)
	}
}

func TestAccessPointEquality(t *testing.T) {
	a := AccessPoint{Encryption: OPEN, SSID: "x", RSSI: -1, MAC: "m", Channel: 1}
	b := AccessPoint{Encryption: OPEN, SSID: "x", RSSI: -1, MAC: "m", Channel: 1}
	c := AccessPoint{Encryption: OPEN, SSID: "x", RSSI: -2, MAC: "m", Channel: 1}
	if a != b {
		t.Error("identical AccessPoint values are not ==")
	}
	if a == c {
		t.Error("distinct AccessPoint values compared ==")
	}
	set := map[AccessPoint]struct{}{a: {}}
	if _, ok := set[b]; !ok {
		t.Error("value-equal AccessPoint does not collapse as a map key")
	}
}
