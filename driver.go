// Package esp8266at drives the ESP8266 Wi-Fi module running the AI-Thinker
// revision-018 AT-command firmware (AT version 0018, esp_iot_sdk version
// 0902-AI03) over a caller-supplied byte stream, typically a serial port at
// 9600 baud.
//
// Driver is built for single-threaded use: it owns the byte stream for the
// duration of each call, keeps no background goroutine, and carries no
// interior synchronization. Callers that need concurrency must serialize
// calls to a given Driver externally.
package esp8266at

import (
	"strconv"
	"time"
)

// Driver is the sole owner of a byte stream to an ESP8266 module. It is
// constructed by wrapping an already-open Source/Sink pair; acquiring and
// configuring the underlying stream (bit rate, flow control, line
// discipline) is the caller's responsibility.
type Driver struct {
	stream stream

	// ShortTimeout bounds quick query/response commands. Mutable by the
	// caller; defaults to DefaultShortTimeout.
	ShortTimeout time.Duration
	// LongTimeout bounds scans, restart and join. Mutable by the caller;
	// defaults to DefaultLongTimeout.
	LongTimeout time.Duration
}

// NewDriver wraps src and sink into a Driver. If the module responds to an
// immediate readiness probe, echo is disabled before NewDriver returns — a
// failed probe (module not yet powered, for example) is silently tolerated,
// since a caller may legitimately construct a Driver before the module has
// finished booting. A failure to disable echo after a successful probe is
// NOT tolerated and is returned to the caller; the Driver is still returned
// in that case since the streams were saved successfully and every other
// operation remains usable.
func NewDriver(src Source, sink Sink) (*Driver, error) {
	d := &Driver{
		stream:       stream{src: src, sink: sink},
		ShortTimeout: DefaultShortTimeout,
		LongTimeout:  DefaultLongTimeout,
	}
	if d.IsReady() {
		if err := d.disableEcho(); err != nil {
			return d, err
		}
	}
	return d, nil
}

// IsReady sends a bare "AT" and reports whether the module replies with OK
// within ShortTimeout. It never returns an error: every failure mode,
// including timeout, is reported as false.
func (d *Driver) IsReady() bool {
	const op = "is_ready"
	if err := d.sendCommand(op, ""); err != nil {
		return false
	}
	return d.expectEither(op, "OK\r\n", "ERROR\r\n", d.ShortTimeout) == nil
}

// disableEcho sends the raw (unprefixed) "ATE0" command. The module rejects
// a '+' prefix on this command, so it is written verbatim with sendRaw.
func (d *Driver) disableEcho() error {
	const op = "disable_echo"
	if err := d.sendRaw(op, []byte("ATE0\r\n")); err != nil {
		return err
	}
	return d.expectEither(op, "OK\r\n", "ERROR\r\n", d.ShortTimeout)
}

// EnableEcho sends the raw "ATE1" command, turning command echo back on.
// Callers must not issue further commands without a subsequent DisableEcho:
// every parser in this package assumes echo is off, since an echoed command
// line interleaved into a reply would corrupt every reader that follows it.
func (d *Driver) EnableEcho() error {
	const op = "enable_echo"
	if err := d.sendRaw(op, []byte("ATE1\r\n")); err != nil {
		return err
	}
	return d.expectEither(op, "OK\r\n", "ERROR\r\n", d.ShortTimeout)
}

// DisableEcho sends the raw "ATE0" command, turning command echo back off.
// It is exported so callers can restore the invariant after EnableEcho.
func (d *Driver) DisableEcho() error {
	return d.disableEcho()
}

// FirmwareVersion returns the module's AT+GMR reply, e.g. "0018000902-AI03".
func (d *Driver) FirmwareVersion() (string, error) {
	const op = "firmware_version"
	if err := d.sendCommand(op, "+GMR"); err != nil {
		return "", err
	}
	version, err := d.readLine(op, maxFirmwareLine, d.ShortTimeout)
	if err != nil {
		return "", err
	}
	if err := d.expectEither(op, "OK\r\n", "ERROR\r\n", d.ShortTimeout); err != nil {
		return "", err
	}
	return version, nil
}

// GetWifiMode returns the module's current station/access-point role.
func (d *Driver) GetWifiMode() (WifiMode, error) {
	const op = "get_wifi_mode"
	if err := d.sendCommand(op, "+CWMODE?"); err != nil {
		return 0, err
	}
	if err := d.expectToken(op, "+CWMODE:", d.ShortTimeout); err != nil {
		return 0, err
	}
	digit, err := d.readInto(op, '\r', maxModeLine, d.ShortTimeout)
	if err != nil {
		return 0, err
	}
	if err := d.expectToken(op, "OK\r\n", d.ShortTimeout); err != nil {
		return 0, err
	}
	if len(digit) != 1 {
		return 0, newError(op, Protocol, ErrMalformedRecord)
	}
	mode, ok := wifiModeCodes[digit[0]]
	if !ok {
		return 0, newError(op, Protocol, ErrUnexpectedWifiMode)
	}
	return mode, nil
}

// SetWifiMode sets the module's station/access-point role. The module
// replies "no change\r\n" instead of "OK\r\n" when the requested mode is
// already active; both are treated as success.
func (d *Driver) SetWifiMode(mode WifiMode) error {
	const op = "set_wifi_mode"
	if err := d.sendCommand(op, "+CWMODE="+string(mode.code())); err != nil {
		return err
	}
	line, err := d.readLine(op, maxSetModeLine, d.ShortTimeout)
	if err != nil {
		return err
	}
	if line == "no change" || line == "OK" {
		return nil
	}
	return d.expectToken(op, "OK\r\n", d.ShortTimeout)
}

// Restart issues AT+RST, waits for the module's unsolicited "ready" banner,
// then immediately re-disables echo — a reboot resets the module's echo
// state to on, and any echo emission interleaved with the reboot banner is
// tolerated by the immediately-following echo-off.
func (d *Driver) Restart() error {
	const op = "restart"
	if err := d.sendCommand(op, "+RST"); err != nil {
		return err
	}
	if err := d.expectToken(op, "ready\r\n", d.LongTimeout); err != nil {
		return err
	}
	return d.disableEcho()
}

// GetIP returns the module's IP address, which may be "0.0.0.0" if none is
// assigned.
func (d *Driver) GetIP() (string, error) {
	const op = "get_ip"
	if err := d.sendCommand(op, "+CIFSR"); err != nil {
		return "", err
	}
	ip, err := d.readLine(op, maxIPLine, d.ShortTimeout)
	if err != nil {
		return "", err
	}
	if err := d.expectToken(op, "OK\r\n", d.ShortTimeout); err != nil {
		return "", err
	}
	return ip, nil
}

// SetMuxMode toggles the module's connection-multiplexing flag. This
// package has no notion of multiple simultaneous connections beyond this
// flag: Send/Receive/CloseIPClient always address whichever single
// connection the module currently has open or listening.
func (d *Driver) SetMuxMode(enabled bool) error {
	const op = "set_mux_mode"
	verb := "+CIPMUX=0"
	if enabled {
		verb = "+CIPMUX=1"
	}
	if err := d.sendCommand(op, verb); err != nil {
		return err
	}
	return d.expectToken(op, "OK\r\n", d.ShortTimeout)
}

// StartTCPServer opens a listening TCP server on port. A port <= 0 omits the
// ",<port>" argument, letting the module use its own default.
func (d *Driver) StartTCPServer(port int) error {
	const op = "start_tcp_server"
	verb := "+CIPSERVER=1"
	if port > 0 {
		verb += "," + strconv.Itoa(port)
	}
	if err := d.sendCommand(op, verb); err != nil {
		return err
	}
	return d.expectToken(op, "OK\r\n", d.ShortTimeout)
}

// StartTCPClient opens an outgoing TCP connection to ip:port.
func (d *Driver) StartTCPClient(ip string, port int) error {
	const op = "start_tcp_client"
	verb := `+CIPSTART="TCP","` + ip + `",` + strconv.Itoa(port)
	if err := d.sendCommand(op, verb); err != nil {
		return err
	}
	return d.expectEither(op, "OK\r\n", "ERROR\r\n", d.ShortTimeout)
}

// StartUDPClient opens a UDP transport to ip:remotePort, bound locally to
// localPort, with the given peer-address handling mode.
func (d *Driver) StartUDPClient(ip string, remotePort, localPort int, mode UdpPeerMode) error {
	const op = "start_udp_client"
	verb := `+CIPSTART="UDP","` + ip + `",` +
		strconv.Itoa(remotePort) + "," + strconv.Itoa(localPort) + "," +
		strconv.Itoa(int(mode))
	if err := d.sendCommand(op, verb); err != nil {
		return err
	}
	return d.expectEither(op, "OK\r\n", "ERROR\r\n", d.ShortTimeout)
}

// JoinAP joins the access point named ssid using pwd. Uses LongTimeout:
// association can take several seconds.
func (d *Driver) JoinAP(ssid, pwd string) error {
	const op = "join_ap"
	verb := `+CWJAP="` + ssid + `","` + pwd + `"`
	if err := d.sendCommand(op, verb); err != nil {
		return err
	}
	return d.expectEither(op, "OK\r\n", "FAIL\r\n", d.LongTimeout)
}

// CloseIPClient closes the active TCP or UDP transport.
func (d *Driver) CloseIPClient() error {
	const op = "close_ip_client"
	if err := d.sendCommand(op, "+CIPCLOSE"); err != nil {
		return err
	}
	return d.expectEither(op, "OK\r\n", "ERROR\r\n", d.ShortTimeout)
}

// GetAccessPoints scans for nearby access points and returns them as a set
// (duplicates, by value over all five AccessPoint fields, collapse to one
// entry; insertion order is not observable). Uses LongTimeout.
func (d *Driver) GetAccessPoints() (map[AccessPoint]struct{}, error) {
	const op = "get_access_points"
	if err := d.sendCommand(op, "+CWLAP"); err != nil {
		return nil, err
	}
	aps := make(map[AccessPoint]struct{})
	for {
		line, err := d.readLine(op, maxScanLine, d.LongTimeout)
		if err != nil {
			return nil, err
		}
		switch line {
		case "":
			continue
		case "OK":
			return aps, nil
		case "ERROR":
			return nil, newError(op, ResponseFailed, ErrDeviceError)
		default:
			if len(line) < len(cwlapPrefix) || line[:len(cwlapPrefix)] != cwlapPrefix || line[len(line)-1] != ')' {
				return nil, newError(op, Protocol, ErrMalformedRecord)
			}
			ap, err := parseAccessPoint(line)
			if err != nil {
				return nil, newError(op, Protocol, err)
			}
			aps[ap] = struct{}{}
		}
	}
}

// Send writes buf as a single AT+CIPSEND frame and waits for the module's
// OK/ERROR terminator.
func (d *Driver) Send(buf []byte) error {
	const op = "send"
	if err := d.sendCommand(op, "+CIPSEND="+strconv.Itoa(len(buf))); err != nil {
		return err
	}
	if _, err := d.stream.write(buf); err != nil {
		return newError(op, Io, err)
	}
	if err := d.stream.flush(); err != nil {
		return newError(op, Io, err)
	}
	return d.expectEither(op, "OK\r\n", "ERROR\r\n", d.ShortTimeout)
}

// Receive waits for an inbound "+IPD,<n>:" frame and copies its payload
// into buf, returning the number of bytes written to buf.
//
// It reads exactly length+1 bytes from the stream after the length field —
// one more byte than the frame's own declared length says to expect.
// Callers should size buf to length+1 accordingly. If length+1 exceeds
// len(buf), the overflow bytes are still read from the stream (to keep the
// module's byte count aligned) but discarded. The payload read is bounded
// by timeout measured from entry to Receive; the initial wait for the
// "+IPD," token is bounded by the fixed, non-configurable connect timeout,
// and the read of the length field by ShortTimeout.
func (d *Driver) Receive(buf []byte, timeout time.Duration) (int, error) {
	const op = "receive"
	entryDeadline := time.Now().Add(timeout)

	if err := d.expectToken(op, "+IPD,", connectTimeout); err != nil {
		return 0, err
	}

	lenBytes, err := d.readInto(op, ':', maxLengthDigits, d.ShortTimeout)
	if err != nil {
		return 0, err
	}
	if len(lenBytes) == 0 || lenBytes[len(lenBytes)-1] != ':' {
		return 0, newError(op, Protocol, ErrMalformedRecord)
	}
	lenBytes = lenBytes[:len(lenBytes)-1]
	length, err := strconv.Atoi(string(lenBytes))
	if err != nil || length < 0 {
		return 0, newError(op, Protocol, ErrMalformedRecord)
	}

	total := length + 1 // one byte past the declared length, see doc comment above
	n := 0
	for i := 0; i < total; i++ {
		b, err := d.readByteDeadline(op, entryDeadline)
		if err != nil {
			return n, err
		}
		if n < len(buf) {
			buf[n] = b
			n++
		}
	}
	return n, nil
}
