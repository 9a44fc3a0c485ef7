package esp8266at

// sendCommand frames verb as an AT command line and writes it to the sink:
// "AT\r\n" when verb is empty, "AT<verb>\r\n" otherwise (verb already
// carries any leading '+' and '=' arguments).
func (d *Driver) sendCommand(op, verb string) error {
	line := "AT" + verb + "\r\n"
	if _, err := d.stream.write([]byte(line)); err != nil {
		return newError(op, Io, err)
	}
	if err := d.stream.flush(); err != nil {
		return newError(op, Io, err)
	}
	return nil
}

// sendRaw writes p verbatim, with no AT framing, then flushes. Used only by
// disableEcho/enableEcho: the module rejects the '+' prefix on ATE0/ATE1.
func (d *Driver) sendRaw(op string, p []byte) error {
	if _, err := d.stream.write(p); err != nil {
		return newError(op, Io, err)
	}
	if err := d.stream.flush(); err != nil {
		return newError(op, Io, err)
	}
	return nil
}
