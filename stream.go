package esp8266at

// Source is the inbound half of the byte stream a Driver is built on. It is
// supplied by the caller (serial port, file descriptor, USB bridge, ...);
// acquiring and configuring it (bit rate, flow control, line discipline) is
// entirely the caller's responsibility.
//
// Available must never block: it reports whether at least one byte is
// currently buffered and readable without blocking. ReadByte blocks until
// exactly one byte arrives or the underlying source reaches end of stream,
// in which case it returns an error.
type Source interface {
	Available() bool
	ReadByte() (byte, error)
}

// Sink is the outbound half of the byte stream. Write may buffer; Flush
// pushes any buffered bytes out.
type Sink interface {
	Write(p []byte) (int, error)
	Flush() error
}

// stream does nothing beyond forwarding to the caller-supplied Source and
// Sink. It carries no buffering or retry logic of its own — I/O errors and
// end-of-stream are surfaced unchanged.
type stream struct {
	src  Source
	sink Sink
}

func (s *stream) available() bool {
	return s.src.Available()
}

func (s *stream) readByte() (byte, error) {
	return s.src.ReadByte()
}

func (s *stream) write(p []byte) (int, error) {
	return s.sink.Write(p)
}

func (s *stream) flush() error {
	return s.sink.Flush()
}
