package esp8266at

import (
	"bytes"
	"errors"
)

// fakeSource replays a fixed byte sequence, simulating a module's replies.
// Once exhausted it reports no bytes available, so the driver's readByte
// polling loop waits until the test-controlled deadline trips, matching a
// serial port that simply has nothing more to say. ReadByte called directly
// on an exhausted source returns an error rather than blocking.
type fakeSource struct {
	data []byte
	pos  int
}

func newFakeSource(s string) *fakeSource {
	return &fakeSource{data: []byte(s)}
}

func (f *fakeSource) Available() bool {
	return f.pos < len(f.data)
}

func (f *fakeSource) ReadByte() (byte, error) {
	if f.pos >= len(f.data) {
		return 0, errors.New("fakeSource: no more data")
	}
	b := f.data[f.pos]
	f.pos++
	return b, nil
}

// fakeSink records every byte written to it, with no buffering of its own.
type fakeSink struct {
	bytes.Buffer
	flushes int
}

func (f *fakeSink) Flush() error {
	f.flushes++
	return nil
}

func newDriver(reply string) (*Driver, *fakeSink) {
	sink := &fakeSink{}
	d := &Driver{
		stream:       stream{src: newFakeSource(reply), sink: sink},
		ShortTimeout: DefaultShortTimeout,
		LongTimeout:  DefaultLongTimeout,
	}
	return d, sink
}
