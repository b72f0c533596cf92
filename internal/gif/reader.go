package gif

import "bytes"

// byteCountingReader wraps a bytes.Reader so the driver can report how much
// of the input buffer the trailer was found at, mirroring the byte-count
// bookkeeping of a format.Reader wrapping a file stream.
type byteCountingReader struct {
	r *bytes.Reader
}

func newByteCountingReader(data []byte) *byteCountingReader {
	return &byteCountingReader{r: bytes.NewReader(data)}
}

func (r *byteCountingReader) ReadByte() (byte, error) { return r.r.ReadByte() }

func (r *byteCountingReader) Read(p []byte) (int, error) { return r.r.Read(p) }

// BytesRead returns the number of bytes consumed so far.
func (r *byteCountingReader) BytesRead() int {
	return int(r.r.Size()) - r.r.Len()
}
