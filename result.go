package htmlrender

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
)

// Result holds a rendered artifact and its content type, with helpers for
// common output forms such as raw bytes, base64 and streaming readers.
//
// A Result is immutable: its methods may be called any number of times and
// never modify the underlying data.
type Result struct {
	contentType string
	data        []byte
}

// ContentType returns the MIME type of the artifact, "application/pdf" or
// "image/png".
func (r *Result) ContentType() string {
	return r.contentType
}

// Bytes returns the raw artifact.
func (r *Result) Bytes() []byte {
	return r.data
}

// Base64 returns the artifact encoded as a standard base64 string (RFC 4648).
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the artifact.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full artifact to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the artifact to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the artifact in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// Payload is the JSON shape of a Result on the wire.
type Payload struct {
	ContentType   string `json:"contentType"`
	ContentBase64 string `json:"contentBase64"`
}

// MarshalJSON encodes the Result as a [Payload].
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(Payload{ContentType: r.contentType, ContentBase64: r.Base64()})
}

// UnmarshalJSON decodes a [Payload].
func (r *Result) UnmarshalJSON(b []byte) error {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(p.ContentBase64)
	if err != nil {
		return err
	}
	r.contentType = p.ContentType
	r.data = data
	return nil
}
