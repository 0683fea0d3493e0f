package htmlrender

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

var samplePNG = []byte("\x89PNG\r\n\x1a\n fake content for testing")

func sampleResult() *Result {
	return &Result{contentType: "image/png", data: samplePNG}
}

func TestResult_Bytes(t *testing.T) {
	r := sampleResult()
	if !bytes.Equal(r.Bytes(), samplePNG) {
		t.Error("Bytes() did not return original data")
	}
	if r.ContentType() != "image/png" {
		t.Errorf("ContentType() = %q", r.ContentType())
	}
}

func TestResult_Base64(t *testing.T) {
	r := sampleResult()
	got := r.Base64()
	want := base64.StdEncoding.EncodeToString(samplePNG)
	if got != want {
		t.Errorf("Base64() = %q, want %q", got, want)
	}
}

func TestResult_Reader(t *testing.T) {
	r := sampleResult()
	reader := r.Reader()
	if reader.Len() != len(samplePNG) {
		t.Errorf("Reader().Len() = %d, want %d", reader.Len(), len(samplePNG))
	}
	buf := make([]byte, len(samplePNG))
	n, err := reader.Read(buf)
	if err != nil {
		t.Fatalf("Reader().Read: %v", err)
	}
	if !bytes.Equal(buf[:n], samplePNG) {
		t.Error("Reader() produced different content")
	}
}

func TestResult_WriteTo(t *testing.T) {
	r := sampleResult()
	var buf bytes.Buffer
	n, err := r.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(len(samplePNG)) {
		t.Errorf("WriteTo wrote %d bytes, want %d", n, len(samplePNG))
	}
	if !bytes.Equal(buf.Bytes(), samplePNG) {
		t.Error("WriteTo produced different content")
	}
}

func TestResult_WriteToFile(t *testing.T) {
	r := sampleResult()
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := r.WriteToFile(path, 0o644); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if !bytes.Equal(data, samplePNG) {
		t.Error("WriteToFile produced different content")
	}
}

func TestResult_JSON(t *testing.T) {
	data, err := json.Marshal(sampleResult())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("Unmarshal payload: %v", err)
	}
	if p.ContentType != "image/png" {
		t.Errorf("contentType = %q", p.ContentType)
	}
	if p.ContentBase64 != base64.StdEncoding.EncodeToString(samplePNG) {
		t.Error("contentBase64 does not encode the artifact")
	}

	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal result: %v", err)
	}
	if back.ContentType() != "image/png" || !bytes.Equal(back.Bytes(), samplePNG) {
		t.Error("decoded Result differs from original")
	}
}

func TestResult_UnmarshalBadBase64(t *testing.T) {
	var r Result
	if err := json.Unmarshal([]byte(`{"contentType":"image/png","contentBase64":"***"}`), &r); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestNewResult_Empty(t *testing.T) {
	_, err := newResult(FormatPNG, nil)
	if KindOf(err) != KindInternal {
		t.Errorf("KindOf = %q, want %q", KindOf(err), KindInternal)
	}
	res, err := newResult(FormatPDF, []byte("%PDF-"))
	if err != nil || res.ContentType() != "application/pdf" {
		t.Errorf("newResult(pdf) = %v, %v", res, err)
	}
}
