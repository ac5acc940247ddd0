package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{Driver: "fs", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", s.Driver())
	}

	info, err := s.Put(ctx, "models/1/economic.bin", bytes.NewReader([]byte{1, 2, 3}), PutOptions{
		ContentType: "application/octet-stream",
		Metadata:    map[string]string{"rows": "1"},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if info.Size != 3 || info.ContentType != "application/octet-stream" || info.Metadata["rows"] != "1" {
		t.Fatalf("Put info = %+v", info)
	}

	// overwrite
	if _, err := s.Put(ctx, "models/1/economic.bin", bytes.NewReader([]byte{9}), PutOptions{}); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	_, rc, err := s.Get(ctx, "models/1/economic.bin")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(body, []byte{9}) {
		t.Fatalf("Get body = %v", body)
	}

	if _, err := s.Put(ctx, "models/2/manifest.json", bytes.NewReader([]byte("{}")), PutOptions{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	list, err := s.List(ctx, "models/1/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Key != "models/1/economic.bin" {
		t.Fatalf("List = %+v", list)
	}

	ok, err := s.Delete(ctx, "models/1/economic.bin")
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	ok, err = s.Delete(ctx, "models/1/economic.bin")
	if err != nil || ok {
		t.Fatalf("second Delete = %v, %v", ok, err)
	}
	if _, _, err := s.Get(ctx, "models/1/economic.bin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: %v", err)
	}
}

func TestInvalidKeysAndDrivers(t *testing.T) {
	ctx := context.Background()
	s, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	for _, k := range []string{"", "/abs", "a/../b"} {
		if _, err := s.Put(ctx, k, bytes.NewReader(nil), PutOptions{}); err == nil {
			t.Fatalf("Put(%q) should fail", k)
		}
	}
	if _, err := Open(ctx, Config{Driver: "gcs"}); err == nil {
		t.Fatalf("unknown driver should fail")
	}
	if _, err := Open(ctx, Config{Driver: "s3"}); err == nil {
		t.Fatalf("s3 without bucket should fail")
	}
}
