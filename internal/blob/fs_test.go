package blob

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestFilesystemRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver: %s", store.Driver())
	}

	info, err := store.Put(ctx, "reports/2025/kpi.json", strings.NewReader("payload"), PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ETag == "" {
		t.Fatalf("info: %+v", info)
	}

	if _, err := store.Put(ctx, "reports/2025/kpi.json", strings.NewReader("x"), PutOptions{}); err == nil {
		t.Fatal("put must be create-only")
	}

	got, rc, err := store.Get(ctx, "reports/2025/kpi.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "payload" || got.ContentType != "application/json" {
		t.Fatalf("round trip: %s %+v", body, got)
	}

	infos, err := store.List(ctx, "reports/")
	if err != nil || len(infos) != 1 {
		t.Fatalf("list: %v %+v", err, infos)
	}

	ok, err := store.Delete(ctx, "reports/2025/kpi.json")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = store.Delete(ctx, "reports/2025/kpi.json")
	if err != nil || ok {
		t.Fatalf("delete missing: ok=%v err=%v", ok, err)
	}
}

func TestFilesystemRejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"", "  ", "../escape", "/abs", "a/../../b"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Errorf("key %q must be rejected", key)
		}
	}
}

func TestFilesystemPresignIsLocalURL(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	url, err := store.PresignURL(context.Background(), "reports/kpi.json", SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(url, "http://local.blob/") {
		t.Fatalf("url: %s", url)
	}
	if _, err := store.PresignURL(context.Background(), "k", SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatal("PUT presign unsupported")
	}
}

func TestOpenSelectsDriverFromEnv(t *testing.T) {
	t.Setenv("FLEETCORE_BLOB_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver: %s", store.Driver())
	}

	t.Setenv("FLEETCORE_BLOB_DRIVER", "fs")
	t.Setenv("FLEETCORE_BLOB_FS_ROOT", t.TempDir())
	store, err = Open(context.Background())
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver: %s", store.Driver())
	}

	t.Setenv("FLEETCORE_BLOB_DRIVER", "s3")
	t.Setenv("FLEETCORE_BLOB_S3_BUCKET", "")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("s3 without bucket must fail")
	}

	t.Setenv("FLEETCORE_BLOB_DRIVER", "gopher")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("unknown driver must fail")
	}
}
