package storage

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		raw    string
		bucket string
		prefix string
		isErr  bool
	}{
		{raw: "out", prefix: "out"},
		{raw: "/tmp/runs/", prefix: "/tmp/runs/"},
		{raw: "s3://bucket", bucket: "bucket"},
		{raw: "s3://bucket/runs/2026/", bucket: "bucket", prefix: "runs/2026"},
		{raw: "s3:///runs", isErr: true},
	}

	for _, tc := range tests {
		got, err := ParseTarget(tc.raw)
		if tc.isErr {
			if err == nil {
				t.Errorf("ParseTarget(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTarget(%q): %v", tc.raw, err)
		}
		if got.Bucket != tc.bucket || got.Prefix != tc.prefix {
			t.Errorf("ParseTarget(%q) = %+v, expected bucket %q prefix %q", tc.raw, got, tc.bucket, tc.prefix)
		}
		if got.IsS3() != (tc.bucket != "") {
			t.Errorf("ParseTarget(%q).IsS3() mismatch", tc.raw)
		}
	}
}

func TestTargetKey(t *testing.T) {
	if k := (Target{}).Key("result.json"); k != "result.json" {
		t.Errorf("Expected bare key, got %s", k)
	}
	if k := (Target{Bucket: "b", Prefix: "runs/"}).Key("result.json"); k != "runs/result.json" {
		t.Errorf("Expected runs/result.json, got %s", k)
	}
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Target{Prefix: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Get(ctx, "missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := store.Put(ctx, "run-1/output.txt", []byte("4\n5\n")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "run-1/result.json", []byte("{}")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, err := store.Get(ctx, "run-1/output.txt")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "4\n5\n" {
		t.Errorf("Expected round-tripped content, got %q", data)
	}

	keys, err := store.List(ctx, "run-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "run-1/output.txt" || keys[1] != "run-1/result.json" {
		t.Errorf("Unexpected keys: %v", keys)
	}

	keys, err = store.List(ctx, "nothing-here")
	if err != nil || len(keys) != 0 {
		t.Errorf("Expected empty listing, got %v (%v)", keys, err)
	}
}
