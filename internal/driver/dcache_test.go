package driver

import (
	"testing"

	"gscript/internal/project"
)

func newTestCache(t *testing.T) *DiskCache {
	t.Helper()
	return &DiskCache{dir: t.TempDir()}
}

func TestDiskCachePutGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	key := project.Digest{1, 2, 3}

	want := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        "plugin.sp",
		ContentHash: key,
		Broken:      false,
		Exports:     []ExportedSymbol{{Name: "OnPluginStart", Tag: 0}},
	}
	if err := c.Put(key, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var got DiskPayload
	hit, err := c.Get(key, &got)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatalf("expected cache hit")
	}
	if got.Path != want.Path || len(got.Exports) != 1 || got.Exports[0].Name != "OnPluginStart" {
		t.Fatalf("unexpected round-tripped payload: %+v", got)
	}
}

func TestDiskCacheMissForUnknownKey(t *testing.T) {
	c := newTestCache(t)
	var got DiskPayload
	hit, err := c.Get(project.Digest{9, 9}, &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Fatalf("expected a miss for a key never written")
	}
}

func TestDiskCacheRejectsStaleSchema(t *testing.T) {
	c := newTestCache(t)
	key := project.Digest{4, 5, 6}

	stale := &DiskPayload{Schema: diskCacheSchemaVersion + 1, Path: "old.sp"}
	if err := c.Put(key, stale); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var got DiskPayload
	hit, err := c.Get(key, &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Fatalf("expected a schema mismatch to be treated as a miss")
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	c := newTestCache(t)
	key := project.Digest{7}
	if err := c.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion, Path: "a.sp"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll failed: %v", err)
	}

	var got DiskPayload
	hit, err := c.Get(key, &got)
	if err != nil {
		t.Fatalf("unexpected error after DropAll: %v", err)
	}
	if hit {
		t.Fatalf("expected no entries to survive DropAll")
	}
}

func TestDiskCacheNilReceiverIsNoop(t *testing.T) {
	var c *DiskCache
	if err := c.Put(project.Digest{}, &DiskPayload{}); err != nil {
		t.Fatalf("Put on nil cache should be a no-op, got error: %v", err)
	}
	hit, err := c.Get(project.Digest{}, &DiskPayload{})
	if err != nil || hit {
		t.Fatalf("Get on nil cache should be a no-op miss, got hit=%v err=%v", hit, err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll on nil cache should be a no-op, got error: %v", err)
	}
}
