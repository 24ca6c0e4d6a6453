package gcp

import (
	"strings"
	"testing"
)

func TestGetPublicURLGCSDefault(t *testing.T) {
	bs := &bucketService{documentBucket: bucketConfig{name: "doc-bucket"}}

	got := bs.GetPublicURL(BucketCategoryDocument, "runs/abc/blog_abc.docx")
	want := "https://storage.googleapis.com/doc-bucket/runs/abc/blog_abc.docx"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUsesCDNDomain(t *testing.T) {
	bs := &bucketService{coverBucket: bucketConfig{name: "cover-bucket", cdnDomain: "cdn.example.com"}}

	got := bs.GetPublicURL(BucketCategoryCover, "/runs/abc/cover_abc.png")
	want := "https://cdn.example.com/runs/abc/cover_abc.png"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUsesPublicBaseURL(t *testing.T) {
	bs := &bucketService{
		publicBaseURL:  "http://localhost:4443",
		documentBucket: bucketConfig{name: "doc-bucket"},
	}

	got := bs.GetPublicURL(BucketCategoryDocument, "/runs/x.docx")
	want := "http://localhost:4443/doc-bucket/runs/x.docx"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUsesEmulatorMediaEndpoint(t *testing.T) {
	bs := &bucketService{
		storageMode:  ObjectStorageModeGCSEmulator,
		emulatorHost: "http://fake-gcs:4443",
		coverBucket:  bucketConfig{name: "cover-bucket"},
	}

	got := bs.GetPublicURL(BucketCategoryCover, "runs/abc/cover_abc.png")
	want := "http://fake-gcs:4443/storage/v1/b/cover-bucket/o/runs%2Fabc%2Fcover_abc.png?alt=media"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUnknownCategoryReturnsKey(t *testing.T) {
	bs := &bucketService{}
	if got := bs.GetPublicURL(BucketCategory("avatar"), "k.png"); got != "k.png" {
		t.Fatalf("GetPublicURL: got %q", got)
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"runs/a/blog_a.docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"runs/a/cover_a.PNG": "image/png",
		"x.jpeg?v=2":         "image/jpeg",
		"manifest.json":      "application/json",
		"notes.txt":          "",
	}
	for key, want := range cases {
		if got := contentTypeForKey(key); got != want {
			t.Fatalf("contentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}

func TestResolvePublicBaseURL(t *testing.T) {
	if _, _, err := resolvePublicBaseURL("localhost:4443", ObjectStorageConfig{Mode: ObjectStorageModeGCS}); err == nil {
		t.Fatalf("expected error for relative base url")
	}
	got, src, err := resolvePublicBaseURL("", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake:4443"})
	if err != nil {
		t.Fatalf("resolvePublicBaseURL: %v", err)
	}
	if got != "http://fake:4443" || !strings.Contains(src, "emulator") {
		t.Fatalf("unexpected base=%q source=%q", got, src)
	}
}
