package storage

import "testing"

func TestS3Uploader_Key(t *testing.T) {
	u := &S3Uploader{prefix: "debug"}
	if got := u.Key("debug_カメラ_1.png"); got != "debug/debug_カメラ_1.png" {
		t.Fatalf("unexpected key %s", got)
	}

	bare := &S3Uploader{}
	if got := bare.Key("x.html"); got != "x.html" {
		t.Fatalf("expected unprefixed key, got %s", got)
	}
}
