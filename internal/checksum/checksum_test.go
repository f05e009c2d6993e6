package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"testing"
)

func TestDigesterMatchesStdlib(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	d := NewDigester()
	if _, err := d.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	h := sha1.New()
	h.Write(data)
	wantSHA1 := hex.EncodeToString(h.Sum(nil))

	hm := md5.New()
	hm.Write(data)
	wantMD5 := hex.EncodeToString(hm.Sum(nil))

	if d.SHA1Hex() != wantSHA1 {
		t.Errorf("SHA1Hex() = %s, want %s", d.SHA1Hex(), wantSHA1)
	}
	if d.MD5Hex() != wantMD5 {
		t.Errorf("MD5Hex() = %s, want %s", d.MD5Hex(), wantMD5)
	}
}

func TestDigesterAccumulatesAcrossWrites(t *testing.T) {
	d1 := NewDigester()
	d1.Write([]byte("hello "))
	d1.Write([]byte("world"))

	d2 := NewDigester()
	d2.Write([]byte("hello world"))

	if d1.SHA1Hex() != d2.SHA1Hex() {
		t.Errorf("chunked SHA1Hex() = %s, want %s (single write)", d1.SHA1Hex(), d2.SHA1Hex())
	}
}
