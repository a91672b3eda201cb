package crypto

import (
	"bytes"
	"testing"
)

func TestSealOpen(t *testing.T) {
	key, err := DeriveKey("a token")
	if err != nil {
		t.Fatal(err)
	}

	plain := []byte("hello shard")
	ct, err := Seal(plain, key)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(ct, plain) {
		t.Fatal("ciphertext contains plaintext")
	}

	got, err := Open(ct, key)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("got %q", got)
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	a, _ := DeriveKey("same")
	b, _ := DeriveKey("same")
	c, _ := DeriveKey("different")
	if *a != *b {
		t.Fatal("same token must derive the same key")
	}
	if *a == *c {
		t.Fatal("different tokens must derive different keys")
	}
}

func TestOpenRejectsTampering(t *testing.T) {
	key, _ := DeriveKey("a token")
	ct, err := Seal([]byte("payload"), key)
	if err != nil {
		t.Fatal(err)
	}

	ct[len(ct)-1] ^= 0xff
	if _, err := Open(ct, key); err == nil {
		t.Fatal("tampered ciphertext opened")
	}

	if _, err := Open([]byte("short"), key); err == nil {
		t.Fatal("truncated ciphertext opened")
	}

	wrong, _ := DeriveKey("another token")
	ct2, _ := Seal([]byte("payload"), key)
	if _, err := Open(ct2, wrong); err == nil {
		t.Fatal("wrong key opened")
	}
}
