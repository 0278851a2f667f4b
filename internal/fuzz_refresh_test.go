package internal

import "testing"

func FuzzDecodeRefreshToken(f *testing.F) {
	secret, err := NewRotatingSecret()
	if err != nil {
		f.Fatalf("secret generation failed: %v", err)
	}
	sid, err := NewSessionID()
	if err != nil {
		f.Fatalf("session id generation failed: %v", err)
	}
	valid, err := EncodeRefreshToken(sid, secret)
	if err != nil {
		f.Fatalf("encode failed: %v", err)
	}

	f.Add(valid)
	f.Add("")
	f.Add("not-base64!!")
	f.Add("AAAA")

	f.Fuzz(func(t *testing.T, token string) {
		gotSID, gotSecret, err := DecodeRefreshToken(token)
		if err != nil {
			return
		}
		reencoded, encErr := EncodeRefreshToken(gotSID, gotSecret)
		if encErr != nil {
			t.Fatalf("re-encode of decoded token failed: %v", encErr)
		}
		if reencoded != token {
			t.Fatalf("decode/encode not stable: %q != %q", reencoded, token)
		}
	})
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	sid, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID failed: %v", err)
	}
	secret, err := NewRotatingSecret()
	if err != nil {
		t.Fatalf("NewRotatingSecret failed: %v", err)
	}

	token, err := EncodeRefreshToken(sid, secret)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	gotSID, gotSecret, err := DecodeRefreshToken(token)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if gotSID != sid {
		t.Fatalf("session id mismatch: %s != %s", gotSID, sid)
	}
	if gotSecret != secret {
		t.Fatal("secret mismatch after round trip")
	}
}

func TestDecodeSecretRejectsWrongSize(t *testing.T) {
	if _, err := DecodeSecret("AAAA"); err == nil {
		t.Fatal("expected error for truncated secret")
	}
	if _, err := DecodeSecret("!!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}
