package classfile

import "testing"

func TestModifiedUTF8RoundTrip(t *testing.T) {
	cases := []string{
		"",
		"hello",
		"café",
		"\x00",               // NUL alone
		"a\x00b",             // NUL embedded, not at an edge
		"\U0001F600",         // supplementary code point (emoji), needs a surrogate pair
		"mix\x00ed\U0001F600",
	}
	for _, s := range cases {
		encoded := EncodeModifiedUTF8(s)
		decoded, err := DecodeModifiedUTF8(encoded)
		if err != nil {
			t.Fatalf("DecodeModifiedUTF8(%q) error: %v", s, err)
		}
		if decoded != s {
			t.Errorf("round trip %q -> %x -> %q", s, encoded, decoded)
		}
	}
}

func TestNULIsEncodedAsTwoBytes(t *testing.T) {
	encoded := EncodeModifiedUTF8("\x00")
	want := []byte{0xC0, 0x80}
	if len(encoded) != 2 || encoded[0] != want[0] || encoded[1] != want[1] {
		t.Errorf("encoded NUL = %x, want C0 80", encoded)
	}
}

func TestDecodeTruncatedSequenceErrors(t *testing.T) {
	_, err := DecodeModifiedUTF8([]byte{0xC0}) // lead byte with no continuation
	if err == nil {
		t.Error("truncated 2-byte sequence did not error")
	}
}
