package gatt

import (
	"bytes"
	"testing"
)

func TestUUID16(t *testing.T) {
	if want, got := (UUID{[]byte{0x00, 0x18}}), UUID16(0x1800); !got.Equal(want) {
		t.Errorf("UUID16: got %x, want %x", got, want)
	}
}

func TestParseUUID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		b    []byte
	}{
		{in: "2901", want: "2901", b: []byte{0x01, 0x29}},
		{in: "0x2A19", want: "2a19", b: []byte{0x19, 0x2a}},
		{
			in:   "12634d89-d598-4874-8e86-7d042ee07ba7",
			want: "12634d89-d598-4874-8e86-7d042ee07ba7",
			b: []byte{
				0xa7, 0x7b, 0xe0, 0x2e, 0x04, 0x7d, 0x86, 0x8e,
				0x74, 0x48, 0x98, 0xd5, 0x89, 0x4d, 0x63, 0x12,
			},
		},
		{
			in:   "4116F8D29F664F58A53DFC7440E7C14E",
			want: "4116f8d2-9f66-4f58-a53d-fc7440e7c14e",
		},
	}

	for _, tt := range cases {
		u, err := ParseUUID(tt.in)
		if err != nil {
			t.Errorf("ParseUUID(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got := u.String(); got != tt.want {
			t.Errorf("ParseUUID(%q).String(): got %q want %q", tt.in, got, tt.want)
		}
		if tt.b != nil && !bytes.Equal(u.b, tt.b) {
			t.Errorf("ParseUUID(%q) bytes: got %x want %x", tt.in, u.b, tt.b)
		}
	}

	for _, in := range []string{"", "29", "xyzw", "12634d89-d598-4874-8e86"} {
		if _, err := ParseUUID(in); err == nil {
			t.Errorf("ParseUUID(%q): expected error", in)
		}
	}
}

func TestReverse(t *testing.T) {
	cases := []struct {
		fwd  []byte
		back []byte
	}{
		{fwd: []byte{0, 1}, back: []byte{1, 0}},
		{fwd: []byte{0, 1, 2}, back: []byte{2, 1, 0}},
		{fwd: []byte{0, 1, 2, 3}, back: []byte{3, 2, 1, 0}},
		{
			fwd:  []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			back: []byte{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
		},
	}

	for _, tt := range cases {
		got := reverse(tt.fwd)
		if !bytes.Equal(got, tt.back) {
			t.Errorf("reverse(%x): got %x want %x", tt.fwd, got, tt.back)
		}

		u := UUID{tt.fwd}
		got = reverse(u.b)
		if !bytes.Equal(got, tt.back) {
			t.Errorf("UUID.reverse(%x): got %x want %x", tt.fwd, got, tt.back)
		}
	}
}

func BenchmarkReverseBytes16(b *testing.B) {
	u := UUID{make([]byte, 2)}
	for i := 0; i < b.N; i++ {
		reverse(u.b)
	}
}

func BenchmarkReverseBytes128(b *testing.B) {
	u := UUID{make([]byte, 16)}
	for i := 0; i < b.N; i++ {
		reverse(u.b)
	}
}
