package httpserver

import "testing"

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"BEARER  abc  ", "abc", true},
		{"", "", false},
		{"Bearer ", "", false},
		{"Bearer", "", false},
		{"Basic dXNlcjpwdw==", "", false},
		{"abc.def.ghi", "", false},
	}
	for _, tc := range cases {
		got, err := bearerToken(tc.header)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("header %q: got %q err=%v, want %q", tc.header, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("header %q: want error, got %q", tc.header, got)
		}
	}
}
