package urlutil

import "testing"

func TestNormalizeScheme(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"http://repo.example.com", "http://repo.example.com"},
		{"https://repo.example.com", "https://repo.example.com"},
		{"dav:http://repo.example.com", "http://repo.example.com"},
		{"dav:https://repo.example.com", "https://repo.example.com"},
		{"dav://repo.example.com", "http://repo.example.com"},
	}
	for _, c := range cases {
		if got := NormalizeScheme(c.in); got != c.want {
			t.Errorf("NormalizeScheme(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	cases := []struct {
		base, path, want string
	}{
		{"http://repo.example.com", "builds/1.0/app.tar.gz", "http://repo.example.com/builds/1.0/app.tar.gz"},
		{"http://repo.example.com/", "/builds/1.0/app.tar.gz", "http://repo.example.com/builds/1.0/app.tar.gz"},
		{"http://repo.example.com", "builds/my file.txt", "http://repo.example.com/builds/my+file.txt"},
	}
	for _, c := range cases {
		if got := BuildURL(c.base, c.path); got != c.want {
			t.Errorf("BuildURL(%q, %q) = %q, want %q", c.base, c.path, got, c.want)
		}
	}
}
