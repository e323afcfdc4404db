package extractor

import "testing"

func TestIsAllowedSourceURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"standard watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"bare domain", "https://youtube.com/watch?v=abc", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", true},
		{"mobile", "https://m.youtube.com/watch?v=abc", true},
		{"plain http", "http://www.youtube.com/watch?v=abc", true},
		{"uppercase host", "https://WWW.YOUTUBE.COM/watch?v=abc", true},
		{"substring bypass", "https://youtube.com.evil.example/watch?v=abc", false},
		{"prefix bypass", "https://notyoutube.com/watch?v=abc", false},
		{"other platform", "https://vimeo.com/12345", false},
		{"no scheme", "www.youtube.com/watch?v=abc", false},
		{"file scheme", "file:///etc/passwd", false},
		{"empty", "", false},
		{"garbage", "::::", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsAllowedSourceURL(tt.url); got != tt.want {
				t.Errorf("IsAllowedSourceURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
