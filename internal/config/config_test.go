package config

import "testing"

func TestGetEnvAsUint8Clamps(t *testing.T) {
	tests := []struct {
		value string
		want  uint8
	}{
		{"", 128},
		{"0", 0},
		{"200", 200},
		{"255", 255},
		{"300", 255},
		{"-5", 0},
		{"abc", 128},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("COLOR_ALPHA", tt.value)
			if got := getEnvAsUint8("COLOR_ALPHA", 128); got != tt.want {
				t.Fatalf("COLOR_ALPHA=%q: got %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestLoadColorAlphaOutOfRange(t *testing.T) {
	t.Setenv("COLOR_ALPHA", "300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Watermark.ColorAlpha != 255 {
		t.Fatalf("ColorAlpha = %d, want 255", cfg.Watermark.ColorAlpha)
	}
	for key, s := range cfg.Palette() {
		if s.Tint.A != 255 {
			t.Fatalf("%s tint alpha = %d, want 255", key, s.Tint.A)
		}
	}
}

func TestGetEnvAsListSplitsOnPipe(t *testing.T) {
	t.Setenv("WATERMARK_TEXTS", " first, with comma | | second ")

	got := getEnvAsList("WATERMARK_TEXTS", []string{"default"})
	if len(got) != 2 || got[0] != "first, with comma" || got[1] != "second" {
		t.Fatalf("got %q", got)
	}
}
