package style

import (
	"image/color"
	"testing"

	"github.com/phambaophuc/watermark-bot/internal/models"
)

func testPalette() map[models.StyleKey]models.Style {
	return map[models.StyleKey]models.Style{
		models.StyleWhite:  {DisplayName: "White", Tint: color.NRGBA{255, 255, 255, 128}},
		models.StyleBlack:  {DisplayName: "Black", Tint: color.NRGBA{0, 0, 0, 128}},
		models.StyleRed:    {DisplayName: "Red", Tint: color.NRGBA{255, 0, 0, 128}},
		models.StyleBlue:   {DisplayName: "Blue", Tint: color.NRGBA{0, 0, 255, 128}},
		models.StyleYellow: {DisplayName: "Yellow", Tint: color.NRGBA{255, 255, 0, 128}},
	}
}

func TestResolveDeclaredKeys(t *testing.T) {
	r, err := NewResolver(testPalette(), models.StyleWhite)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	for _, k := range Declared {
		got := r.Resolve(k)
		if got.Key != k {
			t.Fatalf("Resolve(%q).Key = %q", k, got.Key)
		}
		if again := r.Resolve(k); again != got {
			t.Fatalf("Resolve(%q) not deterministic: %+v vs %+v", k, got, again)
		}
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r, err := NewResolver(testPalette(), models.StyleRed)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	for _, k := range []models.StyleKey{models.StyleNone, "purple"} {
		got := r.Resolve(k)
		if got.Key != models.StyleRed {
			t.Fatalf("Resolve(%q) = %q, want default red", k, got.Key)
		}
		if got.Tint != (color.NRGBA{255, 0, 0, 128}) {
			t.Fatalf("unexpected default tint %+v", got.Tint)
		}
	}
}

func TestResolverIgnoresLaterPaletteMutation(t *testing.T) {
	p := testPalette()
	r, err := NewResolver(p, models.StyleWhite)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	p[models.StyleWhite] = models.Style{DisplayName: "changed"}
	delete(p, models.StyleBlue)

	if r.Resolve(models.StyleWhite).DisplayName != "White" {
		t.Fatalf("resolver observed palette mutation")
	}
	if _, ok := r.Lookup(models.StyleBlue); !ok {
		t.Fatalf("blue missing after caller deleted it")
	}
}

func TestNewResolverRejectsUnknownDefault(t *testing.T) {
	if _, err := NewResolver(testPalette(), "purple"); err == nil {
		t.Fatalf("expected error for unknown default")
	}
	if _, err := NewResolver(nil, models.StyleWhite); err == nil {
		t.Fatalf("expected error for empty palette")
	}
}

func TestKeysOrder(t *testing.T) {
	p := testPalette()
	p["magenta"] = models.Style{DisplayName: "Magenta"}
	r, err := NewResolver(p, models.StyleWhite)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	keys := r.Keys()
	want := append(append([]models.StyleKey{}, Declared...), "magenta")
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	styles := r.Styles()
	if !styles[0].Default || styles[1].Default {
		t.Fatalf("default flag wrong: %+v", styles[:2])
	}
}
