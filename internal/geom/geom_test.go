package geom

import "testing"

func TestBoxCenterAndExtent(t *testing.T) {
	b := Box{Min: Vec(-2, 0, 4), Max: Vec(2, 10, 8)}
	if got := b.Center(); got != Vec(0, 5, 6) {
		t.Fatalf("center: %v", got)
	}
	if got := b.Extent(); got != Vec(2, 5, 2) {
		t.Fatalf("extent: %v", got)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("Yellow")
	if err != nil || c != Yellow {
		t.Fatalf("ParseColor(Yellow) = %v, %v", c, err)
	}
	c, err = ParseColor("#10ff00")
	if err != nil || c != RGB(0x10, 0xff, 0x00) {
		t.Fatalf("ParseColor(hex) = %v, %v", c, err)
	}
	if _, err := ParseColor("mauve-ish"); err == nil {
		t.Fatal("expected error for unknown color")
	}
}

func TestTransparentIsZeroValue(t *testing.T) {
	var c Color
	if !c.IsTransparent() {
		t.Fatal("zero color should be transparent")
	}
	if White.IsTransparent() {
		t.Fatal("white is not transparent")
	}
	if White.Hex() != "#ffffff" {
		t.Fatalf("hex: %s", White.Hex())
	}
}
