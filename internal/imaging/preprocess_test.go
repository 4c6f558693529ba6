package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestPreprocess_Nil(t *testing.T) {
	if Preprocess(nil) != nil {
		t.Error("Preprocess(nil) should be nil")
	}
	if PreprocessAdvanced(image.NewRGBA(image.Rect(0, 0, 0, 10))) != nil {
		t.Error("PreprocessAdvanced(empty) should be nil")
	}
}

func TestPreprocess_LineIsForeground(t *testing.T) {
	img := kolamImage(80, 40, [][2]int{{10, 20}, {70, 20}}, 0, [][2]int{{0, 1}}, 2)

	bin := Preprocess(img)
	if bin.Bounds() != image.Rect(0, 0, 80, 40) {
		t.Fatalf("bounds: got %v", bin.Bounds())
	}
	if !On(bin, 40, 20) {
		t.Error("line pixel (40,20) should be foreground")
	}
	if On(bin, 40, 5) {
		t.Error("background pixel (40,5) should not be foreground")
	}
	for _, v := range bin.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("binary map holds non-binary value %d", v)
		}
	}
}

func TestPreprocessAdvanced_FilledDisc(t *testing.T) {
	img := kolamImage(60, 60, [][2]int{{30, 30}}, 8, nil, 0)

	p := PreprocessAdvanced(img)
	if p == nil {
		t.Fatal("PreprocessAdvanced returned nil")
	}
	if p.Edges == nil || p.Edges.Count() == 0 {
		t.Error("expected an edge map with edges")
	}
	// Otsu fills the disc interior that the adaptive threshold alone misses.
	if !On(p.Binary, 30, 30) {
		t.Error("disc centre should be foreground")
	}
	if On(p.Binary, 5, 5) {
		t.Error("corner should be background")
	}
	count := ForegroundCount(p.Binary, 30, 30, 8)
	if count < 150 {
		t.Errorf("disc coverage: got %d pixels, want >= 150", count)
	}
}

func TestPreprocessAdvanced_ColourInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, color.RGBA{240, 230, 200, 255})
		}
	}
	for y := 20; y <= 30; y++ {
		for x := 20; x <= 30; x++ {
			img.Set(x, y, color.RGBA{40, 20, 20, 255})
		}
	}

	p := PreprocessAdvanced(img)
	if !On(p.Binary, 25, 25) {
		t.Error("dark square should be foreground")
	}
	if On(p.Binary, 5, 45) {
		t.Error("light ground should be background")
	}
}

func TestOtsuLevel_Bimodal(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for i := range img.Pix {
		if i%2 == 0 {
			img.Pix[i] = 30
		} else {
			img.Pix[i] = 220
		}
	}

	level := OtsuLevel(img)
	if level < 30 || level >= 220 {
		t.Errorf("Otsu level: got %d, want in [30,220)", level)
	}

	bin := ThresholdInv(img, level)
	if bin.Pix[0] != 255 || bin.Pix[1] != 0 {
		t.Errorf("ThresholdInv: got (%d,%d), want (255,0)", bin.Pix[0], bin.Pix[1])
	}
}

func TestEqualize_StretchesRange(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = uint8(100 + i%20)
	}

	eq := Equalize(img)
	lo, hi := uint8(255), uint8(0)
	for _, v := range eq.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo != 0 || hi != 255 {
		t.Errorf("equalized range: got [%d,%d], want [0,255]", lo, hi)
	}
}

func TestOpen_RemovesSpeck(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 30, 30))
	m.Pix[15*m.Stride+15] = 255
	for y := 2; y < 10; y++ {
		for x := 2; x < 10; x++ {
			m.Pix[y*m.Stride+x] = 255
		}
	}

	opened := Open(m, 1)
	if On(opened, 15, 15) {
		t.Error("single-pixel speck should be removed")
	}
	if !On(opened, 5, 5) {
		t.Error("solid block should survive")
	}
}
