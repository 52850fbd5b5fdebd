package glyph

import "image"

// Grid is a row-major glyph grid
type Grid struct {
	Width  int
	Height int
	Cells  []rune
}

// At returns the glyph at column x, row y
func (g Grid) At(x, y int) rune {
	return g.Cells[y*g.Width+x]
}

// Row returns row y as a string
func (g Grid) Row(y int) string {
	return string(g.Cells[y*g.Width : (y+1)*g.Width])
}

// Mapper turns images into glyph grids of a fixed size
type Mapper struct {
	Alphabet Alphabet
	Width    int
	Height   int
	Method   Method
}

// NewMapper creates a mapper producing width x height grids
func NewMapper(a Alphabet, width, height int, m Method) *Mapper {
	return &Mapper{
		Alphabet: a,
		Width:    width,
		Height:   height,
		Method:   m,
	}
}

// Map resamples img to the mapper's size and picks one glyph per pixel
func (m *Mapper) Map(img image.Image) Grid {
	gray := Luminance(Resample(img, m.Width, m.Height, m.Method))
	return m.MapGray(gray)
}

// MapGray indexes an already resampled luminance grid
func (m *Mapper) MapGray(gray *image.Gray) Grid {
	b := gray.Bounds()
	g := Grid{
		Width:  b.Dx(),
		Height: b.Dy(),
		Cells:  make([]rune, b.Dx()*b.Dy()),
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Cells[i] = m.Alphabet.Glyph(gray.GrayAt(x, y).Y)
			i++
		}
	}
	return g
}
