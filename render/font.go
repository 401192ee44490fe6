package render

import (
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var regular *truetype.Font

// init sets up the font we draw labels with.
func init() {
	var err error
	regular, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// face returns a face of the label font at size points.
func face(size float64) font.Face {
	return truetype.NewFace(regular, &truetype.Options{Size: size})
}
