package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/common"
	"github.com/nvr-ai/go-detect/controller"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/render"
)

func TestReadImagePath(t *testing.T) {
	var out bytes.Buffer
	path, err := readImagePath(strings.NewReader("  photos/people.jpg \n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "photos/people.jpg", path)
	assert.Equal(t, "Enter the path to the image: ", out.String())

	// No trailing newline.
	path, err = readImagePath(strings.NewReader("a.png"), &out)
	require.NoError(t, err)
	assert.Equal(t, "a.png", path)

	_, err = readImagePath(strings.NewReader(""), &out)
	assert.Error(t, err)
}

func TestPrintDetections(t *testing.T) {
	res := &controller.Result{
		Path: "people.jpg",
		Detections: postprocess.Set{
			{Box: common.BoundingBox{X1: 10, Y1: 10, X2: 50, Y2: 100}, Score: 0.9, Class: models.PersonID},
		},
	}

	var out bytes.Buffer
	printDetections(&out, render.NewRenderer(render.DefaultOptions()), res)
	assert.Contains(t, out.String(), "1 detection(s) in people.jpg")
	assert.Contains(t, out.String(), "Human: 0.90")
}

func TestAppCommands(t *testing.T) {
	app := newApp()
	names := make([]string, 0, len(app.Commands))
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"run", "dataset"}, names)
}
