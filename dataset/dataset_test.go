package dataset

import (
	"archive/zip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func testFile() File {
	return File{
		Categories: []Category{
			{ID: 18, Name: "dog", Supercategory: "animal"},
			{ID: 1, Name: "person", Supercategory: "person"},
		},
		Images: []Image{
			{ID: 30, FileName: "000000000030.jpg", Width: 640, Height: 480},
			{ID: 10, FileName: "000000000010.jpg", Width: 640, Height: 480},
			{ID: 20, FileName: "000000000020.jpg", Width: 640, Height: 480},
			{ID: 40, FileName: "000000000040.jpg", Width: 640, Height: 480},
		},
		Annotations: []Annotation{
			{ID: 1, ImageID: 30, CategoryID: 1, BBox: [4]float32{1, 2, 3, 4}},
			{ID: 2, ImageID: 10, CategoryID: 1},
			{ID: 3, ImageID: 10, CategoryID: 1},
			{ID: 4, ImageID: 20, CategoryID: 18},
			{ID: 5, ImageID: 40, CategoryID: 1},
			{ID: 6, ImageID: 40, CategoryID: 18},
		},
	}
}

func writeImages(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("jpeg"), 0o644))
	}
}

func TestIndexQueries(t *testing.T) {
	idx := NewIndex(testFile())

	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, []int64{1}, idx.CategoryIDs("Person"))
	assert.Equal(t, []int64{1, 18}, idx.CategoryIDs())
	assert.Empty(t, idx.CategoryIDs("unicorn"))

	assert.Equal(t, []int64{10, 30, 40}, idx.ImageIDs(1))
	assert.Equal(t, []int64{40}, idx.ImageIDs(1, 18))
	assert.Equal(t, []int64{10, 20, 30, 40}, idx.ImageIDs())

	// Repeated queries return the same order.
	for i := 0; i < 10; i++ {
		assert.Equal(t, []int64{10, 30, 40}, idx.ImageIDs(1))
	}

	img, ok := idx.Image(30)
	require.True(t, ok)
	assert.Equal(t, "000000000030.jpg", img.FileName)
	_, ok = idx.Image(99)
	assert.False(t, ok)

	anns := idx.Annotations(10)
	require.Len(t, anns, 2)
	assert.Equal(t, int64(2), anns[0].ID)
}

func TestReadIndex(t *testing.T) {
	data, err := json.Marshal(testFile())
	require.NoError(t, err)

	idx, err := ReadIndex(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 30, 40}, idx.ImageIDs(idx.CategoryIDs("person")...))

	_, err = ReadIndex(strings.NewReader("{not json"))
	assert.Error(t, err)

	_, err = LoadIndex(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, "000000000010.jpg", "000000000030.jpg", "000000000040.jpg")
	idx := NewIndex(testFile())

	samples, err := Select(idx, dir, "person", 2, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, int64(10), samples[0].Image.ID)
	assert.Equal(t, filepath.Join(dir, "000000000010.jpg"), samples[0].Path)
	assert.Len(t, samples[0].Annotations, 2)
	assert.Equal(t, int64(30), samples[1].Image.ID)

	samples, err = Select(idx, dir, "person", 0, nil)
	require.NoError(t, err)
	assert.Len(t, samples, 3)

	_, err = Select(idx, dir, "unicorn", 10, nil)
	assert.Error(t, err)
	_, err = Select(idx, dir, "person", -1, nil)
	assert.Error(t, err)
}

func TestSelectSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, "000000000040.jpg")

	core, logs := observer.New(zap.WarnLevel)
	samples, err := Select(NewIndex(testFile()), dir, "person", 0, zap.New(core).Sugar())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, int64(40), samples[0].Image.ID)
	assert.Equal(t, 2, logs.FilterMessage("skipping image").Len())
}

func TestStore(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	idx := NewIndex(testFile())
	require.NoError(t, store.Import(ctx, idx))
	// A second import replaces the first.
	require.NoError(t, store.Import(ctx, idx))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	ids, err := store.ImageIDs(ctx, "PERSON", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 30, 40}, ids)

	ids, err = store.ImageIDs(ctx, "person", 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 30}, ids)

	ids, err = store.ImageIDs(ctx, "unicorn", 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFetchSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "val2017"), 0o755))

	fetched, err := NewFetcher(dir, zaptest.NewLogger(t).Sugar()).
		Fetch(context.Background(), "val2017", "http://invalid.example/val2017.zip")
	require.NoError(t, err)
	assert.False(t, fetched)
}

// writeArchive builds a zip holding annotations/instances_val2017.json.
func writeArchive(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("annotations/instances_val2017.json")
	require.NoError(t, err)
	require.NoError(t, json.NewEncoder(w).Encode(testFile()))
	require.NoError(t, zw.Close())
}

func TestFetchExtractsLocalArchive(t *testing.T) {
	src := filepath.Join(t.TempDir(), "annotations_trainval2017.zip")
	writeArchive(t, src)
	dir := t.TempDir()

	fetched, err := NewFetcher(dir, zaptest.NewLogger(t).Sugar()).
		Fetch(context.Background(), "annotations", src)
	require.NoError(t, err)
	assert.True(t, fetched)

	idx, err := LoadIndex(filepath.Join(dir, "annotations", "instances_val2017.json"))
	require.NoError(t, err)
	assert.Equal(t, 4, idx.Len())
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(t.TempDir(), "annotations_trainval2017.zip")
	writeArchive(t, src)
	writeImages(t, filepath.Join(dir, "val2017"), "000000000010.jpg", "000000000030.jpg", "000000000040.jpg")

	cfg := DefaultConfig()
	cfg.Dir = dir
	cfg.AnnotationsURL = src
	cfg.Limit = 2

	samples, err := Prepare(context.Background(), cfg, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, int64(10), samples[0].Image.ID)

	cfg.IndexDB = filepath.Join(t.TempDir(), "index.db")
	cfg.Limit = 0
	samples, err = Prepare(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Len(t, samples, 3)

	cfg.Category = "unicorn"
	_, err = Prepare(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "person", cfg.Category)
	assert.Equal(t, 100, cfg.Limit)
	assert.Equal(t, filepath.Join(".", "annotations", "instances_val2017.json"), cfg.AnnotationsPath())

	cfg.Limit = -1
	assert.Error(t, cfg.Validate())
	assert.Equal(t, "annotations", topLevel(filepath.Join("annotations", "instances_val2017.json")))
}
