package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassSetSizes(t *testing.T) {
	assert.Equal(t, 91, TorchvisionClasses.Len())
	assert.Equal(t, 81, COCOClasses.Len())
	assert.Equal(t, 80, YOLOClasses.Len())
	assert.Equal(t, 21, VOCClasses.Len())
}

func TestPersonIndex(t *testing.T) {
	tests := []struct {
		set      *ClassSet
		expected int
	}{
		{TorchvisionClasses, PersonID},
		{COCOClasses, PersonID},
		{YOLOClasses, 0},
		{VOCClasses, 15},
	}

	for _, tt := range tests {
		t.Run(string(tt.set.Family), func(t *testing.T) {
			idx, err := tt.set.Index(PersonName)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, idx)
			assert.Equal(t, PersonName, tt.set.Name(idx))
		})
	}
}

func TestTorchvisionGaps(t *testing.T) {
	// COCO category ids keep their gaps in torchvision output.
	assert.Equal(t, "stop sign", TorchvisionClasses.Name(13))
	assert.Equal(t, "toothbrush", TorchvisionClasses.Name(90))

	idx, err := TorchvisionClasses.Index("N/A")
	require.NoError(t, err)
	assert.Equal(t, 12, idx)
}

func TestNameAndIndexEdgeCases(t *testing.T) {
	assert.Equal(t, "unknown_-1", COCOClasses.Name(-1))
	assert.Equal(t, "unknown_81", COCOClasses.Name(81))

	idx, err := COCOClasses.Index("  Person ")
	require.NoError(t, err)
	assert.Equal(t, PersonID, idx)

	_, err = COCOClasses.Index("unicorn")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	set, err := Lookup("")
	require.NoError(t, err)
	assert.Same(t, TorchvisionClasses, set)

	set, err = Lookup(FamilyVOC)
	require.NoError(t, err)
	assert.Same(t, VOCClasses, set)

	_, err = Lookup("imagenet")
	assert.Error(t, err)
}
