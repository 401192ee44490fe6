// Package models - Class label sets emitted by the supported detector families.
package models

import (
	"fmt"
	"strings"
)

// Family identifies the label convention a detector was trained with.
type Family string

const (
	// FamilyTorchvision is the 91-slot COCO labelling used by torchvision
	// detectors (background at 0, "N/A" for unused category ids).
	FamilyTorchvision Family = "torchvision"
	// FamilyCOCO is the 80 COCO classes + background, contiguous ids.
	// TensorFlow and Caffe SSD exports for OpenCV DNN use this.
	FamilyCOCO Family = "coco"
	// FamilyYOLO is the 80 COCO classes, zero-based, no background.
	FamilyYOLO Family = "yolo"
	// FamilyVOC is the 20 Pascal VOC classes + background.
	FamilyVOC Family = "voc"
)

// PersonName is the category name of humans in every supported family.
const PersonName = "person"

// PersonID is the "person" label id for the torchvision and COCO families.
const PersonID = 1

// OutputClass represents one detection label.
type OutputClass struct {
	// The integer index returned by the model.
	Index int
	// The human-readable label.
	Name string
}

// ClassSet ties a family to its full list of labels.
type ClassSet struct {
	// Family is the label convention.
	Family Family
	// Classes are indexed by label id.
	Classes []OutputClass

	nameToIdx map[string]int
}

// NewClassSet builds a class set where names[i] has label id i.
//
// Arguments:
//   - family: The label convention.
//   - names: Class names ordered by label id.
//
// Returns:
//   - *ClassSet: The class set with its name index built.
func NewClassSet(family Family, names []string) *ClassSet {
	s := &ClassSet{
		Family:    family,
		Classes:   make([]OutputClass, len(names)),
		nameToIdx: make(map[string]int, len(names)),
	}
	for i, name := range names {
		s.Classes[i] = OutputClass{Index: i, Name: name}
		// First occurrence wins so "N/A" placeholders never shadow real ids.
		key := strings.ToLower(name)
		if _, ok := s.nameToIdx[key]; !ok {
			s.nameToIdx[key] = i
		}
	}
	return s
}

// Name returns the class name for a label id, or "unknown_<id>" when out of range.
func (s *ClassSet) Name(idx int) string {
	if idx >= 0 && idx < len(s.Classes) {
		return s.Classes[idx].Name
	}
	return fmt.Sprintf("unknown_%d", idx)
}

// Index returns the label id for a class name (case-insensitive).
//
// Arguments:
//   - name: The class name, e.g. "person".
//
// Returns:
//   - int: The label id.
//   - error: If the name is not part of the set.
func (s *ClassSet) Index(name string) (int, error) {
	idx, ok := s.nameToIdx[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return -1, fmt.Errorf("class %q not found in %s label set", name, s.Family)
	}
	return idx, nil
}

// Len returns the number of label slots.
func (s *ClassSet) Len() int {
	return len(s.Classes)
}

var cocoNames = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat", "dog", "horse", "sheep",
	"cow", "elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag", "tie", "suitcase",
	"frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple", "sandwich",
	"orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair", "couch", "potted plant",
	"bed", "dining table", "toilet", "tv", "laptop", "mouse", "remote", "keyboard", "cell phone", "microwave",
	"oven", "toaster", "sink", "refrigerator", "book", "clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// TorchvisionClasses is the COCO category list indexed by original COCO
// category id, as produced by torchvision's ssd300_vgg16 and friends.
var TorchvisionClasses = NewClassSet(FamilyTorchvision, []string{
	"__background__", "person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "N/A", "stop sign", "parking meter", "bench", "bird", "cat", "dog", "horse",
	"sheep", "cow", "elephant", "bear", "zebra", "giraffe", "N/A", "backpack", "umbrella", "N/A",
	"N/A", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat",
	"baseball glove", "skateboard", "surfboard", "tennis racket", "bottle", "N/A", "wine glass", "cup", "fork", "knife",
	"spoon", "bowl", "banana", "apple", "sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza",
	"donut", "cake", "chair", "couch", "potted plant", "bed", "N/A", "dining table", "N/A", "N/A",
	"toilet", "N/A", "tv", "laptop", "mouse", "remote", "keyboard", "cell phone", "microwave", "oven",
	"toaster", "sink", "refrigerator", "N/A", "book", "clock", "vase", "scissors", "teddy bear", "hair drier",
	"toothbrush",
})

// COCOClasses is the 80 COCO classes plus "__background__" at index 0.
var COCOClasses = NewClassSet(FamilyCOCO, append([]string{"__background__"}, cocoNames...))

// YOLOClasses is the 80 COCO classes, zero-based.
var YOLOClasses = NewClassSet(FamilyYOLO, cocoNames)

// VOCClasses is the 20 Pascal VOC classes + "__background__" at index 0.
var VOCClasses = NewClassSet(FamilyVOC, []string{
	"__background__", "aeroplane", "bicycle", "bird", "boat", "bottle", "bus", "car", "cat", "chair",
	"cow", "diningtable", "dog", "horse", "motorbike", "person", "pottedplant", "sheep", "sofa", "train",
	"tvmonitor",
})

// Lookup returns the class set registered for a family.
func Lookup(family Family) (*ClassSet, error) {
	switch family {
	case FamilyTorchvision, "":
		return TorchvisionClasses, nil
	case FamilyCOCO:
		return COCOClasses, nil
	case FamilyYOLO:
		return YOLOClasses, nil
	case FamilyVOC:
		return VOCClasses, nil
	default:
		return nil, fmt.Errorf("unsupported label family: %s", family)
	}
}
