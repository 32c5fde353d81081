package cameratype

import "sort"

// CameraType maps to the camera_types table.
type CameraType struct {
	ID      int    `db:"id" json:"id"`
	Label   string `db:"label" json:"label"`
	Enabled bool   `db:"enabled" json:"enabled"`
}

// Page is the data behind the camera types page.
type Page struct {
	CameraTypes []*CameraType `json:"camera-types"`
}

// SortByLabel orders types by label using byte-wise string comparison,
// keeping the relative order of equal labels.
func SortByLabel(types []*CameraType) {
	sort.SliceStable(types, func(i, j int) bool { return types[i].Label < types[j].Label })
}
