package models

import "image/color"

// StyleKey identifies a user-selectable watermark color.
type StyleKey string

const (
	StyleNone   StyleKey = ""
	StyleWhite  StyleKey = "white"
	StyleBlack  StyleKey = "black"
	StyleRed    StyleKey = "red"
	StyleBlue   StyleKey = "blue"
	StyleYellow StyleKey = "yellow"
)

// Style is the resolved look of a watermark. Tint alpha controls blending.
type Style struct {
	Key         StyleKey    `json:"key"`
	DisplayName string      `json:"display_name"`
	Tint        color.NRGBA `json:"tint"`
}

type Layout string

const (
	LayoutAnchored Layout = "anchored"
	LayoutTiled    Layout = "tiled"
)

func (l Layout) Valid() bool {
	return l == LayoutAnchored || l == LayoutTiled
}

// WatermarkSpec carries everything one compositing call needs.
type WatermarkSpec struct {
	Texts    []string `json:"texts"`
	Style    Style    `json:"style"`
	Layout   Layout   `json:"layout"`
	FontPath string   `json:"font_path,omitempty"`
	FontSize float64  `json:"font_size"`
	// Margin is the anchored-mode distance from the right and bottom edges.
	Margin int `json:"margin"`
	// Padding is added to the text box to form a tiled-mode cell.
	Padding int `json:"padding"`
	// Angle is the tiled-mode rotation in degrees, counter-clockwise.
	Angle   float64 `json:"angle"`
	Quality int     `json:"quality"`
}

type WatermarkRequest struct {
	Color  StyleKey `json:"color,omitempty" form:"color" binding:"omitempty,oneof=white black red blue yellow"`
	Layout Layout   `json:"layout,omitempty" form:"layout" binding:"omitempty,oneof=anchored tiled"`
	Texts  []string `json:"texts,omitempty" form:"text"`
}

type StyleResponse struct {
	Key         StyleKey `json:"key"`
	DisplayName string   `json:"display_name"`
	RGBA        [4]uint8 `json:"rgba"`
	Default     bool     `json:"default"`
}
