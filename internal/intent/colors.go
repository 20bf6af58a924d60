package intent

import "strings"

// colorNames maps CSS color names to RGB.
var colorNames = map[string][3]int{
	"red":         {255, 0, 0},
	"darkred":     {139, 0, 0},
	"crimson":     {220, 20, 60},
	"pink":        {255, 192, 203},
	"hotpink":     {255, 105, 180},
	"magenta":     {255, 0, 255},
	"purple":      {128, 0, 128},
	"violet":      {238, 130, 238},
	"lavender":    {230, 230, 250},
	"indigo":      {75, 0, 130},
	"blue":        {0, 0, 255},
	"navy":        {0, 0, 128},
	"skyblue":     {135, 206, 235},
	"lightblue":   {173, 216, 230},
	"cyan":        {0, 255, 255},
	"turquoise":   {64, 224, 208},
	"teal":        {0, 128, 128},
	"green":       {0, 128, 0},
	"lime":        {0, 255, 0},
	"forestgreen": {34, 139, 34},
	"mint":        {189, 252, 201},
	"olive":       {128, 128, 0},
	"yellow":      {255, 255, 0},
	"gold":        {255, 215, 0},
	"orange":      {255, 165, 0},
	"darkorange":  {255, 140, 0},
	"coral":       {255, 127, 80},
	"salmon":      {250, 128, 114},
	"peach":       {255, 218, 185},
	"brown":       {165, 42, 42},
	"white":       {255, 255, 255},
	"warmwhite":   {255, 244, 229},
	"coolwhite":   {240, 248, 255},
}

// LookupColor returns the RGB value of a color name. Spaces, dashes and
// underscores are ignored, so "sky-blue" and "sky_blue" find "skyblue".
func LookupColor(name string) ([3]int, bool) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(name))
	rgb, ok := colorNames[key]
	return rgb, ok
}
