package models

import (
	"fmt"
	"strings"
)

// Colour is a named colour that can be assigned to a todo list.
type Colour struct {
	Code string
	Name string
}

// Supported colours.
var (
	White  = Colour{Code: "#FFFFFF", Name: "White"}
	Red    = Colour{Code: "#FF5733", Name: "Red"}
	Orange = Colour{Code: "#FFC300", Name: "Orange"}
	Yellow = Colour{Code: "#FFFF66", Name: "Yellow"}
	Green  = Colour{Code: "#CCFF99", Name: "Green"}
	Blue   = Colour{Code: "#6666FF", Name: "Blue"}
	Purple = Colour{Code: "#9966CC", Name: "Purple"}
	Grey   = Colour{Code: "#999999", Name: "Grey"}
)

// SupportedColours returns all colours in display order.
func SupportedColours() []Colour {
	return []Colour{White, Red, Orange, Yellow, Green, Blue, Purple, Grey}
}

// UnsupportedColourError is returned for colour codes that aren't supported.
type UnsupportedColourError struct {
	Code string
}

// Error returns a string representation of the error.
func (e UnsupportedColourError) Error() string {
	return fmt.Sprintf("colour '%s' is unsupported", e.Code)
}

// ColourFromCode returns the supported colour with the given hex code. The
// lookup is case-insensitive.
func ColourFromCode(code string) (Colour, error) {
	for _, c := range SupportedColours() {
		if strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}

	return Colour{}, UnsupportedColourError{Code: code}
}

func (c Colour) String() string {
	return c.Code
}
