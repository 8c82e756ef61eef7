package history

import "math"

// Converters from archival integer encodings to display units.
// All of them propagate nil ("not recorded") without converting.

// DisplayTemp converts tenths of a degree to whole degrees, rounded to the
// nearest integer.
func DisplayTemp(tenths *int) *int {
	if tenths == nil {
		return nil
	}
	v := int(math.Round(float64(*tenths) / 10))
	return &v
}

// DisplayPrecip converts hundredths of an inch to inches with two decimal
// places preserved.
func DisplayPrecip(hundredths *int) *float64 {
	if hundredths == nil {
		return nil
	}
	v := float64(*hundredths) / 100
	return &v
}

// DisplaySnow converts tenths of an inch to inches with one decimal place
// preserved.
func DisplaySnow(tenths *int) *float64 {
	if tenths == nil {
		return nil
	}
	v := float64(*tenths) / 10
	return &v
}
