package domain

import "strings"

// Classify determines the category of a geometry source's features from the
// source label (usually its file path) and a feature's attribute bag. It is
// pure and never fails; unrecognized labels default to canal.
//
// Precedence: a label containing "point" or "weir" classifies as weir, then
// "canal", then "river". Point sources are weir regardless of any TYPE
// attribute the features carry; every point source in the dataset is a weir
// gauge, and sources that are not should set an explicit category override
// in their configuration.
func Classify(sourceLabel string, attrs map[string]any) Category {
	label := strings.ToLower(sourceLabel)

	if strings.Contains(label, "point") || strings.Contains(label, "weir") {
		return CategoryWeir
	}
	if strings.Contains(label, "canal") {
		return CategoryCanal
	}
	if strings.Contains(label, "river") {
		return CategoryRiver
	}
	return CategoryCanal
}
