// Package io provides JSON import and export for campaign briefs and layout
// variations.
//
// # Overview
//
// The CLI works on files: a brief describes what to generate, and the
// generate command writes the composed variations so a later export run can
// pick them up. This package owns both formats.
//
// # Brief Format
//
// A brief is a JSON object holding the territory, brand guidelines, assets
// and the channels and styles to compose:
//
//	{
//	  "territory": {"id": "t1", "name": "Summer", "headlines": [{"headline": "Beat the heat"}]},
//	  "guidelines": {"name": "Acme", "colors": {"primary": "#d93025"}},
//	  "assets": [{"id": "logo", "role": "logo"}],
//	  "channels": ["instagram_post", "a4_print"],
//	  "styles": ["bold"]
//	}
//
// Unknown fields are rejected so typos surface instead of being ignored.
//
// # Variations Format
//
// [WriteVariations] writes {"variations": [...]}. [ReadVariations] accepts
// that object, the output of the generate command (which carries extra
// fields), or a bare JSON array of variations.
//
// # Import
//
//	brief, err := io.ImportBrief("brief.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
//	err := io.ExportVariations(variations, "variations.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
package io
