// Package sink provides output format renderers for layout variations.
//
// # Overview
//
// A "sink" transforms a composed [creative.LayoutVariation] into the bytes
// of one output file. This package provides renderers for:
//
//   - SVG: vector markup at 1:1 channel pixel size
//   - Raster: JPEG or PNG drawn with gg and encoded with imaging
//   - Document: a self-describing JSON document envelope for print
//     channels, with an optional native PDF via rsvg-convert
//   - Video: a typed placeholder payload for motion channels
//
// Every sink is deterministic: the same variation and options always
// produce the same bytes.
//
// # SVG Output
//
//	svg := sink.RenderSVG(v,
//	    sink.WithBleed(36),
//	    sink.WithCropMarks(),
//	    sink.WithTitle("Summer Launch"),
//	)
//
// # Raster Output
//
//	jpg, err := sink.RenderRaster(v,
//	    sink.WithRasterFormat(channel.FormatJPG),
//	    sink.WithScale(0.5),
//	    sink.WithQuality(85),
//	)
//
// Asset pixels are drawn when supplied via [WithImages]; otherwise each
// placement is filled with a palette color.
//
// # Document Output
//
// [RenderDocument] embeds the variation, its print parameters and the SVG
// page in a JSON envelope that [ReadDocument] reads back.
package sink
