package ffmpeg

import (
	"fmt"
	"strings"
)

// filterEscaper handles the characters that are syntactically significant to
// the filtergraph language inside a quoted drawtext value.
var filterEscaper = strings.NewReplacer(
	":", `\:`,
	"'", `\'`,
)

// EscapeText escapes literal colons and single quotes so arbitrary caption
// text can be embedded in a filter expression.
func EscapeText(text string) string {
	return filterEscaper.Replace(text)
}

// ScaleFilter builds the scale+pixel-format expression used for every clip.
func ScaleFilter(width, height int) string {
	return fmt.Sprintf("scale=%d:%d,format=yuv420p", width, height)
}

// DrawtextFilter builds the caption overlay: 48pt white text on a
// half-opacity black box with 10px padding, centered horizontally, 150px
// above the bottom edge.
func DrawtextFilter(fontFile, text string) string {
	return fmt.Sprintf(
		"drawtext=fontfile=%s:text='%s':fontsize=48:fontcolor=white:box=1:boxcolor=black@0.5:boxborderw=10:x=(w-text_w)/2:y=h-150",
		fontFile,
		EscapeText(text),
	)
}
