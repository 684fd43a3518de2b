// Package layout holds the page templates and the geometry of a poster.
//
// Everything here is pure arithmetic on millimetres: no PDF document, no
// fonts and no I/O. The composer asks a Template where things go and
// feeds the answers to gofpdf. Keeping the geometry separate makes the
// layout invariants (the QR code never moves, the biography never reaches
// it) testable without rendering anything.
//
// The vertical layout of a page, top to bottom:
//
//	header        title and red rule, ends at ContentTop
//	image zone    photo or placeholder, drawn height plus ImagePadding,
//	              at most ImageZoneHeight
//	names         primary name, optional secondary-script name
//	metadata      "{city}  |  {date}"
//	biography     fitted into the space left above the QR code
//	QR code       fixed rectangle
//	footer        caption, FooterMargin above the bottom edge
package layout
