// Package compose draws one memorial poster per record.
//
// A Composer turns a model.VictimRecord and its resolved photo into a
// finished single-page PDF. The geometry comes from a layout.Template,
// text goes through typeset faces, and the QR code from package qrcode.
// Each call builds a fresh gofpdf document, so nothing leaks from one
// record to the next and the Composer can be shared by sequential calls.
//
// A Sink persists the finished page. FileSink writes <id>.pdf into a
// directory, replacing any previous file atomically.
package compose
