// Package asset resolves the photo of a memorial record into a local,
// print-ready JPEG.
//
// Resolution never fails: every problem (no link, a timeout, an HTTP error,
// an HTML page without a usable image, bytes that do not decode) ends as a
// model.Unavailable asset whose Reason is logged and reported, and the
// poster is drawn with the placeholder instead.
//
// The steps are:
//   - Fetcher downloads the link with the configured client and User-Agent,
//     bounded by a timeout and a body size limit
//   - when the link is a web page (a social post), FindPageImage picks the
//     og:image, twitter:image or first content <img>, and that is fetched
//     once more
//   - Normalize decodes any supported format, applies the EXIF orientation,
//     flattens transparency over white and re-encodes an RGB JPEG
package asset
