// Package markdown converts rendered notification text to sanitized HTML.
//
// The output is marked safe for direct display (template.HTML): everything
// passing through Render is sanitized with a UGC policy, so untrusted values
// interpolated into message templates cannot inject markup.
package markdown
