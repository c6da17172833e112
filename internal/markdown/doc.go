// Package markdown renders Markdown documents with goldmark and expands
// `[:gallery: <name>]` markers into thumbnail grids while doing so.
//
// The gallery extension parses markers into Gallery nodes, expands them in an
// AST transformer and renders the resulting container, row and cell nodes. The
// site used to resolve galleries is set on the extension or per conversion
// through NewParserContext.
package markdown
