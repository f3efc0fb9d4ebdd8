// Package elementdocs rewrites Element documentation pages.
//
// It contributes two processors to the Markdown engine through the
// element_docs extension:
//
//   - element_example (preprocessor, priority 10) replaces every
//     <si-docs-component> tag with a lazily loaded preview iframe.
//   - element_tabs (treeprocessor, priority 10) turns "## Heading ---"
//     sections into a tab list with one panel per section.
package elementdocs
