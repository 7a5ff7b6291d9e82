// Package report renders acquisition reports.
//
// Writers:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured JSON for tooling
//   - MarkdownWriter: GitHub flavored Markdown
//
// HistoryTable renders many stored reports as one table for the history
// command.
package report
