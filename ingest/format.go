package ingest

import (
	"strings"

	"github.com/helikon/arxdialog/core"
)

// OverviewText composes the single overview block for a document from its
// fragments. Title, abstract and section tree are shared across fragments,
// so the first one is authoritative.
func OverviewText(fragments []core.Fragment) string {
	if len(fragments) == 0 {
		return ""
	}
	first := fragments[0]

	var b strings.Builder
	b.WriteString("Paper Title: ")
	b.WriteString(first.Title)
	b.WriteString("\nArXiv ID: ")
	b.WriteString(first.DocumentKey)
	b.WriteString("\nAbstract: ")
	b.WriteString(first.Abstract)
	b.WriteString("\nSection Tree: ")
	b.WriteString(first.SectionTree)
	b.WriteString("\nType: OVERVIEW")
	return b.String()
}

// FragmentText serializes a fragment into the structured block committed
// to the index. The trailing type tag distinguishes it from the overview.
func FragmentText(fragment core.Fragment) string {
	var b strings.Builder
	b.WriteString("Paper Title: ")
	b.WriteString(fragment.Title)
	b.WriteString("\nAbstract: ")
	b.WriteString(fragment.Abstract)
	b.WriteString("\nArXiv ID: ")
	b.WriteString(fragment.DocumentKey)
	b.WriteString("\nSection: ")
	b.WriteString(fragment.CurrentSection)
	b.WriteString("\nSection Tree: ")
	b.WriteString(fragment.SectionTree)
	b.WriteString("\nContent: ")
	b.WriteString(fragment.Content)
	b.WriteString("\nBibliography: ")
	b.WriteString(fragment.Bibliography)
	b.WriteString("\nType: FRAGMENT")
	return b.String()
}
