package index

import (
	"strings"

	"github.com/helikon/arxdialog/core"
)

const defaultContextBudget = 3072

// TokenCounter reports how many model tokens a text costs.
type TokenCounter interface {
	CountTokens(text string) int
}

// approxCounter estimates roughly four characters per token. Used when no
// exact counter is injected, so prompt assembly never needs network access.
type approxCounter struct{}

func (approxCounter) CountTokens(text string) int {
	n := (len(text) + 3) / 4
	if n < 1 && len(text) > 0 {
		n = 1
	}
	return n
}

// BuildPrompt assembles a grounded prompt from the retrieved nodes.
// Nodes are included in rank order until the context token budget is
// exhausted; the top node is always included in full. Returns the empty
// string when there are no nodes, which callers treat as "nothing found".
func (x *LocalIndex) BuildPrompt(query string, nodes []core.MatchedNode) string {
	if len(nodes) == 0 {
		return ""
	}

	var contextParts []string
	spent := 0
	for i, node := range nodes {
		cost := x.counter.CountTokens(node.Text)
		if i > 0 && spent+cost > x.contextBudget {
			break
		}
		contextParts = append(contextParts, node.Text)
		spent += cost
	}

	var b strings.Builder
	b.WriteString("Context information is below.\n")
	b.WriteString("---------------------\n")
	b.WriteString(strings.Join(contextParts, "\n\n"))
	b.WriteString("\n---------------------\n")
	b.WriteString("Given the context information and not prior knowledge, answer the query.\n")
	b.WriteString("Query: ")
	b.WriteString(query)
	b.WriteString("\nAnswer: ")
	return b.String()
}
