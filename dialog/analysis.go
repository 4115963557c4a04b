package dialog

import (
	"context"
	"strings"

	"github.com/helikon/arxdialog/rag"
)

// keyQuestions drive the first-pass analysis of a freshly loaded paper.
var keyQuestions = []string{
	"What is the main research question or problem addressed in this paper?",
	"What methods or approaches did the authors use to investigate the problem?",
	"What are the key findings or results presented in the paper?",
	"How do the findings of this paper contribute to the broader field or topic of study?",
	"What are the limitations of this study, and what future research directions do the authors suggest?",
}

// AutoAnalyze runs the key questions against the session's document and
// appends one combined summary turn. Questions whose retrieval or model
// call fails are logged and skipped. Each answered question is written to
// conversational memory.
func (o *Orchestrator) AutoAnalyze(ctx context.Context, session *Session) error {
	if session.DocumentKey == "" {
		session.appendTurn("", msgPromptForDocument)
		o.publisher.Publish(session.Transcript, session.History)
		return nil
	}

	idx, err := o.indexes.IndexFor(session.DocumentKey)
	if err != nil {
		return err
	}

	var results []string
	for _, question := range keyQuestions {
		prompt := o.assemblePrompt(ctx, idx, question)
		if prompt == "" {
			o.logger.Warn("skipping analysis question, no prompt assembled", "question", question)
			continue
		}

		response, err := o.model.Invoke(ctx, rag.InvokeRequest{
			Prompt:       prompt,
			DisplayText:  question,
			History:      session.History,
			SystemPrompt: o.systemPrompt,
			Stream:       o.streamSink,
		})
		if err != nil {
			o.logger.Error("error in auto analysis", "question", question, "err", err)
			continue
		}

		results = append(results, "Q: "+question+"\nA: "+response+"\n")
		o.remember(ctx, idx, question, response)
	}

	summary := "The paper has been loaded and analyzed:\n\n" +
		strings.Join(results, "\n\n") +
		"\n\nYou can keep asking for more detail."
	session.appendTurn("", summary)
	o.publisher.Publish(session.Transcript, session.History)
	return nil
}
