// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package llm wraps the AWS Bedrock ConverseStream API and builds the
// prompts that ask a model to revise documents through edit blocks.
package llm

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/petar-djukic/go-splice/pkg/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateData holds the values injected into the system prompt template.
type TemplateData struct {
	Documents  []string // Paths the model may edit
	StyleGuide string   // Optional house style, appended verbatim
}

// RenderSystemPrompt renders the system prompt template with the given data.
func RenderSystemPrompt(data TemplateData) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/system.tmpl")
	if err != nil {
		return "", fmt.Errorf("parsing system template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing system template: %w", err)
	}

	return buf.String(), nil
}

// ConstructMessages builds the Bedrock request from the system prompt, the
// documents and the author's instruction. Documents go in one user message,
// each under its path and fenced verbatim; the instruction follows as the
// final user message.
func ConstructMessages(systemPrompt string, docs []types.Document, instruction string) ([]brtypes.SystemContentBlock, []brtypes.Message) {
	system := []brtypes.SystemContentBlock{
		&brtypes.SystemContentBlockMemberText{Value: systemPrompt},
	}

	var messages []brtypes.Message

	if len(docs) > 0 {
		var buf strings.Builder
		buf.WriteString("## Documents\n\n")
		for _, d := range docs {
			buf.WriteString(formatDocument(d))
			buf.WriteString("\n")
		}
		messages = append(messages, userMessage(buf.String()))
	}

	messages = append(messages, userMessage("## Instruction\n\n"+instruction))

	return system, messages
}

// ConstructRetryMessages continues a conversation after a round of edits:
// the model's previous response, then the failure report as a new user
// message.
func ConstructRetryMessages(prevMessages []brtypes.Message, assistantResponse, failureReport string) []brtypes.Message {
	messages := make([]brtypes.Message, 0, len(prevMessages)+2)
	messages = append(messages, prevMessages...)
	messages = append(messages, assistantMessage(assistantResponse))
	messages = append(messages, userMessage(failureReport))
	return messages
}

// formatDocument renders a document under its path. The text is fenced
// rather than line-numbered so the model can copy it exactly.
func formatDocument(d types.Document) string {
	fence := "````"
	for strings.Contains(d.Content, fence) {
		fence += "`"
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "### %s\n\n%s\n", d.Path, fence)
	buf.WriteString(d.Content)
	if !strings.HasSuffix(d.Content, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString(fence + "\n")
	return buf.String()
}

func userMessage(text string) brtypes.Message {
	return brtypes.Message{
		Role: brtypes.ConversationRoleUser,
		Content: []brtypes.ContentBlock{
			&brtypes.ContentBlockMemberText{Value: text},
		},
	}
}

func assistantMessage(text string) brtypes.Message {
	return brtypes.Message{
		Role: brtypes.ConversationRoleAssistant,
		Content: []brtypes.ContentBlock{
			&brtypes.ContentBlockMemberText{Value: text},
		},
	}
}
