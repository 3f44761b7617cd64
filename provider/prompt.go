package provider

import (
	"fmt"
	"strings"
	"text/template"
)

// Edit block markers. The model is told to rewrite only the text between
// them, and the response is cut at the stop marker.
const (
	StartMarker = "<START_EDIT_HERE>"
	StopMarker  = "<STOP_EDIT_HERE>"
)

// endMarkers are end-of-text tokens various models leak into completions
var endMarkers = []string{"<|endoftext|>", "<EOT>"}

// Message is one turn of a chat exchange
type Message struct {
	Role    string
	Content string
}

// chatML is the default chat template, rendered with text/template the same
// way Ollama renders model templates.
var chatML = template.Must(template.New("chatml").Parse(
	`{{- range .Messages -}}
<|im_start|>{{ .Role }}
{{ .Content }}<|im_end|>
{{ end -}}
{{- if .AddGenerationPrompt -}}
<|im_start|>assistant
{{ end -}}`))

// RenderChat renders messages through the chat template
func RenderChat(messages []Message, addGenerationPrompt bool) (string, error) {
	var sb strings.Builder
	err := chatML.Execute(&sb, map[string]any{
		"Messages":            messages,
		"AddGenerationPrompt": addGenerationPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("render chat template: %w", err)
	}
	return sb.String(), nil
}

// EditMessages builds the chat exchange asking the model to rewrite the
// marked block
func EditMessages(req *Request) []Message {
	user := fmt.Sprintf("```%s\n%s\n%s%s\n%s\n%s\n```\n"+
		"Please rewrite the code between the tags `%s` and `%s`, **%s**. "+
		"Ensure that no comments remain and that the code is still functional. "+
		"Output only the modified raw text. Don't surround it with markdown backticks.",
		req.FileType, req.Preamble, StartMarker, req.Code, StopMarker, req.Postamble,
		StartMarker, StopMarker, req.Instruction)

	return []Message{
		{Role: "system", Content: "You are a Vim code assistant plugin."},
		{Role: "user", Content: user},
	}
}

// BuildEditPrompt renders the full raw prompt for completion-style
// endpoints. The assistant's answer is primed up to the start marker so
// the model continues directly with the rewritten block.
func BuildEditPrompt(req *Request) (string, error) {
	prompt, err := RenderChat(EditMessages(req), true)
	if err != nil {
		return "", err
	}
	prompt += fmt.Sprintf("Sure! Here's the rewritten code block:\n```%s\n%s\n%s",
		req.FileType, req.Preamble, StartMarker)
	return prompt, nil
}

// TrimEndMarkers cuts the completion at the first end-of-text token
func TrimEndMarkers(completion string) string {
	for _, marker := range endMarkers {
		if idx := strings.Index(completion, marker); idx != -1 {
			completion = completion[:idx]
		}
	}
	return strings.TrimRight(completion, " \t\r\n")
}

// StripFences removes a surrounding pair of markdown code fences
func StripFences(completion string) string {
	lines := strings.Split(completion, "\n")
	if len(lines) == 0 {
		return completion
	}
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(lines[len(lines)-1], "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// CleanResponse turns a raw completion into the proposed replacement
// lines. Models often keep generating past the edit block; everything from
// the stop marker on is dropped, keeping a partial last line when the
// marker lands mid-line.
func CleanResponse(completion string) []string {
	completion = StripFences(completion)
	completion = TrimEndMarkers(completion)
	if completion == "" {
		return nil
	}

	lines := strings.Split(completion, "\n")
	var kept []string
	for _, line := range lines {
		pos := strings.Index(line, StopMarker)
		if pos == 0 {
			break
		}
		if pos > 0 {
			kept = append(kept, line[:pos])
			break
		}
		kept = append(kept, line)
	}
	return kept
}
