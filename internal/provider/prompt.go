package provider

import (
	"strings"

	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// Built-in prompts used when the request does not carry overrides.
const (
	DefaultSystemPrompt = "You are a professional translator. Translate the " +
		"user's text accurately, preserving tone, formatting and meaning. " +
		"Output only the translation, with no commentary."

	DefaultUserTemplate = "Translate the following text from {source_lang} " +
		"to {target_lang}:\n\n{text}"
)

// BuildPrompts resolves the system prompt and the user prompt for one
// request. Placeholder substitution is textual, case-sensitive and
// non-recursive: a substituted value is never re-scanned for
// placeholders.
func BuildPrompts(req types.TranslationRequest) (system, user string) {
	system = req.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}

	tmpl := req.UserPromptTemplate
	if tmpl == "" {
		tmpl = DefaultUserTemplate
	}

	r := strings.NewReplacer(
		"{source_lang}", req.SourceLang,
		"{target_lang}", req.TargetLang,
		"{text}", req.SourceText,
	)
	return system, r.Replace(tmpl)
}
