package translate

import (
	"strings"

	"github.com/minios-linux/xctranslate/langmeta"
	"github.com/minios-linux/xctranslate/openai"
)

// systemPrompt is the instruction segment. {{targetLang}} is replaced with
// the target ISO 639-1 code.
const systemPrompt = `You are a helpful professional translator designated to translate text from English to the language with ISO 639-1 code: {{targetLang}}
If the input text contains argument placeholders (%arg, @arg1, %lld, etc), it's important they are preserved in the translated text.
You should not output anything other than the translated text.
Avoid using the same word more than once in a row.
Avoid using the same character more than 3 times in a row.
Trim extra spaces and the beginning and end of the translated text.
Do not provide blank translations. Do not hallucinate. Do not provide translations that are not faithful to the original text.
Put particular attention to languages that use different characters and symbols than English.`

const commentDirective = "\nTake into consideration the following context when translating, but do not completely change the translation because of it: "

// resolvedPrompt returns the instruction text for target, with the context
// directive appended when comment is non-empty.
func resolvedPrompt(target langmeta.Language, comment string) string {
	prompt := strings.ReplaceAll(systemPrompt, "{{targetLang}}", string(target))
	if comment != "" {
		prompt += commentDirective + comment + "\n"
	}
	return prompt
}

// chatQuery builds the request for one string. The user message is the
// source text, unmodified.
func chatQuery(model openai.Model, text string, target langmeta.Language, comment string) openai.ChatQuery {
	return openai.ChatQuery{
		Model: model,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: resolvedPrompt(target, comment)},
			{Role: openai.RoleUser, Content: text},
		},
		FrequencyPenalty: openai.MinPenalty,
		PresencePenalty:  openai.MinPenalty,
		ResponseFormat:   openai.ResponseFormatText,
	}
}
