package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/minios-linux/xctranslate/i18n"
	"github.com/minios-linux/xctranslate/openai"
)

// ---------------------------------------------------------------------------
// models (list supported models)
// ---------------------------------------------------------------------------

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: i18n.T("List supported OpenAI models"),
		Long: `List the chat models accepted by --model.

With a custom --base-url any model name served by that endpoint is accepted.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, m := range openai.SupportedModels() {
				fmt.Println(modelLine(m))
			}
		},
	}
}

func modelLine(m openai.Model) string {
	if m == openai.DefaultModel {
		return fmt.Sprintf("%s %s", m, color.GreenString("(%s)", i18n.T("default")))
	}
	return string(m)
}
