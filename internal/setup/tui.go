// Package setup provides the interactive configuration wizard.
package setup

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/walletstory/walletstory/config"
)

var (
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	noteStyle = lipgloss.NewStyle().
			Faint(true).
			MarginBottom(1)
)

// RunTUI launches the terminal configuration wizard and writes the resulting
// YAML config to path. API keys are not written; they stay in the
// ETHERSCAN_API_KEY and LLM_API_KEY environment variables.
func RunTUI(path string) error {
	listen := ":8080"
	llmURL := "https://openrouter.ai/api/v1/chat/completions"
	llmModel := "deepseek/deepseek-chat"
	quotaStr := "15"
	ttlStr := "24h"
	storageDir := "./data/kv"
	confirm := false

	fmt.Println(headerStyle.Render("Wallet Story — setup"))
	fmt.Println(noteStyle.Render("Secrets are read from ETHERSCAN_API_KEY and LLM_API_KEY at start time."))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Value(&listen),
			huh.NewInput().
				Title("LLM API URL").
				Description("Any OpenAI-compatible chat completions endpoint.").
				Value(&llmURL),
			huh.NewInput().
				Title("LLM model").
				Value(&llmModel),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Analyses per day").
				Validate(validatePositiveInt).
				Value(&quotaStr),
			huh.NewInput().
				Title("Result cache TTL").
				Description("Go duration, e.g. 24h").
				Validate(validateDuration).
				Value(&ttlStr),
			huh.NewInput().
				Title("Storage directory").
				Value(&storageDir),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Write configuration to %s?", path)).
				Value(&confirm),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}
	if !confirm {
		fmt.Println("Setup aborted, nothing written.")
		return nil
	}

	quotaPerDay, _ := strconv.Atoi(quotaStr)
	ttl, _ := time.ParseDuration(ttlStr)

	cfg := config.Config{
		Listen:      listen,
		LLMURL:      llmURL,
		LLMModel:    llmModel,
		QuotaPerDay: quotaPerDay,
		CacheTTL:    ttl,
		StorageDir:  storageDir,
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validateDuration(s string) error {
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("must be a duration like 24h or 90m")
	}
	return nil
}
