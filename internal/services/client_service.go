package services

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/events"
	"inkwell/internal/llm/client"
	"inkwell/internal/models"
	"inkwell/internal/providers"
)

// ClientService turns the user's provider configuration into a working
// chat client for the note editor. It only consumes what the connection
// layer produced: the preferred provider, its selected model, and the
// stored generation parameters.
type ClientService struct {
	context     context.Context
	connections *ConnectionService
	appSettings AppSettingsService
	secrets     SecretStore
}

func NewClientService(connections *ConnectionService, appSettings AppSettingsService, secrets SecretStore) *ClientService {
	return &ClientService{
		connections: connections,
		appSettings: appSettings,
		secrets:     secrets,
	}
}

func (s *ClientService) Startup(ctx context.Context) error {
	s.context = ctx
	if s.connections == nil {
		return fmt.Errorf("connection service not configured")
	}
	if s.appSettings == nil {
		return fmt.Errorf("app settings service not configured")
	}
	if s.secrets == nil {
		return fmt.Errorf("secret store not configured")
	}
	return nil
}

// instantiateClient resolves the preferred provider's configuration into
// a constructed chat client.
func (s *ClientService) instantiateClient() (*client.LLMClient, models.ProviderDescriptor, error) {
	settings, err := s.appSettings.Get()
	if err != nil {
		return nil, models.ProviderDescriptor{}, err
	}

	providerID := strings.TrimSpace(settings.PreferredProviderID)
	if providerID == "" {
		return nil, models.ProviderDescriptor{}, providers.NewConfigurationError("", "no preferred provider configured")
	}

	manager, err := s.connections.Manager(providerID)
	if err != nil {
		return nil, models.ProviderDescriptor{}, err
	}
	desc := manager.Descriptor()

	if desc.Kind == models.KindInProcess {
		// the embedded runtime generates inside the webview; there is no
		// backend client to build for it
		return nil, desc, providers.NewConfigurationError(providerID, "in-process models generate in the frontend runtime")
	}

	providerSettings := manager.Settings()
	modelID := strings.TrimSpace(providerSettings.SelectedModelID)
	if modelID == "" {
		return nil, desc, providers.NewConfigurationError(providerID, "no model selected")
	}

	opts := client.GenerationOptions{
		Model:        modelID,
		Temperature:  clampTemperature(settings.Temperature, desc),
		MaxTokens:    settings.MaxTokens,
		SystemPrompt: settings.SystemPrompt,
	}

	var apiKey string
	if desc.RequiresAPIKey {
		apiKey, err = s.secrets.GetApiKey(providerID)
		if err != nil || strings.TrimSpace(apiKey) == "" {
			return nil, desc, providers.NewConfigurationError(providerID, "api key is not configured")
		}
	}

	var llmClient *client.LLMClient
	switch {
	case desc.Kind == models.KindLocalDaemon:
		// the daemon speaks the OpenAI-compatible surface under /v1
		llmClient, err = client.NewOpenAIClient(s.context, "", manager.EffectiveURL()+"/v1", opts)
	case desc.ID == "anthropic":
		llmClient, err = client.NewClaudeClient(s.context, apiKey, opts)
	case desc.ID == "gemini":
		llmClient, err = client.NewGeminiClient(s.context, apiKey, opts)
	default:
		llmClient, err = client.NewOpenAIClient(s.context, apiKey, "", opts)
	}
	if err != nil {
		return nil, desc, fmt.Errorf("failed to create %s client: %w", providerID, err)
	}
	return llmClient, desc, nil
}

// Complete runs one blocking completion against the preferred provider.
func (s *ClientService) Complete(prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt is required")
	}
	llmClient, desc, err := s.instantiateClient()
	if err != nil {
		return "", err
	}
	return llmClient.Generate(events.WithProvider(s.context, desc.ID), prompt)
}

// StreamComplete runs one completion, forwarding chunks to the frontend
// as events.
func (s *ClientService) StreamComplete(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	llmClient, desc, err := s.instantiateClient()
	if err != nil {
		return err
	}

	ctx := events.WithProvider(s.context, desc.ID)
	err = llmClient.Stream(ctx, prompt, func(chunk string) {
		evt := events.NewProviderEvent(events.EventInfo, desc.ID, chunk)
		events.Emit(ctx, events.AIGenerateChunk, evt)
	})
	if err != nil {
		evt := events.NewProviderEvent(events.EventError, desc.ID, err.Error())
		events.Emit(ctx, events.AIGenerateDone, evt)
		return err
	}
	events.Emit(ctx, events.AIGenerateDone, events.NewProviderEvent(events.EventSuccess, desc.ID, "generation complete"))
	return nil
}

func clampTemperature(t float64, desc models.ProviderDescriptor) float64 {
	if t < desc.TemperatureMin {
		return desc.TemperatureMin
	}
	if t > desc.TemperatureMax {
		return desc.TemperatureMax
	}
	return t
}
