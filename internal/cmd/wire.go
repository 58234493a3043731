package cmd

import (
	"fmt"
	"os"

	"github.com/spewlabs/explainer/internal/assemble"
	"github.com/spewlabs/explainer/internal/config"
	"github.com/spewlabs/explainer/internal/llm"
	"github.com/spewlabs/explainer/internal/logger"
	"github.com/spewlabs/explainer/internal/media"
	"github.com/spewlabs/explainer/internal/pipeline"
	"github.com/spewlabs/explainer/internal/sandbox"
	"github.com/spewlabs/explainer/internal/stages"
	"github.com/spewlabs/explainer/internal/visuals"
)

// defaultConfigPath is consulted when no --config flag is given; a
// missing file falls back to built-in defaults.
const defaultConfigPath = ".explainer/config.yaml"

// loadConfig loads the .env file, then the YAML config, and validates
// the result.
func loadConfig(configPath string) (*config.Config, error) {
	if err := config.LoadEnv(""); err != nil {
		return nil, err
	}

	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLLMClient builds the chat-completions client shared by the
// model-backed components.
func newLLMClient(apiKey string, cfg *config.Config) *llm.Client {
	return llm.NewClient(apiKey, cfg.Model.CodeModel, cfg.Model.BaseURL)
}

// buildOrchestrator assembles the full generation pipeline from the
// configuration: model client, sandbox, media adapter, visuals fallback
// chain, and the boundary services.
func buildOrchestrator(cfg *config.Config, log logger.Logger) (*pipeline.Orchestrator, error) {
	apiKey, err := cfg.Model.APIKey()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}

	client := newLLMClient(apiKey, cfg)
	mediaAdapter := media.New(cfg.FFmpegPath, cfg.FFprobePath)

	executor := sandbox.NewExecutor()
	executor.Interpreter = cfg.PythonPath
	executor.ScratchDir = cfg.WorkDir

	codeModel := visuals.NewLLMCodeModel(client, cfg.Model.CodeModel)
	repairLoop := visuals.NewRepairLoop(executor, codeModel, cfg.MaxAttempts, cfg.SandboxTimeout, log)
	imageService := stages.NewImageService(apiKey, cfg.Model.ImageModel, cfg.Model.BaseURL)

	chain := []visuals.Producer{
		visuals.NewAnimationProducer(repairLoop),
		visuals.NewImageProducer(imageService, mediaAdapter),
		visuals.NewPlaceholderProducer(mediaAdapter),
	}

	planner := visuals.NewPlanner(client, cfg.Model.PlanModel, log)
	generator := visuals.NewGenerator(chain, log)
	assembler := assemble.NewAssembler(mediaAdapter, log)
	visualsStage := pipeline.NewVisuals(planner, generator, assembler)

	scriptWriter := stages.NewScriptWriter(client, cfg.Model.ScriptModel)
	synthesizer := stages.NewSynthesizer(stages.SynthesizerOptions{
		TTSURL:          cfg.Speech.TTSURL,
		UserID:          os.Getenv(cfg.Speech.UserEnv),
		APIKey:          os.Getenv(cfg.Speech.APIKeyEnv),
		TranscribeURL:   cfg.Model.BaseURL + "/audio/transcriptions",
		TranscribeKey:   apiKey,
		TranscribeModel: cfg.Model.TranscribeModel,
		ScratchDir:      cfg.WorkDir,
	})
	lipsyncService := stages.NewLipsyncService(cfg.Lipsync.URL, os.Getenv(cfg.Lipsync.APIKeyEnv), cfg.WorkDir)

	return pipeline.NewOrchestrator(scriptWriter, synthesizer, visualsStage, lipsyncService, mediaAdapter, cfg.WorkDir, log), nil
}
