package bot

import (
	"context"
	"fmt"

	"github.com/spewlabs/explainer/internal/config"
	"github.com/spewlabs/explainer/internal/jobs"
	"github.com/spewlabs/explainer/internal/models"
	"github.com/spewlabs/explainer/internal/remote"
)

// Pipeline is the generation entry point a submitted job invokes.
// Implemented by pipeline.Orchestrator.
type Pipeline interface {
	GenerateVideo(ctx context.Context, persona models.Persona, query string) (remote.File, error)
}

// NewJobRunner adapts the pipeline into a jobs.Runner, resolving the
// persona and topic the handler stored in the job context at submission.
func NewJobRunner(catalog *config.Catalog, pipeline Pipeline) jobs.Runner {
	return func(ctx context.Context, jctx jobs.Context) (remote.File, error) {
		persona, ok := catalog.ByID(jctx[ctxPersonaID])
		if !ok {
			return nil, fmt.Errorf("unknown persona %q in job context", jctx[ctxPersonaID])
		}
		topic := jctx[ctxTopic]
		if topic == "" {
			return nil, fmt.Errorf("job context is missing the topic")
		}
		return pipeline.GenerateVideo(ctx, persona, topic)
	}
}
