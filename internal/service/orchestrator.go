package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"energy-advisor/internal/model"
	"energy-advisor/internal/repository"
)

const unknownStageMessage = "Error: unknown conversation state"

// Orchestrator holds the conversation state machine. Each inbound message is
// routed to the handler for the session's current stage; when a stage
// reports completion the pipeline advances and immediately runs the next
// stage on the same session, without waiting for further user input, until a
// stage reports incomplete or the report is produced.
type Orchestrator struct {
	store       repository.SessionStore
	collector   *CollectorStage
	analysis    *AnalysisStage
	calculation *CalculationStage
	report      *ReportStage
	locks       sync.Map // session id -> *sync.Mutex
	log         *zap.SugaredLogger
}

// NewOrchestrator wires the four stages to a session store.
func NewOrchestrator(
	store repository.SessionStore,
	collector *CollectorStage,
	analysis *AnalysisStage,
	calculation *CalculationStage,
	report *ReportStage,
	log *zap.SugaredLogger,
) *Orchestrator {
	return &Orchestrator{
		store:       store,
		collector:   collector,
		analysis:    analysis,
		calculation: calculation,
		report:      report,
		log:         log,
	}
}

// StartSession creates a session and primes it with an empty data-collection
// turn, which produces the welcome prompt.
func (o *Orchestrator) StartSession(ctx context.Context) (string, *model.AgentResponse, error) {
	id, err := o.store.Create(ctx)
	if err != nil {
		return "", nil, err
	}

	welcome, err := o.ProcessMessage(ctx, id, "")
	if err != nil {
		return "", nil, err
	}
	return id, welcome, nil
}

// ProcessMessage runs one conversational turn as a read-modify-write
// transaction over the session. Turns for the same session id are
// serialized; distinct ids proceed concurrently.
func (o *Orchestrator) ProcessMessage(ctx context.Context, id, message string) (*model.AgentResponse, error) {
	mu := o.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	text := message
	for {
		var resp *model.AgentResponse

		switch session.Stage {
		case model.StageDataCollection:
			resp = o.collector.Process(ctx, session, text)
		case model.StageAnalysis:
			resp = o.analysis.Process(ctx, session)
		case model.StageCalculation:
			resp = o.calculation.Process(ctx, session)
		case model.StageReport:
			resp = o.report.Process(ctx, session)
		default:
			o.log.Errorw("session in unknown stage", "session", id, "stage", session.Stage)
			return &model.AgentResponse{Message: unknownStageMessage, IsComplete: true}, nil
		}

		// The report is terminal, and an incomplete stage waits for the
		// next user turn; both end the chain.
		if session.Stage == model.StageReport || !resp.IsComplete {
			if err := o.store.Update(ctx, session); err != nil {
				return nil, err
			}
			return resp, nil
		}

		session.Stage = session.Stage.Next()
		if err := o.store.Update(ctx, session); err != nil {
			return nil, err
		}
		o.log.Infow("stage advanced", "session", id, "stage", session.Stage)

		// Subsequent stages run on session state alone.
		text = ""
	}
}

// GetStatus returns a full snapshot of the session with blended progress:
// data collection contributes 0-25% proportional to the fields filled,
// later stages report a flat 50/75/100.
func (o *Orchestrator) GetStatus(ctx context.Context, id string) (*model.SessionStatus, error) {
	mu := o.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.SessionStatus{
		SessionID:    session.ID,
		Stage:        session.Stage,
		Progress:     stageProgress(session),
		Profile:      session.Profile,
		Technical:    session.Technical,
		Analysis:     session.Analysis,
		Calculations: session.Calculations,
	}, nil
}

func stageProgress(session *model.Session) int {
	switch session.Stage {
	case model.StageDataCollection:
		return CollectionProgress(&session.Profile)
	case model.StageAnalysis:
		return 50
	case model.StageCalculation:
		return 75
	case model.StageReport:
		return 100
	default:
		return 0
	}
}

func (o *Orchestrator) lockFor(id string) *sync.Mutex {
	mu, _ := o.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
