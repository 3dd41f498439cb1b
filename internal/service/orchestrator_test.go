package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energy-advisor/internal/model"
	"energy-advisor/internal/repository"
)

const fullExtraction = `{
	"address": "Košice",
	"building_type": "family_house",
	"heated_area_m2": 120,
	"insulation_level": "good",
	"electricity_kwh_year": 4500,
	"heating_fuel": "gas",
	"roof_area_m2": 60,
	"phase": "3f"
}`

func newTestOrchestrator(t *testing.T, ai TextGenerator) (*Orchestrator, *repository.MemoryStore) {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := repository.NewMemoryStore(0, log)
	t.Cleanup(func() { _ = store.Close() })

	collector := NewCollectorStage(ai, &fakeGeocoder{}, &fakeTechSource{}, log)
	analysis := NewAnalysisStage(DeterministicScoring{}, log)
	calculation := NewCalculationStage(log)
	report := NewReportStage(ai, log)
	return NewOrchestrator(store, collector, analysis, calculation, report, log), store
}

func TestOrchestrator_StartSessionGreets(t *testing.T) {
	o, _ := newTestOrchestrator(t, failingAI())

	id, welcome, err := o.StartSession(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, id)
	assert.Equal(t, greetingMessage, welcome.Message)
	assert.Equal(t, 10, welcome.Progress)
	assert.False(t, welcome.IsComplete)

	status, err := o.GetStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StageDataCollection, status.Stage)
	assert.Equal(t, 0, status.Progress)
}

func TestOrchestrator_FullPipelineInOneTurn(t *testing.T) {
	// The AI answers the extraction prompt with the full profile and any
	// later prompt (the report conclusion) with prose.
	ai := &scriptedAI{respond: func(prompt string) string {
		if strings.Contains(prompt, "Extract property information") {
			return fullExtraction
		}
		return "A great investment for your family and the planet."
	}}
	o, _ := newTestOrchestrator(t, ai)

	id, _, err := o.StartSession(context.Background())
	require.NoError(t, err)

	resp, err := o.ProcessMessage(context.Background(), id, "family house in Košice, 120 m², good insulation, 4500 kWh, gas, 60 m² roof, 3f")
	require.NoError(t, err)

	// One turn chains collection, analysis, calculation and report.
	assert.True(t, resp.IsComplete)
	assert.Equal(t, 100, resp.Progress)
	assert.Contains(t, resp.Message, "PERSONALIZED ENERGY PLAN")
	assert.Contains(t, resp.Message, "A great investment for your family and the planet.")

	status, err := o.GetStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StageReport, status.Stage)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.Analysis)
	require.NotNil(t, status.Calculations)
	assert.NotNil(t, status.Calculations.Combined)
}

func TestOrchestrator_ReportStageIsTerminal(t *testing.T) {
	ai := &scriptedAI{respond: func(prompt string) string {
		if strings.Contains(prompt, "Extract property information") {
			return fullExtraction
		}
		return "Conclusion."
	}}
	o, _ := newTestOrchestrator(t, ai)

	id, _, err := o.StartSession(context.Background())
	require.NoError(t, err)

	_, err = o.ProcessMessage(context.Background(), id, "here is everything")
	require.NoError(t, err)

	// A follow-up message re-renders the report instead of advancing.
	resp, err := o.ProcessMessage(context.Background(), id, "thanks!")
	require.NoError(t, err)
	assert.True(t, resp.IsComplete)
	assert.Equal(t, 100, resp.Progress)
	assert.Contains(t, resp.Message, "PERSONALIZED ENERGY PLAN")
}

func TestOrchestrator_IncompleteCollectionWaits(t *testing.T) {
	o, _ := newTestOrchestrator(t, constantAI(`{"address": "Poprad"}`))

	id, _, err := o.StartSession(context.Background())
	require.NoError(t, err)

	resp, err := o.ProcessMessage(context.Background(), id, "I live in Poprad")
	require.NoError(t, err)

	assert.False(t, resp.IsComplete)

	status, err := o.GetStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StageDataCollection, status.Stage)
	assert.Equal(t, "Poprad", *status.Profile.Location.Address)
}

func TestOrchestrator_UnknownSessionID(t *testing.T) {
	o, _ := newTestOrchestrator(t, failingAI())

	_, err := o.ProcessMessage(context.Background(), "no-such-session", "hello")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)

	_, err = o.GetStatus(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestOrchestrator_UnknownStageIsDiagnosed(t *testing.T) {
	o, store := newTestOrchestrator(t, failingAI())

	id, err := store.Create(context.Background())
	require.NoError(t, err)
	session, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	session.Stage = model.Stage("bogus")
	require.NoError(t, store.Update(context.Background(), session))

	resp, err := o.ProcessMessage(context.Background(), id, "hello")
	require.NoError(t, err)
	assert.Equal(t, unknownStageMessage, resp.Message)
	assert.True(t, resp.IsComplete)
}

func TestOrchestrator_ConcurrentTurnsMergeWithoutLoss(t *testing.T) {
	ai := &scriptedAI{respond: func(prompt string) string {
		switch {
		case strings.Contains(prompt, "about the town"):
			return `{"address": "Košice", "building_type": "family_house", "heated_area_m2": 120}`
		case strings.Contains(prompt, "about the usage"):
			return `{"insulation_level": "good", "electricity_kwh_year": 4500, "heating_fuel": "gas"}`
		default:
			return `{"irrelevant": true}`
		}
	}}
	o, _ := newTestOrchestrator(t, ai)

	id, _, err := o.StartSession(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, msg := range []string{"about the town", "about the usage"} {
		wg.Add(1)
		go func(msg string) {
			defer wg.Done()
			_, err := o.ProcessMessage(context.Background(), id, msg)
			assert.NoError(t, err)
		}(msg)
	}
	wg.Wait()

	// Both turns landed: the union of the extracted fields survived.
	status, err := o.GetStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StageDataCollection, status.Stage)
	assert.NotNil(t, status.Profile.Location.Address)
	assert.NotNil(t, status.Profile.Building.HeatedAreaM2)
	assert.NotNil(t, status.Profile.Building.InsulationLevel)
	assert.NotNil(t, status.Profile.Consumption.ElectricityKwhYear)
	assert.NotNil(t, status.Profile.Consumption.HeatingFuel)
}
