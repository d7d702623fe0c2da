package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
)

type stubOutreach struct {
	requests []driven.OutreachRequest
	err      error
	order    *[]string
}

func (s *stubOutreach) Run(_ context.Context, req driven.OutreachRequest) error {
	s.requests = append(s.requests, req)
	if s.order != nil {
		*s.order = append(*s.order, "outreach")
	}
	return s.err
}

type stubAssessment struct {
	requests []driven.AssessmentRequest
	result   *driven.AssessmentResult
	err      error
	order    *[]string
}

func (s *stubAssessment) Run(_ context.Context, req driven.AssessmentRequest) (*driven.AssessmentResult, error) {
	s.requests = append(s.requests, req)
	if s.order != nil {
		*s.order = append(*s.order, "assessment")
	}
	return s.result, s.err
}

type stubReconciliation struct {
	requests []driven.ReconciliationRequest
	result   *driven.ReconciliationResult
	err      error
	order    *[]string
}

func (s *stubReconciliation) Run(_ context.Context, req driven.ReconciliationRequest) (*driven.ReconciliationResult, error) {
	s.requests = append(s.requests, req)
	if s.order != nil {
		*s.order = append(*s.order, "reconciliation")
	}
	return s.result, s.err
}

func newTestDispatcher() (*Dispatcher, *stubOutreach, *stubAssessment, *stubReconciliation) {
	outreach := &stubOutreach{}
	assessment := &stubAssessment{result: &driven.AssessmentResult{}}
	reconciliation := &stubReconciliation{result: &driven.ReconciliationResult{}}
	return NewDispatcher(outreach, assessment, reconciliation), outreach, assessment, reconciliation
}

func TestDispatch_OutreachTriggers(t *testing.T) {
	for _, eventType := range []domain.EventType{
		domain.EventEngagementCreated,
		domain.EventIntakeComplete,
		domain.EventStaleEngagement,
	} {
		t.Run(string(eventType), func(t *testing.T) {
			dispatcher, outreach, assessment, reconciliation := newTestDispatcher()

			err := dispatcher.Dispatch(context.Background(), domain.Event{
				Type:         eventType,
				EngagementID: "eng-1",
			})

			require.NoError(t, err)
			require.Len(t, outreach.requests, 1)
			assert.Equal(t, eventType, outreach.requests[0].Trigger)
			assert.Equal(t, "eng-1", outreach.requests[0].EngagementID)
			assert.Empty(t, assessment.requests)
			assert.Empty(t, reconciliation.requests)
		})
	}
}

func TestDispatch_UploadedChainsThroughAssessment(t *testing.T) {
	dispatcher, outreach, assessment, reconciliation := newTestDispatcher()
	assessment.result = &driven.AssessmentResult{DocumentType: domain.DocTypeW2}

	err := dispatcher.Dispatch(context.Background(), domain.Event{
		Type:          domain.EventDocumentUploaded,
		EngagementID:  "eng-1",
		DocumentID:    "doc-1",
		StorageItemID: "item-1",
		FileName:      "w2.pdf",
	})

	require.NoError(t, err)
	require.Len(t, assessment.requests, 1)
	assert.Equal(t, "item-1", assessment.requests[0].StorageItemID)
	assert.Equal(t, "w2.pdf", assessment.requests[0].FileName)

	// Clean assessment chains straight into reconciliation.
	require.Len(t, reconciliation.requests, 1)
	assert.Equal(t, domain.EventDocumentAssessed, reconciliation.requests[0].Trigger)
	assert.Equal(t, domain.DocTypeW2, reconciliation.requests[0].DocumentType)
	assert.Empty(t, outreach.requests)
}

func TestDispatch_UploadedRunsFullChainToCompletion(t *testing.T) {
	// A clean assessment on a now-satisfied checklist runs the whole
	// chain in one dispatch: assessment, reconciliation, completion
	// outreach, exactly once each.
	dispatcher, outreach, assessment, reconciliation := newTestDispatcher()

	var order []string
	outreach.order = &order
	assessment.order = &order
	reconciliation.order = &order

	assessment.result = &driven.AssessmentResult{DocumentType: domain.DocTypeW2}
	reconciliation.result = &driven.ReconciliationResult{IsReady: true}

	err := dispatcher.Dispatch(context.Background(), domain.Event{
		Type:          domain.EventDocumentUploaded,
		EngagementID:  "eng-1",
		DocumentID:    "doc-1",
		StorageItemID: "item-1",
		FileName:      "w2.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"assessment", "reconciliation", "outreach"}, order)
	require.Len(t, outreach.requests, 1)
	assert.Equal(t, domain.EventEngagementComplete, outreach.requests[0].Trigger)
	assert.Equal(t, "eng-1", outreach.requests[0].EngagementID)
}

func TestDispatch_AssessedWithIssuesGoesToOutreach(t *testing.T) {
	dispatcher, outreach, _, reconciliation := newTestDispatcher()

	err := dispatcher.Dispatch(context.Background(), domain.Event{
		Type:         domain.EventDocumentAssessed,
		EngagementID: "eng-1",
		DocumentID:   "doc-1",
		HasIssues:    true,
	})

	require.NoError(t, err)
	require.Len(t, outreach.requests, 1)
	assert.Equal(t, domain.EventDocumentIssues, outreach.requests[0].Trigger)
	assert.Contains(t, outreach.requests[0].AdditionalContext, "doc-1")
	assert.Empty(t, reconciliation.requests, "issues skip reconciliation")
}

func TestDispatch_ReadyReconciliationFiresCompletion(t *testing.T) {
	dispatcher, outreach, _, reconciliation := newTestDispatcher()
	reconciliation.result = &driven.ReconciliationResult{IsReady: true}

	err := dispatcher.Dispatch(context.Background(), domain.Event{
		Type:         domain.EventCheckCompletion,
		EngagementID: "eng-1",
	})

	require.NoError(t, err)
	require.Len(t, reconciliation.requests, 1)
	require.Len(t, outreach.requests, 1)
	assert.Equal(t, domain.EventEngagementComplete, outreach.requests[0].Trigger)
}

func TestDispatch_NotReadyReconciliationStopsQuietly(t *testing.T) {
	dispatcher, outreach, _, reconciliation := newTestDispatcher()

	err := dispatcher.Dispatch(context.Background(), domain.Event{
		Type:         domain.EventCheckCompletion,
		EngagementID: "eng-1",
	})

	require.NoError(t, err)
	require.Len(t, reconciliation.requests, 1)
	assert.Empty(t, outreach.requests)
}

func TestDispatch_AssessmentFailureStopsChain(t *testing.T) {
	dispatcher, outreach, assessment, reconciliation := newTestDispatcher()
	assessment.err = errors.New("extraction down")

	err := dispatcher.Dispatch(context.Background(), domain.Event{
		Type:         domain.EventDocumentUploaded,
		EngagementID: "eng-1",
		DocumentID:   "doc-1",
	})

	require.Error(t, err)
	assert.Empty(t, reconciliation.requests)
	assert.Empty(t, outreach.requests)
}

type panickingOutreach struct {
	called chan struct{}
}

func (p *panickingOutreach) Run(_ context.Context, _ driven.OutreachRequest) error {
	close(p.called)
	panic("agent blew up")
}

func TestDispatchDetached_RecoversAgentPanic(t *testing.T) {
	outreach := &panickingOutreach{called: make(chan struct{})}
	dispatcher := NewDispatcher(outreach, &stubAssessment{}, &stubReconciliation{})

	dispatcher.DispatchDetached(domain.Event{
		Type:         domain.EventEngagementCreated,
		EngagementID: "eng-1",
	})

	select {
	case <-outreach.called:
	case <-time.After(2 * time.Second):
		t.Fatal("detached dispatch never reached the agent")
	}
	// The panic stays on the detached goroutine; reaching here at all
	// means the caller survived.
}

func TestDispatch_UnknownEventDropped(t *testing.T) {
	dispatcher, outreach, assessment, reconciliation := newTestDispatcher()

	err := dispatcher.Dispatch(context.Background(), domain.Event{
		Type:         domain.EventType("mystery"),
		EngagementID: "eng-1",
	})

	require.NoError(t, err)
	assert.Empty(t, outreach.requests)
	assert.Empty(t, assessment.requests)
	assert.Empty(t, reconciliation.requests)
}
