package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlaceholderDocument(t *testing.T) {
	doc := NewPlaceholderDocument("w2.pdf", "item-1")

	require.NotEmpty(t, doc.ID)
	assert.Equal(t, "w2.pdf", doc.FileName)
	assert.Equal(t, "item-1", doc.StorageItemID)
	assert.Equal(t, DocTypePending, doc.Type)
	assert.Equal(t, ProcessingPending, doc.ProcessingStatus)
}

func TestDocument_Retryable(t *testing.T) {
	now := time.Now()

	t.Run("error state is always retryable", func(t *testing.T) {
		doc := Document{ProcessingStatus: ProcessingError}
		assert.True(t, doc.Retryable(now))
	})

	t.Run("terminal and idle states are not", func(t *testing.T) {
		for _, status := range []ProcessingStatus{ProcessingPending, ProcessingClassified} {
			doc := Document{ProcessingStatus: status}
			assert.False(t, doc.Retryable(now), "status=%s", status)
		}
	})

	t.Run("in-flight state becomes retryable when stuck", func(t *testing.T) {
		recent := now.Add(-time.Minute)
		stale := now.Add(-StuckProcessingThreshold - time.Minute)

		doc := Document{ProcessingStatus: ProcessingExtracting, ProcessingStartedAt: &recent}
		assert.False(t, doc.Retryable(now))

		doc.ProcessingStartedAt = &stale
		assert.True(t, doc.Retryable(now))
	})

	t.Run("in-flight state without start timestamp is not retryable", func(t *testing.T) {
		doc := Document{ProcessingStatus: ProcessingDownloading}
		assert.False(t, doc.Retryable(now))
	})
}

func TestDocument_ResetForRetry(t *testing.T) {
	year := 2024
	classifiedAt := time.Now()
	approvedAt := time.Now()

	doc := Document{
		ProcessingStatus: ProcessingError,
		Type:             DocTypeW2,
		Confidence:       0.95,
		TaxYear:          &year,
		Issues:           []string{"[wrong_year] stale"},
		FriendlyIssues:   []string{"stale"},
		ClassifiedAt:     &classifiedAt,
		Approved:         true,
		ApprovedAt:       &approvedAt,
		Archived:         true,
		ArchiveReason:    "superseded",
	}

	doc.ResetForRetry()

	assert.Equal(t, ProcessingPending, doc.ProcessingStatus)
	assert.Equal(t, DocTypePending, doc.Type)
	assert.Zero(t, doc.Confidence)
	assert.Nil(t, doc.Issues)
	assert.Nil(t, doc.FriendlyIssues)
	assert.Nil(t, doc.ClassifiedAt)
	assert.Nil(t, doc.ProcessingStartedAt)

	// Approval and archive history survive reclassification.
	assert.True(t, doc.Approved)
	assert.NotNil(t, doc.ApprovedAt)
	assert.True(t, doc.Archived)
	assert.Equal(t, "superseded", doc.ArchiveReason)
}

func TestDocument_ArchiveIdempotent(t *testing.T) {
	doc := NewPlaceholderDocument("a.pdf", "item-1")

	doc.Archive("removed from client folder")
	require.True(t, doc.Archived)
	first := *doc.ArchivedAt

	doc.Archive("another reason")
	assert.Equal(t, first, *doc.ArchivedAt)
	assert.Equal(t, "removed from client folder", doc.ArchiveReason)
}

func TestDocument_HasErrorIssues(t *testing.T) {
	doc := Document{Issues: []string{"[handwritten] notes in margin"}}
	assert.False(t, doc.HasErrorIssues())

	doc.Issues = append(doc.Issues, "[ERROR:incomplete::] missing page")
	assert.True(t, doc.HasErrorIssues())
}

func TestEngagement_DocumentLookups(t *testing.T) {
	engagement := NewEngagement("Acme LLC", "dropbox")
	doc := NewPlaceholderDocument("w2.pdf", "item-9")
	engagement.Documents = append(engagement.Documents, doc)

	found := engagement.DocumentByStorageItemID("item-9")
	require.NotNil(t, found)
	assert.Equal(t, doc.ID, found.ID)

	assert.Nil(t, engagement.DocumentByStorageItemID("missing"))
	assert.NotNil(t, engagement.DocumentByID(doc.ID))
}

func TestEngagement_Eligible(t *testing.T) {
	engagement := NewEngagement("Acme LLC", "drive")
	assert.False(t, engagement.Eligible())

	engagement.Status = EngagementCollecting
	assert.True(t, engagement.Eligible())

	engagement.Status = EngagementReady
	assert.True(t, engagement.Eligible())

	engagement.Status = EngagementComplete
	assert.False(t, engagement.Eligible())
}
