package erasure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"privy/internal/audit"
	dErrors "privy/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	auditStore *audit.InMemoryStore
	service    *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.auditStore = audit.NewInMemoryStore()
	s.service = NewService(s.auditStore,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// TestTrigger_AllLayersSucceed covers the full happy path: every layer
// completes, a certificate is sealed, the subject is blocked, and the
// request lives on the immutable completed list.
func (s *ServiceSuite) TestTrigger_AllLayersSucceed() {
	request, err := s.service.Trigger(s.ctx, "subject-1", "subject-1", "consent_withdrawal", nil)
	require.NoError(s.T(), err)

	assert.True(s.T(), strings.HasPrefix(request.ID, "RTBF_"))
	assert.Len(s.T(), request.ID, len("RTBF_")+16)
	assert.Equal(s.T(), StatusCompleted, request.Status)
	assert.True(s.T(), request.AccessBlocked)
	assert.Len(s.T(), request.LayerStatus, len(AllLayers))
	for layer, result := range request.LayerStatus {
		assert.Equal(s.T(), LayerCompleted, result.Status, "layer %s", layer)
	}

	require.NotNil(s.T(), request.Certificate)
	assert.NoError(s.T(), VerifyCertificate(request.Certificate))
	assert.NotContains(s.T(), request.Certificate.SubjectFingerprint, "subject-1")

	assert.True(s.T(), s.service.IsBlocked("subject-1"))

	// Completed requests leave the active map but stay addressable.
	got, err := s.service.RequestStatus(request.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), StatusCompleted, got.Status)
}

// TestTrigger_BlockPrecedesPurge verifies the ordering invariant: the
// subject is already in the block set when the first handler runs, even
// when every handler fails.
func (s *ServiceSuite) TestTrigger_BlockPrecedesPurge() {
	blockedDuringPurge := make(chan bool, len(AllLayers))
	failAll := func(_ context.Context, subjectID, _ string) (Outcome, error) {
		blockedDuringPurge <- s.service.IsBlocked(subjectID)
		return Outcome{}, errors.New("layer offline")
	}

	svc := NewService(nil)
	for _, layer := range AllLayers {
		WithHandler(layer, failAll)(svc)
	}
	s.service = svc

	request, err := svc.Trigger(s.ctx, "subject-1", "admin", "legal_request", nil)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), StatusFailed, request.Status)
	assert.Nil(s.T(), request.Certificate)

	close(blockedDuringPurge)
	for wasBlocked := range blockedDuringPurge {
		assert.True(s.T(), wasBlocked, "subject must be blocked before any handler executes")
	}

	// The block is never rolled back on failure.
	assert.True(s.T(), svc.IsBlocked("subject-1"))
}

// TestTrigger_PartialOnSingleFailure verifies fault isolation: one failing
// layer downgrades the status to partial while its siblings complete.
func (s *ServiceSuite) TestTrigger_PartialOnSingleFailure() {
	svc := NewService(s.auditStore, WithHandler(LayerSearchIndex,
		func(_ context.Context, _, _ string) (Outcome, error) {
			return Outcome{}, errors.New("index unreachable")
		}))

	request, err := svc.Trigger(s.ctx, "subject-1", "subject-1", "", nil)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), StatusPartial, request.Status)
	assert.Equal(s.T(), LayerFailed, request.LayerStatus[LayerSearchIndex].Status)
	assert.Contains(s.T(), request.LayerStatus[LayerSearchIndex].Error, "index unreachable")
	assert.Equal(s.T(), LayerCompleted, request.LayerStatus[LayerPrimaryDB].Status)
	assert.Nil(s.T(), request.Certificate, "partial purges earn no certificate")

	// Partial requests stay on the active list.
	got, err := svc.RequestStatus(request.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), StatusPartial, got.Status)
}

// TestTrigger_PanickingHandlerIsIsolated verifies a handler panic is
// contained as a failed layer, not a crashed purge.
func (s *ServiceSuite) TestTrigger_PanickingHandlerIsIsolated() {
	svc := NewService(s.auditStore, WithHandler(LayerMLModels,
		func(_ context.Context, _, _ string) (Outcome, error) {
			panic("model registry corrupted")
		}))

	request, err := svc.Trigger(s.ctx, "subject-1", "subject-1", "", nil)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), StatusPartial, request.Status)
	assert.Equal(s.T(), LayerFailed, request.LayerStatus[LayerMLModels].Status)
	assert.Contains(s.T(), request.LayerStatus[LayerMLModels].Error, "handler panic")
}

// TestTrigger_ScopeSkipsLayers verifies out-of-scope layers are marked
// skipped without running, and skipped layers still count toward completed.
func (s *ServiceSuite) TestTrigger_ScopeSkipsLayers() {
	request, err := s.service.Trigger(s.ctx, "subject-1", "subject-1", "",
		[]string{string(LayerPrimaryDB), string(LayerCache)})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), StatusCompleted, request.Status)
	assert.Equal(s.T(), LayerCompleted, request.LayerStatus[LayerPrimaryDB].Status)
	assert.Equal(s.T(), LayerCompleted, request.LayerStatus[LayerCache].Status)
	assert.Equal(s.T(), LayerSkipped, request.LayerStatus[LayerAnalytics].Status)
	assert.Equal(s.T(), "Not in scope", request.LayerStatus[LayerAnalytics].Reason)
	require.NotNil(s.T(), request.Certificate)
}

// TestTrigger_AuditLayerAnonymizes verifies the audit-log handler performs
// field anonymization through the collaborator instead of deleting rows.
func (s *ServiceSuite) TestTrigger_AuditLayerAnonymizes() {
	for i := 0; i < 3; i++ {
		_, err := s.auditStore.Append(s.ctx, audit.Record{
			RequesterID: "subject-1",
			Decision:    audit.DecisionAllow,
		})
		require.NoError(s.T(), err)
	}

	request, err := s.service.Trigger(s.ctx, "subject-1", "subject-1", "", nil)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, request.LayerStatus[LayerAuditLogs].RecordsAffected)

	records, err := s.auditStore.List(s.ctx, audit.Query{})
	require.NoError(s.T(), err)
	require.Len(s.T(), records, 3)
	for _, r := range records {
		assert.Equal(s.T(), "[ANONYMIZED]", r.RequesterID)
	}
}

func (s *ServiceSuite) TestCertificateForSubject() {
	_, err := s.service.Trigger(s.ctx, "subject-1", "subject-1", "", nil)
	require.NoError(s.T(), err)

	cert, err := s.service.CertificateForSubject("subject-1")
	require.NoError(s.T(), err)
	assert.NoError(s.T(), VerifyCertificate(&cert))

	// Tampering must be detectable by recomputation.
	cert.LayersPurged = cert.LayersPurged[:1]
	assert.Error(s.T(), VerifyCertificate(&cert))

	_, err = s.service.CertificateForSubject("subject-never-erased")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRequestStatus_NotFound() {
	_, err := s.service.RequestStatus("RTBF_0000000000000000")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRequests_StatusFilter() {
	_, err := s.service.Trigger(s.ctx, "subject-1", "subject-1", "", nil)
	require.NoError(s.T(), err)

	failing := NewService(s.auditStore, WithHandler(LayerCache,
		func(_ context.Context, _, _ string) (Outcome, error) {
			return Outcome{}, errors.New("cache offline")
		}))
	_, err = failing.Trigger(s.ctx, "subject-2", "subject-2", "", nil)
	require.NoError(s.T(), err)

	assert.Len(s.T(), s.service.Requests(StatusCompleted), 1)
	assert.Empty(s.T(), s.service.Requests(StatusPartial))
	assert.Len(s.T(), failing.Requests(StatusPartial), 1)
	assert.Len(s.T(), s.service.Requests(""), 1)
}

func (s *ServiceSuite) TestIsBlocked_UnknownSubject() {
	assert.False(s.T(), s.service.IsBlocked("subject-unknown"))
}

// TestTrigger_ConcurrentWithRequestReads races in-flight purges against
// the request query paths. Post-purge mutations happen under the service
// mutex, so a reader always sees a consistent snapshot: a pending request
// with no layer results, or a finished one with the full set and its
// certificate.
func (s *ServiceSuite) TestTrigger_ConcurrentWithRequestReads() {
	const subjects = 10

	svc := NewService(s.auditStore)
	for _, layer := range AllLayers {
		WithHandler(layer, func(_ context.Context, _, _ string) (Outcome, error) {
			time.Sleep(time.Millisecond)
			return Outcome{RecordsAffected: 1}, nil
		})(svc)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			for _, request := range svc.Requests("") {
				switch request.Status {
				case StatusPending:
					assert.Empty(s.T(), request.LayerStatus)
					assert.Nil(s.T(), request.Certificate)
				case StatusCompleted:
					assert.Len(s.T(), request.LayerStatus, len(AllLayers))
					assert.NotNil(s.T(), request.Certificate)
				}
				_, err := svc.RequestStatus(request.ID)
				assert.NoError(s.T(), err)
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < subjects; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Trigger(s.ctx, fmt.Sprintf("subject-%d", n), "admin", "", nil)
			assert.NoError(s.T(), err)
		}(i)
	}
	wg.Wait()
	<-done

	assert.Len(s.T(), svc.Requests(StatusCompleted), subjects)
}
