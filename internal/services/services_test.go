package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"arogya-app-server/internal/genai"
	"arogya-app-server/internal/metrics"
	"arogya-app-server/internal/models"
	"arogya-app-server/internal/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCollaborator is a mock implementation of genai.Collaborator
type MockCollaborator struct {
	mock.Mock
}

func (m *MockCollaborator) Generate(ctx context.Context, req genai.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockCollaborator) Stream(ctx context.Context, req genai.Request, onChunk func(string) error) error {
	args := m.Called(ctx, req, onChunk)
	return args.Error(0)
}

func collaboration(c genai.Collaborator) Collaboration {
	return Collaboration{Collaborator: c, Metrics: metrics.New()}
}

func newStore() *store.Store {
	return store.New(store.NewMemoryBackend())
}

func TestReportAnalyzer_Success(t *testing.T) {
	ai := &MockCollaborator{}
	ai.On("Generate", mock.Anything, mock.MatchedBy(func(r genai.Request) bool {
		return r.JSON && r.Task == TaskReportAnalysis
	})).Return(`{
		"summary": "Cholesterol is high.",
		"findings": [{"severity": "high", "text": "LDL 240 mg/dL"}],
		"recommendations": ["Reduce saturated fat"],
		"medicalTerms": [{"term": "LDL", "definition": "Low-density lipoprotein"}]
	}`, nil)

	analyzer := NewReportAnalyzer(newStore(), collaboration(ai))
	result, err := analyzer.AnalyzeReport(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, "Cholesterol is high.", result.Summary)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, models.SeverityHigh, result.Findings[0].Severity)
	ai.AssertExpectations(t)
}

func TestReportAnalyzer_FallbackOnFailure(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		err  error
	}{
		{name: "collaborator error", err: genai.ErrUnavailable},
		{name: "malformed json", raw: `{"summary": `},
		{name: "schema mismatch", raw: `{"summary": "ok", "findings": [{"severity": "critical", "text": "x"}]}`},
		{name: "missing summary", raw: `{"findings": []}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ai := &MockCollaborator{}
			ai.On("Generate", mock.Anything, mock.Anything).Return(tc.raw, tc.err)

			result := NewReportAnalyzer(newStore(), collaboration(ai)).Analyze(context.Background(), "text")
			assert.Equal(t, FallbackAnalysis(), result)
		})
	}
}

func TestReportAnalyzer_NilCollaboratorFallsBack(t *testing.T) {
	assert.Equal(t, FallbackAnalysis(), NewReportAnalyzer(newStore(), Collaboration{}).Analyze(context.Background(), "x"))
}

func TestReportAnalyzer_UnknownReport(t *testing.T) {
	analyzer := NewReportAnalyzer(newStore(), collaboration(&MockCollaborator{}))
	_, err := analyzer.AnalyzeReport(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReportAnalyzer_FallbackIsCounted(t *testing.T) {
	ai := &MockCollaborator{}
	ai.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("timeout"))
	collab := collaboration(ai)

	NewReportAnalyzer(newStore(), collab).Analyze(context.Background(), "x")

	count := testutil.CollectAndCount(collab.Metrics.Registry(), "collaborator_calls_total")
	assert.Equal(t, 1, count)
}

func TestInsightGenerator_UsesLatestHeartRate(t *testing.T) {
	ctx := context.Background()
	st := newStore()
	_, err := st.AddVitalSample(ctx, 88)
	require.NoError(t, err)

	ai := &MockCollaborator{}
	ai.On("Generate", mock.Anything, mock.MatchedBy(func(r genai.Request) bool {
		return r.Task == TaskInsights
	})).Return(`[{"type":"warning","title":"Elevated HR","description":"Rest more."}]`, nil)

	insights, stats := NewInsightGenerator(st, collaboration(ai)).ForCurrentVitals(ctx)
	assert.Equal(t, 88, stats.HeartRate)
	assert.Equal(t, DefaultSleepHours, stats.SleepHours)
	assert.Equal(t, DefaultSteps, stats.Steps)
	require.Len(t, insights, 1)
	assert.Equal(t, "Elevated HR", insights[0].Title)
}

func TestInsightGenerator_Fallbacks(t *testing.T) {
	for _, raw := range []string{`[]`, `[{"type":"alarm","title":"x","description":"y"}]`, `nope`} {
		ai := &MockCollaborator{}
		ai.On("Generate", mock.Anything, mock.Anything).Return(raw, nil)

		insights := NewInsightGenerator(newStore(), collaboration(ai)).Generate(context.Background(), models.VitalStats{HeartRate: 72})
		assert.Equal(t, FallbackInsights(), insights, raw)
	}
}

func TestMedicineIdentifier(t *testing.T) {
	ai := &MockCollaborator{}
	ai.On("Generate", mock.Anything, mock.Anything).
		Return(`{"name":"Ibuprofen","usage":"Pain relief","sideEffects":"Nausea","confidence":0.9}`, nil).Once()
	ai.On("Generate", mock.Anything, mock.Anything).
		Return(`{"name":"Ibuprofen","usage":"Pain relief","sideEffects":"Nausea","confidence":7}`, nil).Once()

	id := NewMedicineIdentifier(collaboration(ai))

	result := id.Identify(context.Background(), "Ibuprofen")
	assert.Equal(t, "Pain relief", result.Usage)

	result = id.Identify(context.Background(), " Ibuprofen ")
	assert.Equal(t, FallbackScanResult("Ibuprofen"), result)
}

func TestScanner_PicksMockMedicine(t *testing.T) {
	scanner := NewScanner(NewMedicineIdentifier(Collaboration{}), 0, rand.New(rand.NewSource(3)))

	result, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Contains(t, MockMedicines, result.Name)
	assert.Equal(t, "Consult doctor", result.Usage)
	assert.Zero(t, result.Confidence)
}

func TestScanner_Abandoned(t *testing.T) {
	scanner := NewScanner(NewMedicineIdentifier(Collaboration{}), time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanner.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoctorFinder_Search(t *testing.T) {
	finder := NewDoctorFinder(newStore())

	assert.Len(t, finder.Search(""), 4)

	cardio := finder.Search("CARDIO")
	require.Len(t, cardio, 1)
	assert.Equal(t, "d1", cardio[0].ID)

	assert.Len(t, finder.Search("sarah"), 1)
	assert.Empty(t, finder.Search("dermatologist"))
}

func TestDoctorFinder_Book(t *testing.T) {
	ctx := context.Background()
	st := newStore()
	finder := NewDoctorFinder(st)
	finder.now = func() time.Time { return time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC) }

	appt, err := finder.Book(ctx, "d1", "10:00 AM")
	require.NoError(t, err)

	appts, err := st.Appointments(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, appt, appts[0])
	assert.Equal(t, "d1", appt.DoctorID)
	assert.Equal(t, "10:00 AM", appt.Time)
	assert.Equal(t, models.StatusUpcoming, appt.Status)
	assert.Equal(t, models.AppointmentVideo, appt.Type)
	assert.Equal(t, "2025-03-09", appt.Date)
	assert.Equal(t, "Dr. Anjali Gupta", appt.DoctorName)
}

func TestDoctorFinder_BookUsesUTCDate(t *testing.T) {
	ctx := context.Background()
	finder := NewDoctorFinder(newStore())
	eastern := time.FixedZone("UTC-5", -5*60*60)
	finder.now = func() time.Time { return time.Date(2025, 3, 9, 21, 0, 0, 0, eastern) }

	appt, err := finder.Book(ctx, "d1", "10:00 AM")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", appt.Date)
}

func TestDoctorFinder_BookErrors(t *testing.T) {
	ctx := context.Background()
	st := newStore()
	finder := NewDoctorFinder(st)

	_, err := finder.Book(ctx, "d9", "10:00 AM")
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	_, err = finder.Book(ctx, "d4", "10:00 AM")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	appts, err := st.Appointments(ctx)
	require.NoError(t, err)
	assert.Empty(t, appts)
}

func TestReportUploader(t *testing.T) {
	ctx := context.Background()
	st := newStore()
	uploader := NewReportUploader(st, 0)
	eastern := time.FixedZone("UTC-5", -5*60*60)
	uploader.now = func() time.Time { return time.Date(2024, 12, 31, 22, 0, 0, 0, eastern) }

	report, err := uploader.Upload(ctx, "lipid_panel.final.pdf")
	require.NoError(t, err)
	assert.Equal(t, "lipid_panel", report.Title)
	assert.Equal(t, "External Upload", report.Hospital)
	assert.Equal(t, "PDF", report.Type)
	assert.Equal(t, PendingReportContent, report.Content)
	assert.Equal(t, "2025-01-01", report.Date)

	reports, err := st.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, report.ID, reports[0].ID)
	assert.Equal(t, "r1", reports[1].ID)
}

func TestReportTitle(t *testing.T) {
	assert.Equal(t, "scan", reportTitle("/tmp/scan.png"))
	assert.Equal(t, "Uploaded Report", reportTitle(""))
	assert.Equal(t, "Uploaded Report", reportTitle(".hidden"))
}

func TestMedications_AddDefaults(t *testing.T) {
	ctx := context.Background()
	meds := NewMedications(newStore())

	list, err := meds.Add(ctx, "Metformin", "20:00", "")
	require.NoError(t, err)
	require.Len(t, list, 3)

	added := list[2]
	assert.Equal(t, "Metformin", added.Title)
	assert.Equal(t, DefaultDosage, added.Dosage)
	assert.Equal(t, models.FormPill, added.Type)
	assert.False(t, added.Taken)

	list, err = meds.Toggle(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, list[2].Taken)
}

func TestAssistant_StreamsReply(t *testing.T) {
	ai := &MockCollaborator{}
	ai.On("Stream", mock.Anything, mock.MatchedBy(func(r genai.Request) bool {
		return r.SystemInstruction == AssistantInstruction && len(r.History) == 1 && r.Prompt == "Is 88 bpm high?"
	}), mock.Anything).Run(func(args mock.Arguments) {
		onChunk := args.Get(2).(func(string) error)
		_ = onChunk("Slightly ")
		_ = onChunk("elevated.")
	}).Return(nil)

	assistant := NewAssistant(collaboration(ai))
	var chunks []string
	added, err := assistant.Send(context.Background(), "Is 88 bpm high?", func(c string) { chunks = append(chunks, c) })
	require.NoError(t, err)

	assert.Equal(t, []string{"Slightly ", "elevated."}, chunks)
	require.Len(t, added, 1)
	assert.Equal(t, "Slightly elevated.", added[0].Text)

	msgs := assistant.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, AssistantGreeting, msgs[0].Text)
	assert.Equal(t, models.ChatRoleUser, msgs[1].Role)
	assert.Equal(t, models.ChatRoleModel, msgs[2].Role)
}

func TestAssistant_FailureAppendsInterruption(t *testing.T) {
	ai := &MockCollaborator{}
	ai.On("Stream", mock.Anything, mock.Anything, mock.Anything).Return(genai.ErrUnavailable)

	assistant := NewAssistant(collaboration(ai))
	added, err := assistant.Send(context.Background(), "hello", nil)
	require.NoError(t, err)

	require.Len(t, added, 1)
	assert.Equal(t, ConnectionInterrupted, added[0].Text)
}

func TestAssistant_CancelStopsDelivery(t *testing.T) {
	ai := &MockCollaborator{}
	ai.On("Stream", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		onChunk := args.Get(2).(func(string) error)
		_ = onChunk("first")
		<-ctx.Done()
		_ = onChunk("late")
	}).Return(context.Canceled)

	assistant := NewAssistant(collaboration(ai))

	var mu sync.Mutex
	var chunks []string
	first := make(chan struct{})
	turn, err := assistant.Begin(context.Background(), "hello", func(c string) {
		mu.Lock()
		chunks = append(chunks, c)
		mu.Unlock()
		close(first)
	})
	require.NoError(t, err)

	<-first
	_, err = assistant.Begin(context.Background(), "again", nil)
	assert.ErrorIs(t, err, ErrTurnInProgress)

	turn.Cancel()
	added := turn.Wait()

	mu.Lock()
	assert.Equal(t, []string{"first"}, chunks)
	mu.Unlock()
	require.Len(t, added, 1)
	assert.Equal(t, "first", added[0].Text)
	assert.False(t, assistant.CancelActive())
}

func TestAssistant_RejectsEmptyPrompt(t *testing.T) {
	_, err := NewAssistant(Collaboration{}).Begin(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestAssistant_Reset(t *testing.T) {
	assistant := NewAssistant(Collaboration{})
	_, err := assistant.Send(context.Background(), "hello", nil)
	require.NoError(t, err)
	require.Len(t, assistant.Messages(), 3)

	assistant.Reset()
	msgs := assistant.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, AssistantGreeting, msgs[0].Text)
}

func TestTeleconsult_DoctorReplies(t *testing.T) {
	tc := NewTeleconsult(5*time.Millisecond, nil)

	_, err := tc.Send("hello")
	assert.ErrorIs(t, err, ErrNoActiveCall)

	consult := tc.Start()
	require.Len(t, consult.Messages, 1)
	assert.Equal(t, TeleconsultGreeting, consult.Messages[0].Text)

	consult, err = tc.Send("My chest feels tight")
	require.NoError(t, err)
	assert.Len(t, consult.Messages, 2)

	require.Eventually(t, func() bool { return len(tc.Current().Messages) == 3 }, time.Second, time.Millisecond)
	last := tc.Current().Messages[2]
	assert.Equal(t, models.ChatRoleDoctor, last.Role)
	assert.Equal(t, TeleconsultReply, last.Text)
}

func TestTeleconsult_EndDropsPendingReplies(t *testing.T) {
	tc := NewTeleconsult(20*time.Millisecond, nil)
	tc.Start()
	_, err := tc.Send("hello")
	require.NoError(t, err)

	final, err := tc.End()
	require.NoError(t, err)
	assert.Len(t, final.Messages, 2)

	tc.Start()
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, tc.Current().Messages, 1)

	_, err = tc.End()
	require.NoError(t, err)
	_, err = tc.End()
	assert.ErrorIs(t, err, ErrNoActiveCall)
}

func TestTeleconsult_Duration(t *testing.T) {
	tc := NewTeleconsult(time.Second, nil)
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	tc.now = func() time.Time { return start }
	tc.Start()

	tc.now = func() time.Time { return start.Add(95 * time.Second) }
	assert.Equal(t, 95, tc.Current().Duration)
}

// MockDispatcher is a mock implementation of Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, alert Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

type countingHaptics struct {
	mu    sync.Mutex
	calls int
}

func (h *countingHaptics) Vibrate(...time.Duration) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
}

func sosProfile() models.UserProfile {
	return models.UserProfile{FirstName: "Rahul", LastName: "Sharma", ArogyaID: "AP-482913", EmergencyContact: "9000000000"}
}

func TestEmergency_DispatchesOnceAfterCountdown(t *testing.T) {
	dispatcher := &MockDispatcher{}
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(a Alert) bool {
		return a.Message == EmergencyMessage && a.ArogyaID == "AP-482913"
	})).Return(nil).Once()
	haptics := &countingHaptics{}

	e := NewEmergency(3, 5*time.Millisecond, dispatcher, haptics, metrics.New(), nil)
	status, err := e.Start(context.Background(), sosProfile())
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, 3, status.Remaining)

	_, err = e.Start(context.Background(), sosProfile())
	assert.ErrorIs(t, err, ErrSOSActive)

	require.Eventually(t, func() bool { return e.Status().LastAlert != nil }, time.Second, time.Millisecond)
	status = e.Status()
	assert.False(t, status.Active)
	assert.Equal(t, 3, status.Remaining)
	assert.Equal(t, "9000000000", status.LastAlert.EmergencyContact)

	haptics.mu.Lock()
	assert.Equal(t, 3, haptics.calls)
	haptics.mu.Unlock()
	dispatcher.AssertExpectations(t)
}

func TestEmergency_CancelPreventsDispatch(t *testing.T) {
	dispatcher := &MockDispatcher{}
	e := NewEmergency(3, 50*time.Millisecond, dispatcher, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := e.Start(ctx, sosProfile())
	require.NoError(t, err)
	cancel()

	assert.True(t, e.Status().Active)
	assert.True(t, e.Cancel())
	assert.False(t, e.Cancel())

	time.Sleep(200 * time.Millisecond)
	assert.Nil(t, e.Status().LastAlert)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestNotificationDispatcher_NilLogger(t *testing.T) {
	dispatcher := NewNotificationDispatcher(nil)

	assert.NotPanics(t, func() {
		err := dispatcher.Dispatch(context.Background(), Alert{ArogyaID: "AP-482913", Message: EmergencyMessage})
		assert.NoError(t, err)
	})
}
