package services

import (
	"context"
	"testing"
	"time"

	"github.com/agiledragon/gomonkey/v2"
	"github.com/google/uuid"
	model "github.com/nfredmond/project-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePhase(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)
	other := createTenant(t, db, "other", nil)
	project := createProject(t, db, tenant.ID, "Highway 49")
	foreign := createProject(t, db, other.ID, "Elsewhere")

	tests := []struct {
		name    string
		in      PhaseInput
		wantErr error
	}{
		{name: "valid", in: PhaseInput{ProjectID: project.ID, Phase: model.PhaseCON, PedDueDate: ptr("2025-06-30"), DBEGoal: floatPtr(12.5)}},
		{name: "unknown phase", in: PhaseInput{ProjectID: project.ID, Phase: "DESIGN"}, wantErr: ErrInvalidInput},
		{name: "unknown status", in: PhaseInput{ProjectID: project.ID, Phase: model.PhasePE, Status: "done"}, wantErr: ErrInvalidInput},
		{name: "bad date", in: PhaseInput{ProjectID: project.ID, Phase: model.PhasePE, PedDueDate: ptr("06/30/2025")}, wantErr: ErrInvalidInput},
		{name: "negative funds", in: PhaseInput{ProjectID: project.ID, Phase: model.PhasePE, StateFunds: floatPtr(-10)}, wantErr: ErrInvalidInput},
		{name: "dbe goal above 100", in: PhaseInput{ProjectID: project.ID, Phase: model.PhasePE, DBEGoal: floatPtr(101)}, wantErr: ErrInvalidInput},
		{name: "project of another tenant", in: PhaseInput{ProjectID: foreign.ID, Phase: model.PhasePE}, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phase, err := svc.CreatePhase(ctx, tenant.ID, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.PhasePlanned, phase.Status)
			assert.Equal(t, tenant.ID, phase.TenantID)
		})
	}

	phases, err := svc.ListPhases(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, phases, 1)

	require.NoError(t, svc.UpdatePhaseStatus(ctx, tenant.ID, phases[0].ID, model.PhaseAuthorized))
	assert.ErrorIs(t, svc.UpdatePhaseStatus(ctx, other.ID, phases[0].ID, model.PhaseClosed), ErrNotFound)
	assert.ErrorIs(t, svc.UpdatePhaseStatus(ctx, tenant.ID, phases[0].ID, "done"), ErrInvalidInput)
}

func TestCreateInvoice(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)
	project := createProject(t, db, tenant.ID, "Highway 49")

	invoice, err := svc.CreateInvoice(ctx, tenant.ID, InvoiceInput{
		ProjectID:    project.ID,
		Phase:        model.PhasePE,
		PeriodStart:  ptr("2025-01-01"),
		PeriodEnd:    ptr("2025-01-31"),
		TotalAmount:  1000,
		FederalShare: 885.3,
		LocalShare:   114.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", invoice.Status)

	_, err = svc.CreateInvoice(ctx, tenant.ID, InvoiceInput{ProjectID: project.ID, Phase: model.PhasePE, TotalAmount: -5})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateInvoice(ctx, tenant.ID, InvoiceInput{ProjectID: project.ID, Phase: model.PhasePE, SubmittedOn: ptr("yesterday")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	invoices, err := svc.ListInvoices(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestCreateGrant(t *testing.T) {
	ctx := context.Background()
	svc, db, notifier := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)
	project := createProject(t, db, tenant.ID, "Highway 49")

	grant, err := svc.CreateGrant(ctx, tenant.ID, GrantInput{Name: "ATP Cycle 7", ProjectID: &project.ID, Deadline: ptr("2025-06-30")})
	require.NoError(t, err)
	assert.Equal(t, model.StageProspecting, grant.Stage)

	_, err = svc.CreateGrant(ctx, tenant.ID, GrantInput{Name: "RAISE"})
	require.NoError(t, err)

	sent := notifier.all()
	require.Len(t, sent, 2)
	assert.Equal(t, "New grant", sent[0].Title)
	assert.Equal(t, "ATP Cycle 7 was added to the pipeline (deadline 2025-06-30).", sent[0].Message)
	assert.Equal(t, "RAISE was added to the pipeline (deadline TBD).", sent[1].Message)

	tests := []struct {
		name    string
		in      GrantInput
		wantErr error
	}{
		{name: "short name", in: GrantInput{Name: "X"}, wantErr: ErrInvalidInput},
		{name: "unknown stage", in: GrantInput{Name: "STIP", Stage: "won"}, wantErr: ErrInvalidInput},
		{name: "negative request", in: GrantInput{Name: "STIP", RequestedAmount: floatPtr(-1)}, wantErr: ErrInvalidInput},
		{name: "unknown project", in: GrantInput{Name: "STIP", ProjectID: ptr(uuid.NewString())}, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateGrant(ctx, tenant.ID, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Len(t, notifier.all(), 2, "rejected grants are not announced")

	grants, err := svc.ListGrants(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, grant.ID, grants[0].ID, "dated grants come before undated ones")

	require.NoError(t, svc.UpdateGrantStage(ctx, tenant.ID, grant.ID, model.StageSubmitted))
	assert.ErrorIs(t, svc.UpdateGrantStage(ctx, tenant.ID, grant.ID, "won"), ErrInvalidInput)
	assert.ErrorIs(t, svc.UpdateGrantStage(ctx, tenant.ID, uuid.NewString(), model.StageDenied), ErrNotFound)
}

func TestCreateMeeting(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)

	meeting, err := svc.CreateMeeting(ctx, tenant.ID, MeetingInput{Title: "Board meeting", MeetingDate: ptr("2025-04-01T18:00:00-07:00")})
	require.NoError(t, err)
	assert.Equal(t, model.MeetingInternal, meeting.MeetingType)
	require.NotNil(t, meeting.Status)
	assert.Equal(t, "scheduled", *meeting.Status)

	_, err = svc.CreateMeeting(ctx, tenant.ID, MeetingInput{Title: "TAC", MeetingDate: ptr("next week")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateMeeting(ctx, tenant.ID, MeetingInput{Title: "TAC", MeetingType: "party"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.UpdateMeetingStatus(ctx, tenant.ID, meeting.ID, "completed"))
	assert.ErrorIs(t, svc.UpdateMeetingStatus(ctx, tenant.ID, meeting.ID, " "), ErrInvalidInput)

	meetings, err := svc.ListMeetings(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "completed", *meetings[0].Status)
}

func TestCreateRecordsRequest(t *testing.T) {
	patches := gomonkey.ApplyGlobalVar(&timeNow, func() time.Time { return fixedNow })
	defer patches.Reset()

	ctx := context.Background()
	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)

	request, err := svc.CreateRecordsRequest(ctx, tenant.ID, RecordsRequestInput{Requester: "County Tribune", DueOn: ptr("2025-03-15")})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", request.ReceivedOn)
	assert.Equal(t, model.RequestOpen, request.Status)

	_, err = svc.CreateRecordsRequest(ctx, tenant.ID, RecordsRequestInput{Requester: "Q"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateRecordsRequest(ctx, tenant.ID, RecordsRequestInput{Requester: "Resident", DueOn: ptr("3/15")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.UpdateRecordsRequestStatus(ctx, tenant.ID, request.ID, model.RequestFulfilled))
	assert.ErrorIs(t, svc.UpdateRecordsRequestStatus(ctx, tenant.ID, request.ID, "lost"), ErrInvalidInput)

	requests, err := svc.ListRecordsRequests(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, model.RequestFulfilled, requests[0].Status)
}

func TestUpsertEnvironmentalFactor(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)
	project := createProject(t, db, tenant.ID, "Highway 49")
	second := createProject(t, db, tenant.ID, "Transit hub")

	first, err := svc.UpsertEnvironmentalFactor(ctx, tenant.ID, EnvironmentalInput{
		ProjectID: project.ID, Factor: "air_quality", Status: "pending", Significance: ptr("less_than_significant"),
	})
	require.NoError(t, err)

	updated, err := svc.UpsertEnvironmentalFactor(ctx, tenant.ID, EnvironmentalInput{
		ProjectID: project.ID, Factor: "air_quality", Status: "complete", Mitigation: ptr("Dust control plan"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID, "same project and factor updates in place")
	assert.Equal(t, "complete", updated.Status)
	assert.Equal(t, "Dust control plan", *updated.Mitigation)
	assert.Nil(t, updated.Significance)

	_, err = svc.UpsertEnvironmentalFactor(ctx, tenant.ID, EnvironmentalInput{ProjectID: second.ID, Factor: "noise", Status: "pending"})
	require.NoError(t, err)

	all, err := svc.ListEnvironmentalFactors(ctx, tenant.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	forProject, err := svc.ListEnvironmentalFactors(ctx, tenant.ID, project.ID)
	require.NoError(t, err)
	assert.Len(t, forProject, 1)

	_, err = svc.UpsertEnvironmentalFactor(ctx, tenant.ID, EnvironmentalInput{ProjectID: project.ID, Factor: " ", Status: "pending"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpsertEnvironmentalFactor(ctx, tenant.ID, EnvironmentalInput{ProjectID: uuid.NewString(), Factor: "noise", Status: "pending"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSalesTaxPrograms(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)

	program, err := svc.CreateSalesTaxProgram(ctx, tenant.ID, SalesTaxInput{Measure: "Measure T", Revenue: floatPtr(4_200_000)})
	require.NoError(t, err)
	assert.Equal(t, "draft", program.Status)

	_, err = svc.CreateSalesTaxProgram(ctx, tenant.ID, SalesTaxInput{Measure: "Measure X", Expenditures: floatPtr(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.UpdateSalesTaxStatus(ctx, tenant.ID, program.ID, "adopted"))
	assert.ErrorIs(t, svc.UpdateSalesTaxStatus(ctx, tenant.ID, program.ID, ""), ErrInvalidInput)

	programs, err := svc.ListSalesTaxPrograms(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, "adopted", programs[0].Status)
}
