package payapp_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gcpanel/costcore/internal/payapp"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name          string
		params        payapp.CreateParams
		setupMock     func(m *payapp.MockRepository)
		wantErr       error
		wantRetention string
		wantNet       string
	}

	tests := []testCase{
		{
			name: "StandardRetention",
			params: payapp.CreateParams{
				ApplicationNumber: 8,
				AmountRequested:   dec("2847500"),
				RetentionRate:     dec("5.0"),
			},
			setupMock: func(m *payapp.MockRepository) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantRetention: "142375.00",
			wantNet:       "2705125.00",
		},
		{
			name: "ZeroRetention",
			params: payapp.CreateParams{
				ApplicationNumber: 9,
				AmountRequested:   dec("1000"),
				RetentionRate:     decimal.Zero,
			},
			setupMock: func(m *payapp.MockRepository) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantRetention: "0",
			wantNet:       "1000",
		},
		{
			name: "ZeroAmount",
			params: payapp.CreateParams{
				ApplicationNumber: 10,
				AmountRequested:   decimal.Zero,
				RetentionRate:     dec("5"),
			},
			wantErr: payapp.ErrInvalidAmount,
		},
		{
			name: "RetentionAboveCap",
			params: payapp.CreateParams{
				ApplicationNumber: 11,
				AmountRequested:   dec("1000"),
				RetentionRate:     dec("15.5"),
			},
			wantErr: payapp.ErrInvalidAmount,
		},
		{
			name: "NegativeRetention",
			params: payapp.CreateParams{
				ApplicationNumber: 12,
				AmountRequested:   dec("1000"),
				RetentionRate:     dec("-1"),
			},
			wantErr: payapp.ErrInvalidAmount,
		},
		{
			name: "DuplicateNumber",
			params: payapp.CreateParams{
				ApplicationNumber: 8,
				AmountRequested:   dec("1000"),
				RetentionRate:     dec("5"),
			},
			setupMock: func(m *payapp.MockRepository) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).Return(payapp.ErrDuplicateNumber)
			},
			wantErr: payapp.ErrDuplicateNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := payapp.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := payapp.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, payapp.StatusDraft, got.Status)
			assert.True(t, got.RetentionAmount.Equal(dec(tt.wantRetention)),
				"retention %s, want %s", got.RetentionAmount, tt.wantRetention)
			assert.True(t, got.NetPayment.Equal(dec(tt.wantNet)),
				"net %s, want %s", got.NetPayment, tt.wantNet)

			// Conservation: retention + net == requested, to the cent.
			assert.True(t, got.RetentionAmount.Add(got.NetPayment).Equal(got.AmountRequested))
		})
	}
}

func draftApp(number int64) *payapp.PaymentApplication {
	return &payapp.PaymentApplication{
		ApplicationNumber: number,
		AmountRequested:   dec("2847500"),
		RetentionRate:     dec("5.0"),
		RetentionAmount:   dec("142375.00"),
		NetPayment:        dec("2705125.00"),
		Status:            payapp.StatusDraft,
		Version:           1,
	}
}

func TestService_FullLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	app := draftApp(8)

	repo := payapp.NewMockRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), int64(8)).Return(app, nil).Times(3)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	svc := payapp.NewService(repo)
	ctx := context.Background()

	got, err := svc.Submit(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, payapp.StatusSubmitted, got.Status)
	assert.NotNil(t, got.SubmittedDate)

	got, err = svc.Approve(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, payapp.StatusApproved, got.Status)
	assert.NotNil(t, got.ApprovedDate)

	got, err = svc.MarkPaid(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, payapp.StatusPaid, got.Status)
	assert.NotNil(t, got.PaidDate)

	// The financial derivation never moved.
	assert.True(t, got.RetentionAmount.Add(got.NetPayment).Equal(got.AmountRequested))
}

func TestService_IllegalTransitions(t *testing.T) {
	type testCase struct {
		name   string
		status payapp.Status
		call   func(svc *payapp.Service, ctx context.Context) error
	}

	tests := []testCase{
		{
			name:   "DraftStraightToPaid",
			status: payapp.StatusDraft,
			call: func(svc *payapp.Service, ctx context.Context) error {
				_, err := svc.MarkPaid(ctx, 1)
				return err
			},
		},
		{
			name:   "DraftApprove",
			status: payapp.StatusDraft,
			call: func(svc *payapp.Service, ctx context.Context) error {
				_, err := svc.Approve(ctx, 1)
				return err
			},
		},
		{
			name:   "DraftReject",
			status: payapp.StatusDraft,
			call: func(svc *payapp.Service, ctx context.Context) error {
				_, err := svc.Reject(ctx, 1)
				return err
			},
		},
		{
			name:   "SubmittedStraightToPaid",
			status: payapp.StatusSubmitted,
			call: func(svc *payapp.Service, ctx context.Context) error {
				_, err := svc.MarkPaid(ctx, 1)
				return err
			},
		},
		{
			name:   "PaidResubmit",
			status: payapp.StatusPaid,
			call: func(svc *payapp.Service, ctx context.Context) error {
				_, err := svc.Submit(ctx, 1)
				return err
			},
		},
		{
			name:   "RejectedApprove",
			status: payapp.StatusRejected,
			call: func(svc *payapp.Service, ctx context.Context) error {
				_, err := svc.Approve(ctx, 1)
				return err
			},
		},
		{
			name:   "ApprovedBackToSubmitted",
			status: payapp.StatusApproved,
			call: func(svc *payapp.Service, ctx context.Context) error {
				_, err := svc.Submit(ctx, 1)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			app := draftApp(1)
			app.Status = tt.status

			// No Update expectation: an illegal move must not write.
			repo := payapp.NewMockRepository(ctrl)
			repo.EXPECT().Get(gomock.Any(), int64(1)).Return(app, nil)

			svc := payapp.NewService(repo)

			err := tt.call(svc, context.Background())
			assert.ErrorIs(t, err, payapp.ErrIllegalTransition)

			var ite *payapp.IllegalTransitionError
			require.ErrorAs(t, err, &ite)
			assert.Equal(t, tt.status, ite.Current)
		})
	}
}

func TestService_RejectFromSubmittedAndApproved(t *testing.T) {
	for _, status := range []payapp.Status{payapp.StatusSubmitted, payapp.StatusApproved} {
		t.Run(string(status), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			app := draftApp(2)
			app.Status = status

			repo := payapp.NewMockRepository(ctrl)
			repo.EXPECT().Get(gomock.Any(), int64(2)).Return(app, nil)
			repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

			svc := payapp.NewService(repo)

			got, err := svc.Reject(context.Background(), 2)
			require.NoError(t, err)
			assert.Equal(t, payapp.StatusRejected, got.Status)
			assert.NotNil(t, got.RejectedDate)
		})
	}
}

func TestService_UpdateDraft(t *testing.T) {
	t.Run("DraftIsEditable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := payapp.NewMockRepository(ctrl)
		repo.EXPECT().Get(gomock.Any(), int64(3)).Return(draftApp(3), nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		svc := payapp.NewService(repo)

		got, err := svc.UpdateDraft(context.Background(), 3, payapp.UpdateParams{
			AmountRequested: dec("3000000"),
			RetentionRate:   dec("10"),
		})
		require.NoError(t, err)
		assert.True(t, got.RetentionAmount.Equal(dec("300000")), "retention %s", got.RetentionAmount)
		assert.True(t, got.NetPayment.Equal(dec("2700000")), "net %s", got.NetPayment)
	})

	t.Run("SubmittedIsImmutable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		app := draftApp(4)
		app.Status = payapp.StatusSubmitted

		repo := payapp.NewMockRepository(ctrl)
		repo.EXPECT().Get(gomock.Any(), int64(4)).Return(app, nil)

		svc := payapp.NewService(repo)

		_, err := svc.UpdateDraft(context.Background(), 4, payapp.UpdateParams{
			AmountRequested: dec("1"),
			RetentionRate:   dec("5"),
		})
		assert.ErrorIs(t, err, payapp.ErrImmutable)
	})
}

func TestService_ByStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	submitted := payapp.StatusSubmitted

	repo := payapp.NewMockRepository(ctrl)
	repo.EXPECT().List(gomock.Any(), &submitted).Return([]*payapp.PaymentApplication{draftApp(1)}, nil)

	svc := payapp.NewService(repo)

	apps, err := svc.ByStatus(context.Background(), payapp.StatusSubmitted)
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	_, err = svc.ByStatus(context.Background(), payapp.Status("Archived"))
	assert.Error(t, err)
}
