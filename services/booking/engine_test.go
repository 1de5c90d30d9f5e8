package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"carhub/client"
	"carhub/models"

	"go.uber.org/zap"
)

type fakeAPI struct {
	slots     []models.AppointmentSlot
	slotsErr  error
	slotCalls int
	// onSlots runs inside the availability call, before it returns.
	onSlots func()

	created    []models.Appointment
	createErr  error
	updated    []models.Appointment
	updatedIDs []int
	deleted    []int
}

func (f *fakeAPI) AppointmentSlots(ctx context.Context, token, date string) ([]models.AppointmentSlot, error) {
	f.slotCalls++
	if f.onSlots != nil {
		f.onSlots()
	}
	return f.slots, f.slotsErr
}

func (f *fakeAPI) CreateAppointment(ctx context.Context, token string, appt models.Appointment) (*models.Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	appt.ID = 100 + len(f.created)
	appt.Status = models.AppointmentStatusPending
	f.created = append(f.created, appt)
	return &appt, nil
}

func (f *fakeAPI) UpdateAppointment(ctx context.Context, token string, id int, appt models.Appointment) (*models.Appointment, error) {
	appt.ID = id
	f.updated = append(f.updated, appt)
	f.updatedIDs = append(f.updatedIDs, id)
	return &appt, nil
}

func (f *fakeAPI) DeleteAppointment(ctx context.Context, token string, id int) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestEngine(api *fakeAPI) *Engine {
	e := NewEngine(NewMemoryFormStore(), api, zap.NewNop())
	e.Now = func() time.Time {
		return time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	}
	return e
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestDateChangeWithStationAndServiceFetchesOnce(t *testing.T) {
	api := &fakeAPI{slots: []models.AppointmentSlot{{ID: 1, Time: "09:00"}, {ID: 2, Time: "10:00"}}}
	e := newTestEngine(api)
	ctx := context.Background()

	form, err := e.Start(ctx, 5, 3)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	form, err = e.Update(ctx, "tok", form.ID, FormPatch{Date: strPtr("2025-01-10")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if api.slotCalls != 1 {
		t.Fatalf("expected exactly one slot fetch, got %d", api.slotCalls)
	}
	if form.State() != StateSlotsLoaded {
		t.Fatalf("expected slots_loaded, got %q", form.State())
	}
	if len(form.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(form.Slots))
	}
}

func TestDateChangeWithoutStationDoesNotFetch(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEngine(api)
	ctx := context.Background()

	form, err := e.Start(ctx, 0, 0)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if form.State() != StateIdle {
		t.Fatalf("expected idle, got %q", form.State())
	}

	if _, err := e.Update(ctx, "tok", form.ID, FormPatch{Date: strPtr("2025-01-10")}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if api.slotCalls != 0 {
		t.Fatalf("expected no slot fetch without station and service, got %d", api.slotCalls)
	}
}

func TestStationChangeWithoutDateDoesNotFetch(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 0, 0)
	if _, err := e.Update(ctx, "tok", form.ID, FormPatch{ServiceStation: intPtr(5), ServiceType: intPtr(3)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if api.slotCalls != 0 {
		t.Fatalf("expected no fetch on station/service change, got %d", api.slotCalls)
	}
}

func TestEmptySlotResultClearsSelection(t *testing.T) {
	api := &fakeAPI{slots: []models.AppointmentSlot{{ID: 1, Time: "09:00"}}}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 5, 3)
	form, err := e.Update(ctx, "tok", form.ID, FormPatch{Date: strPtr("2025-01-10")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := e.SelectSlot(ctx, form.ID, 1); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	api.slots = nil
	form, err = e.Update(ctx, "tok", form.ID, FormPatch{Date: strPtr("2025-01-11")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if form.SelectedSlot != nil {
		t.Fatalf("expected empty result to clear the selected slot")
	}
}

func TestStaleSlotResponseDiscarded(t *testing.T) {
	api := &fakeAPI{slots: []models.AppointmentSlot{{ID: 9, Time: "08:00"}}}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 5, 3)
	formID := form.ID

	// While the fetch for 2025-01-10 is in flight, a newer fetch is issued:
	// simulated by bumping the stored stamp mid-call.
	api.onSlots = func() {
		current, err := e.Store.Get(ctx, formID)
		if err != nil {
			t.Fatalf("store get failed: %v", err)
		}
		current.SlotFetchSeq++
		if err := e.Store.Save(ctx, current); err != nil {
			t.Fatalf("store save failed: %v", err)
		}
	}

	form, err := e.Update(ctx, "tok", formID, FormPatch{Date: strPtr("2025-01-10")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if form.SlotsLoaded || len(form.Slots) != 0 {
		t.Fatalf("stale response must not populate slots, got %+v", form.Slots)
	}
}

func TestSlotFetchUnauthorizedPropagates(t *testing.T) {
	api := &fakeAPI{slotsErr: client.ErrUnauthorized}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 5, 3)
	_, err := e.Update(ctx, "expired", form.ID, FormPatch{Date: strPtr("2025-01-10")})
	if !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized to surface, got %v", err)
	}

	// The form must not pretend the fetch completed.
	form, getErr := e.Get(ctx, form.ID)
	if getErr != nil {
		t.Fatalf("get failed: %v", getErr)
	}
	if form.SlotsLoaded {
		t.Fatalf("rejected fetch must not mark slots loaded")
	}
}

func TestStartEditUnauthorizedPropagates(t *testing.T) {
	api := &fakeAPI{slotsErr: client.ErrUnauthorized}
	e := newTestEngine(api)

	appt := models.Appointment{
		ID:              55,
		ServiceStation:  5,
		ServiceType:     3,
		AppointmentDate: "2025-01-12",
		Status:          models.AppointmentStatusPending,
	}
	if _, err := e.StartEdit(context.Background(), "expired", appt); !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized from the prefetch, got %v", err)
	}
}

func TestSlotFetchTransientErrorDegrades(t *testing.T) {
	api := &fakeAPI{slotsErr: errors.New("upstream request failed: connection refused")}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 5, 3)
	form, err := e.Update(ctx, "tok", form.ID, FormPatch{Date: strPtr("2025-01-10")})
	if err != nil {
		t.Fatalf("transient failure must degrade, not error: %v", err)
	}
	if !form.SlotsLoaded || len(form.Slots) != 0 {
		t.Fatalf("expected an empty loaded slot list, got %+v", form)
	}
}

func TestSelectSlotMustBeAvailable(t *testing.T) {
	api := &fakeAPI{slots: []models.AppointmentSlot{{ID: 1, Time: "09:00"}}}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 5, 3)
	form, _ = e.Update(ctx, "tok", form.ID, FormPatch{Date: strPtr("2025-01-10")})

	if _, err := e.SelectSlot(ctx, form.ID, 99); !errors.Is(err, ErrSlotNotAvailable) {
		t.Fatalf("expected ErrSlotNotAvailable, got %v", err)
	}
}

func TestSubmitCreatesOnceAndResetsForm(t *testing.T) {
	api := &fakeAPI{slots: []models.AppointmentSlot{{ID: 1, Time: "09:00"}, {ID: 2, Time: "10:00"}}}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 5, 3)
	form, _ = e.Update(ctx, "tok", form.ID, FormPatch{
		Date:        strPtr("2025-01-10"),
		Notes:       strPtr("squeaky brakes"),
		PlateNumber: strPtr("ABC-123"),
		VIN:         strPtr("1HGCM82633A004352"),
	})
	form, _ = e.SelectSlot(ctx, form.ID, 1)
	if form.State() != StateSlotSelected {
		t.Fatalf("expected slot_selected, got %q", form.State())
	}

	result, err := e.Submit(ctx, "tok", form.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(api.created) != 1 {
		t.Fatalf("expected exactly one create call, got %d", len(api.created))
	}
	created := api.created[0]
	if created.AppointmentTime != "09:00" {
		t.Fatalf("expected slot time 09:00, got %q", created.AppointmentTime)
	}
	if created.PlateNumber != "ABC-123" || created.VIN != "1HGCM82633A004352" {
		t.Fatalf("plate/vin not forwarded: %+v", created)
	}
	if created.SlotID != 1 {
		t.Fatalf("expected slot id 1, got %d", created.SlotID)
	}
	if result.ID == 0 {
		t.Fatalf("expected upstream record back")
	}

	// Every field returns to its initial empty value and the dialog closes.
	form, err = e.Get(ctx, form.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !form.Closed {
		t.Fatalf("expected dialog closed after success")
	}
	if form.ServiceStation != 0 || form.ServiceType != 0 || form.Date != "" ||
		form.Notes != "" || form.PlateNumber != "" || form.VIN != "" ||
		form.SelectedSlot != nil || len(form.Slots) != 0 {
		t.Fatalf("expected reset form, got %+v", form)
	}
}

// failingSaveStore starts refusing saves after a set number of successes.
type failingSaveStore struct {
	FormStore
	remaining int
}

func (s *failingSaveStore) Save(ctx context.Context, form *FormSession) error {
	if s.remaining <= 0 {
		return errors.New("redis: connection pool exhausted")
	}
	s.remaining--
	return s.FormStore.Save(ctx, form)
}

func TestSubmitSucceedsWhenResetPersistFails(t *testing.T) {
	api := &fakeAPI{slots: []models.AppointmentSlot{{ID: 1, Time: "09:00"}}}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 5, 3)
	form, _ = e.Update(ctx, "tok", form.ID, FormPatch{
		Date:        strPtr("2025-01-10"),
		PlateNumber: strPtr("ABC-123"),
		VIN:         strPtr("1HGCM82633A004352"),
	})
	form, _ = e.SelectSlot(ctx, form.ID, 1)

	// Allow the submit-guard save through, fail the reset persist.
	e.Store = &failingSaveStore{FormStore: e.Store, remaining: 1}

	result, err := e.Submit(ctx, "tok", form.ID)
	if err != nil {
		t.Fatalf("the booking went through upstream; submit must not error: %v", err)
	}
	if result == nil || len(api.created) != 1 {
		t.Fatalf("expected the created appointment back, got %v (creates: %d)", result, len(api.created))
	}
}

func TestSubmitRejectedWhileInFlight(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 5, 3)
	form.Submitting = true
	if err := e.Store.Save(ctx, form); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := e.Submit(ctx, "tok", form.ID); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}
	if len(api.created) != 0 {
		t.Fatalf("no create call may be issued while submitting")
	}
}

func TestSubmitFailureKeepsFormPopulated(t *testing.T) {
	api := &fakeAPI{
		slots:     []models.AppointmentSlot{{ID: 1, Time: "09:00"}},
		createErr: &client.APIError{Status: 400, Message: "slot already taken"},
	}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 5, 3)
	form, _ = e.Update(ctx, "tok", form.ID, FormPatch{
		Date:        strPtr("2025-01-10"),
		PlateNumber: strPtr("ABC-123"),
		VIN:         strPtr("1HGCM82633A004352"),
	})
	form, _ = e.SelectSlot(ctx, form.ID, 1)

	_, err := e.Submit(ctx, "tok", form.ID)
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "slot already taken" {
		t.Fatalf("expected upstream error surfaced, got %v", err)
	}

	form, _ = e.Get(ctx, form.ID)
	if form.Closed {
		t.Fatalf("dialog must stay open on failure")
	}
	if form.PlateNumber != "ABC-123" || form.SelectedSlot == nil {
		t.Fatalf("form must stay populated for correction, got %+v", form)
	}
	if form.State() != StateSlotSelected {
		t.Fatalf("expected state back at slot_selected, got %q", form.State())
	}
}

func TestSubmitValidation(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEngine(api)
	ctx := context.Background()

	cases := []struct {
		name  string
		patch FormPatch
	}{
		{"missing plate", FormPatch{Date: strPtr("2025-01-10"), VIN: strPtr("1HGCM82633A004352")}},
		{"missing vin", FormPatch{Date: strPtr("2025-01-10"), PlateNumber: strPtr("ABC-123")}},
		{"past date", FormPatch{Date: strPtr("2025-01-01"), PlateNumber: strPtr("ABC-123"), VIN: strPtr("1HGCM82633A004352")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form, _ := e.Start(ctx, 5, 3)
			if _, err := e.Update(ctx, "tok", form.ID, tc.patch); err != nil {
				t.Fatalf("update failed: %v", err)
			}
			_, err := e.Submit(ctx, "tok", form.ID)
			var formErr *FormError
			if !errors.As(err, &formErr) {
				t.Fatalf("expected FormError, got %v", err)
			}
			if len(api.created) != 0 {
				t.Fatalf("invalid form must not reach the upstream")
			}
		})
	}
}

func TestSubmitAcceptsToday(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 5, 3)
	if _, err := e.Update(ctx, "tok", form.ID, FormPatch{
		Date:        strPtr("2025-01-08"),
		ManualTime:  strPtr("14:00"),
		PlateNumber: strPtr("ABC-123"),
		VIN:         strPtr("1HGCM82633A004352"),
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := e.Submit(ctx, "tok", form.ID); err != nil {
		t.Fatalf("today must be a valid date: %v", err)
	}
	if len(api.created) != 1 || api.created[0].AppointmentTime != "14:00" {
		t.Fatalf("expected manual time forwarded, got %+v", api.created)
	}
}

func TestEditModePrepopulatesAndUpdates(t *testing.T) {
	api := &fakeAPI{slots: []models.AppointmentSlot{{ID: 7, Time: "11:00"}}}
	e := newTestEngine(api)
	ctx := context.Background()

	appt := models.Appointment{
		ID:              55,
		ServiceStation:  5,
		ServiceType:     3,
		AppointmentDate: "2025-01-12",
		AppointmentTime: "10:00",
		Notes:           "old notes",
		PlateNumber:     "ABC-123",
		VIN:             "1HGCM82633A004352",
		SlotID:          4,
		Status:          models.AppointmentStatusPending,
	}
	form, err := e.StartEdit(ctx, "tok", appt)
	if err != nil {
		t.Fatalf("start edit failed: %v", err)
	}
	if form.Mode != ModeEdit || form.AppointmentID != 55 {
		t.Fatalf("edit mode not carried: %+v", form)
	}
	if form.SelectedSlot == nil || form.SelectedSlot.ID != 4 {
		t.Fatalf("expected carried slot id, got %+v", form.SelectedSlot)
	}
	if api.slotCalls != 1 {
		t.Fatalf("expected slot fetch for the appointment date, got %d", api.slotCalls)
	}

	if _, err := e.Submit(ctx, "tok", form.ID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(api.updated) != 1 || api.updatedIDs[0] != 55 {
		t.Fatalf("expected one update to appointment 55, got %+v", api.updatedIDs)
	}
	if len(api.created) != 0 {
		t.Fatalf("edit mode must not create")
	}
	if api.updated[0].AppointmentTime != "10:00" {
		t.Fatalf("expected carried slot time, got %q", api.updated[0].AppointmentTime)
	}
}

func TestCancelRequiresConfirmation(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEngine(api)
	ctx := context.Background()

	if err := e.CancelAppointment(ctx, "tok", 9, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	if len(api.deleted) != 0 {
		t.Fatalf("unconfirmed cancel must not delete")
	}

	if err := e.CancelAppointment(ctx, "tok", 9, true); err != nil {
		t.Fatalf("confirmed cancel failed: %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != 9 {
		t.Fatalf("expected delete of appointment 9, got %+v", api.deleted)
	}
}

func TestWorkflowStates(t *testing.T) {
	api := &fakeAPI{slots: []models.AppointmentSlot{{ID: 1, Time: "09:00"}}}
	e := newTestEngine(api)
	ctx := context.Background()

	form, _ := e.Start(ctx, 0, 0)
	if form.State() != StateIdle {
		t.Fatalf("expected idle, got %q", form.State())
	}

	form, _ = e.Update(ctx, "tok", form.ID, FormPatch{ServiceStation: intPtr(5)})
	if form.State() != StateStationSelected {
		t.Fatalf("expected station_selected, got %q", form.State())
	}

	form, _ = e.Update(ctx, "tok", form.ID, FormPatch{ServiceType: intPtr(3)})
	if form.State() != StateServiceSelected {
		t.Fatalf("expected service_selected, got %q", form.State())
	}

	form, _ = e.Update(ctx, "tok", form.ID, FormPatch{Date: strPtr("2025-01-10")})
	if form.State() != StateSlotsLoaded {
		t.Fatalf("expected slots_loaded, got %q", form.State())
	}

	form, _ = e.SelectSlot(ctx, form.ID, 1)
	if form.State() != StateSlotSelected {
		t.Fatalf("expected slot_selected, got %q", form.State())
	}
}
