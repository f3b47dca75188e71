package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

func dayPtr(day int) *int {
	return &day
}

func boolPtr(v bool) *bool {
	return &v
}

func clock(raw string) timeofday.TimeOfDay {
	return timeofday.MustParse(raw)
}

func availabilityWindow(owner models.Owner, day int, start, end string) models.Availability {
	return models.Availability{
		ID:        owner.ID + "-" + timeofday.DayName(day) + "-" + start,
		OwnerKind: owner.Kind,
		OwnerID:   owner.ID,
		Day:       day,
		StartTime: clock(start),
		EndTime:   clock(end),
	}
}

func booking(id, clientID, staffID string, day int, start, end string) models.Appointment {
	return models.Appointment{ID: id, ClientID: clientID, StaffID: staffID, Day: day, StartTime: clock(start), EndTime: clock(end), InClinic: true}
}

type clientRepoStub struct {
	items     map[string]models.Client
	past      map[string][]string
	replaced  []string
	createErr error
}

func newClientRepoStub(clients ...models.Client) *clientRepoStub {
	stub := &clientRepoStub{items: map[string]models.Client{}, past: map[string][]string{}}
	for _, c := range clients {
		stub.items[c.ID] = c
	}
	return stub
}

func (s *clientRepoStub) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	items, _ := s.ListAll(ctx)
	return items, len(items), nil
}

func (s *clientRepoStub) ListAll(ctx context.Context) ([]models.Client, error) {
	items := make([]models.Client, 0, len(s.items))
	for _, c := range s.items {
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *clientRepoStub) FindByID(ctx context.Context, id string) (*models.Client, error) {
	c, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (s *clientRepoStub) Create(ctx context.Context, client *models.Client) error {
	if s.createErr != nil {
		return s.createErr
	}
	if client.ID == "" {
		client.ID = "client-new"
	}
	s.items[client.ID] = *client
	return nil
}

func (s *clientRepoStub) Update(ctx context.Context, client *models.Client) error {
	if _, ok := s.items[client.ID]; !ok {
		return sql.ErrNoRows
	}
	s.items[client.ID] = *client
	return nil
}

func (s *clientRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *clientRepoStub) ListPastStaffIDs(ctx context.Context, clientID string) ([]string, error) {
	return s.past[clientID], nil
}

func (s *clientRepoStub) ReplacePastStaff(ctx context.Context, clientID string, staffIDs []string) error {
	s.replaced = staffIDs
	s.past[clientID] = staffIDs
	return nil
}

type staffRepoStub struct {
	items map[string]models.Staff
}

func newStaffRepoStub(staff ...models.Staff) *staffRepoStub {
	stub := &staffRepoStub{items: map[string]models.Staff{}}
	for _, m := range staff {
		stub.items[m.ID] = m
	}
	return stub
}

func (s *staffRepoStub) sorted() []models.Staff {
	items := make([]models.Staff, 0, len(s.items))
	for _, m := range s.items {
		items = append(items, m)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (s *staffRepoStub) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	items := s.sorted()
	return items, len(items), nil
}

func (s *staffRepoStub) ListEligible(ctx context.Context, minSkill int, requiresLanguage bool) ([]models.Staff, error) {
	var result []models.Staff
	for _, m := range s.sorted() {
		if m.SkillLevel < minSkill {
			continue
		}
		if requiresLanguage && !m.SpeaksLanguage {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

func (s *staffRepoStub) ListByIDs(ctx context.Context, ids []string) ([]models.Staff, error) {
	var result []models.Staff
	for _, id := range ids {
		if m, ok := s.items[id]; ok {
			result = append(result, m)
		}
	}
	return result, nil
}

func (s *staffRepoStub) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	m, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (s *staffRepoStub) Create(ctx context.Context, member *models.Staff) error {
	if member.ID == "" {
		member.ID = "staff-new"
	}
	s.items[member.ID] = *member
	return nil
}

func (s *staffRepoStub) Update(ctx context.Context, member *models.Staff) error {
	if _, ok := s.items[member.ID]; !ok {
		return sql.ErrNoRows
	}
	s.items[member.ID] = *member
	return nil
}

func (s *staffRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

type availabilityRepoStub struct {
	items     []models.Availability
	createErr error
	requested [][]models.Owner
}

func (s *availabilityRepoStub) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, error) {
	var result []models.Availability
	for _, w := range s.items {
		if filter.OwnerKind != "" && w.OwnerKind != filter.OwnerKind {
			continue
		}
		if filter.OwnerID != "" && w.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Day != nil && w.Day != *filter.Day {
			continue
		}
		result = append(result, w)
	}
	return result, nil
}

func (s *availabilityRepoStub) ListByOwners(ctx context.Context, owners []models.Owner) ([]models.Availability, error) {
	s.requested = append(s.requested, owners)
	wanted := make(map[models.Owner]bool, len(owners))
	for _, o := range owners {
		wanted[o] = true
	}
	var result []models.Availability
	for _, w := range s.items {
		if wanted[w.Owner()] {
			result = append(result, w)
		}
	}
	return result, nil
}

func (s *availabilityRepoStub) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	for _, w := range s.items {
		if w.ID == id {
			item := w
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *availabilityRepoStub) Create(ctx context.Context, item *models.Availability) error {
	if s.createErr != nil {
		return s.createErr
	}
	if item.ID == "" {
		item.ID = "window-new"
	}
	s.items = append(s.items, *item)
	return nil
}

func (s *availabilityRepoStub) Update(ctx context.Context, item *models.Availability) error {
	for i, w := range s.items {
		if w.ID == item.ID {
			s.items[i] = *item
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *availabilityRepoStub) Delete(ctx context.Context, id string) error {
	for i, w := range s.items {
		if w.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type appointmentRepoStub struct {
	items     []models.Appointment
	createErr error
	failAfter int
	created   []models.Appointment
}

func (s *appointmentRepoStub) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	return s.items, len(s.items), nil
}

func (s *appointmentRepoStub) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return append([]models.Appointment(nil), s.items...), nil
}

func (s *appointmentRepoStub) ListByParticipants(ctx context.Context, clientIDs, staffIDs []string) ([]models.Appointment, error) {
	clients := map[string]bool{}
	for _, id := range clientIDs {
		clients[id] = true
	}
	staff := map[string]bool{}
	for _, id := range staffIDs {
		staff[id] = true
	}
	var result []models.Appointment
	for _, a := range s.items {
		if clients[a.ClientID] || staff[a.StaffID] {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *appointmentRepoStub) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	for _, a := range s.items {
		if a.ID == id {
			item := a
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Create fails with createErr once failAfter appointments were written.
func (s *appointmentRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, item *models.Appointment) error {
	if s.createErr != nil && len(s.created) >= s.failAfter {
		return s.createErr
	}
	if item.ID == "" {
		item.ID = "appt-" + timeofday.DayName(item.Day)
	}
	s.created = append(s.created, *item)
	return nil
}

func (s *appointmentRepoStub) Update(ctx context.Context, item *models.Appointment) error {
	for i, a := range s.items {
		if a.ID == item.ID {
			s.items[i] = *item
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *appointmentRepoStub) Delete(ctx context.Context, id string) error {
	for i, a := range s.items {
		if a.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type blockRepoStub struct {
	items []models.Block
}

func (s *blockRepoStub) List(ctx context.Context) ([]models.Block, error) {
	return s.items, nil
}

func (s *blockRepoStub) FindByID(ctx context.Context, id string) (*models.Block, error) {
	for _, b := range s.items {
		if b.ID == id {
			item := b
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *blockRepoStub) Create(ctx context.Context, block *models.Block) error {
	if block.ID == "" {
		block.ID = "block-" + strings.ToLower(block.Label)
	}
	s.items = append(s.items, *block)
	return nil
}

func (s *blockRepoStub) Update(ctx context.Context, block *models.Block) error {
	for i, b := range s.items {
		if b.ID == block.ID {
			s.items[i] = *block
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *blockRepoStub) Delete(ctx context.Context, id string) error {
	for i, b := range s.items {
		if b.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type invalidationRecorder struct {
	owners []models.Owner
	kinds  []models.OwnerKind
}

func (r *invalidationRecorder) Invalidate(ctx context.Context, owners ...models.Owner) {
	r.owners = append(r.owners, owners...)
}

func (r *invalidationRecorder) InvalidateKind(ctx context.Context, kind models.OwnerKind) {
	r.kinds = append(r.kinds, kind)
}

type matchingMetricsRecorder struct {
	operations []string
	warnings   map[string]int
	dbLabels   []string
}

func (m *matchingMetricsRecorder) ObserveDBQuery(label string, duration time.Duration) {
	m.dbLabels = append(m.dbLabels, label)
}

func (m *matchingMetricsRecorder) ObserveMatching(operation string, results int, duration time.Duration) {
	m.operations = append(m.operations, operation)
}

func (m *matchingMetricsRecorder) RecordWarnings(stage string, count int) {
	if m.warnings == nil {
		m.warnings = map[string]int{}
	}
	m.warnings[stage] += count
}
