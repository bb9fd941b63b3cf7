package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics
	Store    *StoreHealthMetrics

	studentsCreated  metric.Int64Counter
	studentsReplaced metric.Int64Counter
	studentsDeleted  metric.Int64Counter
	subjectsCreated  metric.Int64Counter
	subjectsDeleted  metric.Int64Counter
	usersSignedUp    metric.Int64Counter
	logins           metric.Int64Counter
	eventsPublished  metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	storeHealth, err := NewStoreHealthMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Database: database, Store: storeHealth}

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
		unit   string
	}{
		{&m.studentsCreated, "school.students.created", "Total number of students created", "{student}"},
		{&m.studentsReplaced, "school.students.replaced", "Total number of student replacements", "{student}"},
		{&m.studentsDeleted, "school.students.deleted", "Total number of student deletions", "{student}"},
		{&m.subjectsCreated, "school.subjects.created", "Total number of subjects created", "{subject}"},
		{&m.subjectsDeleted, "school.subjects.deleted", "Total number of subject deletions", "{subject}"},
		{&m.usersSignedUp, "school.users.signed_up", "Total number of user signups", "{user}"},
		{&m.logins, "school.logins", "Login attempts by outcome", "{attempt}"},
		{&m.eventsPublished, "school.events.published", "Change events published by outcome", "{event}"},
	}

	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}, Store: &StoreHealthMetrics{}}
}

func add(ctx context.Context, c metric.Int64Counter, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordStudentCreated(ctx context.Context) {
	if m != nil {
		add(ctx, m.studentsCreated)
	}
}

func (m *Metrics) RecordStudentReplaced(ctx context.Context) {
	if m != nil {
		add(ctx, m.studentsReplaced)
	}
}

func (m *Metrics) RecordStudentDeleted(ctx context.Context) {
	if m != nil {
		add(ctx, m.studentsDeleted)
	}
}

func (m *Metrics) RecordSubjectCreated(ctx context.Context) {
	if m != nil {
		add(ctx, m.subjectsCreated)
	}
}

func (m *Metrics) RecordSubjectDeleted(ctx context.Context) {
	if m != nil {
		add(ctx, m.subjectsDeleted)
	}
}

func (m *Metrics) RecordUserSignedUp(ctx context.Context) {
	if m != nil {
		add(ctx, m.usersSignedUp)
	}
}

// RecordLogin counts a login attempt; outcome is "success" or "failure".
func (m *Metrics) RecordLogin(ctx context.Context, outcome string) {
	if m != nil {
		add(ctx, m.logins, attribute.String("outcome", outcome))
	}
}

func (m *Metrics) RecordEventPublished(ctx context.Context, eventType string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	add(ctx, m.eventsPublished, attribute.String("type", eventType), attribute.String("outcome", outcome))
}
