package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/events"
	"github.com/campus-kit/complaint-service/internal/repository"
)

// The fakes below satisfy the repository interfaces with in-memory maps. The
// tx argument is ignored; services pass whatever transaction the runner gives
// them, and the fake runner hands out nil.

type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		step: time.Millisecond,
	}
}

func (c *fakeClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

type fakeTxRunner struct {
	calls int
}

func (r *fakeTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	r.calls++
	return fn(ctx, nil)
}

type fakeComplaintRepo struct {
	clock      *fakeClock
	complaints map[string]*domain.Complaint
	nextID     int
}

func newFakeComplaintRepo(clock *fakeClock) *fakeComplaintRepo {
	return &fakeComplaintRepo{clock: clock, complaints: map[string]*domain.Complaint{}}
}

func copyComplaint(c *domain.Complaint) *domain.Complaint {
	dup := *c
	dup.Tags = append([]string(nil), c.Tags...)
	return &dup
}

func (f *fakeComplaintRepo) Create(_ context.Context, _ pgx.Tx, complaint *domain.Complaint) error {
	f.nextID++
	complaint.ID = fmt.Sprintf("complaint-%d", f.nextID)
	complaint.CreatedAt = f.clock.next()
	complaint.UpdatedAt = complaint.CreatedAt
	f.complaints[complaint.ID] = copyComplaint(complaint)
	return nil
}

func (f *fakeComplaintRepo) Update(_ context.Context, _ pgx.Tx, complaint *domain.Complaint) error {
	if _, ok := f.complaints[complaint.ID]; !ok {
		return pgx.ErrNoRows
	}
	complaint.UpdatedAt = f.clock.next()
	f.complaints[complaint.ID] = copyComplaint(complaint)
	return nil
}

func (f *fakeComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	complaint, ok := f.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyComplaint(complaint), nil
}

func (f *fakeComplaintRepo) GetForUpdate(ctx context.Context, _ pgx.Tx, id string) (*domain.Complaint, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeComplaintRepo) ListWithFilter(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	statusSet := map[domain.ComplaintStatus]struct{}{}
	for _, status := range filter.Statuses {
		statusSet[status] = struct{}{}
	}
	var result []domain.Complaint
	for _, complaint := range f.complaints {
		if filter.StudentID != nil && complaint.StudentID != *filter.StudentID {
			continue
		}
		if filter.AssignedTo != nil && (complaint.AssignedTo == nil || *complaint.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if len(statusSet) > 0 {
			if _, ok := statusSet[complaint.Status]; !ok {
				continue
			}
		}
		result = append(result, *copyComplaint(complaint))
	}
	return result, nil
}

// seed stores a complaint directly, bypassing Create.
func (f *fakeComplaintRepo) seed(complaint *domain.Complaint) *domain.Complaint {
	if complaint.ID == "" {
		f.nextID++
		complaint.ID = fmt.Sprintf("complaint-%d", f.nextID)
	}
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = f.clock.next()
		complaint.UpdatedAt = complaint.CreatedAt
	}
	f.complaints[complaint.ID] = copyComplaint(complaint)
	return copyComplaint(complaint)
}

type fakeAuditRepo struct {
	clock   *fakeClock
	entries []domain.AuditEntry
	seq     int64
}

func newFakeAuditRepo(clock *fakeClock) *fakeAuditRepo {
	return &fakeAuditRepo{clock: clock}
}

func (f *fakeAuditRepo) Create(_ context.Context, _ pgx.Tx, entry *domain.AuditEntry) error {
	f.seq++
	entry.Seq = f.seq
	entry.ID = fmt.Sprintf("audit-%d", f.seq)
	entry.CreatedAt = f.clock.next()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.AuditEntry, error) {
	var result []domain.AuditEntry
	for _, entry := range f.entries {
		if entry.ComplaintID == complaintID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeAuditRepo) byComplaint(complaintID string) []domain.AuditEntry {
	entries, _ := f.ListByComplaint(context.Background(), complaintID)
	return entries
}

type fakeCommentRepo struct {
	clock    *fakeClock
	comments map[string]*domain.Comment
	nextID   int
}

func newFakeCommentRepo(clock *fakeClock) *fakeCommentRepo {
	return &fakeCommentRepo{clock: clock, comments: map[string]*domain.Comment{}}
}

func (f *fakeCommentRepo) Create(_ context.Context, _ pgx.Tx, comment *domain.Comment) error {
	f.nextID++
	comment.ID = fmt.Sprintf("comment-%d", f.nextID)
	comment.CreatedAt = f.clock.next()
	comment.UpdatedAt = comment.CreatedAt
	dup := *comment
	f.comments[comment.ID] = &dup
	return nil
}

func (f *fakeCommentRepo) Update(_ context.Context, comment *domain.Comment) error {
	if _, ok := f.comments[comment.ID]; !ok {
		return pgx.ErrNoRows
	}
	comment.UpdatedAt = f.clock.next()
	dup := *comment
	f.comments[comment.ID] = &dup
	return nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	dup := *comment
	return &dup, nil
}

func (f *fakeCommentRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range f.comments {
		if comment.ComplaintID == complaintID {
			result = append(result, *comment)
		}
	}
	return result, nil
}

type fakeRatingRepo struct {
	clock   *fakeClock
	ratings map[string]*domain.Rating
	nextID  int
}

func newFakeRatingRepo(clock *fakeClock) *fakeRatingRepo {
	return &fakeRatingRepo{clock: clock, ratings: map[string]*domain.Rating{}}
}

func ratingKey(complaintID, studentID string) string {
	return complaintID + "|" + studentID
}

func (f *fakeRatingRepo) Create(_ context.Context, _ pgx.Tx, rating *domain.Rating) error {
	f.nextID++
	rating.ID = fmt.Sprintf("rating-%d", f.nextID)
	rating.CreatedAt = f.clock.next()
	dup := *rating
	f.ratings[ratingKey(rating.ComplaintID, rating.StudentID)] = &dup
	return nil
}

func (f *fakeRatingRepo) GetByComplaintAndStudent(_ context.Context, complaintID, studentID string) (*domain.Rating, error) {
	rating, ok := f.ratings[ratingKey(complaintID, studentID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	dup := *rating
	return &dup, nil
}

func (f *fakeRatingRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.Rating, error) {
	var result []domain.Rating
	for _, rating := range f.ratings {
		if rating.ComplaintID == complaintID {
			result = append(result, *rating)
		}
	}
	return result, nil
}

type fakeStaffRepo struct {
	staff map[string]*domain.StaffMember
}

func newFakeStaffRepo(members ...*domain.StaffMember) *fakeStaffRepo {
	repo := &fakeStaffRepo{staff: map[string]*domain.StaffMember{}}
	for _, member := range members {
		repo.staff[member.ID] = member
	}
	return repo
}

func (f *fakeStaffRepo) Create(_ context.Context, staff *domain.StaffMember) error {
	f.staff[staff.ID] = staff
	return nil
}

func (f *fakeStaffRepo) Update(_ context.Context, staff *domain.StaffMember) error {
	if _, ok := f.staff[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.staff[staff.ID] = staff
	return nil
}

func (f *fakeStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	staff, ok := f.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	dup := *staff
	return &dup, nil
}

func (f *fakeStaffRepo) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	for _, staff := range f.staff {
		if staff.Email == email {
			dup := *staff
			return &dup, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStaffRepo) List(_ context.Context, _ repository.StaffFilter) ([]domain.StaffMember, error) {
	var result []domain.StaffMember
	for _, staff := range f.staff {
		result = append(result, *staff)
	}
	return result, nil
}

type fakeStudentRepo struct {
	students map[string]*domain.Student
	nextID   int
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: map[string]*domain.Student{}}
}

func (f *fakeStudentRepo) Create(_ context.Context, student *domain.Student) error {
	f.nextID++
	student.ID = fmt.Sprintf("student-%d", f.nextID)
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *domain.Student) error {
	if _, ok := f.students[student.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id string) (*domain.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	dup := *student
	return &dup, nil
}

func (f *fakeStudentRepo) GetByEmail(_ context.Context, email string) (*domain.Student, error) {
	for _, student := range f.students {
		if student.Email == email {
			dup := *student
			return &dup, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
	nextID int
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (f *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	f.nextID++
	token.ID = fmt.Sprintf("reset-%d", f.nextID)
	token.CreatedAt = time.Now()
	dup := *token
	f.tokens[token.ID] = &dup
	return nil
}

func (f *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	for _, token := range f.tokens {
		if token.Token == tokenStr {
			dup := *token
			return &dup, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	token, ok := f.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	return nil
}

type fakePresetRepo struct {
	presets map[string]map[string]repository.FilterPreset
}

func newFakePresetRepo() *fakePresetRepo {
	return &fakePresetRepo{presets: map[string]map[string]repository.FilterPreset{}}
}

func (f *fakePresetRepo) Save(_ context.Context, subjectID string, preset repository.FilterPreset) error {
	if f.presets[subjectID] == nil {
		f.presets[subjectID] = map[string]repository.FilterPreset{}
	}
	f.presets[subjectID][preset.Name] = preset
	return nil
}

func (f *fakePresetRepo) List(_ context.Context, subjectID string) ([]repository.FilterPreset, error) {
	var result []repository.FilterPreset
	for _, preset := range f.presets[subjectID] {
		result = append(result, preset)
	}
	return result, nil
}

func (f *fakePresetRepo) Delete(_ context.Context, subjectID, name string) error {
	delete(f.presets[subjectID], name)
	return nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event(nil), d.events...)
}
