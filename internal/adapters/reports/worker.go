package reports

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"fleetcore/internal/blob"
)

// ExportStatus describes the lifecycle stage of an export request.
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "queued"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportArtifact captures one stored rendering of a report.
type ExportArtifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportRecord tracks an export request and its resulting artifacts.
type ExportRecord struct {
	ID          string           `json:"id"`
	Formats     []Format         `json:"formats"`
	Status      ExportStatus     `json:"status"`
	Error       string           `json:"error,omitempty"`
	Artifacts   []ExportArtifact `json:"artifacts,omitempty"`
	RequestedBy string           `json:"requested_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

func (r ExportRecord) copy() ExportRecord {
	out := r
	out.Formats = append([]Format(nil), r.Formats...)
	out.Artifacts = append([]ExportArtifact(nil), r.Artifacts...)
	if r.CompletedAt != nil {
		completed := *r.CompletedAt
		out.CompletedAt = &completed
	}
	return out
}

// ExportInput is an enqueue request for the worker.
type ExportInput struct {
	Formats     []Format
	RequestedBy string
}

// AuditLogger records export audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures audit trail metadata for report exports.
type AuditEntry struct {
	ID         string       `json:"id"`
	Action     string       `json:"action"`
	Actor      string       `json:"actor"`
	Status     ExportStatus `json:"status"`
	Note       string       `json:"note,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Worker renders and stores fleet reports asynchronously.
type Worker struct {
	source Source
	store  blob.Store
	audit  AuditLogger
	nowFn  func() time.Time

	queue chan string
	mu    sync.RWMutex
	jobs  map[string]*ExportRecord

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker constructs an export worker over the given snapshot source and
// artifact store. The audit logger may be nil.
func NewWorker(source Source, store blob.Store, audit AuditLogger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		source: source,
		store:  store,
		audit:  audit,
		nowFn:  time.Now,
		queue:  make(chan string, 32),
		jobs:   make(map[string]*ExportRecord),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case id := <-w.queue:
			w.process(id)
		}
	}
}

// EnqueueExport schedules a report export and returns the queued record.
func (w *Worker) EnqueueExport(ctx context.Context, input ExportInput) (ExportRecord, error) {
	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV}
	}
	seen := make(map[Format]struct{}, len(formats))
	uniq := make([]Format, 0, len(formats))
	for _, format := range formats {
		if format != FormatJSON && format != FormatCSV {
			return ExportRecord{}, fmt.Errorf("unsupported report format %s", format)
		}
		if _, dup := seen[format]; dup {
			continue
		}
		seen[format] = struct{}{}
		uniq = append(uniq, format)
	}

	id := newID()
	now := w.nowFn().UTC()
	record := ExportRecord{
		ID:          id,
		Formats:     uniq,
		Status:      ExportStatusQueued,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	queued := record.copy()
	w.mu.Unlock()

	w.recordAudit(ctx, input.RequestedBy, ExportStatusQueued, "")

	select {
	case w.queue <- id:
	default:
		w.fail(id, "export queue full")
		return ExportRecord{}, fmt.Errorf("export queue full")
	}
	return queued, nil
}

// GetExport returns a snapshot of the export record.
func (w *Worker) GetExport(id string) (ExportRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return ExportRecord{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(id string) {
	w.updateStatus(id, ExportStatusRunning)

	record, ok := w.GetExport(id)
	if !ok {
		return
	}
	report := Build(w.source, w.nowFn())

	artifacts := make([]ExportArtifact, 0, len(record.Formats))
	for _, format := range record.Formats {
		payload, err := Render(report, format)
		if err != nil {
			w.fail(id, err.Error())
			return
		}
		key := fmt.Sprintf("reports/%s/fleet-report.%s", id, format)
		info, err := w.store.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: format.ContentType(),
			Metadata:    map[string]string{"export_id": id, "format": string(format)},
		})
		if err != nil {
			w.fail(id, fmt.Sprintf("store artifact: %v", err))
			return
		}
		artifacts = append(artifacts, ExportArtifact{
			Key:         info.Key,
			Format:      format,
			ContentType: format.ContentType(),
			SizeBytes:   info.Size,
			URL:         info.URL,
			CreatedAt:   info.LastModified,
		})
	}
	w.complete(id, artifacts)
}

func (w *Worker) updateStatus(id string, status ExportStatus) {
	now := w.nowFn().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.UpdatedAt = now
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, w.actorFor(id), status, "")
}

func (w *Worker) complete(id string, artifacts []ExportArtifact) {
	now := w.nowFn().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, w.actorFor(id), ExportStatusSucceeded, "")
}

func (w *Worker) fail(id, reason string) {
	now := w.nowFn().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, w.actorFor(id), ExportStatusFailed, reason)
}

func (w *Worker) actorFor(id string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if record, ok := w.jobs[id]; ok {
		return record.RequestedBy
	}
	return ""
}

func (w *Worker) recordAudit(ctx context.Context, actor string, status ExportStatus, note string) {
	if w.audit == nil {
		return
	}
	w.audit.Record(ctx, AuditEntry{
		ID:         newID(),
		Action:     "fleet_report_export",
		Actor:      actor,
		Status:     status,
		Note:       note,
		OccurredAt: w.nowFn().UTC(),
	})
}

func newID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
