package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gridsight/gridsight/internal/domain"
	"github.com/gridsight/gridsight/internal/logger"
	"github.com/gridsight/gridsight/internal/mapping"
	"github.com/gridsight/gridsight/internal/notify"
	"github.com/gridsight/gridsight/internal/repository"
	"github.com/gridsight/gridsight/internal/sqldump"
	"github.com/gridsight/gridsight/internal/storage"
	"gorm.io/gorm"
)

// errImportCancelled aborts the transaction body when cancellation is
// observed at a phase or batch boundary.
var errImportCancelled = errors.New("import cancelled")

// Result keys for the per-entity counts persisted on the job record.
const (
	countOrganizations = "organizations"
	countUsers         = "users"
	countGateways      = "gateways"
	countMeters        = "meters"
	countReadings      = "readings"
)

// ImportConfig holds configuration for the import service.
type ImportConfig struct {
	// ProgressEvery is the reading-phase reporting cadence in rows.
	ProgressEvery int
	// MaxDumpSizeMB bounds accepted dump files. The parser holds the
	// whole dump in memory, so this is effectively a memory ceiling.
	MaxDumpSizeMB int
	// DefaultOrgCode/DefaultOrgName describe the bootstrap organization
	// used as the fallback owner for gateways without a site code.
	DefaultOrgCode string
	DefaultOrgName string
	// PlaceholderPassword is assigned to every imported user account.
	PlaceholderPassword string
}

// ImportService orchestrates legacy dump imports: parse once into
// memory, then apply five dependency-ordered entity phases inside a
// single transaction, updating the job record as it goes.
type ImportService struct {
	db       *gorm.DB
	jobs     *repository.JobRepository
	storage  storage.DumpStorage
	notifier *notify.WebhookNotifier
	logger   *logger.Logger
	cfg      ImportConfig

	cancels sync.Map // job ID -> context.CancelFunc
}

// NewImportService creates a new import service.
// Parameters:
//   - db: GORM database handle for the destination schema.
//   - jobs: job repository (own session, never inside the import transaction).
//   - dumpStorage: backend holding dump files.
//   - notifier: webhook notifier for terminal job states; may deliver nothing.
//   - log: logger instance.
//   - cfg: import tuning and bootstrap defaults.
// Returns:
//   - *ImportService: initialized service.
func NewImportService(
	db *gorm.DB,
	jobs *repository.JobRepository,
	dumpStorage storage.DumpStorage,
	notifier *notify.WebhookNotifier,
	log *logger.Logger,
	cfg ImportConfig,
) *ImportService {
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 100
	}
	if cfg.DefaultOrgCode == "" {
		cfg.DefaultOrgCode = "DEFAULT"
	}
	if cfg.DefaultOrgName == "" {
		cfg.DefaultOrgName = "Default Organization"
	}
	if cfg.PlaceholderPassword == "" {
		cfg.PlaceholderPassword = "changeme"
	}
	return &ImportService{
		db:       db,
		jobs:     jobs,
		storage:  dumpStorage,
		notifier: notifier,
		logger:   log,
		cfg:      cfg,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *ImportService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// CreateJob persists a pending job for a dump reference.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - kind: import kind; only sql_dump is executed by this service.
//   - filename: dump reference understood by the storage backend.
//   - opts: free-form options stored on the job.
// Returns:
//   - *domain.ImportJob: created pending job.
//   - error: non-nil if persistence fails.
func (s *ImportService) CreateJob(ctx context.Context, kind domain.JobKind, filename string, opts domain.JobOptions) (*domain.ImportJob, error) {
	job := &domain.ImportJob{
		ID:       uuid.New().String(),
		Kind:     kind,
		Filename: filename,
		Status:   domain.JobStatusPending,
		Options:  opts,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}
	return job, nil
}

// GetJob returns one job by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: job identifier.
// Returns:
//   - *domain.ImportJob: job record.
//   - error: gorm.ErrRecordNotFound if the job does not exist.
func (s *ImportService) GetJob(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	return s.jobs.GetByID(ctx, jobID)
}

// ListJobs returns jobs newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: page size; non-positive means the repository default.
//   - offset: rows to skip.
// Returns:
//   - []domain.ImportJob: jobs page.
//   - error: non-nil on query failure.
func (s *ImportService) ListJobs(ctx context.Context, limit, offset int) ([]domain.ImportJob, error) {
	return s.jobs.List(ctx, limit, offset)
}

// DumpExists reports whether the storage backend can see the dump.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - filename: dump reference.
// Returns:
//   - bool: true if present.
//   - error: non-nil on backend failure.
func (s *ImportService) DumpExists(ctx context.Context, filename string) (bool, error) {
	return s.storage.Exists(ctx, filename)
}

// StartAsync runs the job on its own goroutine. The returned channel
// closes when the run finishes, for callers that want to wait.
// Parameters:
//   - jobID: job to execute.
// Returns:
//   - <-chan struct{}: closed on completion.
func (s *ImportService) StartAsync(jobID string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.Run(context.Background(), jobID); err != nil && !errors.Is(err, errImportCancelled) {
			s.logger.WithFields(logger.Fields{
				logger.FieldJobID: jobID,
			}).WithError(err).Error("Import job finished with error")
		}
	}()
	return done
}

// Cancel requests cancellation of a running job. The orchestrator
// observes the request at the next phase or batch boundary, rolls back
// the in-flight transaction, and marks the job cancelled.
// Parameters:
//   - jobID: job to cancel.
// Returns:
//   - bool: true if the job was running and the request was delivered.
func (s *ImportService) Cancel(jobID string) bool {
	if cancel, ok := s.cancels.Load(jobID); ok {
		cancel.(context.CancelFunc)()
		return true
	}
	return false
}

// Run executes the whole pipeline for one job: fetch, parse, validate,
// import, terminal bookkeeping, cleanup. It is safe to run different
// jobs concurrently; one job never runs on more than one worker.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: job to execute.
// Returns:
//   - error: non-nil if the job ended failed or cancelled.
func (s *ImportService) Run(ctx context.Context, jobID string) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load import job: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancels.Store(job.ID, cancel)
	defer s.cancels.Delete(job.ID)

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldJobID:     job.ID,
		logger.FieldComponent: "import",
	})

	localPath, err := s.storage.Fetch(ctx, job.Filename)
	if err != nil {
		return s.abort(ctx, job, fmt.Errorf("failed to fetch dump: %w", err))
	}

	if s.cfg.MaxDumpSizeMB > 0 {
		if info, err := os.Stat(localPath); err == nil && info.Size() > int64(s.cfg.MaxDumpSizeMB)<<20 {
			if localPath != job.Filename {
				os.Remove(localPath)
			}
			return s.abort(ctx, job, fmt.Errorf("dump file is %d MB, limit is %d MB", info.Size()>>20, s.cfg.MaxDumpSizeMB))
		}
	}

	store, err := sqldump.Parse(localPath)
	// A remote temp copy is no longer needed once parsed.
	if localPath != job.Filename {
		os.Remove(localPath)
	}
	if err != nil {
		return s.abort(ctx, job, err)
	}

	if err := validateRequiredTables(store); err != nil {
		return s.abort(ctx, job, err)
	}

	total := 0
	for _, table := range importTables() {
		total += store.RowCount(table)
	}
	if err := s.jobs.MarkProcessing(ctx, job.ID, total); err != nil {
		return s.abort(ctx, job, fmt.Errorf("failed to mark job processing: %w", err))
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldCount: total,
		"tables":          store.TableNames(),
	}).Info("Starting dump import")

	st := &runState{
		store:              store,
		reporter:           NewJobProgressReporter(s.jobs, job.ID, s.logger),
		progressEvery:      s.cfg.ProgressEvery,
		counts:             domain.JobResult{},
		orgIDsByCode:       map[string]uint{},
		gatewayIDsBySerial: map[string]uint{},
		meterIDsByName:     map[string]uint{},
	}

	started := time.Now()
	// All five phases share one transaction: a failure in any phase
	// must leave no writes from the earlier ones.
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		return s.runPhases(ctx, tx, st)
	})

	if txErr != nil {
		return s.abort(ctx, job, txErr)
	}

	// Terminal bookkeeping runs on a fresh context: the job context may
	// already be cancelled.
	bg := context.Background()
	st.reporter.Report(bg, st.processed, st.skipped)
	if err := s.jobs.MarkCompleted(bg, job.ID, st.counts); err != nil {
		s.logger.WithError(err).Error("Failed to mark job completed")
	}
	s.deleteDump(job)
	s.log(ctx).WithFields(logger.Fields{
		logger.FieldDurationMs: time.Since(started).Milliseconds(),
		"result":               st.counts,
	}).Info("Import completed")
	s.finishAndNotify(bg, job.ID)
	return nil
}

// abort records the terminal state for an unsuccessful run. A
// cancelled context means the operator asked to stop: the job is
// marked cancelled and the dump is kept so the import can be retried.
// Anything else is a failure: the message is preserved for operator
// diagnosis and the dump is consumed.
func (s *ImportService) abort(ctx context.Context, job *domain.ImportJob, cause error) error {
	bg := context.Background()
	if ctx.Err() != nil || errors.Is(cause, errImportCancelled) {
		if err := s.jobs.MarkCancelled(bg, job.ID); err != nil {
			s.logger.WithError(err).Error("Failed to mark job cancelled")
		}
		s.logger.WithFields(logger.Fields{
			logger.FieldJobID: job.ID,
		}).Warn("Import cancelled, transaction rolled back")
		s.finishAndNotify(bg, job.ID)
		return errImportCancelled
	}

	if err := s.jobs.MarkFailed(bg, job.ID, cause.Error()); err != nil {
		s.logger.WithError(err).Error("Failed to mark job failed")
	}
	s.logger.WithFields(logger.Fields{
		logger.FieldJobID: job.ID,
	}).WithError(cause).Error("Import failed")
	s.deleteDump(job)
	s.finishAndNotify(bg, job.ID)
	return cause
}

// deleteDump removes the consumed source dump. It runs on success and
// failure; cancelled jobs keep their dump so the import can be
// retried.
func (s *ImportService) deleteDump(job *domain.ImportJob) {
	if err := s.storage.Delete(context.Background(), job.Filename); err != nil {
		s.logger.WithFields(logger.Fields{
			logger.FieldJobID: job.ID,
		}).WithError(err).Warn("Failed to delete source dump")
	}
}

// finishAndNotify reloads the terminal job record and delivers the
// webhook, if one is configured.
func (s *ImportService) finishAndNotify(ctx context.Context, jobID string) {
	if s.notifier == nil {
		return
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to reload job for notification")
		return
	}
	s.notifier.JobFinished(ctx, job)
}

// importTables returns the legacy tables consumed by the pipeline, in
// dependency order.
func importTables() []string {
	return []string{
		mapping.TableSites,
		mapping.TableUsers,
		mapping.TableGateways,
		mapping.TableMeters,
		mapping.TableReadings,
	}
}

// validateRequiredTables rejects dumps that lack the master-data
// tables. The telemetry table is optional; a dump may carry only
// master data.
func validateRequiredTables(store *sqldump.Store) error {
	for _, table := range []string{mapping.TableSites, mapping.TableMeters, mapping.TableUsers} {
		if !store.HasRows(table) {
			return fmt.Errorf("dump contains no rows for required table %q", table)
		}
	}
	return nil
}

// runState carries shared lookup maps and counters across the five
// phases of one run.
type runState struct {
	store         *sqldump.Store
	reporter      ProgressReporter
	progressEvery int

	processed int
	skipped   int
	counts    domain.JobResult

	defaultOrgID       uint
	orgIDsByCode       map[string]uint
	gatewayIDsBySerial map[string]uint
	meterIDsByName     map[string]uint
}

// checkpoint reports progress at a defined cadence boundary.
func (st *runState) checkpoint(ctx context.Context) {
	st.reporter.Report(ctx, st.processed, st.skipped)
}

func (s *ImportService) runPhases(ctx context.Context, tx *gorm.DB, st *runState) error {
	type phase struct {
		name string
		run  func(context.Context, *gorm.DB, *runState) error
	}
	phases := []phase{
		{"organizations", s.importOrganizations},
		{"users", s.importUsers},
		{"gateways", s.importGateways},
		{"meters", s.importMeters},
		{"readings", s.importReadings},
	}

	for _, p := range phases {
		// Cancellation is observed at phase boundaries; the readings
		// phase additionally checks every batch.
		if ctx.Err() != nil {
			return errImportCancelled
		}
		if err := p.run(ctx, tx, st); err != nil {
			return fmt.Errorf("%s phase: %w", p.name, err)
		}
		st.checkpoint(ctx)
		s.log(ctx).WithFields(logger.Fields{
			logger.FieldPhase: p.name,
			logger.FieldCount: st.counts[p.name],
		}).Info("Import phase finished")
	}
	return nil
}

// importOrganizations bootstraps the configured default organization,
// then find-or-creates one organization per legacy sites row. Existing
// organizations are never updated: idempotent reruns must not clobber
// manual edits made after a prior import.
func (s *ImportService) importOrganizations(ctx context.Context, tx *gorm.DB, st *runState) error {
	orgs := repository.NewOrganizationRepository(tx)

	defaultOrg := &domain.Organization{Code: s.cfg.DefaultOrgCode, Name: s.cfg.DefaultOrgName}
	if err := orgs.FindOrCreateByCode(ctx, defaultOrg); err != nil {
		return err
	}
	st.defaultOrgID = defaultOrg.ID
	st.orgIDsByCode[defaultOrg.Code] = defaultOrg.ID

	for _, row := range st.store.RowsOf(mapping.TableSites) {
		st.processed++
		draft, ok := mapping.NormalizeOrganization(row)
		if !ok {
			st.skipped++
			s.log(ctx).WithField(logger.FieldTable, mapping.TableSites).Debug("Skipped sites row without a code")
			continue
		}
		org := &domain.Organization{Code: draft.Code, Name: draft.Name, Address: draft.Address}
		if err := orgs.FindOrCreateByCode(ctx, org); err != nil {
			return err
		}
		st.orgIDsByCode[org.Code] = org.ID
		st.counts[countOrganizations]++
	}
	return nil
}

// importUsers find-or-creates one user per legacy users row, keyed by
// email. Imported accounts get the fixed placeholder password.
func (s *ImportService) importUsers(ctx context.Context, tx *gorm.DB, st *runState) error {
	users := repository.NewUserRepository(tx)

	for _, row := range st.store.RowsOf(mapping.TableUsers) {
		st.processed++
		draft, ok := mapping.NormalizeUser(row)
		if !ok {
			st.skipped++
			s.log(ctx).WithField(logger.FieldTable, mapping.TableUsers).Debug("Skipped users row without a usable identity")
			continue
		}
		user := &domain.User{
			Name:     draft.FullName,
			Email:    draft.Email,
			Password: s.cfg.PlaceholderPassword,
		}
		if orgID, ok := st.orgIDsByCode[draft.SiteCode]; ok && draft.SiteCode != "" {
			user.OrganizationID = &orgID
		}
		if err := users.FindOrCreateByEmail(ctx, user); err != nil {
			return err
		}
		st.counts[countUsers]++
	}
	return nil
}

// importGateways upserts one gateway per legacy rtus row, keyed by
// serial number. The owning organization resolves by site code, with
// the bootstrapped default organization as fallback.
func (s *ImportService) importGateways(ctx context.Context, tx *gorm.DB, st *runState) error {
	gateways := repository.NewGatewayRepository(tx)

	for _, row := range st.store.RowsOf(mapping.TableGateways) {
		st.processed++
		draft, ok := mapping.NormalizeGateway(row)
		if !ok {
			st.skipped++
			s.log(ctx).WithField(logger.FieldTable, mapping.TableGateways).Debug("Skipped rtus row missing serial, MAC, or IP")
			continue
		}

		orgID, ok := st.orgIDsByCode[draft.SiteCode]
		if !ok {
			orgID = st.defaultOrgID
		}

		gw := &domain.Gateway{
			SerialNumber:   draft.Serial,
			MACAddress:     draft.MACAddress,
			IPAddress:      draft.IPAddress,
			Model:          draft.Model,
			OrganizationID: orgID,
			InstalledAt:    draft.InstalledAt,
		}
		if err := gateways.UpsertBySerial(ctx, gw); err != nil {
			return err
		}
		// Re-fetch: the conflict-update path does not report the
		// surviving row's ID.
		saved, err := gateways.GetBySerial(ctx, draft.Serial)
		if err != nil {
			return err
		}
		st.gatewayIDsBySerial[draft.Serial] = saved.ID
		st.counts[countGateways]++
	}
	return nil
}

// importMeters upserts one meter per legacy meters row, keyed by
// (name, organization, gateway). A meter cannot exist without its
// gateway; rows whose gateway does not resolve are skipped, not
// failed.
func (s *ImportService) importMeters(ctx context.Context, tx *gorm.DB, st *runState) error {
	meters := repository.NewMeterRepository(tx)
	orgs := repository.NewOrganizationRepository(tx)
	gateways := repository.NewGatewayRepository(tx)

	for _, row := range st.store.RowsOf(mapping.TableMeters) {
		st.processed++
		draft, ok := mapping.NormalizeMeter(row)
		if !ok {
			st.skipped++
			s.log(ctx).WithField(logger.FieldTable, mapping.TableMeters).Debug("Skipped meters row without a name")
			continue
		}

		orgID := st.defaultOrgID
		if draft.SiteCode != "" {
			if id, ok := st.orgIDsByCode[draft.SiteCode]; ok {
				orgID = id
			} else {
				org := &domain.Organization{Code: draft.SiteCode}
				if err := orgs.FindOrCreateByCode(ctx, org); err != nil {
					return err
				}
				st.orgIDsByCode[org.Code] = org.ID
				orgID = org.ID
			}
		}

		gatewayID, ok := st.gatewayIDsBySerial[draft.GatewaySerial]
		if !ok && draft.GatewaySerial != "" {
			// A gateway from a previous import still satisfies the
			// dependency.
			if saved, err := gateways.GetBySerial(ctx, draft.GatewaySerial); err == nil {
				gatewayID = saved.ID
				st.gatewayIDsBySerial[draft.GatewaySerial] = saved.ID
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if gatewayID == 0 {
			st.skipped++
			s.log(ctx).WithFields(logger.Fields{
				logger.FieldTable: mapping.TableMeters,
				"gateway_serial":  draft.GatewaySerial,
			}).Debug("Skipped meters row with unresolvable gateway")
			continue
		}

		meter := &domain.Meter{
			Name:           draft.Name,
			OrganizationID: orgID,
			GatewayID:      gatewayID,
			Model:          draft.Model,
			Multiplier:     draft.Multiplier,
			Description:    draft.Description,
			Enabled:        draft.Enabled,
		}
		if draft.ConfigFile != "" {
			cfg := &domain.MeterConfig{Filename: draft.ConfigFile}
			if err := meters.FindOrCreateConfig(ctx, cfg); err != nil {
				return err
			}
			meter.ConfigID = &cfg.ID
		}
		if err := meters.Upsert(ctx, meter); err != nil {
			return err
		}
		saved, err := meters.GetByNaturalKey(ctx, draft.Name, orgID, gatewayID)
		if err != nil {
			return err
		}
		st.meterIDsByName[draft.Name] = saved.ID
		st.counts[countMeters]++
	}
	return nil
}

// importReadings inserts telemetry rows append-only. This phase
// dominates run time, so progress is reported and cancellation checked
// every progressEvery rows rather than per row.
func (s *ImportService) importReadings(ctx context.Context, tx *gorm.DB, st *runState) error {
	readings := repository.NewReadingRepository(tx)

	for i, row := range st.store.RowsOf(mapping.TableReadings) {
		if i > 0 && i%st.progressEvery == 0 {
			if ctx.Err() != nil {
				return errImportCancelled
			}
			st.checkpoint(ctx)
		}

		st.processed++
		draft, ok := mapping.NormalizeReading(row)
		if !ok {
			st.skipped++
			continue
		}

		meterID, ok := st.meterIDsByName[draft.MeterName]
		if !ok {
			st.skipped++
			s.log(ctx).WithFields(logger.Fields{
				logger.FieldTable: mapping.TableReadings,
				"meter":           draft.MeterName,
			}).Debug("Skipped reading with unresolvable meter")
			continue
		}

		reading := &domain.Reading{
			MeterID:   meterID,
			Timestamp: *draft.Timestamp,

			VoltageA:   draft.VoltageA,
			VoltageB:   draft.VoltageB,
			VoltageC:   draft.VoltageC,
			VoltageAB:  draft.VoltageAB,
			VoltageBC:  draft.VoltageBC,
			VoltageCA:  draft.VoltageCA,
			VoltageAvg: draft.VoltageAvg,

			CurrentA:   draft.CurrentA,
			CurrentB:   draft.CurrentB,
			CurrentC:   draft.CurrentC,
			CurrentAvg: draft.CurrentAvg,

			PowerKW:     draft.PowerKW,
			PowerKVAR:   draft.PowerKVAR,
			PowerKVA:    draft.PowerKVA,
			PowerFactor: draft.PowerFactor,
			FrequencyHz: draft.FrequencyHz,

			EnergyDeliveredKWH:   draft.EnergyDeliveredKWH,
			EnergyReceivedKWH:    draft.EnergyReceivedKWH,
			EnergyDeliveredKVARH: draft.EnergyDeliveredKVARH,
			EnergyReceivedKVARH:  draft.EnergyReceivedKVARH,

			DemandPeakKW:     draft.DemandPeakKW,
			DemandPeakKWAt:   draft.DemandPeakKWAt,
			DemandPeakKVAR:   draft.DemandPeakKVAR,
			DemandPeakKVARAt: draft.DemandPeakKVARAt,
			DemandPeakKVA:    draft.DemandPeakKVA,
			DemandPeakKVAAt:  draft.DemandPeakKVAAt,

			PhaseAngleA: draft.PhaseAngleA,
			PhaseAngleB: draft.PhaseAngleB,
			PhaseAngleC: draft.PhaseAngleC,

			DeviceSerial:    draft.DeviceSerial,
			FirmwareVersion: draft.FirmwareVersion,
		}
		if err := readings.Create(ctx, reading); err != nil {
			return err
		}
		st.counts[countReadings]++
	}
	return nil
}
