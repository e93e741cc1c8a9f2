package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gridsight/gridsight/internal/domain"
	"github.com/gridsight/gridsight/internal/logger"
	"github.com/gridsight/gridsight/internal/repository"
	"github.com/gridsight/gridsight/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const fullDump = "INSERT INTO `sites` (`id`, `code`, `name`, `address`) VALUES\n" +
	"(1,'ACME','Acme Plant','12 Main St');\n" +
	"INSERT INTO `users` (`id`, `username`, `fullname`, `email`, `site`) VALUES\n" +
	"(1,'bob smith','Bob Smith','not-an-email','ACME');\n" +
	"INSERT INTO `rtus` (`id`, `serial`, `mac`, `ip`, `site`, `model`, `installed`) VALUES\n" +
	"(1,'RTU-001','00:11:22:33:44:55','10.0.0.5','ACME','SEL-3530','2015-06-01 00:00:00');\n" +
	"INSERT INTO `meters` (`id`, `name`, `site`, `rtu`, `model`, `multiplier`, `description`, `disabled`) VALUES\n" +
	"(1,'MTR-A','ACME','RTU-001','config_7700.ini',0,'Main feeder',0);\n" +
	"INSERT INTO `readings` (`meter`, `time`, `v1`, `v2`, `v3`, `kw`, `kwh_del`) VALUES\n" +
	"('MTR-A','2015-06-02 10:00:00',120.1,119.8,120.4,45.2,100.5),\n" +
	"('MTR-A','0000-00-00 00:00:00',1,2,3,4,5),\n" +
	"('GHOST','2015-06-02 10:05:00',1,2,3,4,5);\n"

func newTestService(t *testing.T) (*ImportService, *gorm.DB) {
	t.Helper()

	// A short busy timeout keeps the swallowed in-transaction progress
	// writes from stalling the test.
	dbPath := filepath.Join(t.TempDir(), "import_test.db") + "?_busy_timeout=200"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	log := logger.New(&logger.Config{Level: "error", Format: "text", Output: io.Discard, ServiceName: "test"})
	svc := NewImportService(db, repository.NewJobRepository(db), storage.NewLocalStorage(), nil, log, ImportConfig{
		ProgressEvery:       2,
		DefaultOrgCode:      "DEFAULT",
		DefaultOrgName:      "Default Organization",
		PlaceholderPassword: "changeme",
	})
	return svc, db
}

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.sql")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write dump fixture: %v", err)
	}
	return path
}

func runJob(t *testing.T, svc *ImportService, dumpPath string) *domain.ImportJob {
	t.Helper()
	ctx := context.Background()
	job, err := svc.CreateJob(ctx, domain.JobKindSQLDump, dumpPath, nil)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	svc.Run(ctx, job.ID)
	got, err := svc.jobs.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID after run: %v", err)
	}
	return got
}

func TestRunCompletesFullDump(t *testing.T) {
	svc, db := newTestService(t)
	dumpPath := writeDump(t, fullDump)

	job := runJob(t, svc, dumpPath)

	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %q (error %q), want completed", job.Status, job.Error)
	}
	// 1 site + 1 user + 1 rtu + 1 meter + 3 readings.
	if job.TotalRecords != 7 {
		t.Errorf("TotalRecords = %d, want 7", job.TotalRecords)
	}
	if job.ProcessedRecords != 7 {
		t.Errorf("ProcessedRecords = %d, want 7", job.ProcessedRecords)
	}
	// One reading has the zero-date sentinel, one names an unknown meter.
	if job.SkippedRecords != 2 {
		t.Errorf("SkippedRecords = %d, want 2", job.SkippedRecords)
	}
	want := domain.JobResult{"organizations": 1, "users": 1, "gateways": 1, "meters": 1, "readings": 1}
	for k, n := range want {
		if job.Result[k] != n {
			t.Errorf("Result[%q] = %d, want %d", k, job.Result[k], n)
		}
	}
	if job.Percent() != 100 {
		t.Errorf("Percent = %d, want 100", job.Percent())
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("expected both StartedAt and CompletedAt to be set")
	}

	if _, err := os.Stat(dumpPath); !os.IsNotExist(err) {
		t.Error("expected consumed dump file to be deleted")
	}

	ctx := context.Background()

	// The configured default organization plus the imported site.
	orgs := repository.NewOrganizationRepository(db)
	if n, _ := orgs.Count(ctx); n != 2 {
		t.Errorf("organizations in db = %d, want 2", n)
	}
	acme, err := orgs.GetByCode(ctx, "ACME")
	if err != nil {
		t.Fatalf("GetByCode(ACME): %v", err)
	}

	// The legacy email is invalid, so the address is synthesized from
	// the username.
	user, err := repository.NewUserRepository(db).GetByEmail(ctx, "bob.smith@legacy.imported")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.Name != "Bob Smith" {
		t.Errorf("user name = %q, want %q", user.Name, "Bob Smith")
	}
	if user.Password != "changeme" {
		t.Errorf("user password = %q, want placeholder", user.Password)
	}
	if user.OrganizationID == nil || *user.OrganizationID != acme.ID {
		t.Errorf("user organization = %v, want %d", user.OrganizationID, acme.ID)
	}

	gw, err := repository.NewGatewayRepository(db).GetBySerial(ctx, "RTU-001")
	if err != nil {
		t.Fatalf("GetBySerial: %v", err)
	}
	if gw.OrganizationID != acme.ID {
		t.Errorf("gateway organization = %d, want %d", gw.OrganizationID, acme.ID)
	}
	if gw.InstalledAt == nil {
		t.Error("expected gateway installed time to be set")
	}

	meters := repository.NewMeterRepository(db)
	meter, err := meters.GetByNaturalKey(ctx, "MTR-A", acme.ID, gw.ID)
	if err != nil {
		t.Fatalf("GetByNaturalKey: %v", err)
	}
	// Zero multiplier in the dump means "unset" and defaults to 1.
	if meter.Multiplier != 1.0 {
		t.Errorf("multiplier = %v, want 1.0", meter.Multiplier)
	}
	// The model column held a configuration filename, not a model name.
	if meter.Model != "" {
		t.Errorf("model = %q, want empty", meter.Model)
	}
	if meter.ConfigID == nil {
		t.Error("expected a meter config reference")
	}
	if !meter.Enabled {
		t.Error("expected meter to be enabled")
	}

	readings := repository.NewReadingRepository(db)
	if n, _ := readings.CountByMeter(ctx, meter.ID); n != 1 {
		t.Errorf("readings for meter = %d, want 1", n)
	}
	var reading domain.Reading
	if err := db.Where("meter_id = ?", meter.ID).First(&reading).Error; err != nil {
		t.Fatalf("load reading: %v", err)
	}
	if reading.VoltageA != 120.1 {
		t.Errorf("voltage A = %v, want 120.1", reading.VoltageA)
	}
	if reading.PowerKW != 45.2 {
		t.Errorf("power kW = %v, want 45.2", reading.PowerKW)
	}
	// Columns absent from the dump stay nil, not zero.
	if reading.FrequencyHz != nil {
		t.Errorf("frequency = %v, want nil", *reading.FrequencyHz)
	}
}

func TestRunFailsWithoutRequiredTables(t *testing.T) {
	svc, db := newTestService(t)
	dumpPath := writeDump(t, "INSERT INTO `readings` (`meter`, `time`) VALUES ('MTR-A','2015-06-02 10:00:00');\n")

	job := runJob(t, svc, dumpPath)

	if job.Status != domain.JobStatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if !strings.Contains(job.Error, "required table") {
		t.Errorf("error = %q, want mention of the missing required table", job.Error)
	}
	if _, err := os.Stat(dumpPath); !os.IsNotExist(err) {
		t.Error("expected dump of a failed job to be deleted")
	}
	// A failed validation must leave no writes behind.
	if n, _ := repository.NewReadingRepository(db).Count(context.Background()); n != 0 {
		t.Errorf("readings in db = %d, want 0", n)
	}
}

func TestRunSkipsMetersWithUnresolvableGateway(t *testing.T) {
	svc, db := newTestService(t)
	dump := "INSERT INTO `sites` (`code`, `name`) VALUES ('ACME','Acme Plant');\n" +
		"INSERT INTO `users` (`username`, `email`) VALUES ('ops','ops@acme.example');\n" +
		"INSERT INTO `meters` (`name`, `site`, `rtu`, `model`) VALUES ('MTR-A','ACME','NO-SUCH-RTU','ION7650');\n"
	dumpPath := writeDump(t, dump)

	job := runJob(t, svc, dumpPath)

	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %q (error %q), want completed", job.Status, job.Error)
	}
	if job.Result["meters"] != 0 {
		t.Errorf("Result[meters] = %d, want 0", job.Result["meters"])
	}
	if job.SkippedRecords != 1 {
		t.Errorf("SkippedRecords = %d, want 1", job.SkippedRecords)
	}
	if n, _ := repository.NewMeterRepository(db).Count(context.Background()); n != 0 {
		t.Errorf("meters in db = %d, want 0", n)
	}
}

func TestRunRollsBackEarlierPhasesOnMeterFailure(t *testing.T) {
	svc, db := newTestService(t)
	// Sabotage the meters phase: its inserts fail mid-transaction,
	// after organizations, users, and gateways have been written.
	if err := db.Migrator().DropTable(&domain.Meter{}); err != nil {
		t.Fatalf("drop meters table: %v", err)
	}

	job := runJob(t, svc, writeDump(t, fullDump))

	if job.Status != domain.JobStatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if !strings.Contains(job.Error, "meters phase") {
		t.Errorf("error = %q, want the failing phase named", job.Error)
	}

	// All five phases share one transaction: nothing from the phases
	// that succeeded may survive the rollback.
	ctx := context.Background()
	if n, _ := repository.NewOrganizationRepository(db).Count(ctx); n != 0 {
		t.Errorf("organizations = %d, want 0 after rollback", n)
	}
	if n, _ := repository.NewUserRepository(db).Count(ctx); n != 0 {
		t.Errorf("users = %d, want 0 after rollback", n)
	}
	if n, _ := repository.NewGatewayRepository(db).Count(ctx); n != 0 {
		t.Errorf("gateways = %d, want 0 after rollback", n)
	}
	if n, _ := repository.NewReadingRepository(db).Count(ctx); n != 0 {
		t.Errorf("readings = %d, want 0 after rollback", n)
	}
}

func TestRunIsIdempotentForMasterData(t *testing.T) {
	svc, db := newTestService(t)

	first := runJob(t, svc, writeDump(t, fullDump))
	if first.Status != domain.JobStatusCompleted {
		t.Fatalf("first run status = %q (error %q)", first.Status, first.Error)
	}
	second := runJob(t, svc, writeDump(t, fullDump))
	if second.Status != domain.JobStatusCompleted {
		t.Fatalf("second run status = %q (error %q)", second.Status, second.Error)
	}

	ctx := context.Background()
	if n, _ := repository.NewOrganizationRepository(db).Count(ctx); n != 2 {
		t.Errorf("organizations = %d, want 2", n)
	}
	if n, _ := repository.NewUserRepository(db).Count(ctx); n != 1 {
		t.Errorf("users = %d, want 1", n)
	}
	if n, _ := repository.NewGatewayRepository(db).Count(ctx); n != 1 {
		t.Errorf("gateways = %d, want 1", n)
	}
	if n, _ := repository.NewMeterRepository(db).Count(ctx); n != 1 {
		t.Errorf("meters = %d, want 1", n)
	}
	// Readings are append-only: reimporting the same dump doubles them.
	if n, _ := repository.NewReadingRepository(db).Count(ctx); n != 2 {
		t.Errorf("readings = %d, want 2", n)
	}
}

// cancellingStorage requests job cancellation while the dump is being
// fetched, before any database write happens.
type cancellingStorage struct {
	storage.DumpStorage
	cancel func()
}

func (s *cancellingStorage) Fetch(ctx context.Context, key string) (string, error) {
	s.cancel()
	return s.DumpStorage.Fetch(ctx, key)
}

func TestCancelMarksJobCancelledAndKeepsDump(t *testing.T) {
	svc, db := newTestService(t)
	dumpPath := writeDump(t, fullDump)

	ctx := context.Background()
	job, err := svc.CreateJob(ctx, domain.JobKindSQLDump, dumpPath, nil)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	svc.storage = &cancellingStorage{
		DumpStorage: storage.NewLocalStorage(),
		cancel: func() {
			if !svc.Cancel(job.ID) {
				t.Error("Cancel reported no running job")
			}
		},
	}

	if err := svc.Run(ctx, job.ID); !errors.Is(err, errImportCancelled) {
		t.Fatalf("Run returned %v, want cancellation", err)
	}

	got, err := svc.jobs.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.JobStatusCancelled {
		t.Fatalf("status = %q, want cancelled", got.Status)
	}
	// Cancelled imports keep their dump so the run can be retried.
	if _, err := os.Stat(dumpPath); err != nil {
		t.Error("expected dump of a cancelled job to be kept")
	}
	if n, _ := repository.NewReadingRepository(db).Count(ctx); n != 0 {
		t.Errorf("readings in db = %d, want 0 after cancellation", n)
	}
}

func TestCancelUnknownJob(t *testing.T) {
	svc, _ := newTestService(t)
	if svc.Cancel("no-such-job") {
		t.Error("Cancel of an unknown job should report false")
	}
}
