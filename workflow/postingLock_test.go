package workflow_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/commission_backend/config"
	"bitbucket.org/mmdatafocus/commission_backend/workflow"
	"gorm.io/gorm"
)

// GET_LOCK is connection-scoped, so a lock that is not released before the
// connection returns to the pool stays held indefinitely. This drives the
// invoice lock through the same transaction pattern production uses and
// checks, from a second pinned connection, that the lock is held during the
// transaction and free again afterwards.
func TestInvoicePostingLockReleasedAfterTransaction(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "commission_test")

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying sql.DB: %v", err)
	}
	// A dedicated connection distinct from whatever the transaction below
	// gets from the pool. GET_LOCK from here only succeeds if the lock is
	// genuinely free, not merely re-entered on the holding connection.
	observer, err := sqlDB.Conn(ctx)
	if err != nil {
		t.Fatalf("pin observer connection: %v", err)
	}
	defer observer.Close()

	const invoiceId = 424242
	lockName := fmt.Sprintf("commission:invoice:%d", invoiceId)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := workflow.AcquireInvoicePostingLock(tx, invoiceId); err != nil {
			return err
		}
		defer workflow.ReleaseInvoicePostingLock(tx, invoiceId)

		var held int
		row := observer.QueryRowContext(ctx, "SELECT GET_LOCK(?, 0)", lockName)
		if err := row.Scan(&held); err != nil {
			return err
		}
		if held == 1 {
			t.Fatalf("observer acquired the lock while the transaction held it")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	var free int
	row := observer.QueryRowContext(ctx, "SELECT GET_LOCK(?, 2)", lockName)
	if err := row.Scan(&free); err != nil {
		t.Fatalf("observer GET_LOCK after transaction: %v", err)
	}
	if free != 1 {
		t.Fatalf("lock still held after the transaction finished; acquire was not paired with a release")
	}
	if _, err := observer.ExecContext(ctx, "SELECT RELEASE_LOCK(?)", lockName); err != nil {
		t.Fatalf("observer RELEASE_LOCK: %v", err)
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("commission-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=commission_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
