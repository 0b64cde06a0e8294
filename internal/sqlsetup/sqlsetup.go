// Package sqlsetup provisions the Keycloak SQL login and database user over
// ad-hoc connections to the deployed Azure SQL server. Both statements are
// existence-guarded so the step can run on every deployment.
package sqlsetup

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQL Server driver, registered as "sqlserver".
	_ "github.com/microsoft/go-mssqldb"

	"github.com/systmms/keycloak-aca/internal/logging"
)

const (
	driverName = "sqlserver"

	// DefaultPort is the SQL Server TDS port.
	DefaultPort = 1433

	defaultTimeout = 30 * time.Second
)

// Params describes one provisioning run.
type Params struct {
	// Server is the fully qualified server name.
	Server string
	// Port defaults to DefaultPort when zero.
	Port int
	// AdminUser and AdminPassword authenticate the server administrator.
	AdminUser     string
	AdminPassword string
	// Database is the application database name.
	Database string
	// AppUser and AppPassword are the login/user being provisioned.
	AppUser     string
	AppPassword string
	// Timeout bounds each connection. Defaults to 30s when zero.
	Timeout time.Duration
}

func (p Params) withDefaults() Params {
	if p.Port == 0 {
		p.Port = DefaultPort
	}
	if p.Timeout == 0 {
		p.Timeout = defaultTimeout
	}
	return p
}

type requiredField struct {
	name  string
	value string
}

func validate(fields []requiredField) error {
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("sqlsetup: %s is required", f.name)
		}
	}
	return nil
}

// validateEnsure covers provisioning, which needs both credentials.
func (p Params) validateEnsure() error {
	return validate([]requiredField{
		{"server", p.Server},
		{"admin user", p.AdminUser},
		{"admin password", p.AdminPassword},
		{"database", p.Database},
		{"app user", p.AppUser},
		{"app password", p.AppPassword},
	})
}

// validateVerify covers verification, which connects as the app user only.
func (p Params) validateVerify() error {
	return validate([]requiredField{
		{"server", p.Server},
		{"database", p.Database},
		{"app user", p.AppUser},
		{"app password", p.AppPassword},
	})
}

// Initializer runs the provisioning statements.
type Initializer struct {
	logger *logging.Logger
	open   func(driver, dsn string) (*sql.DB, error)
}

// New creates an Initializer using the real driver.
func New(logger *logging.Logger) *Initializer {
	return &Initializer{logger: logger, open: sql.Open}
}

// NewWithOpener creates an Initializer with a custom connection opener.
// Used by tests to substitute sqlmock connections.
func NewWithOpener(logger *logging.Logger, open func(driver, dsn string) (*sql.DB, error)) *Initializer {
	return &Initializer{logger: logger, open: open}
}

// ConnectionString builds an ADO-style SQL Server connection string.
func ConnectionString(server string, port int, user, password, database string) string {
	return fmt.Sprintf("server=%s,%d;user id=%s;password=%s;database=%s;encrypt=true",
		server, port, user, password, database)
}

// EnsureAppUser makes sure the app login exists on the server and the app
// user exists in the database with db_owner membership. Two connections:
// CREATE LOGIN only works on master, CREATE USER only on the target database.
func (i *Initializer) EnsureAppUser(ctx context.Context, p Params) error {
	p = p.withDefaults()
	if err := p.validateEnsure(); err != nil {
		return err
	}

	i.logger.Info("ensuring SQL login %s on %s", p.AppUser, p.Server)
	masterDSN := ConnectionString(p.Server, p.Port, p.AdminUser, p.AdminPassword, "master")
	err := i.withConnection(ctx, p.Timeout, masterDSN, func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, ensureLoginStatement(p.AppUser, p.AppPassword))
		return err
	})
	if err != nil {
		return redacted(fmt.Errorf("creating login %q: %w", p.AppUser, err), p)
	}

	i.logger.Info("ensuring SQL user %s in database %s", p.AppUser, p.Database)
	appDSN := ConnectionString(p.Server, p.Port, p.AdminUser, p.AdminPassword, p.Database)
	err = i.withConnection(ctx, p.Timeout, appDSN, func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, ensureUserStatement(p.AppUser))
		return err
	})
	if err != nil {
		return redacted(fmt.Errorf("creating user %q in %q: %w", p.AppUser, p.Database, err), p)
	}

	return nil
}

// VerifyAppUser connects as the app user and runs a trivial query, proving
// the login, the user mapping and the firewall path all work.
func (i *Initializer) VerifyAppUser(ctx context.Context, p Params) error {
	p = p.withDefaults()
	if err := p.validateVerify(); err != nil {
		return err
	}

	dsn := ConnectionString(p.Server, p.Port, p.AppUser, p.AppPassword, p.Database)
	err := i.withConnection(ctx, p.Timeout, dsn, func(ctx context.Context, db *sql.DB) error {
		var one int
		return db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	})
	if err != nil {
		return redacted(fmt.Errorf("verifying user %q: %w", p.AppUser, err), p)
	}

	i.logger.Info("SQL user %s verified against %s/%s", p.AppUser, p.Server, p.Database)
	return nil
}

func (i *Initializer) withConnection(ctx context.Context, timeout time.Duration, dsn string, fn func(context.Context, *sql.DB) error) error {
	db, err := i.open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("opening connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	return fn(ctx, db)
}

// ensureLoginStatement is idempotent: sys.sql_logins is consulted before
// CREATE LOGIN, which cannot be parameterized, so the password is embedded
// as a quote-doubled literal.
func ensureLoginStatement(user, password string) string {
	return fmt.Sprintf(
		"IF NOT EXISTS (SELECT 1 FROM sys.sql_logins WHERE name = N'%s')\n"+
			"    CREATE LOGIN %s WITH PASSWORD = N'%s';",
		quoteLiteral(user), quoteIdentifier(user), quoteLiteral(password))
}

// ensureUserStatement runs in the application database and grants db_owner:
// Keycloak manages its own schema and migrations.
func ensureUserStatement(user string) string {
	ident := quoteIdentifier(user)
	return fmt.Sprintf(
		"IF NOT EXISTS (SELECT 1 FROM sys.database_principals WHERE name = N'%s')\n"+
			"BEGIN\n"+
			"    CREATE USER %s FOR LOGIN %s WITH DEFAULT_SCHEMA = dbo;\n"+
			"    ALTER ROLE db_owner ADD MEMBER %s;\n"+
			"END",
		quoteLiteral(user), ident, ident, ident)
}

func quoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func quoteLiteral(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// redactedError scrubs passwords out of the rendered message while keeping
// the wrapped chain intact for errors.Is/As.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

// redacted scrubs both passwords out of driver error text. mssql errors can
// echo connection attributes back.
func redacted(err error, p Params) error {
	if err == nil {
		return nil
	}
	return &redactedError{
		msg: logging.Redact(err.Error(), []string{p.AdminPassword, p.AppPassword}),
		err: err,
	}
}
