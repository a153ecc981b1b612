package orm

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"runtime"
	"strconv"
	"strings"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/config"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var (
	pool *pgxpool.Pool
)

//go:embed sql/pg_schema.sql
var ddlPg string

//go:embed sql/pg_migrations.sql
var ddlMigrations string

var ddlDbConf = `DO $$ 
BEGIN
    IF NOT EXISTS (SELECT FROM pg_tables WHERE schemaname = 'public' AND tablename = 'dbconf') THEN
        CREATE TABLE dbconf (
            key varchar(50) PRIMARY KEY not null,
            value text not null
        );
        INSERT INTO dbconf (key,value) VALUES ('schema_version', '0');
    END IF;
END $$;`

const (
	pgUniqueViolation = "23505"
	pgDbNotExist      = "3D000"
)

/*
Setup
初始化postgres连接池，数据库不存在时按配置自动创建，表不存在时初始化，否则执行迁移
*/
func Setup(dbCfg *config.DatabaseConfig) *errs.Error {
	if pool != nil {
		pool.Close()
		pool = nil
	}
	var err2 *errs.Error
	pool, err2 = pgConnPool(dbCfg)
	if err2 != nil {
		return err2
	}
	ctx := context.Background()
	var tblCnt int64
	err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM pg_class WHERE relname = 'futures_contract'").Scan(&tblCnt)
	if err != nil {
		dbErr := NewDbErr(core.ErrDbReadFail, err)
		if dbCfg.AutoCreate && dbErr.Code == core.ErrDbConnFail && dbErr.Message() == "db not exist" {
			log.Warn("database not exist, creating...")
			err2 = createPgDb(dbCfg.Url)
			if err2 != nil {
				return err2
			}
			pool.Close()
			pool, err2 = pgConnPool(dbCfg)
			if err2 != nil {
				return err2
			}
		} else {
			return dbErr
		}
	}
	if tblCnt == 0 {
		log.Warn("initializing database schema for futures ...")
		_, err = pool.Exec(ctx, ddlPg)
		if err != nil {
			return NewDbErr(core.ErrDbExecFail, err)
		}
	} else {
		err2 = runMigrations(ctx, pool)
		if err2 != nil {
			return err2
		}
	}
	log.Info("connect db ok", zap.String("url", utils.MaskDBUrl(dbCfg.Url)), zap.Int("pool", dbCfg.MaxPoolSize))
	return nil
}

func Close() {
	if pool != nil {
		pool.Close()
		pool = nil
	}
}

func pgConnPool(dbCfg *config.DatabaseConfig) (*pgxpool.Pool, *errs.Error) {
	if dbCfg == nil || dbCfg.Url == "" {
		return nil, errs.NewMsg(core.ErrBadConfig, "database config is missing!")
	}
	poolCfg, err_ := pgxpool.ParseConfig(dbCfg.Url)
	if err_ != nil {
		return nil, errs.New(core.ErrBadConfig, err_)
	}
	if dbCfg.MaxPoolSize == 0 {
		dbCfg.MaxPoolSize = max(10, runtime.NumCPU()*2)
	}
	poolCfg.MaxConns = int32(dbCfg.MaxPoolSize)
	dbPool, err_ := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err_ != nil {
		return nil, errs.New(core.ErrDbConnFail, err_)
	}
	return dbPool, nil
}

func createPgDb(dbUrl string) *errs.Error {
	// 连接到默认的postgres数据库
	tmpConfig, err_ := pgx.ParseConfig(dbUrl)
	if err_ != nil {
		return errs.New(core.ErrBadConfig, err_)
	}
	dbName := tmpConfig.Database
	tmpConfig.Database = "postgres"
	conn, err_ := pgx.ConnectConfig(context.Background(), tmpConfig)
	if err_ != nil {
		return errs.New(core.ErrDbConnFail, err_)
	}
	defer conn.Close(context.Background())

	_, err_ = conn.Exec(context.Background(), fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{dbName}.Sanitize()))
	if err_ != nil {
		return errs.New(core.ErrDbExecFail, err_)
	}
	return nil
}

func Conn(ctx context.Context) (*Queries, *pgxpool.Conn, *errs.Error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if pool == nil {
		return nil, nil, errs.NewMsg(core.ErrDbConnFail, "db pool not initialized")
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, nil, errs.New(core.ErrDbConnFail, err)
	}
	return New(conn), conn, nil
}

type Tx struct {
	tx     pgx.Tx
	closed bool
}

func (t *Tx) Close(ctx context.Context, commit bool) *errs.Error {
	if t.closed {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var err error
	if commit {
		err = t.tx.Commit(ctx)
	} else {
		err = t.tx.Rollback(ctx)
	}
	t.closed = true
	if err != nil {
		return NewDbErr(core.ErrDbExecFail, err)
	}
	return nil
}

func (q *Queries) Exec(sql string, args ...interface{}) *errs.Error {
	_, err_ := q.db.Exec(context.Background(), sql, args...)
	if err_ != nil {
		return NewDbErr(core.ErrDbExecFail, err_)
	}
	return nil
}

/*
NewDbErr
将数据库错误转为错误码；唯一约束冲突转为ErrDbUniqueViolation
*/
func NewDbErr(code int, err_ error) *errs.Error {
	var opErr *net.OpError
	var connErr *pgconn.ConnectError
	var pgErr *pgconn.PgError
	if errors.As(err_, &opErr) {
		if strings.Contains(opErr.Err.Error(), "connection reset") {
			return errs.New(core.ErrDbConnFail, err_)
		}
	} else if errors.As(err_, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			return errs.NewFull(core.ErrDbUniqueViolation, err_, "duplicate key: %s", pgErr.ConstraintName)
		} else if pgErr.Code == pgDbNotExist {
			return errs.NewMsg(core.ErrDbConnFail, "db not exist")
		}
	} else if errors.As(err_, &connErr) {
		if strings.Contains(connErr.Error(), "SQLSTATE "+pgDbNotExist) {
			return errs.NewMsg(core.ErrDbConnFail, "db not exist")
		}
	}
	return errs.New(code, err_)
}

// 执行数据库迁移
func runMigrations(ctx context.Context, pool *pgxpool.Pool) *errs.Error {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT FROM pg_tables WHERE schemaname = 'public' AND tablename = 'dbconf')`).Scan(&exists)
	if err != nil {
		return NewDbErr(core.ErrDbReadFail, err)
	}
	if !exists {
		_, err = pool.Exec(ctx, ddlDbConf)
		if err != nil {
			return NewDbErr(core.ErrDbExecFail, err)
		}
	}

	var currentVersion int
	err = pool.QueryRow(ctx, "SELECT value::int FROM dbconf WHERE key = 'schema_version'").Scan(&currentVersion)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return NewDbErr(core.ErrDbReadFail, err)
	}

	initVersion := currentVersion
	for _, m := range parseMigrations(ddlMigrations) {
		if m.version <= currentVersion {
			continue
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return NewDbErr(core.ErrDbExecFail, err)
		}
		_, err = tx.Exec(ctx, m.sql)
		if err != nil {
			_ = tx.Rollback(ctx)
			return NewDbErr(core.ErrDbExecFail, err)
		}
		_, err = tx.Exec(ctx, "UPDATE dbconf SET value = $1 WHERE key = 'schema_version'", strconv.Itoa(m.version))
		if err != nil {
			_ = tx.Rollback(ctx)
			return NewDbErr(core.ErrDbExecFail, err)
		}
		err = tx.Commit(ctx)
		if err != nil {
			return NewDbErr(core.ErrDbExecFail, err)
		}
		currentVersion = m.version
	}

	if initVersion < currentVersion {
		log.Info("database migration completed", zap.Int("from", initVersion), zap.Int("to", currentVersion))
	}
	return nil
}

type migration struct {
	version int
	sql     string
}

/*
parseMigrations 按 "-- version N" 拆分迁移脚本，按出现顺序返回
*/
func parseMigrations(text string) []*migration {
	var res []*migration
	for _, part := range strings.Split(text, "-- version") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		lines := strings.SplitN(part, "\n", 2)
		if len(lines) < 2 {
			continue
		}
		versionStr := strings.TrimSpace(lines[0])
		version, err := strconv.Atoi(versionStr)
		if err != nil {
			log.Warn("invalid migration version", zap.String("version", versionStr))
			continue
		}
		res = append(res, &migration{version: version, sql: lines[1]})
	}
	return res
}
