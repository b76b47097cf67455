package utils

import (
	"database/sql"
	"log/slog"
	"os"
	gosync "sync"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config *Config
	RawDB  *sql.DB
	BunDB  *bun.DB
	When   *when.Parser

	MetricChans *Metric

	AppCloseSignalChan chan os.Signal

	gracefulShutdownChansMutex gosync.Mutex
	gracefulShutdownChans      []*chan struct{}
}

func NewAppState() *AppState {
	as := &AppState{}

	as.AppCloseSignalChan = make(chan os.Signal, 1)
	as.MetricChans = NewMetric()

	// date parser
	as.When = when.New(nil)
	as.When.Add(en.All...)
	as.When.Add(common.All...)

	// env
	as.Config = NewConfig()

	// database
	var err error
	as.RawDB, err = sql.Open(sqliteshim.ShimName, "./sqlite.db?mode=rwc")
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	as.RawDB.SetMaxIdleConns(8)

	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.FromEnv("BUNDEBUG"),
	))

	return as
}

// CreateGracefulShutdownChan hands out a channel that closes when
// GracefulShutdown runs, so long-lived goroutines can unwind.
func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	ch := make(chan struct{})
	as.gracefulShutdownChansMutex.Lock()
	defer as.gracefulShutdownChansMutex.Unlock()
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, &ch)
	return &ch
}

func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownChansMutex.Lock()
	defer as.gracefulShutdownChansMutex.Unlock()
	for _, ch := range as.gracefulShutdownChans {
		close(*ch)
	}
	as.gracefulShutdownChans = nil
}
