package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sam/src-server/gcal"
	"sam/src-server/metric"
	"sam/src-server/model"
	"sam/src-server/notify"
	"sam/src-server/roster"
	"sam/src-server/route"
	"sam/src-server/scheduler"
	"sam/src-server/service"
	"sam/src-server/sync"
	"sam/src-server/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	as := utils.NewAppState()

	if err := model.CreateSchema(as.BunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}
	if err := roster.SeedFromCSV(context.Background(), as.BunDB, as.Config.GetFacultyCSVPath()); err != nil {
		slog.Error("can't seed faculty roster", "error", err)
		os.Exit(1)
	}

	gcalClient, err := gcal.NewGoogleClient(context.Background(), as.Config.GetGcalCredentialsPath())
	if err != nil {
		slog.Error("can't create calendar client", "error", err)
		os.Exit(1)
	}

	// email is optional; a nil mailer makes every send a no-op
	var mailer *notify.Mailer
	if as.Config.GetSenderEmail() != "" && as.Config.GetSenderPassword() != "" {
		mailer, err = notify.NewMailer(
			as.Config.GetSMTPHost(),
			as.Config.GetSMTPPort(),
			as.Config.GetSenderEmail(),
			as.Config.GetSenderPassword(),
			as.Config.GetICSOutputDir(),
		)
		if err != nil {
			slog.Error("can't create mailer", "error", err)
			os.Exit(1)
		}
	}

	orch := sync.NewOrchestrator(as.BunDB, gcalClient)
	resolver := roster.NewResolver(roster.NewCache(as.BunDB, as.Config.GetRosterCacheTTL()))
	svc := service.NewMeetingService(
		as.BunDB,
		gcalClient,
		as.Config.GetGcalCalendarID(),
		resolver,
		mailer,
		as.When,
		as.Config.GetLocation(),
	)

	go metric.Init(as)
	go scheduler.CalendarSync(as, orch)
	go scheduler.MeetingNotify(as, mailer)

	// http server
	go func() {
		muxer := http.NewServeMux()
		muxer.Handle("GET /metrics", promhttp.Handler())
		route.Sync(muxer, as, orch)
		route.Meetings(muxer, as, svc)
		if err := http.ListenAndServe(":"+as.Config.GetPort(), muxer); err != nil {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit")

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan
	as.GracefulShutdown()

	slog.Info("Gracefully shutting down...")
}
