package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/util"
	"github.com/brandpulse/brandpulse-demo/util/cli"
	"github.com/brandpulse/brandpulse-demo/workers"
)

func main() {
	cli.Init()
	opts := cli.ParseOpts()
	if opts.PrintHelp {
		printHelp()
		cli.PrintDefaults()
		os.Exit(0)
	}

	_context := common.NewContext()
	if _context.RedisClient == nil {
		_context.Logger.Fatal("orphan_cleanup requires REDIS_URL")
	}
	if _, err := _context.RedisClient.Ping(); err != nil {
		_context.Logger.Fatalf("Cannot reach Redis at %s: %s", _context.Config.RedisURL, err.Error())
	}
	if _context.S3Client == nil {
		_context.Logger.Fatal("orphan_cleanup requires S3_BUCKET, S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY")
	}
	settings := workers.NewSettings(_context.Config, opts)

	if opts.Sweep {
		os.Exit(sweep(_context, settings))
	}

	// If anything goes wrong, this exits.
	// Otherwise, it starts handling NSQ messages immediately.
	worker := workers.NewOrphanCleaner(_context, settings)
	if err := worker.RegisterAsNsqConsumer(); err != nil {
		_context.Logger.Fatalf("Could not register as NSQ consumer: %s", err.Error())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
		_context.Logger.Info("Stopping NSQ consumer")
		worker.NSQConsumer.Stop()
		<-worker.NSQConsumer.StopChan
	case <-worker.NSQConsumer.StopChan:
	}
}

// sweep cleans up every orphaned submission once. The pid file keeps
// two sweeps (say, one from cron and one by hand) from running at
// the same time.
func sweep(_context *common.Context, settings *workers.Settings) int {
	pidFile := _context.Config.PidFile
	if pidFile != "" {
		if util.IsRunningInOtherProcess(pidFile) {
			_context.Logger.Infof("Another sweep is running (pid %d). Exiting.", util.ReadPidFile(pidFile))
			return 0
		}
		if age, err := util.AgeOfPidFile(pidFile); err == nil {
			_context.Logger.Warningf("Replacing stale pid file %s, last written %s ago", pidFile, age.Round(time.Second))
		}
		if err := util.WritePidFile(pidFile); err != nil {
			_context.Logger.Errorf("Cannot write pid file %s: %s", pidFile, err.Error())
			return 1
		}
		defer func() {
			if err := util.DeletePidFile(pidFile); err != nil {
				_context.Logger.Warning(err.Error())
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	settings.NumberOfWorkers = 0
	cleaned, failed, err := workers.NewOrphanCleaner(_context, settings).Sweep(ctx)
	if err != nil {
		_context.Logger.Errorf("Sweep stopped: %s", err.Error())
		return 1
	}
	_context.Logger.Infof("Sweep finished. Cleaned up %d submissions, %d failed.", cleaned, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func printHelp() {
	message := `
orphan_cleanup deletes the files that failed submissions left in S3.

When a reference-mode submission fails after uploading some of its files,
the demo marks the submission orphaned in the Redis journal and queues
its id in NSQ. orphan_cleanup reads those ids from NSQ and deletes
exactly the files the journal recorded for each one.

With -sweep, orphan_cleanup skips NSQ, cleans up every orphaned
submission in the journal, and exits. Set PID_FILE to keep sweeps from
overlapping.
`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
