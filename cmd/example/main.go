// Command prosa-example wires the stub and injector demo processors
// together into a single running process: an injector
// sends paced transactions to a stub registered for the ECHO service,
// with the admin/metrics surface exposed the way telemetry.NewAdminServer
// describes.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prosaframework/prosa/core/adaptor"
	"github.com/prosaframework/prosa/core/bus"
	"github.com/prosaframework/prosa/core/proc"
	"github.com/prosaframework/prosa/core/settings"
	"github.com/prosaframework/prosa/core/tvf"
	"github.com/prosaframework/prosa/inj"
	"github.com/prosaframework/prosa/stub"
	"github.com/prosaframework/prosa/telemetry"
)

// config is the top-level settings document this process loads,
// composing settings.Base (name + observability) with the two demo
// processors' own settings sections.
type config struct {
	settings.Base `mapstructure:",squash"`
	Stub          stub.Settings `mapstructure:"stub"`
	Inj           inj.Settings  `mapstructure:"inj"`
}

func defaultConfig() config {
	cfg := config{
		Stub: stub.NewSettings([]string{"ECHO"}),
		Inj:  inj.NewSettings("ECHO"),
	}
	cfg.Observability = telemetry.DefaultObservability()
	return cfg
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	v, err := settings.GetConfigBuilder(path)
	if err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "Path to a settings file or directory")
	adminAddr := flag.String("admin-addr", ":9090", "Admin server listen address")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "prosa-example:", err)
		os.Exit(1)
	}

	tel, err := telemetry.FromObservability(*cfg.GetObservability())
	if err != nil {
		fmt.Fprintln(os.Stderr, "prosa-example:", err)
		os.Exit(1)
	}

	// SIGINT/SIGTERM are handled inside bus.MainProc.Run, which turns
	// them into a graceful Shutdown broadcast; ctx is only cancelled
	// after Run returns, to stop the supervision goroutines.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	admin := tel.NewAdminServer(*adminAddr, false, nil)
	go func() {
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			tel.Logger("admin").WithError(err).Warn("admin server stopped")
		}
	}()

	procMetrics := proc.NewMetrics(tel.Registry())
	injMetrics := inj.NewMetrics(tel.Registry())

	mp := bus.NewMainProc[*tvf.Simple](cfg.GetProsaName(), nil, nil, 0)

	sp := stub.New[*tvf.Simple]("stub", cfg.Stub)
	stubHandle := mp.NewProcHandle(1, "stub", sp.Queue())
	go proc.Supervise[*tvf.Simple, adaptor.Adaptor[*tvf.Simple]](ctx, stubHandle, sp, stub.ParotAdaptor[*tvf.Simple]{},
		proc.WithMetrics(procMetrics, "stub"))

	ip := inj.New[*tvf.Simple]("inj", cfg.Inj, inj.WithMetrics[*tvf.Simple](injMetrics))
	injHandle := mp.NewProcHandle(2, "inj", ip.Queue())
	dummy := inj.DummyAdaptor[*tvf.Simple]{New: func() *tvf.Simple { return tvf.NewSimple() }}
	go proc.Supervise[*tvf.Simple, inj.Adaptor[*tvf.Simple]](ctx, injHandle, ip, dummy,
		proc.WithMetrics(procMetrics, "inj"))

	if err := mp.Run(ctx); err != nil && ctx.Err() == nil {
		tel.Logger("main").WithError(err).Warn("main task exited with error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = admin.Shutdown(shutdownCtx)
}
