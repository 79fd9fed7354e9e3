package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/buildgrid/buildgrid-go/pkg/actioncache"
	"github.com/buildgrid/buildgrid-go/pkg/api"
	"github.com/buildgrid/buildgrid-go/pkg/bots"
	"github.com/buildgrid/buildgrid-go/pkg/capabilities"
	"github.com/buildgrid/buildgrid-go/pkg/cas"
	"github.com/buildgrid/buildgrid-go/pkg/config"
	"github.com/buildgrid/buildgrid-go/pkg/datastore"
	"github.com/buildgrid/buildgrid-go/pkg/execution"
	"github.com/buildgrid/buildgrid-go/pkg/metrics"
	"github.com/buildgrid/buildgrid-go/pkg/operations"
	"github.com/buildgrid/buildgrid-go/pkg/refcache"
	"github.com/buildgrid/buildgrid-go/pkg/scheduler"
	"github.com/buildgrid/buildgrid-go/pkg/security"
	"github.com/buildgrid/buildgrid-go/pkg/telemetry"
	"github.com/buildgrid/buildgrid-go/pkg/watcher"
)

const apiVersion = "2.1"

// defaultActionCacheEntries bounds the in-memory ActionCache LRU absent a
// dedicated config knob; spec.md's config schema sizes CAS backends but
// leaves ActionCache sizing unspecified, so this follows the CAS memory
// backend's own fallback order of magnitude.
const defaultActionCacheEntries = 100_000

// sessionReaperInterval is how often StartSessionReaper sweeps for bot
// sessions that have gone silent, a fraction of bots.DefaultExpiry so a
// lost session is detected well within one expiry window.
const sessionReaperInterval = 30 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run or control a BuildGrid server",
}

var serverStartCmd = &cobra.Command{
	Use:   "start <config>",
	Short: "Start a BuildGrid server from a YAML config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tracingEndpoint, _ := cmd.Flags().GetString("tracing-endpoint")
		tracingSamplingRate, _ := cmd.Flags().GetFloat64("tracing-sampling-rate")
		tp, err := telemetry.Init(telemetry.Config{
			Enabled:      tracingEndpoint != "",
			Endpoint:     tracingEndpoint,
			SamplingRate: tracingSamplingRate,
		})
		if err != nil {
			return fmt.Errorf("server: failed to initialize tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = telemetry.Shutdown(shutdownCtx, tp)
		}()

		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		if len(cfg.Instances) != 1 {
			// Each REAPI request carries an instance_name, but the hand-rolled
			// pb layer registers one concrete Instance per gRPC service on
			// the server, with no instance_name-dispatching router in front
			// of it. Routing to N named instances from one listener needs
			// that router; until it exists, run one buildgrid process (and
			// one config file) per named instance.
			return fmt.Errorf("server: config declares %d instances, but this build only serves exactly one named instance per process", len(cfg.Instances))
		}
		instCfg := cfg.Instances[0]

		backend, err := buildBackend(&instCfg.Storage)
		if err != nil {
			return fmt.Errorf("server: instance %q: %w", instCfg.Name, err)
		}

		store := datastore.NewMemoryStore()
		defer store.Close()

		w := watcher.New()
		sched := scheduler.New(store, w)
		if err := sched.Restore(context.Background()); err != nil {
			return fmt.Errorf("server: failed to restore scheduler state: %w", err)
		}

		botsInstance := bots.NewInstance(sched)
		services, err := buildServices(instCfg, backend, sched, w, botsInstance)
		if err != nil {
			return err
		}

		var servers []*api.Server
		for _, channel := range cfg.Server {
			var tlsConfig *tls.Config
			if channel.TLS {
				tlsConfig, err = security.ServerTLSConfig(security.ServerConfig{
					CertFile: channel.CertFile,
					KeyFile:  channel.KeyFile,
					CAFile:   channel.CAFile,
				})
				if err != nil {
					return fmt.Errorf("server: failed to build TLS config for %s: %w", channel.Address, err)
				}
			}

			srv := api.NewServer(services, tlsConfig)
			errCh := make(chan error, 1)
			go func(addr string) {
				if err := srv.Start(addr); err != nil {
					errCh <- err
				}
			}(channel.Address)

			select {
			case err := <-errCh:
				return fmt.Errorf("server: failed to start on %s: %w", channel.Address, err)
			case <-time.After(100 * time.Millisecond):
			}

			fmt.Printf("buildgrid server listening on %s (instance %q)\n", channel.Address, instCfg.Name)
			servers = append(servers, srv)
		}

		metricsCollector := metrics.NewCollector(metrics.Sources{
			QueueLength: sched.QueueLen,
			BotsAlive:   botsInstance.BotsAlive,
		})
		metricsCollector.Start()
		defer metricsCollector.Stop()

		httpServer := api.NewHTTPServer()
		go func() {
			if err := httpServer.Start("127.0.0.1:9090"); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
			}
		}()
		fmt.Println("buildgrid metrics endpoint: http://127.0.0.1:9090/metrics")

		stopReaper := sched.StartSessionReaper(sessionReaperInterval, botsInstance.IsSessionAlive, botsInstance.SessionJobs)
		defer stopReaper()

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		fmt.Println("shutting down buildgrid server")
		for _, srv := range servers {
			srv.Stop()
		}
		return nil
	},
}

var serverStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running BuildGrid server",
	Long: `BuildGrid servers run in the foreground under process-manager
supervision (systemd, Kubernetes, a container runtime); there is no
separate daemon control-plane to message. Stop the process with your
supervisor or send it SIGTERM/SIGINT directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("server stop: no supervisor process to signal; stop the running server process directly (SIGTERM/SIGINT)")
	},
}

func init() {
	serverStartCmd.Flags().String("tracing-endpoint", "", "OTLP/HTTP collector endpoint (e.g. localhost:4318); leave empty to disable tracing")
	serverStartCmd.Flags().Float64("tracing-sampling-rate", 1.0, "Fraction of traces to sample, when tracing is enabled")
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverStopCmd)
	rootCmd.AddCommand(serverCmd)
}

// buildBackend recursively constructs a cas.Backend from a BackendConfig,
// dispatching on the Kind its YAML tag resolved to.
func buildBackend(bc *config.BackendConfig) (cas.Backend, error) {
	if bc == nil {
		return nil, fmt.Errorf("missing storage backend configuration")
	}
	switch bc.Kind {
	case config.BackendMemory:
		maxSizeBytes := bc.MaxSizeBytes
		if maxSizeBytes <= 0 {
			maxSizeBytes = 64 << 20
		}
		return cas.NewMemoryBackend(maxSizeBytes)
	case config.BackendDisk:
		return cas.NewDiskBackend(bc.Path)
	case config.BackendWithCache:
		cacheBackend, err := buildBackend(bc.Cache)
		if err != nil {
			return nil, fmt.Errorf("with-cache: %w", err)
		}
		fallbackBackend, err := buildBackend(bc.Fallback)
		if err != nil {
			return nil, fmt.Errorf("with-cache: %w", err)
		}
		return cas.NewWithCacheBackend(cacheBackend, fallbackBackend), nil
	case config.BackendS3:
		return nil, fmt.Errorf("s3 backend requires an AWS session argument, not constructible from config alone; wire it in a deployment-specific composition root")
	case config.BackendSQL:
		return nil, fmt.Errorf("sql is a DataStore backend kind, not a CAS backend kind")
	default:
		return nil, fmt.Errorf("unknown backend kind %q", bc.Kind)
	}
}

// buildServices wires the gRPC service implementations instCfg.Services
// names, sharing backend/sched/w/botsInstance across every service that
// needs them.
func buildServices(instCfg config.InstanceConfig, backend cas.Backend, sched *scheduler.Scheduler, w *watcher.Watcher, botsInstance *bots.Instance) (api.Services, error) {
	wanted := make(map[string]bool, len(instCfg.Services))
	for _, name := range instCfg.Services {
		wanted[name] = true
	}

	var services api.Services

	casInstance := cas.NewInstance(backend)
	bsServer := cas.NewByteStreamServer(cas.NewByteStreamInstance(backend))

	cache, err := refcache.New(defaultActionCacheEntries)
	if err != nil {
		return services, fmt.Errorf("failed to create reference cache: %w", err)
	}
	acInstance := actioncache.NewInstance(cache, backend, false)

	if wanted["CAS"] {
		services.CAS = casInstance
	}
	if wanted["ByteStream"] {
		services.ByteStream = bsServer
	}
	if wanted["ActionCache"] {
		services.ActionCache = acInstance
	}
	if wanted["Execution"] {
		services.Execution = execution.NewInstance(backend, acInstance, sched, w)
	}
	if wanted["Bots"] {
		services.Bots = botsInstance
	}
	if wanted["Operations"] {
		services.Operations = operations.NewInstance(sched)
	}
	if wanted["Capabilities"] {
		services.Capabilities = capabilities.NewInstance(apiVersion)
	}

	return services, nil
}
