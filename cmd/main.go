package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"iot-edge-controller/pkg/actuator"
	"iot-edge-controller/pkg/config"
	"iot-edge-controller/pkg/errors"
	"iot-edge-controller/pkg/hub"
	"iot-edge-controller/pkg/logger"
	"iot-edge-controller/pkg/metrics"
	"iot-edge-controller/pkg/sensor"
	"iot-edge-controller/pkg/sysperf"
	"iot-edge-controller/pkg/upstream"
)

// Exit codes
const (
	ExitOK          = 0
	ExitInterrupted = 1
	ExitStartup     = 2
)

// Application wires the control loop together
// Facade Pattern - simplified interface for the component graph
type Application struct {
	config        *config.Config
	controlHub    *hub.ControlHub
	sensorManager *sensor.Manager
	perfManager   *sysperf.Manager
	sinks         []upstream.Sink
	mqttSink      *upstream.MQTTSink
	controlMx     *metrics.ControlMetrics
	errHandler    *errors.Handler
}

// NewApplication creates and wires a new application instance
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.NewConfigError("load configuration", err, configPath)
	}

	// Initialize logging with level
	logger.GlobalLogging = &cfg.Logging
	logger.LogStartup("🔧 Logging initialized with level: %s", cfg.Logging.Level)

	app := &Application{config: cfg}

	if cfg.Metrics.Enabled {
		app.controlMx = metrics.NewControlMetrics(nil)
	}

	deviceSettings := config.NewDeviceSettings(cfg)
	ruleSettings := config.NewRuleSettings(cfg)

	// Upstream channels, zero to two depending on configuration. The MQTT
	// channel also carries inbound actuation commands back into the hub.
	if cfg.MQTT.Enabled {
		mqttSettings := config.NewMQTTSettings(cfg)
		app.mqttSink = upstream.NewMQTTSink(&mqttSettings,
			upstream.DefaultMQTTResources(mqttSettings.TopicPrefix),
			func(resource string, payload []byte) {
				app.controlHub.OnInboundMessage(resource, payload)
			})
		app.sinks = append(app.sinks, app.mqttSink)
	}
	if cfg.CoAP.Enabled {
		coapSettings := config.NewCoAPSettings(cfg)
		app.sinks = append(app.sinks, upstream.NewCoAPSink(&coapSettings, upstream.DefaultCoAPResources()))
	}

	// Actuator side: router plus the standard actuator set
	router := actuator.NewRouter(deviceSettings)
	for _, task := range actuator.NewActuatorTasks(deviceSettings, actuator.DefaultDisplayDevicePath) {
		router.Register(task)
	}

	app.controlHub = hub.NewControlHub(ruleSettings, deviceSettings.LocationID, router, app.sinks, app.controlMx)

	// Central error handler. Diagnostics ride the MQTT channel when it exists.
	var diag errors.DiagnosticPublisher
	if app.mqttSink != nil {
		diag = app.mqttSink
	}
	app.errHandler = errors.NewHandler(diag)
	app.controlHub.SetErrorHandler(app.errHandler)

	// Sensor side: simulated or emulated tasks behind the factory
	if cfg.Device.EnableSensing {
		tasks := sensor.NewSensorTasks(deviceSettings, cfg.Sensors, sensor.DefaultEmulatorStatePath)
		app.sensorManager = sensor.NewManager(deviceSettings, tasks, app.controlHub)
		if app.controlMx != nil {
			app.sensorManager.SetTickObserver(app.controlMx)
		}
	}

	if cfg.Device.EnableSystemPerf {
		app.perfManager = sysperf.NewManager(deviceSettings, app.controlHub)
	}

	return app, nil
}

// Start connects the upstream channels and starts the periodic managers
func (app *Application) Start(ctx context.Context) error {
	logger.LogInfo("🚀 Starting IoT edge controller...")

	for _, sink := range app.sinks {
		if err := sink.Connect(ctx); err != nil {
			return fmt.Errorf("error connecting %s channel: %w", sink.Name(), err)
		}
	}

	if app.mqttSink != nil {
		app.mqttSink.StartHeartbeat(ctx, 30*time.Second)
	}

	if app.config.Metrics.Enabled {
		go func() {
			if err := metrics.StartMetricsServer(app.config.Metrics.Port); err != nil {
				logger.LogError("❌ Metrics server error: %v", err)
			}
		}()
	}

	if app.sensorManager != nil {
		app.sensorManager.Start()
	}
	if app.perfManager != nil {
		app.perfManager.Start()
	}

	if app.controlMx != nil {
		app.controlMx.SetLoopUp(true)
	}

	if app.mqttSink != nil {
		if err := app.mqttSink.PublishDiagnostic(ctx, 0, "controller started"); err != nil {
			logger.LogDebug("Failed to publish startup diagnostic: %v", err)
		}
	}

	logger.LogInfo("✅ IoT edge controller started successfully")
	return nil
}

// Stop stops the managers and disconnects the upstream channels
func (app *Application) Stop() {
	logger.LogInfo("🛑 Stopping IoT edge controller...")

	if app.sensorManager != nil {
		app.sensorManager.Stop()
	}
	if app.perfManager != nil {
		app.perfManager.Stop()
	}

	if app.controlMx != nil {
		app.controlMx.SetLoopUp(false)
	}

	for _, sink := range app.sinks {
		sink.Disconnect()
	}

	logger.LogInfo("✅ IoT edge controller stopped")
}

func main() {
	configPath := pflag.String("config", "", "Path to configuration file")
	runFor := pflag.Duration("run-for", 0, "Run for a fixed duration and exit (overrides config)")
	pflag.Parse()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT and SIGTERM for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	app, err := NewApplication(*configPath)
	if err != nil {
		logger.LogError("❌ Application creation error: %v", err)
		os.Exit(ExitStartup)
	}

	if err := app.Start(ctx); err != nil {
		logger.LogError("❌ Application start error: %v", err)
		os.Exit(ExitStartup)
	}

	// A fixed run duration comes from the flag first, then from configuration
	var timeout <-chan time.Time
	switch {
	case *runFor > 0:
		timeout = time.After(*runFor)
	case !app.config.Device.RunForever:
		timeout = time.After(time.Duration(app.config.Device.RunDuration) * time.Second)
	}

	exitCode := ExitOK
	select {
	case sig := <-sigChan:
		logger.LogInfo("📡 Received signal %v, shutting down...", sig)
		exitCode = ExitInterrupted
	case <-timeout:
		logger.LogInfo("⏰ Run duration elapsed, shutting down...")
	}

	cancel()
	app.Stop()
	os.Exit(exitCode)
}
