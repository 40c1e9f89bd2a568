// lifecycle-invoke runs a request file through the dispatch loop in local
// mode: metrics are skipped and continuations are delivered in process, so a
// multi-step operation can be driven end to end from a terminal.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-lifecycle"
	"github.com/goliatone/go-lifecycle/dispatcher"
	"github.com/goliatone/go-lifecycle/scheduler"
)

var cli struct {
	Request string `arg:"" type:"existingfile" help:"Path to a request JSON file."`
	Config  string `type:"existingfile" optional:"" help:"Optional YAML/JSON runtime config."`
	Steps   int    `default:"1" help:"Steps the echo handler takes before reporting SUCCESS."`
	Pretty  bool   `help:"Indent the response JSON."`
	Verbose bool   `help:"Enable debug logging."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("lifecycle-invoke"),
		kong.Description("Run a lifecycle request against the echo registry in local mode."),
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	cfg := lifecycle.DefaultConfig()
	cfg.LocalMode = true
	if cli.Config != "" {
		data, err := os.ReadFile(cli.Config)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if cfg, err = lifecycle.ParseConfig(data); err != nil {
			return err
		}
		cfg.LocalMode = true
	}

	level := "info"
	if cli.Verbose {
		level = "debug"
	}
	logger := lifecycle.NewGlogAdapter(glog.NewLogger(
		glog.WithWriter(os.Stderr),
		glog.WithLevel(level),
	))

	payload, err := os.ReadFile(cli.Request)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}

	registry := echoRegistry(cli.Steps)

	// The cron backend redelivers continuations straight back into the entry
	// function, standing in for the external trigger service.
	done := make(chan []byte, 1)
	var entry dispatcher.EntryFunc
	backend := scheduler.NewCronBackend(func(ctx context.Context, c scheduler.Continuation) error {
		raw, merr := json.Marshal(c.Request)
		if merr != nil {
			return merr
		}
		resp, _ := entry(ctx, raw)
		done <- resp
		return nil
	}, scheduler.WithCronLogger(logger))

	sched := scheduler.FromConfig(backend, cfg, scheduler.WithLogger(logger))
	entry = dispatcher.Entry(registry,
		dispatcher.WithScheduler(sched),
		dispatcher.WithLogger(logger),
		dispatcher.WithConfig(cfg),
	)

	ctx := context.Background()
	if err := backend.Start(ctx); err != nil {
		return err
	}
	defer backend.Stop(ctx)

	resp, _ := entry(ctx, payload)
	for isInProgress(resp) && backend.Pending() > 0 {
		logger.Info("waiting for local continuation delivery")
		select {
		case resp = <-done:
		case <-time.After(5 * time.Minute):
			return fmt.Errorf("timed out waiting for continuation delivery")
		}
	}

	return printResponse(resp)
}

// echoRegistry binds every action to a handler that succeeds after a
// configurable number of continuation steps, echoing the request's resource
// properties back as the model.
func echoRegistry(steps int) *lifecycle.Registry {
	if steps < 1 {
		steps = 1
	}
	handler := func(ctx context.Context, req lifecycle.Request, ec lifecycle.ExecutionContext) (lifecycle.ProgressEvent, error) {
		var model any
		if len(req.ResourceProperties) > 0 {
			if err := json.Unmarshal(req.ResourceProperties, &model); err != nil {
				return lifecycle.ProgressEvent{}, lifecycle.InvalidRequest("resource properties are not valid JSON")
			}
		}

		step := 1
		if prior := req.CallbackContext(); prior != nil {
			// step arrives as float64 after a JSON round trip.
			switch v := prior["step"].(type) {
			case int:
				step = v + 1
			case float64:
				step = int(v) + 1
			}
		}
		if step < steps {
			return lifecycle.InProgress(model, lifecycle.CallbackContext{"step": step}, 0), nil
		}
		return lifecycle.Success(model), nil
	}

	registry := lifecycle.NewRegistry()
	for _, action := range lifecycle.Actions() {
		registry.MustRegister(action, handler)
	}
	return registry
}

func isInProgress(resp []byte) bool {
	var probe struct {
		Status lifecycle.Status `json:"status"`
	}
	if err := json.Unmarshal(resp, &probe); err != nil {
		return false
	}
	return probe.Status == lifecycle.StatusInProgress
}

func printResponse(resp []byte) error {
	if cli.Pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, resp, "", "  "); err == nil {
			resp = buf.Bytes()
		}
	}
	fmt.Println(string(resp))
	return nil
}
