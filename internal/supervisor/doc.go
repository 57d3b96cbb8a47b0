/*
Package supervisor provides process supervision using suture v4.

It implements a hierarchical supervisor tree that manages the lifecycle of
the service's long-running components, with Erlang/OTP-style supervision:
automatic restart, failure isolation, and graceful shutdown.

# Overview

The tree organizes services into three layers for failure isolation:

	RootSupervisor ("lccn-predictor")
	├── DataSupervisor ("data-layer")
	│   └── reserved for future store-facing background workers
	├── MessagingSupervisor ("messaging-layer")
	│   └── jobs.Runner, the contest-calendar job dispatcher
	└── APISupervisor ("api-layer")
	    └── the read-only HTTP server

This hierarchy ensures that a crash in the job runner doesn't affect the
API layer's ability to keep serving cached reads, and that each layer can
restart independently.

# Usage

	logger := logging.NewSlogLogger()
	config := supervisor.DefaultTreeConfig()

	tree, err := supervisor.NewSupervisorTree(logger, config)
	if err != nil {
	    log.Fatal(err)
	}

	tree.AddMessagingService(jobs.New(handlers, jobs.DefaultConfig()))
	tree.AddAPIService(httpService)

	if err := tree.Serve(ctx); err != nil {
	    log.Printf("supervisor stopped: %v", err)
	}

# Configuration

TreeConfig controls restart behavior; the defaults match suture's own:

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,
	    FailureDecay:     30.0,
	    FailureBackoff:   15 * time.Second,
	    ShutdownTimeout:  10 * time.Second,
	}

# Failure handling

Each service failure increments a per-supervisor counter that decays
exponentially over FailureDecay seconds. Once the counter exceeds
FailureThreshold, restarts are delayed by FailureBackoff before suture
tries again.

# Service interface

Every supervised component implements suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning nil means the service stopped cleanly and will not be
restarted; returning a non-nil error means it crashed and suture will
restart it, subject to the backoff above; a canceled context means
shutdown was requested and Serve should return promptly.

# Debugging shutdown issues

If a service doesn't stop within ShutdownTimeout, UnstoppedServiceReport
names the one(s) still running.
*/
package supervisor
